package api

// Package api is the typed surface of the VitaTrack backend consumed by
// the client core. All calls go through the shared gateway-wrapped HTTP
// client, so credential attachment and auth-failure handling are uniform.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vitatrack/client-core/internal/domain/access"
	"github.com/vitatrack/client-core/internal/domain/session"
	apperrors "github.com/vitatrack/client-core/internal/errors"
	"github.com/vitatrack/client-core/internal/gateway"
	"github.com/vitatrack/client-core/internal/ports"
)

// Compile-time conformance to the ports the services consume.
var (
	_ ports.AuthAPI           = (*Client)(nil)
	_ ports.EntitlementSource = (*Client)(nil)
)

// Client calls the backend auth and entitlement endpoints.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// Options groups dependencies for the API client.
type Options struct {
	// BaseURL is the backend base URL, without a trailing slash.
	BaseURL string
	// HTTPClient is the shared, gateway-wrapped client.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewClient constructs a backend API client.
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}
	if opts.HTTPClient == nil {
		return nil, errors.New("HTTP client is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    opts.HTTPClient,
		logger:  logger,
	}, nil
}

// Login exchanges email and password for a bearer token and user snapshot.
func (c *Client) Login(ctx context.Context, email, password string) (session.Credentials, error) {
	body, err := c.postJSON(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return session.Credentials{}, err
	}
	return gateway.ParseCredentials(body)
}

// Register creates an account and returns a bearer token and user snapshot.
func (c *Client) Register(ctx context.Context, profile ports.RegisterInput) (session.Credentials, error) {
	body, err := c.postJSON(ctx, "/auth/register", profile)
	if err != nil {
		return session.Credentials{}, err
	}
	return gateway.ParseCredentials(body)
}

// Me validates the stored token against the backend and returns the user
// it belongs to.
func (c *Client) Me(ctx context.Context) (session.UserSnapshot, error) {
	body, err := c.get(ctx, "/auth/me")
	if err != nil {
		return session.UserSnapshot{}, err
	}
	return gateway.ParseUserSnapshot(body)
}

// Check queries the entitlement authority for the current user's
// subscription/trial access.
func (c *Client) Check(ctx context.Context) (access.Entitlement, error) {
	body, err := c.get(ctx, "/debug/subscription-check")
	if err != nil {
		return access.Entitlement{}, err
	}
	return gateway.ParseEntitlement(body)
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "marshal request body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build request")
	}
	return c.do(req)
}

// do executes a request and maps the response into the error taxonomy:
// auth-failure statuses (the gateway has already run the forced-logout
// sequence by the time they land here), other 4xx as validation errors
// local to the caller, 5xx as server errors.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.Transport(err, fmt.Sprintf("%s %s", req.Method, req.URL.Path))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Transport(err, "read response body")
	}

	switch {
	case gateway.IsAuthFailureStatus(resp.StatusCode):
		return nil, apperrors.AuthExpired("authentication no longer valid")
	case resp.StatusCode >= 500:
		return nil, apperrors.Server(fmt.Sprintf("server error on %s", req.URL.Path), resp.StatusCode)
	case resp.StatusCode >= 400:
		msg := gateway.ParseErrorMessage(body)
		if msg == "" {
			msg = fmt.Sprintf("request rejected with status %d", resp.StatusCode)
		}
		return nil, apperrors.Validation(msg, resp.StatusCode)
	}
	return body, nil
}
