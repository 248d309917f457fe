package gateway

// Package gateway wraps every outbound backend call in a pair of
// request/response interceptors: the request path attaches the stored
// bearer credential, the response path watches for the backend's
// "reauthenticate" statuses and triggers the forced-logout sequence.

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vitatrack/client-core/internal/ports"
)

// IsAuthFailureStatus reports whether a response status means the session
// credentials are no longer valid. The backend uses 401 for
// "unauthenticated" and 422 for "token expired/invalid"; both force a
// logout, on any endpoint.
func IsAuthFailureStatus(code int) bool {
	return code == http.StatusUnauthorized || code == http.StatusUnprocessableEntity
}

// Transport is the interceptor pair, implemented as an http.RoundTripper
// so every call through the shared client crosses it.
type Transport struct {
	base          http.RoundTripper
	creds         ports.CredentialStore
	onAuthExpired func()
	logger        *slog.Logger
}

// Options groups dependencies for the gateway transport.
type Options struct {
	// Base is the underlying transport. Defaults to http.DefaultTransport.
	Base http.RoundTripper
	// Credentials supplies the bearer token attached to each request.
	Credentials ports.CredentialStore
	// OnAuthExpired runs when a response carries an auth-failure status.
	// It must clear the session before any redirect it schedules.
	OnAuthExpired func()
	Logger        *slog.Logger
}

// NewTransport constructs the gateway transport.
func NewTransport(opts Options) (*Transport, error) {
	if opts.Credentials == nil {
		return nil, errors.New("credential store is required")
	}
	base := opts.Base
	if base == nil {
		base = http.DefaultTransport
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{
		base:          base,
		creds:         opts.Credentials,
		onAuthExpired: opts.OnAuthExpired,
		logger:        logger,
	}, nil
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	// Work on a clone; RoundTrippers must not mutate the caller's request.
	out := req.Clone(ctx)

	// Each request carries its own credential snapshot taken at send time.
	if creds, err := t.creds.Get(ctx); err == nil && creds.Token != "" {
		out.Header.Set("Authorization", "Bearer "+creds.Token)
	}

	// Default JSON bodies, but never touch a multipart content type: the
	// transport layer owns its boundary parameter.
	contentType := out.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(strings.ToLower(contentType), "multipart/"):
		// leave as-is
	case contentType == "" && out.Body != nil:
		out.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if IsAuthFailureStatus(resp.StatusCode) {
		t.logger.WarnContext(ctx, "authentication no longer valid",
			"status", resp.StatusCode, "path", out.URL.Path)
		if t.onAuthExpired != nil {
			// Runs synchronously: the credential clear inside the handler
			// completes before this response reaches the caller, and before
			// any redirect the handler schedules.
			t.onAuthExpired()
		}
	}

	return resp, nil
}
