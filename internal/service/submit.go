package service

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
	"time"

	"github.com/google/uuid"

	"github.com/vitatrack/client-core/internal/domain/queue"
	apperrors "github.com/vitatrack/client-core/internal/errors"
	"github.com/vitatrack/client-core/internal/ports"
)

// SubmitterOptions groups dependencies for Submitter.
type SubmitterOptions struct {
	// BaseURL resolves relative submission paths like /api/calories/log-activity.
	BaseURL string
	// HTTPClient is the shared, gateway-wrapped client used for the direct
	// attempt.
	HTTPClient *http.Client
	Queue      ports.QueueStore
	// Credentials supplies the bearer token frozen into the enqueue-time
	// header snapshot.
	Credentials ports.CredentialStore
	// Trigger requests a deferred-replay pass after an enqueue. Optional.
	Trigger ports.ReplayTrigger
	Logger  *slog.Logger

	// Now and NewID exist for deterministic tests.
	Now   func() time.Time
	NewID func() string
}

// SubmitResult is the outcome of one Submit call. Offline distinguishes an
// accepted-but-deferred write from a genuine server-confirmed response.
type SubmitResult struct {
	OK         bool
	Offline    bool
	StatusCode int
	Body       []byte
	// EntryID identifies the durable queue entry when Offline is true.
	EntryID string
}

// Submitter wraps one logical "submit form data to URL" operation with a
// durable offline fallback. A well-formed server response, success or
// error, passes through untouched; only a transport failure (the call
// could not complete at all) diverts the write into the queue.
type Submitter struct {
	baseURL string
	http    *http.Client
	queue   ports.QueueStore
	creds   ports.CredentialStore
	trigger ports.ReplayTrigger
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

// NewSubmitter constructs a submitter.
func NewSubmitter(opts SubmitterOptions) (*Submitter, error) {
	if opts.HTTPClient == nil {
		return nil, errors.New("HTTP client is required")
	}
	if opts.Queue == nil {
		return nil, errors.New("queue store is required")
	}
	if opts.Credentials == nil {
		return nil, errors.New("credential store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	newID := opts.NewID
	if newID == nil {
		newID = func() string { return uuid.New().String() }
	}
	return &Submitter{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    opts.HTTPClient,
		queue:   opts.Queue,
		creds:   opts.Credentials,
		trigger: opts.Trigger,
		logger:  logger,
		now:     now,
		newID:   newID,
	}, nil
}

// Submit attempts the write directly and falls back to the durable queue on
// transport failure. It never returns an error for an unreachable network;
// the only hard failure is the queue's own storage breaking, surfaced as a
// QueuePersistenceError so the write is never silently dropped.
func (s *Submitter) Submit(ctx context.Context, url, method string, payload any, headers map[string]string) (SubmitResult, error) {
	body, err := marshalPayload(payload)
	if err != nil {
		return SubmitResult{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "marshal payload")
	}

	merged := mergeHeaders(headers)
	target := s.resolve(url)

	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
	if err != nil {
		return SubmitResult{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build request")
	}
	for k, v := range merged {
		req.Header.Set(k, v)
	}

	resp, doErr := s.http.Do(req)
	if doErr == nil {
		defer resp.Body.Close()
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return SubmitResult{}, apperrors.Transport(readErr, "read response body")
		}
		return SubmitResult{
			OK:         resp.StatusCode < 400,
			StatusCode: resp.StatusCode,
			Body:       respBody,
		}, nil
	}

	if !apperrors.IsTransportFailure(doErr) {
		return SubmitResult{}, fmt.Errorf("submit %s %s: %w", method, url, doErr)
	}
	return s.enqueue(ctx, url, method, body, merged)
}

func (s *Submitter) enqueue(ctx context.Context, url, method string, body []byte, headers map[string]string) (SubmitResult, error) {
	// Snapshot the bearer token now; replay sends these headers verbatim
	// even if the token has expired by then.
	if creds, err := s.creds.Get(ctx); err == nil && creds.Token != "" {
		headers["Authorization"] = "Bearer " + creds.Token
	}

	entry := queue.Entry{
		ID:         s.newID(),
		URL:        url,
		Method:     method,
		Payload:    body,
		Headers:    headers,
		EnqueuedAt: s.now().UTC(),
	}

	if err := s.queue.Append(ctx, entry); err != nil {
		return SubmitResult{}, apperrors.QueuePersistence(err, "persist deferred write")
	}

	s.logger.InfoContext(ctx, "write deferred to offline queue",
		"entry_id", entry.ID, "url", url, "method", method)

	if s.trigger != nil {
		s.trigger.Kick()
	}
	return SubmitResult{OK: true, Offline: true, EntryID: entry.ID}, nil
}

func (s *Submitter) resolve(url string) string {
	if strings.HasPrefix(url, "/") {
		return s.baseURL + url
	}
	return url
}

func marshalPayload(payload any) ([]byte, error) {
	switch v := payload.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return v, nil
	case []byte:
		return v, nil
	default:
		return json.Marshal(v)
	}
}

func mergeHeaders(headers map[string]string) map[string]string {
	merged := map[string]string{"Content-Type": "application/json"}
	for k, v := range headers {
		merged[http.CanonicalHeaderKey(k)] = v
	}
	return merged
}
