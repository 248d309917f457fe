package errors

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Transport(cause, "POST /api/calories/log-activity")

	assert.Contains(t, err.Error(), "POST /api/calories/log-activity")
	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, cause)
}

func TestCodePredicates(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"auth expired", AuthExpired("token invalid"), IsAuthExpired},
		{"validation", Validation("bad email", 400), IsValidation},
		{"server", Server("boom", 500), IsServer},
		{"transport", Transport(errors.New("refused"), "send"), IsTransport},
		{"queue persistence", QueuePersistence(errors.New("disk full"), "persist"), IsQueuePersistence},
		{"server contract", ServerContract("missing token"), IsServerContract},
		{"not found", NotFound("no entry"), IsNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			// A wrapped AppError keeps its code visible.
			assert.True(t, tt.check(fmt.Errorf("outer: %w", tt.err)))
			assert.False(t, tt.check(errors.New("unrelated")))
		})
	}
}

func TestGetStatus(t *testing.T) {
	assert.Equal(t, 422, GetStatus(Validation("rejected", 422)))
	assert.Equal(t, 0, GetStatus(errors.New("plain")))
	assert.Equal(t, 0, GetStatus(nil))
}

func TestIsTransportFailure(t *testing.T) {
	require.False(t, IsTransportFailure(nil))

	urlErr := &url.Error{Op: "Post", URL: "http://api", Err: errors.New("dial tcp: connection refused")}
	assert.True(t, IsTransportFailure(urlErr))
	assert.True(t, IsTransportFailure(fmt.Errorf("do request: %w", urlErr)))
	assert.True(t, IsTransportFailure(context.DeadlineExceeded))
	assert.True(t, IsTransportFailure(Transport(errors.New("x"), "send")))

	// A well-formed server response mapped to its own code is not transport.
	assert.False(t, IsTransportFailure(Server("boom", 500)))
	assert.False(t, IsTransportFailure(errors.New("some app error")))
}
