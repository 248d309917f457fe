package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitatrack/client-core/internal/domain/queue"
	"github.com/vitatrack/client-core/internal/mocks"
	"github.com/vitatrack/client-core/internal/testutil"
)

func newTestReplayer(t *testing.T, baseURL string, client *http.Client, q *mocks.MemoryQueueStore) *Replayer {
	t.Helper()
	replayer, err := NewReplayer(ReplayerOptions{
		BaseURL:     baseURL,
		HTTPClient:  client,
		Queue:       q,
		Concurrency: 2,
		Logger:      testutil.DiscardLogger(),
	})
	require.NoError(t, err)
	return replayer
}

func queuedEntry(id, url string) queue.Entry {
	return queue.Entry{
		ID:      id,
		URL:     url,
		Method:  http.MethodPost,
		Payload: []byte(`{"calories":320}`),
		Headers: map[string]string{
			"Content-Type":  "application/json",
			"Authorization": "Bearer frozen-tok",
		},
		EnqueuedAt: time.Now().UTC(),
	}
}

func TestReplayer_DeliveredEntriesAreRemoved(t *testing.T) {
	var (
		mu       sync.Mutex
		requests []*http.Request
		bodies   []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, r.Clone(context.Background()))
		bodies = append(bodies, string(body))
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	q := mocks.NewMemoryQueueStore()
	require.NoError(t, q.Append(context.Background(), queuedEntry("e-1", "/api/calories/log-activity")))
	require.NoError(t, q.Append(context.Background(), queuedEntry("e-2", "/api/calories/log-activity")))

	replayer := newTestReplayer(t, server.URL, server.Client(), q)
	stats, err := replayer.ReplayAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Attempted)
	assert.Equal(t, 2, stats.Delivered)
	assert.Equal(t, 0, stats.Remaining)
	assert.Equal(t, 0, q.Len())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, requests, 2)
	for i, r := range requests {
		// headers go out exactly as frozen at enqueue time
		assert.Equal(t, "Bearer frozen-tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.JSONEq(t, `{"calories":320}`, bodies[i])
	}
}

func TestReplayer_ServerRejectionStillCountsAsDelivered(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// the stale frozen token gets rejected; the server has adjudicated
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	q := mocks.NewMemoryQueueStore()
	require.NoError(t, q.Append(context.Background(), queuedEntry("e-1", "/api/calories/log-activity")))

	replayer := newTestReplayer(t, server.URL, server.Client(), q)
	stats, err := replayer.ReplayAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Delivered)
	assert.Equal(t, 0, q.Len(), "an adjudicated entry never replays again")
}

func TestReplayer_TransportFailureLeavesEntries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	q := mocks.NewMemoryQueueStore()
	require.NoError(t, q.Append(context.Background(), queuedEntry("e-1", "/api/calories/log-activity")))

	replayer := newTestReplayer(t, server.URL, http.DefaultClient, q)
	stats, err := replayer.ReplayAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Attempted)
	assert.Equal(t, 0, stats.Delivered)
	assert.Equal(t, 1, stats.Remaining)
	assert.Equal(t, 1, q.Len(), "entries survive until a server adjudicates them")
}

func TestReplayer_EmptyQueue(t *testing.T) {
	replayer := newTestReplayer(t, "http://unused.invalid", http.DefaultClient, mocks.NewMemoryQueueStore())

	stats, err := replayer.ReplayAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ReplayStats{}, stats)
}

func TestReplayScheduler_KickTriggersPass(t *testing.T) {
	var hits int32
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	q := mocks.NewMemoryQueueStore()
	require.NoError(t, q.Append(context.Background(), queuedEntry("e-1", "/api/calories/log-activity")))

	replayer := newTestReplayer(t, server.URL, server.Client(), q)
	scheduler := NewReplayScheduler(replayer, time.Hour, testutil.DiscardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, scheduler.Start(ctx))
	defer scheduler.Stop()

	scheduler.Kick()

	require.Eventually(t, func() bool {
		return q.Len() == 0
	}, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, int32(1), hits)
}

func TestReplayScheduler_KicksCoalesce(t *testing.T) {
	scheduler := NewReplayScheduler(
		newTestReplayer(t, "http://unused.invalid", http.DefaultClient, mocks.NewMemoryQueueStore()),
		time.Hour, testutil.DiscardLogger())

	// Not started: kicks must never block, pending ones coalesce.
	for range 10 {
		scheduler.Kick()
	}
}
