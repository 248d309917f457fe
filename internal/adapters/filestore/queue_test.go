package filestore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitatrack/client-core/internal/domain/queue"
	"github.com/vitatrack/client-core/internal/testutil"
)

func testEntry(id string) queue.Entry {
	return queue.Entry{
		ID:         id,
		URL:        "/api/calories/log-activity",
		Method:     "POST",
		Payload:    json.RawMessage(`{"activity": "run", "minutes": 30}`),
		Headers:    map[string]string{"Content-Type": "application/json", "Authorization": "Bearer tok"},
		EnqueuedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestQueueStore_AppendListRemove(t *testing.T) {
	store, err := NewQueueStore(t.TempDir(), testutil.DiscardLogger())
	require.NoError(t, err)
	ctx := context.Background()

	entry := testEntry("e-1")
	require.NoError(t, store.Append(ctx, entry))

	entries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry, entries[0])

	require.NoError(t, store.Remove(ctx, "e-1"))
	entries, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestQueueStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewQueueStore(dir, testutil.DiscardLogger())
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, testEntry("e-1")))
	require.NoError(t, store.Append(ctx, testEntry("e-2")))

	reopened, err := NewQueueStore(dir, testutil.DiscardLogger())
	require.NoError(t, err)
	entries, err := reopened.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestQueueStore_SkipsCorruptEntries(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewQueueStore(dir, testutil.DiscardLogger())
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, testEntry("e-1")))

	corrupt := filepath.Join(dir, queueDirName, "e-bad.json")
	require.NoError(t, os.WriteFile(corrupt, []byte("{not json"), 0o600))

	entries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "e-1", entries[0].ID)
}

func TestQueueStore_RemoveMissingIsIdempotent(t *testing.T) {
	store, err := NewQueueStore(t.TempDir(), testutil.DiscardLogger())
	require.NoError(t, err)

	require.NoError(t, store.Remove(context.Background(), "never-existed"))
}
