package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vitatrack/client-core/internal/domain/queue"
)

const queueDirName = "queue"

// QueueStore persists each deferred write as its own JSON file named by
// entry ID. One entry per file keeps appends independent: concurrent
// submits never contend on a shared document.
type QueueStore struct {
	dir    string
	logger *slog.Logger
}

// NewQueueStore creates a file-backed queue store under dir.
func NewQueueStore(dir string, logger *slog.Logger) (*QueueStore, error) {
	if dir == "" {
		return nil, errors.New("storage dir cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	queueDir := filepath.Join(dir, queueDirName)
	if err := os.MkdirAll(queueDir, 0o700); err != nil {
		return nil, fmt.Errorf("create queue dir: %w", err)
	}
	return &QueueStore{dir: queueDir, logger: logger}, nil
}

func (s *QueueStore) Append(_ context.Context, entry queue.Entry) error {
	if entry.ID == "" {
		return errors.New("entry ID cannot be empty")
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal queue entry: %w", err)
	}
	return writeAtomic(s.entryPath(entry.ID), data)
}

func (s *QueueStore) List(ctx context.Context) ([]queue.Entry, error) {
	dirents, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read queue dir: %w", err)
	}

	entries := make([]queue.Entry, 0, len(dirents))
	for _, d := range dirents {
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			continue
		}
		data, readErr := os.ReadFile(filepath.Join(s.dir, d.Name()))
		if readErr != nil {
			return nil, fmt.Errorf("read queue entry %s: %w", d.Name(), readErr)
		}
		var entry queue.Entry
		if unmarshalErr := json.Unmarshal(data, &entry); unmarshalErr != nil {
			// An unreadable entry cannot be replayed; skip it rather than
			// wedge the rest of the queue behind it.
			s.logger.WarnContext(ctx, "skipping corrupt queue entry",
				"file", d.Name(), "error", unmarshalErr)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *QueueStore) Remove(_ context.Context, id string) error {
	if id == "" {
		return nil // Nothing to remove
	}
	if err := os.Remove(s.entryPath(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove queue entry: %w", err)
	}
	return nil
}

func (s *QueueStore) entryPath(id string) string {
	return filepath.Join(s.dir, id+".json")
}
