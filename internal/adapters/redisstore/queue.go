package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/vitatrack/client-core/internal/domain/queue"
)

const queueKey = "queue"

// QueueStore persists deferred writes in a Redis hash keyed by entry ID.
// HSET/HDEL are atomic per entry, so concurrent submits never interleave
// within a single append.
type QueueStore struct {
	client redis.UniversalClient
	prefix string
}

// NewQueueStore creates a Redis-backed queue store.
func NewQueueStore(client redis.UniversalClient, prefix string) *QueueStore {
	return &QueueStore{client: client, prefix: prefix}
}

func (s *QueueStore) Append(ctx context.Context, entry queue.Entry) error {
	if entry.ID == "" {
		return errors.New("entry ID cannot be empty")
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal queue entry: %w", err)
	}
	return s.client.HSet(ctx, s.prefix+queueKey, entry.ID, data).Err()
}

func (s *QueueStore) List(ctx context.Context) ([]queue.Entry, error) {
	fields, err := s.client.HGetAll(ctx, s.prefix+queueKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall: %w", err)
	}

	entries := make([]queue.Entry, 0, len(fields))
	for id, data := range fields {
		var entry queue.Entry
		if unmarshalErr := json.Unmarshal([]byte(data), &entry); unmarshalErr != nil {
			return nil, fmt.Errorf("unmarshal queue entry %s: %w", id, unmarshalErr)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *QueueStore) Remove(ctx context.Context, id string) error {
	if id == "" {
		return nil // Nothing to remove
	}
	return s.client.HDel(ctx, s.prefix+queueKey, id).Err()
}
