package queue

// Package queue contains domain-level types for the offline submission
// queue: writes that could not be delivered immediately, persisted locally
// for later replay.

import (
	"encoding/json"
	"time"
)

// Entry is a single deferred write. Entries are immutable after creation
// and are removed only by a successful replay; a failed replay leaves the
// entry in place for a later attempt.
//
// Headers are snapshotted at enqueue time, not re-derived at replay time.
// A bearer token captured here may therefore be expired by the time the
// entry is replayed; that staleness is a documented property of the queue,
// not something replay papers over.
type Entry struct {
	ID         string            `json:"id"`
	URL        string            `json:"url"`
	Method     string            `json:"method"`
	Payload    json.RawMessage   `json:"payload"`
	Headers    map[string]string `json:"headers"`
	EnqueuedAt time.Time         `json:"enqueued_at"`
}
