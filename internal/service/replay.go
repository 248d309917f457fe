package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/vitatrack/client-core/internal/domain/queue"
	apperrors "github.com/vitatrack/client-core/internal/errors"
	"github.com/vitatrack/client-core/internal/ports"
)

// ReplayerOptions groups dependencies for Replayer.
type ReplayerOptions struct {
	// BaseURL resolves relative entry URLs the same way Submit did.
	BaseURL string
	// HTTPClient should wrap the bare transport, not the gateway: queued
	// entries replay with their snapshotted headers, exactly as frozen at
	// enqueue time.
	HTTPClient  *http.Client
	Queue       ports.QueueStore
	Concurrency int
	Logger      *slog.Logger
}

// ReplayStats summarizes one replay pass.
type ReplayStats struct {
	// Attempted counts entries picked up by the pass.
	Attempted int
	// Delivered counts entries the server adjudicated, whatever the status.
	Delivered int
	// Remaining counts entries left in place after a transport failure.
	Remaining int
}

// Replayer drains the offline queue. Delivery is at-least-once: an entry is
// removed once the server has adjudicated it (any well-formed response,
// including a rejection of a stale token), and left in place only when the
// transport failed again. Entries are independent and unordered, so they
// replay concurrently.
type Replayer struct {
	baseURL     string
	http        *http.Client
	queue       ports.QueueStore
	concurrency int
	logger      *slog.Logger
}

// NewReplayer constructs a replayer.
func NewReplayer(opts ReplayerOptions) (*Replayer, error) {
	if opts.HTTPClient == nil {
		return nil, errors.New("HTTP client is required")
	}
	if opts.Queue == nil {
		return nil, errors.New("queue store is required")
	}
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Replayer{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		http:        opts.HTTPClient,
		queue:       opts.Queue,
		concurrency: concurrency,
		logger:      logger,
	}, nil
}

// ReplayAll runs one pass over the queue.
func (r *Replayer) ReplayAll(ctx context.Context) (ReplayStats, error) {
	entries, err := r.queue.List(ctx)
	if err != nil {
		return ReplayStats{}, fmt.Errorf("list queue: %w", err)
	}

	var (
		mu    sync.Mutex
		stats = ReplayStats{Attempted: len(entries)}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, entry := range entries {
		g.Go(func() error {
			delivered := r.replayOne(gctx, entry)
			mu.Lock()
			if delivered {
				stats.Delivered++
			} else {
				stats.Remaining++
			}
			mu.Unlock()
			return nil
		})
	}
	if waitErr := g.Wait(); waitErr != nil {
		return stats, waitErr
	}
	return stats, nil
}

// replayOne sends a single entry with its frozen header snapshot and
// reports whether the server adjudicated it.
func (r *Replayer) replayOne(ctx context.Context, entry queue.Entry) bool {
	target := entry.URL
	if strings.HasPrefix(target, "/") {
		target = r.baseURL + target
	}

	req, err := http.NewRequestWithContext(ctx, entry.Method, target, bytes.NewReader(entry.Payload))
	if err != nil {
		r.logger.ErrorContext(ctx, "unreplayable queue entry",
			"entry_id", entry.ID, "error", err)
		// Malformed beyond repair; leave it for inspection rather than drop it.
		return false
	}
	for k, v := range entry.Headers {
		req.Header.Set(k, v)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		if !apperrors.IsTransportFailure(err) {
			r.logger.ErrorContext(ctx, "replay request failed",
				"entry_id", entry.ID, "error", err)
		}
		return false
	}
	resp.Body.Close()

	if resp.StatusCode >= 400 {
		r.logger.WarnContext(ctx, "replayed write rejected by server",
			"entry_id", entry.ID, "status", resp.StatusCode, "url", entry.URL)
	}
	if removeErr := r.queue.Remove(ctx, entry.ID); removeErr != nil {
		r.logger.ErrorContext(ctx, "remove delivered queue entry failed",
			"entry_id", entry.ID, "error", removeErr)
	}
	return true
}

// ReplayScheduler triggers replay passes on a fixed interval and on demand.
// It is the client-side stand-in for a platform background-sync facility.
type ReplayScheduler struct {
	replayer *Replayer
	interval time.Duration
	logger   *slog.Logger

	cron *cron.Cron
	kick chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
}

// NewReplayScheduler constructs a scheduler around a replayer.
func NewReplayScheduler(replayer *Replayer, interval time.Duration, logger *slog.Logger) *ReplayScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReplayScheduler{
		replayer: replayer,
		interval: interval,
		logger:   logger,
		kick:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Start begins the periodic schedule and the worker draining kick requests.
func (s *ReplayScheduler) Start(ctx context.Context) error {
	var startErr error
	s.startOnce.Do(func() {
		s.cron = cron.New()
		_, startErr = s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), s.Kick)
		if startErr != nil {
			return
		}
		s.cron.Start()
		go s.run(ctx)
	})
	return startErr
}

// Stop halts the schedule. A pass already running finishes on its own.
func (s *ReplayScheduler) Stop() {
	s.stopOnce.Do(func() {
		if s.cron != nil {
			s.cron.Stop()
		}
		close(s.done)
	})
}

// Kick requests a replay pass without blocking. Requests arriving while a
// pass is pending coalesce with it.
func (s *ReplayScheduler) Kick() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

func (s *ReplayScheduler) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-s.kick:
			stats, err := s.replayer.ReplayAll(ctx)
			if err != nil {
				s.logger.ErrorContext(ctx, "replay pass failed", "error", err)
				continue
			}
			if stats.Attempted > 0 {
				s.logger.InfoContext(ctx, "replay pass finished",
					"attempted", stats.Attempted,
					"delivered", stats.Delivered,
					"remaining", stats.Remaining)
			}
		}
	}
}
