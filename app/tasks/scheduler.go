// Package tasks runs background and on-demand refresh work.
package tasks

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/thefeedhq/thefeed/app/feed"
	"github.com/thefeedhq/thefeed/app/ingest"
)

// ErrRefreshInProgress is returned when a refresh is requested while another
// run is still draining.
var ErrRefreshInProgress = errors.New("refresh already in progress")

// Scheduler owns the configured source list and serializes refresh runs over
// it, whether they come from the timer or from the API.
type Scheduler struct {
	runner   *ingest.Runner
	sources  []feed.Source
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

func NewScheduler(runner *ingest.Runner, sources []feed.Source, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		sources:  sources,
		interval: interval,
		logger:   logger,
	}
}

// Refresh runs one ingestion pass over the configured sources, purging posts
// past retention first. Concurrent calls are rejected rather than queued; the
// caller can simply retry after the active run finishes.
func (s *Scheduler) Refresh(ctx context.Context, tier int) (ingest.Summary, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ingest.Summary{}, ErrRefreshInProgress
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	started := time.Now()
	summary, err := s.runner.Run(ctx, s.sources, ingest.Options{
		TierLimit:  tier,
		PurgeFirst: true,
	})
	if err != nil {
		return summary, err
	}

	s.logger.Info("refresh completed",
		"sources", summary.SourcesFetched,
		"inserted", summary.TotalInserted,
		"errors", summary.ErrorCount,
		"purged", summary.Purged,
		"elapsed", time.Since(started).Round(time.Millisecond))
	return summary, nil
}

// Start blocks, refreshing on the configured interval until ctx is
// cancelled. Returns immediately when no interval is set.
func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		return
	}

	s.logger.Info("background refresh enabled", "interval", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Refresh(ctx, 0); err != nil && !errors.Is(err, ErrRefreshInProgress) {
				s.logger.Error("background refresh failed", "error", err)
			}
		}
	}
}
