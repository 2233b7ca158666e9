// Package ingest drives the fetch pipeline: it pulls every configured feed,
// normalizes the entries, and stores what is new.
package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/thefeedhq/thefeed/app/database"
	"github.com/thefeedhq/thefeed/app/feed"
)

const (
	fetchTimeout       = 12 * time.Second
	defaultConcurrency = 8
	maxFeedSize        = 10 << 20

	// retentionDays is how long posts stay browsable before a refresh run
	// purges them.
	retentionDays = 30
)

// Options tune a single ingestion run.
type Options struct {
	// Concurrency bounds how many sources fetch in parallel.
	Concurrency int

	// TierLimit restricts the run to sources at or above this quality tier
	// (tier <= TierLimit). Zero means all sources.
	TierLimit int

	// Wipe deletes all stored posts before fetching.
	Wipe bool

	// PurgeFirst removes posts past retention before fetching.
	PurgeFirst bool

	// OnProgress, when set, is called after each source finishes.
	OnProgress func(done, total int, name string)
}

// Summary reports what a run accomplished.
type Summary struct {
	SourcesFetched int
	TotalInserted  int
	ErrorCount     int
	Purged         int
}

type Runner struct {
	sources   database.SourceRepository
	posts     database.PostRepository
	parser    *feed.Parser
	gate      *feed.Gate
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

func NewRunner(sources database.SourceRepository, posts database.PostRepository, userAgent string, logger *slog.Logger) *Runner {
	return &Runner{
		sources:   sources,
		posts:     posts,
		parser:    feed.NewParser(),
		gate:      feed.NewGate(),
		client:    &http.Client{Timeout: fetchTimeout},
		userAgent: userAgent,
		logger:    logger,
	}
}

// Run fetches every source in the list, isolating failures so one broken
// feed never blocks the rest. Sources sharing a URL are collapsed to the
// first occurrence.
func (r *Runner) Run(ctx context.Context, list []feed.Source, opts Options) (Summary, error) {
	var summary Summary

	if opts.Wipe {
		if err := r.posts.Wipe(ctx); err != nil {
			return summary, fmt.Errorf("failed to wipe posts: %w", err)
		}
		r.logger.Info("wiped all stored posts")
	} else if opts.PurgeFirst {
		purged, err := r.posts.PurgeOlderThan(ctx, retentionDays)
		if err != nil {
			return summary, fmt.Errorf("failed to purge old posts: %w", err)
		}
		summary.Purged = purged
		if purged > 0 {
			r.logger.Info("purged posts past retention", "count", purged, "days", retentionDays)
		}
	}

	targets := r.selectTargets(list, opts.TierLimit)
	if len(targets) == 0 {
		return summary, nil
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if concurrency > len(targets) {
		concurrency = len(targets)
	}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		done int
	)
	jobs := make(chan feed.Source)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for source := range jobs {
				inserted, err := r.fetchSource(ctx, source)

				mu.Lock()
				done++
				summary.SourcesFetched++
				if err != nil {
					summary.ErrorCount++
					r.logger.Error("source fetch failed", "source", source.Name, "error", err)
				} else {
					summary.TotalInserted += inserted
					r.logger.Debug("source fetched", "source", source.Name, "inserted", inserted)
				}
				if opts.OnProgress != nil {
					opts.OnProgress(done, len(targets), source.Name)
				}
				mu.Unlock()
			}
		}()
	}

	for _, source := range targets {
		select {
		case jobs <- source:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return summary, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	return summary, nil
}

func (r *Runner) selectTargets(list []feed.Source, tierLimit int) []feed.Source {
	seen := make(map[string]struct{}, len(list))
	targets := make([]feed.Source, 0, len(list))
	for _, source := range list {
		if tierLimit > 0 && source.Tier > tierLimit {
			continue
		}
		if _, dup := seen[source.URL]; dup {
			continue
		}
		seen[source.URL] = struct{}{}
		targets = append(targets, source)
	}
	return targets
}

// fetchSource runs the whole per-source pipeline: register, download, parse,
// gate, store. Fetch statistics update only when something new was inserted,
// so a quiet poll leaves the source's bookkeeping untouched.
func (r *Runner) fetchSource(ctx context.Context, source feed.Source) (int, error) {
	sourceID, err := r.sources.GetOrCreate(ctx, source.Name, source.URL, source.Category, source.Tier)
	if err != nil {
		return 0, err
	}

	data, err := r.download(ctx, source.URL)
	if err != nil {
		return 0, err
	}

	entries, err := r.parser.Run(data)
	if err != nil {
		return 0, err
	}
	entries = r.gate.Run(entries, time.Now().UTC())

	inserted := 0
	for _, entry := range entries {
		ok, err := r.posts.Insert(ctx, database.NewPost{
			SourceID:    sourceID,
			Title:       entry.Title,
			URL:         entry.Link,
			Excerpt:     feed.Excerpt(entry.Content),
			Content:     entry.Content,
			PublishedAt: entry.PublishedAt,
		})
		if err != nil {
			return inserted, err
		}
		if ok {
			inserted++
		}
	}

	if inserted > 0 {
		if err := r.sources.UpdateFetchStats(ctx, sourceID, inserted); err != nil {
			return inserted, err
		}
	}
	return inserted, nil
}

func (r *Runner) download(ctx context.Context, feedURL string) ([]byte, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read feed body: %w", err)
	}
	return data, nil
}
