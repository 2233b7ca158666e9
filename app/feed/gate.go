package feed

import (
	"sort"
	"time"
)

const (
	// FreshnessWindow keeps a source's backlog from flooding in on first
	// fetch: entries published more than 6 months ago are dropped.
	FreshnessWindow = 6 * 30 * 24 * time.Hour

	// MaxEntriesPerRun bounds per-source burst size in a single run.
	MaxEntriesPerRun = 15
)

type Gate struct{}

func NewGate() *Gate {
	return &Gate{}
}

// Run applies the freshness gate, sorts entries newest-first, and caps the
// result to the most recent 15. Entries without a publish timestamp pass the
// gate but sort last.
func (g *Gate) Run(entries []Entry, now time.Time) []Entry {
	cutoff := now.Add(-FreshnessWindow)

	kept := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.PublishedAt != nil && entry.PublishedAt.Before(cutoff) {
			continue
		}
		kept = append(kept, entry)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		var ti, tj time.Time
		if kept[i].PublishedAt != nil {
			ti = *kept[i].PublishedAt
		}
		if kept[j].PublishedAt != nil {
			tj = *kept[j].PublishedAt
		}
		return ti.After(tj)
	})

	if len(kept) > MaxEntriesPerRun {
		kept = kept[:MaxEntriesPerRun]
	}

	return kept
}
