package database

import (
	"context"
	"time"
)

// NewPost is the insertable shape produced by the ingestion pipeline.
type NewPost struct {
	SourceID    int64
	Title       string
	URL         string
	Excerpt     string
	Content     string
	PublishedAt *time.Time
}

// PostQuery selects a filtered, paginated page of posts. Filters are
// conjunctive; Tier is an inclusive ceiling, not an exact match. TopPicks
// switches on the per-source diversity cap and must only be set by callers
// that know the request is the default top-picks view.
type PostQuery struct {
	Page     int
	Limit    int
	Category string
	Tier     int
	SourceID int64
	Search   string
	TopPicks bool
}

type SourceRepository interface {
	GetOrCreate(ctx context.Context, name, url, category string, tier int) (int64, error)
	Get(ctx context.Context, id int64) (*Source, error)
	ListActive(ctx context.Context) ([]Source, error)
	UpdateFetchStats(ctx context.Context, id int64, inserted int) error
	ActiveCount(ctx context.Context) (int, error)
}

type PostRepository interface {
	Insert(ctx context.Context, post NewPost) (bool, error)
	List(ctx context.Context, q PostQuery) ([]PostWithSource, int, error)
	PurgeOlderThan(ctx context.Context, days int) (int, error)
	Wipe(ctx context.Context) error
	RecentTitles(ctx context.Context, since time.Time) ([]string, error)
	GetStats(ctx context.Context) (*Stats, error)
}
