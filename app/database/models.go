package database

import (
	"time"
)

type Source struct {
	ID          int64      `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	URL         string     `db:"url" json:"url"`
	Category    string     `db:"category" json:"category"`
	Tier        int        `db:"tier" json:"tier"`
	LastFetched *time.Time `db:"last_fetched" json:"last_fetched"`
	PostCount   int        `db:"post_count" json:"post_count"`
	Active      bool       `db:"active" json:"active"`
}

type Post struct {
	ID          int64      `db:"id" json:"id"`
	SourceID    int64      `db:"source_id" json:"source_id"`
	Title       string     `db:"title" json:"title"`
	URL         string     `db:"url" json:"url"`
	Excerpt     string     `db:"excerpt" json:"excerpt"`
	Content     string     `db:"content" json:"content"`
	PublishedAt *time.Time `db:"published_at" json:"published_at"`
	FetchedAt   time.Time  `db:"fetched_at" json:"fetched_at"`
}

// PostWithSource is a post joined with its source's display fields.
type PostWithSource struct {
	Post
	SourceName     string `db:"source_name" json:"source_name"`
	SourceCategory string `db:"source_category" json:"source_category"`
	SourceTier     int    `db:"source_tier" json:"source_tier"`
}

// Stats are the aggregate corpus totals exposed by the sources endpoint.
type Stats struct {
	PostCount   int        `json:"post_count"`
	SourceCount int        `json:"source_count"`
	LastFetched *time.Time `json:"last_fetched"`
}
