package feed

import (
	"time"
)

// Source is one configured feed: the static input table consumed by the
// ingestion pipeline. Tier 1 is the curated set, tier 2 broader inclusion.
type Source struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Category string `yaml:"category"`
	Tier     int    `yaml:"tier"`
}

// Entry is a normalized feed item ready for excerpting and storage.
type Entry struct {
	Title       string
	Link        string
	PublishedAt *time.Time
	Content     string
}
