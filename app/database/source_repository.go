package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

var _ SourceRepository = (*SourceRepo)(nil)

// SourceRepo handles database operations for sources
type SourceRepo struct {
	db *DB
}

func NewSourceRepository(db *DB) *SourceRepo {
	return &SourceRepo{db: db}
}

// GetOrCreate registers a source by URL, returning the existing row's id when
// the URL is already known. Registration is idempotent.
func (r *SourceRepo) GetOrCreate(ctx context.Context, name, url, category string, tier int) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, "SELECT id FROM sources WHERE url = ?", url).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to look up source by URL: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO sources (name, url, category, tier)
		VALUES (?, ?, ?, ?)
	`, name, url, category, tier)
	if err != nil {
		return 0, fmt.Errorf("failed to insert source: %w", err)
	}

	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted source id: %w", err)
	}
	return id, nil
}

func (r *SourceRepo) Get(ctx context.Context, id int64) (*Source, error) {
	var source Source
	err := r.db.GetContext(ctx, &source, `
		SELECT id, name, url, category, tier, last_fetched, post_count, active
		FROM sources
		WHERE id = ?
	`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source %d: %w", id, err)
	}
	return &source, nil
}

// ListActive returns visible sources with live post counts, ordered by tier
// then name.
func (r *SourceRepo) ListActive(ctx context.Context) ([]Source, error) {
	var sources []Source
	err := r.db.SelectContext(ctx, &sources, `
		SELECT s.id, s.name, s.url, s.category, s.tier, s.last_fetched,
		       COUNT(p.id) AS post_count, s.active
		FROM sources s
		LEFT JOIN posts p ON p.source_id = s.id
		WHERE s.active = 1
		GROUP BY s.id
		ORDER BY s.tier ASC, s.name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active sources: %w", err)
	}
	return sources, nil
}

// UpdateFetchStats records a successful batch: bumps post_count by the number
// of newly inserted rows and stamps last_fetched. Callers skip this when a
// run inserted nothing, so "checked, nothing new" leaves bookkeeping alone.
func (r *SourceRepo) UpdateFetchStats(ctx context.Context, id int64, inserted int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sources
		SET last_fetched = ?, post_count = post_count + ?
		WHERE id = ?
	`, time.Now().UTC(), inserted, id)
	if err != nil {
		return fmt.Errorf("failed to update source fetch stats: %w", err)
	}
	return nil
}

func (r *SourceRepo) ActiveCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sources WHERE active = 1").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active sources: %w", err)
	}
	return count, nil
}
