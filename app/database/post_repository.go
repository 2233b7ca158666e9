package database

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// maxSourcePicks limits how many posts a single source may contribute to the
// default top-picks view, so a high-volume source cannot crowd out the rest.
const maxSourcePicks = 2

var _ PostRepository = (*PostRepo)(nil)

// PostRepo handles database operations for posts
type PostRepo struct {
	db *DB
}

func NewPostRepository(db *DB) *PostRepo {
	return &PostRepo{db: db}
}

// Insert stores a post, skipping it silently when the URL is already known.
// Returns true when a new row was created.
func (r *PostRepo) Insert(ctx context.Context, post NewPost) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO posts (source_id, title, url, excerpt, content, published_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, post.SourceID, post.Title, post.URL, post.Excerpt, post.Content, post.PublishedAt)
	if err != nil {
		return false, fmt.Errorf("failed to insert post: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}
	return affected > 0, nil
}

// List returns one page of posts matching the query, plus the total match
// count for pagination. Filters combine conjunctively; Tier filters sources
// at or above the given quality (tier <= value).
func (r *PostRepo) List(ctx context.Context, q PostQuery) ([]PostWithSource, int, error) {
	if q.Limit <= 0 {
		q.Limit = 24
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	offset := (q.Page - 1) * q.Limit

	if q.TopPicks {
		return r.listTopPicks(ctx, q.Limit, offset)
	}

	conditions := []string{}
	args := []any{}

	if q.Category != "" {
		conditions = append(conditions, "s.category = ?")
		args = append(args, q.Category)
	}
	if q.Tier > 0 {
		conditions = append(conditions, "s.tier <= ?")
		args = append(args, q.Tier)
	}
	if q.SourceID > 0 {
		conditions = append(conditions, "p.source_id = ?")
		args = append(args, q.SourceID)
	}

	from := "FROM posts p JOIN sources s ON s.id = p.source_id"
	if match := ftsQuery(q.Search); match != "" {
		from = `FROM posts_fts
			JOIN posts p ON p.id = posts_fts.rowid
			JOIN sources s ON s.id = p.source_id`
		conditions = append(conditions, "posts_fts MATCH ?")
		args = append(args, match)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s %s", from, where)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT p.id, p.source_id, p.title, p.url, p.excerpt, p.content,
		       p.published_at, p.fetched_at,
		       s.name AS source_name, s.category AS source_category, s.tier AS source_tier
		%s
		%s
		ORDER BY p.published_at DESC, p.id DESC
		LIMIT ? OFFSET ?
	`, from, where)
	args = append(args, q.Limit, offset)

	var posts []PostWithSource
	if err := r.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, total, nil
}

// listTopPicks applies the per-source diversity cap: each source contributes
// at most maxSourcePicks posts, ranked by recency within the source. The
// total reflects the capped result set, so page counts stay consistent with
// what is actually browsable.
func (r *PostRepo) listTopPicks(ctx context.Context, limit, offset int) ([]PostWithSource, int, error) {
	const ranked = `
		RankedPosts AS (
			SELECT p.id, p.source_id, p.title, p.url, p.excerpt, p.content,
			       p.published_at, p.fetched_at,
			       s.name AS source_name, s.category AS source_category, s.tier AS source_tier,
			       ROW_NUMBER() OVER (
			           PARTITION BY p.source_id
			           ORDER BY p.published_at DESC, p.id DESC
			       ) AS source_rank
			FROM posts p
			JOIN sources s ON s.id = p.source_id
			WHERE s.tier = 1
		)`

	var total int
	countQuery := fmt.Sprintf(`
		WITH %s
		SELECT COUNT(*) FROM RankedPosts WHERE source_rank <= ?
	`, ranked)
	if err := r.db.QueryRowContext(ctx, countQuery, maxSourcePicks).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count top picks: %w", err)
	}

	query := fmt.Sprintf(`
		WITH %s
		SELECT id, source_id, title, url, excerpt, content,
		       published_at, fetched_at,
		       source_name, source_category, source_tier
		FROM RankedPosts
		WHERE source_rank <= ?
		ORDER BY published_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, ranked)

	var posts []PostWithSource
	if err := r.db.SelectContext(ctx, &posts, query, maxSourcePicks, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list top picks: %w", err)
	}
	return posts, total, nil
}

// ftsQuery turns raw user input into a prefix-match FTS5 query. Quote and
// star characters are stripped so user input cannot change the query
// structure. Returns "" when nothing searchable remains.
func ftsQuery(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '\'', '"', '*':
			return -1
		}
		return r
	}, raw)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return ""
	}
	terms := strings.Fields(cleaned)
	for i, t := range terms {
		terms[i] = t + "*"
	}
	return strings.Join(terms, " ")
}

// PurgeOlderThan deletes posts published more than the given number of days
// ago and compacts the search index afterwards. Undated posts are kept.
func (r *PostRepo) PurgeOlderThan(ctx context.Context, days int) (int, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM posts WHERE published_at IS NOT NULL AND published_at < ?
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge old posts: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read purge result: %w", err)
	}

	if affected > 0 {
		if _, err := r.db.ExecContext(ctx, "INSERT INTO posts_fts(posts_fts) VALUES('optimize')"); err != nil {
			return int(affected), fmt.Errorf("failed to optimize search index: %w", err)
		}
	}
	return int(affected), nil
}

// Wipe removes every post and resets per-source counters. Sources themselves
// stay registered.
func (r *PostRepo) Wipe(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM posts"); err != nil {
		return fmt.Errorf("failed to wipe posts: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, "UPDATE sources SET post_count = 0, last_fetched = NULL"); err != nil {
		return fmt.Errorf("failed to reset source counters: %w", err)
	}
	return nil
}

// RecentTitles returns titles of posts published since the given time, newest
// first. Used by the trending ranker.
func (r *PostRepo) RecentTitles(ctx context.Context, since time.Time) ([]string, error) {
	var titles []string
	err := r.db.SelectContext(ctx, &titles, `
		SELECT title FROM posts
		WHERE published_at IS NOT NULL AND published_at >= ?
		ORDER BY published_at DESC
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent titles: %w", err)
	}
	return titles, nil
}

func (r *PostRepo) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM posts),
			(SELECT COUNT(*) FROM sources WHERE active = 1)
	`).Scan(&stats.PostCount, &stats.SourceCount)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}

	var last []time.Time
	err = r.db.SelectContext(ctx, &last, `
		SELECT last_fetched FROM sources
		WHERE last_fetched IS NOT NULL
		ORDER BY last_fetched DESC
		LIMIT 1
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load last fetch time: %w", err)
	}
	if len(last) > 0 {
		stats.LastFetched = &last[0]
	}
	return &stats, nil
}
