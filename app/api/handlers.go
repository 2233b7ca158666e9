package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thefeedhq/thefeed/app/database"
	"github.com/thefeedhq/thefeed/app/extract"
	"github.com/thefeedhq/thefeed/app/tasks"
	"github.com/thefeedhq/thefeed/app/trending"
)

const (
	defaultPageSize = 24
	maxPageSize     = 48

	// trendingWindow is how far back keyword ranking looks.
	trendingWindow = 48 * time.Hour
)

func NewHandler(sourceRepo database.SourceRepository, postRepo database.PostRepository,
	extractor ExtractorInterface, refresher RefresherInterface, refreshSecret string) *Handler {
	return &Handler{
		sourceRepo:    sourceRepo,
		postRepo:      postRepo,
		extractor:     extractor,
		refresher:     refresher,
		refreshSecret: refreshSecret,
	}
}

func (h *Handler) GetPosts(c *gin.Context) {
	query := database.PostQuery{
		Page:     intParam(c, "page", 1),
		Limit:    intParam(c, "limit", defaultPageSize),
		Category: c.Query("category"),
		Tier:     intParam(c, "tier", 0),
		SourceID: int64(intParam(c, "sourceId", 0)),
		Search:   c.Query("q"),
	}
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 {
		query.Limit = 1
	}
	if query.Limit > maxPageSize {
		query.Limit = maxPageSize
	}

	// The default front-page request is the curated view: tier 1, no
	// filters, no search. Only that shape gets the per-source diversity
	// cap, so filtered and searched listings stay exhaustive.
	query.TopPicks = query.Search == "" && query.Category == "" &&
		query.SourceID == 0 && query.Tier == 1 && query.Limit <= defaultPageSize

	posts, total, err := h.postRepo.List(c.Request.Context(), query)
	if err != nil {
		slog.Error("Database error", "operation", "list_posts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if posts == nil {
		posts = []database.PostWithSource{}
	}

	pages := 0
	if total > 0 {
		pages = (total + query.Limit - 1) / query.Limit
	}

	c.JSON(http.StatusOK, gin.H{
		"posts": posts,
		"total": total,
		"page":  query.Page,
		"pages": pages,
		"limit": query.Limit,
	})
}

func (h *Handler) GetContent(c *gin.Context) {
	pageURL := c.Query("url")
	if pageURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing url parameter"})
		return
	}

	result, err := h.extractor.Extract(c.Request.Context(), pageURL)
	if err != nil {
		var fetchErr *extract.FetchError
		switch {
		case errors.As(err, &fetchErr):
			slog.Error("Upstream fetch failed", "url", pageURL, "status", fetchErr.Status)
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch article"})
		case errors.Is(err, extract.ErrNoArticle):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "No readable content found"})
		default:
			slog.Error("Extraction error", "url", pageURL, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Extraction failed"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) PostRefresh(c *gin.Context) {
	// The secret gates the endpoint only when one is configured; without it
	// the endpoint stays open, which is the expected default for local use.
	if h.refreshSecret != "" && c.Query("secret") != h.refreshSecret {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh secret"})
		return
	}

	tier := intParam(c, "tier", 0)
	summary, err := h.refresher.Refresh(c.Request.Context(), tier)
	if err != nil {
		if errors.Is(err, tasks.ErrRefreshInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": "Refresh already in progress"})
			return
		}
		slog.Error("Refresh failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Refresh failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":            true,
		"sources":       summary.SourcesFetched,
		"totalInserted": summary.TotalInserted,
		"errorCount":    summary.ErrorCount,
		"purged":        summary.Purged,
	})
}

func (h *Handler) GetSources(c *gin.Context) {
	ctx := c.Request.Context()

	sources, err := h.sourceRepo.ListActive(ctx)
	if err != nil {
		slog.Error("Database error", "operation", "list_sources", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if sources == nil {
		sources = []database.Source{}
	}

	stats, err := h.postRepo.GetStats(ctx)
	if err != nil {
		slog.Error("Database error", "operation", "get_stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sources":  sources,
		"stats":    stats,
		"trending": h.trendingKeywords(c),
	})
}

func (h *Handler) GetTrending(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"keywords": h.trendingKeywords(c),
	})
}

func (h *Handler) trendingKeywords(c *gin.Context) []trending.Keyword {
	titles, err := h.postRepo.RecentTitles(c.Request.Context(), time.Now().UTC().Add(-trendingWindow))
	if err != nil {
		slog.Error("Database error", "operation", "recent_titles", "error", err)
		return []trending.Keyword{}
	}
	keywords := trending.Rank(titles, trending.DefaultLimit)
	if keywords == nil {
		keywords = []trending.Keyword{}
	}
	return keywords
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if count, err := h.sourceRepo.ActiveCount(c.Request.Context()); err == nil {
		health["sources"] = count
	}
	if stats, err := h.postRepo.GetStats(c.Request.Context()); err == nil {
		health["posts"] = stats.PostCount
	}

	c.JSON(http.StatusOK, health)
}

func intParam(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
