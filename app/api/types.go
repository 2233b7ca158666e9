package api

import (
	"context"

	"github.com/thefeedhq/thefeed/app/database"
	"github.com/thefeedhq/thefeed/app/extract"
	"github.com/thefeedhq/thefeed/app/ingest"
	"github.com/thefeedhq/thefeed/app/tasks"
)

type ExtractorInterface interface {
	Extract(ctx context.Context, pageURL string) (*extract.Result, error)
}

var _ ExtractorInterface = (*extract.Extractor)(nil)

type RefresherInterface interface {
	Refresh(ctx context.Context, tier int) (ingest.Summary, error)
}

var _ RefresherInterface = (*tasks.Scheduler)(nil)

type Handler struct {
	sourceRepo    database.SourceRepository
	postRepo      database.PostRepository
	extractor     ExtractorInterface
	refresher     RefresherInterface
	refreshSecret string
}
