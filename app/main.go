package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thefeedhq/thefeed/app/api"
	"github.com/thefeedhq/thefeed/app/cfg"
	"github.com/thefeedhq/thefeed/app/database"
	"github.com/thefeedhq/thefeed/app/extract"
	"github.com/thefeedhq/thefeed/app/feed"
	"github.com/thefeedhq/thefeed/app/ingest"
	"github.com/thefeedhq/thefeed/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	slog.Info("Starting The Feed", "version", cfg.GetVersion())

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	sources, err := feed.LoadSources(appCfg.SourcesFile)
	if err != nil {
		slog.Error("Failed to load sources", "file", appCfg.SourcesFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded source list", "count", len(sources))

	sourceRepo := database.NewSourceRepository(db)
	postRepo := database.NewPostRepository(db)
	runner := ingest.NewRunner(sourceRepo, postRepo, appCfg.UserAgent, logger)

	if appCfg.Fetch {
		runFetch(runner, sources, appCfg)
		return
	}

	refreshInterval := time.Duration(appCfg.RefreshInterval) * time.Minute
	scheduler := tasks.NewScheduler(runner, sources, refreshInterval, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go scheduler.Start(ctx)

	extractor := extract.New(appCfg.UserAgent)
	handler := api.NewHandler(sourceRepo, postRepo, extractor, scheduler, appCfg.RefreshSecret)
	server := api.NewServer(handler)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("Shutdown complete")
}

// runFetch is the one-shot ingestion mode: fetch everything, print a
// summary, exit. Suited to cron and CI environments.
func runFetch(runner *ingest.Runner, sources []feed.Source, appCfg *cfg.Cfg) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	summary, err := runner.Run(ctx, sources, ingest.Options{
		Concurrency: appCfg.Concurrency,
		TierLimit:   appCfg.Tier,
		Wipe:        appCfg.Wipe,
		PurgeFirst:  !appCfg.Wipe,
		OnProgress: func(done, total int, name string) {
			fmt.Printf("[%d/%d] %s\n", done, total, name)
		},
	})
	if err != nil {
		slog.Error("Fetch run failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Done: %d sources, %d new posts, %d errors\n",
		summary.SourcesFetched, summary.TotalInserted, summary.ErrorCount)
	if summary.ErrorCount > 0 {
		os.Exit(2)
	}
}
