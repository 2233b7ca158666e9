package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./data/feeds.db" description:"Path to the SQLite database file"`

	// Application configuration
	Port            string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	SourcesFile     string `long:"sources-file" env:"SOURCES_FILE" description:"YAML file listing feed sources (embedded defaults when empty)"`
	Concurrency     int    `long:"concurrency" env:"CONCURRENCY" default:"8" description:"Number of concurrent feed fetches during ingestion"`
	RefreshInterval int    `long:"refresh-interval" env:"REFRESH_INTERVAL" default:"0" description:"Background refresh interval in minutes (0 disables)"`
	RefreshSecret   string `long:"refresh-secret" env:"REFRESH_SECRET" description:"Shared secret required by the refresh endpoint (optional)"`

	// One-shot ingestion mode
	Fetch bool `long:"fetch" description:"Run a single ingestion batch and exit instead of serving"`
	Tier  int  `long:"tier" description:"Limit ingestion to sources at or above this priority tier"`
	Wipe  bool `long:"wipe" description:"Clear all posts and source counters before fetching"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (compatible; TheFeed/1.0)" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:          raw.DBPath,
		Port:            raw.Port,
		SourcesFile:     raw.SourcesFile,
		Concurrency:     raw.Concurrency,
		RefreshInterval: raw.RefreshInterval,
		RefreshSecret:   raw.RefreshSecret,
		Fetch:           raw.Fetch,
		Tier:            raw.Tier,
		Wipe:            raw.Wipe,
		UserAgent:       raw.UserAgent,
		Timezone:        raw.Timezone,
		Debug:           raw.Debug,
		Version:         GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
