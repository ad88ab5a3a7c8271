package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/brightside-news/brightside-server/internal/config"
	"github.com/brightside-news/brightside-server/internal/storage/factory"
)

// Seeds the sources table from the YAML source definitions. Run once per
// environment and again whenever the source list changes; the upsert makes
// repeat runs safe.
func main() {
	slog.SetLogLoggerLevel(slog.LevelInfo)

	sourcesPath := flag.String("sources", "", "path to sources YAML (defaults to SOURCES_FILE)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load app configuration", "error", err)
		os.Exit(1)
	}

	path := *sourcesPath
	if path == "" {
		path = cfg.Files.Sources
	}

	sources, err := config.LoadSources(path)
	if err != nil {
		slog.Error("Failed to load sources", "path", path, "error", err)
		os.Exit(1)
	}

	regions, err := config.LoadRegions(cfg.Files.Regions)
	if err != nil {
		slog.Error("Failed to load regions", "error", err)
		os.Exit(1)
	}
	for _, src := range sources {
		if _, ok := regions.Get(src.RegionID); !ok {
			slog.Error("Source references unknown region", "source", src.Name, "region", src.RegionID)
			os.Exit(1)
		}
	}

	ctx := context.Background()
	st, err := factory.NewStore(ctx, cfg.Storage.Type, cfg.Storage.ConnStr)
	if err != nil {
		slog.Error("Failed to create storage", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := st.Store.UpsertSources(ctx, sources); err != nil {
		slog.Error("Failed to upsert sources", "error", err)
		os.Exit(1)
	}

	slog.Info("Sources seeded", "count", len(sources), "path", path)
}
