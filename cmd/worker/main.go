package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/brightside-news/brightside-server/internal/classify"
	"github.com/brightside-news/brightside-server/internal/config"
	"github.com/brightside-news/brightside-server/internal/digest"
	"github.com/brightside-news/brightside-server/internal/feed"
	"github.com/brightside-news/brightside-server/internal/ingest"
	"github.com/brightside-news/brightside-server/internal/likes"
	"github.com/brightside-news/brightside-server/internal/normalize"
	"github.com/brightside-news/brightside-server/internal/notify"
	"github.com/brightside-news/brightside-server/internal/rotation"
	"github.com/brightside-news/brightside-server/internal/scheduler"
	"github.com/brightside-news/brightside-server/internal/storage/factory"
)

func main() {
	slog.SetLogLoggerLevel(slog.LevelInfo)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load app configuration", "error", err)
		os.Exit(1)
	}

	regions, err := config.LoadRegions(cfg.Files.Regions)
	if err != nil {
		slog.Error("Failed to load regions", "error", err)
		os.Exit(1)
	}

	policy, err := classify.LoadPolicy(cfg.Files.Keywords)
	if err != nil {
		slog.Warn("Keyword policy not loaded, using defaults", "error", err)
		policy = classify.DefaultPolicy()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := factory.NewStore(ctx, cfg.Storage.Type, cfg.Storage.ConnStr)
	if err != nil {
		slog.Error("Failed to create storage", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	var notifier notify.Notifier
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.Notify.WebhookURL,
			notify.WithHeader("Authorization", "Bearer "+cfg.Notify.WebhookToken))
	} else {
		notifier = notify.NewLogNotifier()
	}

	orchestrator := ingest.NewOrchestrator(
		st.Store,
		feed.NewFetcher(0),
		classify.NewClassifier(policy),
		normalize.NewNormalizer(),
		regions,
		ingest.DefaultConfig(),
	)

	sched := scheduler.New(
		regions,
		orchestrator,
		rotation.NewEngine(st.Store, rotation.DefaultConfig()),
		digest.NewComposer(st.Store, notifier, regions),
		likes.NewService(st.Store),
	)
	if err := sched.Register(); err != nil {
		slog.Error("Failed to register scheduled jobs", "error", err)
		os.Exit(1)
	}

	sched.Start(ctx)
}
