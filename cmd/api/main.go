package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/brightside-news/brightside-server/internal/api/router"
	apiserver "github.com/brightside-news/brightside-server/internal/api/server"
	"github.com/brightside-news/brightside-server/internal/auth"
	"github.com/brightside-news/brightside-server/internal/classify"
	"github.com/brightside-news/brightside-server/internal/config"
	"github.com/brightside-news/brightside-server/internal/digest"
	"github.com/brightside-news/brightside-server/internal/feed"
	"github.com/brightside-news/brightside-server/internal/ingest"
	"github.com/brightside-news/brightside-server/internal/likes"
	"github.com/brightside-news/brightside-server/internal/moderation"
	"github.com/brightside-news/brightside-server/internal/normalize"
	"github.com/brightside-news/brightside-server/internal/notify"
	"github.com/brightside-news/brightside-server/internal/rotation"
	"github.com/brightside-news/brightside-server/internal/storage/factory"
	pkgserver "github.com/brightside-news/brightside-server/pkg/server"
	"github.com/labstack/echo/v4"
)

func main() {
	slog.SetLogLoggerLevel(slog.LevelDebug)

	sCfg, err := apiserver.LoadConfig()
	if err != nil {
		slog.Error("Failed to load server config", "error", err)
		os.Exit(1)
	}

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

	st, err := factory.NewStore(context.Background(), cfg.Storage.Type, cfg.Storage.ConnStr)
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
	rotationEngine := rotation.NewEngine(st.Store, rotation.DefaultConfig())
	likeService := likes.NewService(st.Store)
	moderationService := moderation.NewService(st.Store, regions)
	digestComposer := digest.NewComposer(st.Store, notifier, regions)
	verifier := auth.NewStaticVerifier(cfg.AdminTokens)

	s := apiserver.New(sCfg, pkgserver.NewPingHealthChecker(st.Ping)).
		SetupMiddlewares().
		SetupErrorHandler().
		SetupHealthChecks("/health")

	s.Echo.GET("/", func(c echo.Context) error {
		return c.String(200, "BrightSide API is running")
	})

	router.NewLikeRouter(s.Echo, likeService).Bind()
	router.NewAdminRouter(s.Echo, verifier, moderationService, rotationEngine).Bind()
	router.NewJobRouter(s.Echo, verifier, orchestrator, rotationEngine, digestComposer).Bind()
	router.NewHealthRouter(s.Echo, st.Store).Bind()

	go func() {
		<-s.ShutdownSignal()
		slog.Info("Shutdown started, cleaning up resources...")
	}()

	if err := s.Start(); err != nil {
		s.Echo.Logger.Error("Failed to start server: ", err)
		os.Exit(1)
	}
}
