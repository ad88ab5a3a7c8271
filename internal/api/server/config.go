package server

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/brightside-news/brightside-server/pkg/config/env"
	"github.com/brightside-news/brightside-server/pkg/stringsutil"
)

const (
	defaultPort            = "8080"
	defaultShutdownTimeout = 10 * time.Second
)

type Config struct {
	Port            string
	UseHttp2        bool
	CorsOrigins     []string
	ShutdownTimeout time.Duration
}

// LoadConfig reads the HTTP server settings from the environment. CORS
// defaults to wildcard so a local client works without setup.
func LoadConfig() (*Config, error) {
	if err := env.LoadDotEnv(os.Getenv("APP_ENV"), "cmd/api/.env"); err != nil {
		slog.Info("Skipping .env ...", "error", err)
	}

	cfg := &Config{
		Port:            defaultPort,
		UseHttp2:        os.Getenv("USE_HTTP2") == "true",
		CorsOrigins:     stringsutil.SplitAndTrim(os.Getenv("CORS_ORIGINS"), ","),
		ShutdownTimeout: defaultShutdownTimeout,
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}
	if n, err := strconv.Atoi(cfg.Port); err != nil || n < 1 || n > 65535 {
		return nil, fmt.Errorf("invalid port %q", cfg.Port)
	}

	if raw := os.Getenv("SHUTDOWN_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
		}
		cfg.ShutdownTimeout = d
	}

	if len(cfg.CorsOrigins) == 0 {
		cfg.CorsOrigins = []string{"*"}
	}
	return cfg, nil
}
