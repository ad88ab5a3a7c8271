package config

import (
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/brightside-news/brightside-server/internal/storage"
	"github.com/brightside-news/brightside-server/pkg/config/env"
)

// Config is the application-level configuration shared by the binaries.
// Server specifics (port, CORS) live with the api server package.
type Config struct {
	Storage StorageConfig
	Files   FileConfig
	Notify  NotifyConfig

	// AdminTokens maps bearer token -> moderator id.
	AdminTokens map[string]string
}

type StorageConfig struct {
	Type    storage.Type
	ConnStr string
}

// FileConfig points at the YAML files that describe regions, feed sources
// and the classifier keyword policy.
type FileConfig struct {
	Regions  string
	Sources  string
	Keywords string
}

type NotifyConfig struct {
	// WebhookURL is the push gateway endpoint. Empty means log-only
	// delivery.
	WebhookURL string
	// WebhookToken is sent as a bearer token with every delivery.
	WebhookToken string
}

// Load reads configuration from the environment, consulting a .env file
// first the way local development expects.
func Load() (*Config, error) {
	if err := env.LoadDotEnv(os.Getenv("APP_ENV"), ".env"); err != nil {
		slog.Info("Skipping .env ...", "error", err)
	}

	storageType := storage.Type(getEnvOr("STORAGE_TYPE", string(storage.PG)))
	connStr := os.Getenv("DATABASE_URL")
	if storageType == storage.PG && connStr == "" {
		return nil, errors.New("DATABASE_URL is required for pg storage")
	}

	cfg := &Config{
		Storage: StorageConfig{
			Type:    storageType,
			ConnStr: connStr,
		},
		Files: FileConfig{
			Regions:  getEnvOr("REGIONS_FILE", "configs/regions.yaml"),
			Sources:  getEnvOr("SOURCES_FILE", "configs/sources.yaml"),
			Keywords: getEnvOr("KEYWORDS_FILE", "configs/keywords.yaml"),
		},
		Notify: NotifyConfig{
			WebhookURL:   os.Getenv("NOTIFY_WEBHOOK_URL"),
			WebhookToken: os.Getenv("NOTIFY_WEBHOOK_TOKEN"),
		},
		AdminTokens: parseAdminTokens(os.Getenv("ADMIN_TOKENS")),
	}
	return cfg, nil
}

// parseAdminTokens parses "token:moderator,token2:moderator2". A bare token
// without a moderator id is ignored.
func parseAdminTokens(raw string) map[string]string {
	tokens := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		token, moderator, found := strings.Cut(strings.TrimSpace(pair), ":")
		if !found || token == "" || moderator == "" {
			continue
		}
		tokens[token] = moderator
	}
	return tokens
}

func getEnvOr(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}
