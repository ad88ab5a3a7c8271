package pg

import (
	"context"
	"fmt"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS articles (
    id               TEXT PRIMARY KEY,
    region_id        TEXT NOT NULL,
    title            TEXT NOT NULL,
    summary          TEXT NOT NULL DEFAULT '',
    source_name      TEXT NOT NULL DEFAULT '',
    source_url       TEXT NOT NULL DEFAULT '',
    image_url        TEXT NOT NULL DEFAULT '',
    status           TEXT NOT NULL DEFAULT 'published',
    publish_time     TIMESTAMPTZ NOT NULL,
    is_featured      BOOLEAN NOT NULL DEFAULT FALSE,
    featured_start   TIMESTAMPTZ,
    featured_end     TIMESTAMPTZ,
    like_count_total INTEGER NOT NULL DEFAULT 0,
    like_count_24h   INTEGER NOT NULL DEFAULT 0,
    hot_score        DOUBLE PRECISION NOT NULL DEFAULT 0,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_articles_region_publish ON articles (region_id, publish_time DESC);
CREATE INDEX IF NOT EXISTS idx_articles_region_created ON articles (region_id, created_at);
CREATE INDEX IF NOT EXISTS idx_articles_region_featured ON articles (region_id) WHERE is_featured;
CREATE INDEX IF NOT EXISTS idx_articles_source_url ON articles (source_url);

CREATE TABLE IF NOT EXISTS article_likes (
    user_id    TEXT NOT NULL,
    article_id TEXT NOT NULL REFERENCES articles (id) ON DELETE CASCADE,
    region_id  TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (user_id, article_id)
);

CREATE INDEX IF NOT EXISTS idx_article_likes_created ON article_likes (created_at);

CREATE TABLE IF NOT EXISTS submissions (
    id             TEXT PRIMARY KEY,
    user_id        TEXT NOT NULL,
    title          TEXT NOT NULL,
    description    TEXT NOT NULL DEFAULT '',
    city           TEXT NOT NULL DEFAULT '',
    state          TEXT NOT NULL DEFAULT '',
    photo_url      TEXT NOT NULL DEFAULT '',
    status         TEXT NOT NULL DEFAULT 'pending',
    moderator_id   TEXT NOT NULL DEFAULT '',
    moderator_note TEXT NOT NULL DEFAULT '',
    article_id     TEXT NOT NULL DEFAULT '',
    moderated_at   TIMESTAMPTZ,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sources (
    region_id TEXT NOT NULL,
    feed_url  TEXT NOT NULL,
    name      TEXT NOT NULL,
    weight    INTEGER NOT NULL DEFAULT 1,
    active    BOOLEAN NOT NULL DEFAULT TRUE,
    PRIMARY KEY (region_id, feed_url)
);

CREATE TABLE IF NOT EXISTS region_health (
    region_id         TEXT PRIMARY KEY,
    status            TEXT NOT NULL DEFAULT 'ok',
    error             TEXT NOT NULL DEFAULT '',
    last_ingest_at    TIMESTAMPTZ,
    last_ingest_count INTEGER NOT NULL DEFAULT 0,
    count_today       INTEGER NOT NULL DEFAULT 0,
    source_metrics    JSONB,
    last_rotation_at  TIMESTAMPTZ,
    last_digest_at    TIMESTAMPTZ,
    last_digest_size  INTEGER NOT NULL DEFAULT 0,
    updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Migrate bootstraps the schema. All statements are idempotent so it is safe
// to run on every startup.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
