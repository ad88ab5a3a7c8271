package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/brightside-news/brightside-server/internal/digest"
	"github.com/brightside-news/brightside-server/internal/domain"
	"github.com/brightside-news/brightside-server/internal/ingest"
	"github.com/brightside-news/brightside-server/internal/likes"
	"github.com/brightside-news/brightside-server/internal/rotation"
	"github.com/robfig/cron/v3"
)

// Job spec expressions, evaluated in each region's own timezone via the
// CRON_TZ prefix. Ingestion lands just before the editorial day cutover,
// rotation fires at the cutover, and the digest goes out once readers are
// awake.
const (
	ingestSpec   = "40 4 * * *"
	rotationSpec = "0 5 * * *"
	digestSpec   = "0 7 * * *"
	recountSpec  = "CRON_TZ=UTC 30 3 * * *"
)

// Scheduler owns the cron wiring for every background job. Each region gets
// its own ingest, rotation and digest entries; the like recount runs once
// globally.
type Scheduler struct {
	cron     *cron.Cron
	regions  *domain.Registry
	ingest   *ingest.Orchestrator
	rotation *rotation.Engine
	digest   *digest.Composer
	likes    *likes.Service
}

func New(
	regions *domain.Registry,
	ing *ingest.Orchestrator,
	rot *rotation.Engine,
	dig *digest.Composer,
	lk *likes.Service,
) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		regions:  regions,
		ingest:   ing,
		rotation: rot,
		digest:   dig,
		likes:    lk,
	}
}

// Register adds every job entry. Returns an error if any region carries a
// timezone the cron parser rejects.
func (s *Scheduler) Register() error {
	for _, region := range s.regions.All() {
		regionID := region.ID
		tz := region.TZ

		if _, err := s.cron.AddFunc(withTZ(tz, ingestSpec), func() {
			if _, err := s.ingest.RunIngest(context.Background(), regionID); err != nil {
				slog.Error("Scheduled ingest failed", "region", regionID, "error", err)
			}
		}); err != nil {
			return fmt.Errorf("register ingest for %s: %w", regionID, err)
		}

		if _, err := s.cron.AddFunc(withTZ(tz, rotationSpec), func() {
			if _, err := s.rotation.Rotate(context.Background(), regionID); err != nil {
				slog.Error("Scheduled rotation failed", "region", regionID, "error", err)
			}
		}); err != nil {
			return fmt.Errorf("register rotation for %s: %w", regionID, err)
		}

		if _, err := s.cron.AddFunc(withTZ(tz, digestSpec), func() {
			if _, err := s.digest.Run(context.Background(), regionID); err != nil {
				slog.Error("Scheduled digest failed", "region", regionID, "error", err)
			}
		}); err != nil {
			return fmt.Errorf("register digest for %s: %w", regionID, err)
		}
	}

	if _, err := s.cron.AddFunc(recountSpec, func() {
		if _, err := s.likes.Recount24h(context.Background()); err != nil {
			slog.Error("Scheduled like recount failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("register like recount: %w", err)
	}

	slog.Info("Scheduler registered", "regions", len(s.regions.All()), "entries", len(s.cron.Entries()))
	return nil
}

// Start runs the cron loop until ctx is canceled, then waits for in-flight
// jobs to finish.
func (s *Scheduler) Start(ctx context.Context) {
	s.cron.Start()
	slog.Info("Scheduler started")

	<-ctx.Done()

	slog.Info("Scheduler stopping, waiting for running jobs")
	<-s.cron.Stop().Done()
	slog.Info("Scheduler stopped")
}

func withTZ(tz, spec string) string {
	return "CRON_TZ=" + tz + " " + spec
}
