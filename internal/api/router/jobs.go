package router

import (
	"net/http"

	"github.com/brightside-news/brightside-server/internal/auth"
	"github.com/brightside-news/brightside-server/internal/digest"
	"github.com/brightside-news/brightside-server/internal/ingest"
	"github.com/brightside-news/brightside-server/internal/rotation"
	"github.com/labstack/echo/v4"
)

// JobRouter exposes the scheduled jobs as admin-triggered endpoints, for
// smoke tests and manual re-runs after an outage.
type JobRouter struct {
	e        *echo.Echo
	verifier auth.Verifier
	ingest   *ingest.Orchestrator
	rotation *rotation.Engine
	digest   *digest.Composer
}

func NewJobRouter(e *echo.Echo, verifier auth.Verifier, ing *ingest.Orchestrator, rot *rotation.Engine, dig *digest.Composer) *JobRouter {
	return &JobRouter{
		e:        e,
		verifier: verifier,
		ingest:   ing,
		rotation: rot,
		digest:   dig,
	}
}

func (r *JobRouter) Bind() {
	g := r.e.Group("/v1/admin/jobs", auth.RequireAdmin(r.verifier))
	g.POST("/ingest/:region", r.ingestHandler)
	g.POST("/rotate/:region", r.rotateHandler)
	g.POST("/digest/:region", r.digestHandler)
}

func (r *JobRouter) ingestHandler(c echo.Context) error {
	written, err := r.ingest.RunIngest(c.Request().Context(), c.Param("region"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"region": c.Param("region"), "written": written})
}

func (r *JobRouter) rotateHandler(c echo.Context) error {
	featured, err := r.rotation.Rotate(c.Request().Context(), c.Param("region"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"region": c.Param("region"), "featured": featured})
}

func (r *JobRouter) digestHandler(c echo.Context) error {
	size, err := r.digest.Run(c.Request().Context(), c.Param("region"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"region": c.Param("region"), "articles": size})
}
