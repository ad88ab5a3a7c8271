package router

import (
	"net/http"

	"github.com/brightside-news/brightside-server/internal/storage"
	"github.com/labstack/echo/v4"
)

// HealthRouter serves the per-region pipeline status written by the jobs.
type HealthRouter struct {
	e     *echo.Echo
	store storage.HealthStore
}

func NewHealthRouter(e *echo.Echo, store storage.HealthStore) *HealthRouter {
	return &HealthRouter{
		e:     e,
		store: store,
	}
}

func (r *HealthRouter) Bind() {
	r.e.GET("/v1/regions/:region/health", r.regionHandler)
}

func (r *HealthRouter) regionHandler(c echo.Context) error {
	rec, err := r.store.GetHealth(c.Request().Context(), c.Param("region"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}
