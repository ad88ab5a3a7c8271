package router

import (
	"net/http"

	"github.com/brightside-news/brightside-server/internal/auth"
	"github.com/brightside-news/brightside-server/internal/moderation"
	"github.com/brightside-news/brightside-server/internal/rotation"
	"github.com/labstack/echo/v4"
)

// AdminRouter binds the moderator surface: submission review and manual
// featured control. Every route sits behind the admin token middleware.
type AdminRouter struct {
	e          *echo.Echo
	verifier   auth.Verifier
	moderation *moderation.Service
	rotation   *rotation.Engine
}

func NewAdminRouter(e *echo.Echo, verifier auth.Verifier, m *moderation.Service, rot *rotation.Engine) *AdminRouter {
	return &AdminRouter{
		e:          e,
		verifier:   verifier,
		moderation: m,
		rotation:   rot,
	}
}

func (r *AdminRouter) Bind() {
	g := r.e.Group("/v1/admin", auth.RequireAdmin(r.verifier))
	g.POST("/submissions/:id/approve", r.approveHandler)
	g.POST("/submissions/:id/reject", r.rejectHandler)
	g.POST("/articles/:id/featured", r.featuredHandler)
}

type approveRequest struct {
	Note       string `json:"note"`
	RegionID   string `json:"regionId"`
	PublishNow bool   `json:"publishNow"`
}

func (r *AdminRouter) approveHandler(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)

	var req approveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	sub, err := r.moderation.Approve(c.Request().Context(), moderation.ApproveRequest{
		SubmissionID: c.Param("id"),
		ModeratorID:  caller.ID,
		Note:         req.Note,
		RegionID:     req.RegionID,
		PublishNow:   req.PublishNow,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sub)
}

type rejectRequest struct {
	Note string `json:"note"`
}

func (r *AdminRouter) rejectHandler(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)

	var req rejectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	sub, err := r.moderation.Reject(c.Request().Context(), moderation.RejectRequest{
		SubmissionID: c.Param("id"),
		ModeratorID:  caller.ID,
		Note:         req.Note,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sub)
}

type featuredRequest struct {
	Featured bool `json:"featured"`
}

func (r *AdminRouter) featuredHandler(c echo.Context) error {
	var req featuredRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := r.rotation.SetFeatured(c.Request().Context(), c.Param("id"), req.Featured); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"articleId": c.Param("id"), "featured": req.Featured})
}
