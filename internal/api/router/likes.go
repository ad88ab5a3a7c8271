package router

import (
	"net/http"

	"github.com/brightside-news/brightside-server/internal/likes"
	"github.com/labstack/echo/v4"
)

type LikeRouter struct {
	e       *echo.Echo
	service *likes.Service
}

func NewLikeRouter(e *echo.Echo, service *likes.Service) *LikeRouter {
	return &LikeRouter{
		e:       e,
		service: service,
	}
}

func (r *LikeRouter) Bind() {
	r.e.POST("/v1/articles/:id/like", r.toggleHandler)
}

type toggleLikeRequest struct {
	UserID string `json:"userId"`
}

func (r *LikeRouter) toggleHandler(c echo.Context) error {
	var req toggleLikeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := r.service.Toggle(c.Request().Context(), req.UserID, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}
