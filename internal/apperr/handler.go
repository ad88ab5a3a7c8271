package apperr

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// GlobalErrorHandler maps the typed error taxonomy to HTTP responses.
// Admin-facing errors surface their message; anything unclassified becomes a
// generic 500 so internal detail never leaks to callers.
func GlobalErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var ve *ValidationError
		if errors.As(err, &ve) {
			_ = c.JSON(http.StatusBadRequest, map[string]string{"error": ve.Message, "title": "validation error"})
			return
		}

		var nf *NotFoundError
		if errors.As(err, &nf) {
			_ = c.JSON(http.StatusNotFound, map[string]string{"error": nf.Message, "title": "not found"})
			return
		}

		var pe *PermissionError
		if errors.As(err, &pe) {
			_ = c.JSON(http.StatusForbidden, map[string]string{"error": pe.Message, "title": "permission denied"})
			return
		}

		var pre *PreconditionError
		if errors.As(err, &pre) {
			_ = c.JSON(http.StatusConflict, map[string]string{"error": pre.Message, "title": "precondition failed"})
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg := fmt.Sprintf("%v", he.Message)
			_ = c.JSON(he.Code, map[string]string{"error": msg})
			return
		}

		slog.Error("Unhandled error", "error", err)
		_ = c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
