package auth

import (
	"strings"

	"github.com/brightside-news/brightside-server/internal/apperr"
	"github.com/labstack/echo/v4"
)

const principalKey = "auth.principal"

// Principal identifies the authenticated caller of an admin endpoint.
type Principal struct {
	ID    string
	Admin bool
}

// Verifier resolves a bearer token to a principal.
type Verifier interface {
	Verify(token string) (Principal, bool)
}

// StaticVerifier resolves tokens from a fixed token -> moderator map,
// loaded from configuration. Every configured token is an admin.
type StaticVerifier struct {
	tokens map[string]string
}

func NewStaticVerifier(tokens map[string]string) *StaticVerifier {
	return &StaticVerifier{tokens: tokens}
}

func (v *StaticVerifier) Verify(token string) (Principal, bool) {
	id, ok := v.tokens[token]
	if !ok {
		return Principal{}, false
	}
	return Principal{ID: id, Admin: true}, true
}

// RequireAdmin gates a route group on a valid admin bearer token and
// stashes the principal in the request context.
func RequireAdmin(verifier Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				return apperr.NewPermission("missing bearer token")
			}
			principal, ok := verifier.Verify(token)
			if !ok || !principal.Admin {
				return apperr.NewPermission("admin access required")
			}
			c.Set(principalKey, principal)
			return next(c)
		}
	}
}

// CallerFrom returns the principal stashed by RequireAdmin.
func CallerFrom(c echo.Context) (Principal, bool) {
	principal, ok := c.Get(principalKey).(Principal)
	return principal, ok
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
