package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brightside-news/brightside-server/internal/apperr"
	"github.com/brightside-news/brightside-server/internal/domain"
	"github.com/brightside-news/brightside-server/internal/likes"
	"github.com/brightside-news/brightside-server/internal/storage/memory"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(store *memory.Store) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = apperr.GlobalErrorHandler()
	NewLikeRouter(e, likes.NewService(store)).Bind()
	return e
}

func TestToggleHandler(t *testing.T) {
	store := memory.NewStore()
	store.SeedArticles(domain.Article{
		ID:          "a1",
		RegionID:    "slc",
		Status:      domain.StatusPublished,
		PublishTime: time.Now().Add(-time.Hour),
		CreatedAt:   time.Now().Add(-time.Hour),
	})
	e := testServer(store)

	req := httptest.NewRequest(http.MethodPost, "/v1/articles/a1/like", strings.NewReader(`{"userId":"u1"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"liked":true,"likeCount":1}`, rec.Body.String())

	// Toggling again removes the like.
	req = httptest.NewRequest(http.MethodPost, "/v1/articles/a1/like", strings.NewReader(`{"userId":"u1"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"liked":false,"likeCount":0}`, rec.Body.String())
}

func TestToggleHandler_Errors(t *testing.T) {
	e := testServer(memory.NewStore())

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
	}{
		{"missing user id", "/v1/articles/a1/like", `{}`, http.StatusBadRequest},
		{"unknown article", "/v1/articles/ghost/like", `{"userId":"u1"}`, http.StatusNotFound},
		{"malformed body", "/v1/articles/a1/like", `{not json`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
