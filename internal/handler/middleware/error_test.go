//go:build unit

package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"slotbook/internal/handler/httperr"
	"slotbook/internal/handler/middleware"
	"slotbook/internal/pkg/errs"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureSlog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func newErrorRouter(status int, msg string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.GET("/boom", func(c *gin.Context) {
		httperr.AbortWithError(c, status, errs.New("backing store down"), msg, nil)
	})
	return router
}

func TestErrorHandlerLogsServerErrors(t *testing.T) {
	t.Run("5xx from an aborting handler is logged with its stack", func(t *testing.T) {
		buf := captureSlog(t)
		router := newErrorRouter(http.StatusServiceUnavailable, "Storage temporarily unavailable")

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.JSONEq(t, `{"error":{"message":"Storage temporarily unavailable"}}`, rec.Body.String())

		logged := buf.String()
		require.Contains(t, logged, "request failed")
		assert.Contains(t, logged, "status=503")
		assert.Contains(t, logged, "backing store down")
	})

	t.Run("4xx is not logged as a failure", func(t *testing.T) {
		buf := captureSlog(t)
		router := newErrorRouter(http.StatusConflict, "Slot no longer available")

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.NotContains(t, buf.String(), "request failed")
	})

	t.Run("response body is written exactly once", func(t *testing.T) {
		captureSlog(t)
		router := newErrorRouter(http.StatusInternalServerError, "Internal server error")

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

		// A doubled write would concatenate two JSON documents.
		assert.JSONEq(t, `{"error":{"message":"Internal server error"}}`, rec.Body.String())
	})
}
