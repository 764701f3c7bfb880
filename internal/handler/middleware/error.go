package middleware

import (
	"log/slog"
	"net/http"

	"slotbook/internal/handler/httperr"
	"slotbook/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Newest public error wins. Logging runs before the Written check:
		// handlers that abort have already written the envelope, but a 5xx
		// must still leave its stack in the log.
		for i := len(c.Errors) - 1; i >= 0; i-- {
			err := c.Errors[i]
			if err.IsType(gin.ErrorTypePublic) {
				if resp, ok := err.Meta.(httperr.Response); ok {
					if resp.Status >= http.StatusInternalServerError {
						slog.Error("request failed",
							"path", c.Request.URL.Path,
							"status", resp.Status,
							"stack", errs.ExtractStackLines(err.Err, 8),
						)
					}
					if !c.Writer.Written() {
						c.JSON(resp.Status, resp)
					}
					return
				}
			}
		}

		if c.Writer.Written() {
			return
		}
		if status := c.Writer.Status(); status != http.StatusOK {
			c.Status(status)
			c.Writer.WriteHeaderNow()
			return
		}
		c.JSON(http.StatusInternalServerError, httperr.NewResponse(http.StatusInternalServerError, "Internal server error", nil))
	}
}

func CustomRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("recovered from panic", "error", err, "path", c.Request.URL.Path)
				c.JSON(http.StatusInternalServerError, httperr.NewResponse(http.StatusInternalServerError, "Internal server error", nil))
				c.Abort()
			}
		}()
		c.Next()
	}
}
