package middleware

import (
	"net/http"
	"time"

	"github.com/J0na555/ExitPrep/pkg/logger"
	"github.com/gin-gonic/gin"
)

// LoggingMiddleware writes one access line per request: Info below 400, Warn for
// client errors and Error for server errors. Errors attached with c.Error are
// logged separately.
func LoggingMiddleware(log logger.Log) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"route", c.FullPath(),
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if user, ok := CurrentUser(c); ok {
			fields = append(fields, "user_id", user.ID)
		}

		switch {
		case status >= http.StatusInternalServerError:
			log.Error("request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}

		for _, ginErr := range c.Errors {
			log.ErrorErr("request error", ginErr.Err, "method", c.Request.Method, "path", c.Request.URL.Path)
		}
	}
}
