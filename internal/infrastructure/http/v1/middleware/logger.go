package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"erpledger/pkg/logger"
)

// Logger logs one line per request. Server errors log at error level and
// rejected commands at warn; probe and scrape traffic only at debug.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		l := log.WithContext(c.Request.Context())
		kv := []any{
			"method", c.Request.Method,
			"path", path,
			"route", c.FullPath(),
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"bytes", c.Writer.Size(),
			"client_ip", c.ClientIP(),
		}
		if c.Writer.Header().Get("Idempotent-Replayed") == "true" {
			kv = append(kv, "replayed", true)
		}
		if errs := c.Errors.String(); errs != "" {
			kv = append(kv, "error", errs)
		}

		switch {
		case status >= http.StatusInternalServerError:
			l.Errorw("http request", kv...)
		case status >= http.StatusBadRequest:
			l.Warnw("http request", kv...)
		case strings.HasPrefix(path, "/health") || path == "/metrics":
			l.Debugw("http request", kv...)
		default:
			l.Infow("http request", kv...)
		}
	}
}
