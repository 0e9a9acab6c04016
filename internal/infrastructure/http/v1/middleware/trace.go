package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	appctx "erpledger/internal/core/context"
	"erpledger/internal/core/id"
)

const (
	HeaderRequestID   = "X-Request-ID"
	HeaderTraceID     = "X-Trace-ID"
	HeaderTraceParent = "traceparent"

	maxClientIDLen = 128
)

// Trace attaches request and trace ids to the request context. A trace id
// from X-Trace-ID wins over one from a W3C traceparent header; otherwise a
// UUIDv7 is generated so ids sort by arrival.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := clientID(c.GetHeader(HeaderRequestID))
		if requestID == "" {
			requestID = id.NewUUID()
		}

		traceID := clientID(c.GetHeader(HeaderTraceID))
		if traceID == "" {
			traceID = traceIDFromParent(c.GetHeader(HeaderTraceParent))
		}
		if traceID == "" {
			traceID = id.NewUUID()
		}

		ctx := appctx.WithTrace(c.Request.Context(), &appctx.TraceContext{
			TraceID:   traceID,
			RequestID: requestID,
		})
		c.Request = c.Request.WithContext(ctx)

		c.Header(HeaderRequestID, requestID)
		c.Header(HeaderTraceID, traceID)

		c.Next()
	}
}

// clientID drops ids that are too long or contain whitespace.
func clientID(v string) string {
	v = strings.TrimSpace(v)
	if len(v) > maxClientIDLen || strings.ContainsAny(v, " \t\r\n") {
		return ""
	}
	return v
}

// traceIDFromParent extracts the trace-id field of "00-<trace-id>-<span-id>-<flags>".
func traceIDFromParent(header string) string {
	parts := strings.Split(strings.TrimSpace(header), "-")
	if len(parts) != 4 || len(parts[1]) != 32 {
		return ""
	}
	if strings.Trim(parts[1], "0") == "" {
		return ""
	}
	for _, r := range parts[1] {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return ""
		}
	}
	return parts[1]
}
