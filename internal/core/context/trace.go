package context

import (
	"context"

	"erpledger/internal/core/id"
)

// TraceContext identifies one inbound command. IdempotencyKey is set when the
// client supplied one, so retried commands can be matched in the logs.
type TraceContext struct {
	TraceID        string
	RequestID      string
	IdempotencyKey string
}

type traceContextKey struct{}

// WithTrace adds TraceContext to context.
func WithTrace(ctx context.Context, trace *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, trace)
}

// GetTrace returns TraceContext from context.
func GetTrace(ctx context.Context) *TraceContext {
	if v, ok := ctx.Value(traceContextKey{}).(*TraceContext); ok {
		return v
	}
	return nil
}

// GetRequestID returns request ID from context or empty string.
func GetRequestID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.RequestID
	}
	return ""
}

// NewTraceContext creates a new TraceContext with generated IDs.
func NewTraceContext() *TraceContext {
	return &TraceContext{
		TraceID:   id.NewUUID(),
		RequestID: id.NewUUID(),
	}
}

// Correlation names the business document a use case is moving stock for.
// It mirrors the correlation fields of the ledger entries the use case writes.
type Correlation struct {
	Type string
	ID   string
}

type correlationKey struct{}

// WithCorrelation scopes ctx to one document. The innermost call wins.
func WithCorrelation(ctx context.Context, typ, docID string) context.Context {
	return context.WithValue(ctx, correlationKey{}, Correlation{Type: typ, ID: docID})
}

// GetCorrelation returns the document ctx is scoped to.
func GetCorrelation(ctx context.Context) (Correlation, bool) {
	c, ok := ctx.Value(correlationKey{}).(Correlation)
	return c, ok
}
