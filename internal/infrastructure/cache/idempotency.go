// Package cache holds idempotency records for mutating HTTP commands.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"erpledger/internal/core/apperror"
)

// Status represents the state of an idempotent operation.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// StalePendingAfter is how long a pending key may sit before another
// request may reclaim it (the first request most likely crashed).
const StalePendingAfter = time.Minute

// Record stores the result of an idempotent operation.
type Record struct {
	Key         string    `json:"key"`
	UserID      string    `json:"userId"`
	Operation   string    `json:"operation"`
	RequestHash string    `json:"requestHash"`
	Status      Status    `json:"status"`
	Response    []byte    `json:"response,omitempty"`
	StatusCode  int       `json:"statusCode,omitempty"`
	ContentType string    `json:"contentType,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Replay is the cached HTTP response for replay.
type Replay struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// IdempotencyStore manages idempotency keys.
//
// AcquireKey returns:
//   - (nil, nil) if the key was acquired and the request should run
//   - (replay, nil) if the operation already finished
//   - (nil, error) if the key is in use or belongs to a different request
type IdempotencyStore interface {
	AcquireKey(ctx context.Context, key, userID, operation, requestHash string) (*Replay, error)
	CompleteKey(ctx context.Context, key string, statusCode int, contentType string, response any) error
	FailKey(ctx context.Context, key string, statusCode int, contentType string, response any) error
}

// decide inspects an existing record for a repeated key.
// reclaim is true when a stale pending key is taken over by this request.
func decide(rec *Record, userID, operation, requestHash string, now time.Time) (replay *Replay, reclaim bool, err error) {
	if rec.UserID != userID || rec.Operation != operation || rec.RequestHash != requestHash {
		return nil, false, apperror.NewIdempotencyMismatch(rec.Key).
			WithDetail("stored_operation", rec.Operation).
			WithDetail("request_operation", operation)
	}

	switch rec.Status {
	case StatusSuccess, StatusFailed:
		return &Replay{
			StatusCode:  normalizeReplayStatus(rec.StatusCode),
			ContentType: normalizeReplayContentType(rec.ContentType),
			Body:        rec.Response,
		}, false, nil
	case StatusPending:
		if now.Sub(rec.UpdatedAt) > StalePendingAfter {
			return nil, true, nil
		}
		return nil, false, apperror.NewIdempotencyConflict(rec.Key)
	}
	return nil, true, nil
}

func encodeResponse(response any) []byte {
	if response == nil {
		return nil
	}
	b, err := json.Marshal(response)
	if err != nil {
		// Keep the key consistent with a minimal body.
		b, _ = json.Marshal(map[string]string{"error": err.Error()})
	}
	return b
}

func normalizeReplayStatus(status int) int {
	if status == 0 {
		return 200
	}
	return status
}

func normalizeReplayContentType(ct string) string {
	if ct == "" {
		return "application/json"
	}
	return ct
}
