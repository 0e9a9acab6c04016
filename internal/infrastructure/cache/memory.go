package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryIdempotencyStore keeps records in process. Used when no Redis is configured.
type MemoryIdempotencyStore struct {
	mu      sync.Mutex
	records map[string]*Record
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryIdempotencyStore creates an in-process store. Records expire after ttl.
func NewMemoryIdempotencyStore(ttl time.Duration) *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		records: make(map[string]*Record),
		ttl:     ttl,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// AcquireKey implements IdempotencyStore.
func (s *MemoryIdempotencyStore) AcquireKey(_ context.Context, key, userID, operation, requestHash string) (*Replay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec, ok := s.records[key]
	if ok && s.ttl > 0 && now.Sub(rec.CreatedAt) > s.ttl {
		delete(s.records, key)
		ok = false
	}
	if !ok {
		s.records[key] = &Record{
			Key:         key,
			UserID:      userID,
			Operation:   operation,
			RequestHash: requestHash,
			Status:      StatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return nil, nil
	}

	replay, reclaim, err := decide(rec, userID, operation, requestHash, now)
	if err != nil {
		return nil, err
	}
	if reclaim {
		rec.Status = StatusPending
		rec.UpdatedAt = now
	}
	return replay, nil
}

// CompleteKey implements IdempotencyStore.
func (s *MemoryIdempotencyStore) CompleteKey(_ context.Context, key string, statusCode int, contentType string, response any) error {
	s.finish(key, StatusSuccess, statusCode, contentType, response)
	return nil
}

// FailKey implements IdempotencyStore.
func (s *MemoryIdempotencyStore) FailKey(_ context.Context, key string, statusCode int, contentType string, response any) error {
	s.finish(key, StatusFailed, statusCode, contentType, response)
	return nil
}

func (s *MemoryIdempotencyStore) finish(key string, status Status, statusCode int, contentType string, response any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return
	}
	rec.Status = status
	rec.StatusCode = statusCode
	rec.ContentType = contentType
	rec.Response = encodeResponse(response)
	rec.UpdatedAt = s.now()
}

var _ IdempotencyStore = (*MemoryIdempotencyStore)(nil)
