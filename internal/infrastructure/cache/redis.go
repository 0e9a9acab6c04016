package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "erpledger:idempotency:"

// RedisIdempotencyStore shares idempotency records between server instances.
type RedisIdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient connects to Redis.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// NewRedisIdempotencyStore creates a store on an existing client. Records expire after ttl.
func NewRedisIdempotencyStore(client *redis.Client, ttl time.Duration) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client, ttl: ttl}
}

// Ping checks the connection.
func (s *RedisIdempotencyStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}

// AcquireKey implements IdempotencyStore. SETNX decides which request owns a new key.
func (s *RedisIdempotencyStore) AcquireKey(ctx context.Context, key, userID, operation, requestHash string) (*Replay, error) {
	now := time.Now().UTC()
	rec := Record{
		Key:         key,
		UserID:      userID,
		Operation:   operation,
		RequestHash: requestHash,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal idempotency record: %w", err)
	}

	acquired, err := s.client.SetNX(ctx, redisKey(key), payload, s.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire idempotency key: %w", err)
	}
	if acquired {
		return nil, nil
	}

	existing, err := s.get(ctx, key)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		// Expired between SETNX and GET.
		return s.AcquireKey(ctx, key, userID, operation, requestHash)
	}

	replay, reclaim, err := decide(existing, userID, operation, requestHash, now)
	if err != nil {
		return nil, err
	}
	if reclaim {
		existing.Status = StatusPending
		existing.UpdatedAt = now
		if err := s.put(ctx, existing); err != nil {
			return nil, fmt.Errorf("reclaim stale key: %w", err)
		}
	}
	return replay, nil
}

// CompleteKey implements IdempotencyStore.
func (s *RedisIdempotencyStore) CompleteKey(ctx context.Context, key string, statusCode int, contentType string, response any) error {
	return s.finish(ctx, key, StatusSuccess, statusCode, contentType, response)
}

// FailKey implements IdempotencyStore.
func (s *RedisIdempotencyStore) FailKey(ctx context.Context, key string, statusCode int, contentType string, response any) error {
	return s.finish(ctx, key, StatusFailed, statusCode, contentType, response)
}

func (s *RedisIdempotencyStore) finish(ctx context.Context, key string, status Status, statusCode int, contentType string, response any) error {
	rec, err := s.get(ctx, key)
	if err != nil || rec == nil {
		return err
	}
	rec.Status = status
	rec.StatusCode = statusCode
	rec.ContentType = contentType
	rec.Response = encodeResponse(response)
	rec.UpdatedAt = time.Now().UTC()
	return s.put(ctx, rec)
}

func (s *RedisIdempotencyStore) get(ctx context.Context, key string) (*Record, error) {
	val, err := s.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get idempotency key: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(val, &rec); err != nil {
		return nil, fmt.Errorf("decode idempotency record: %w", err)
	}
	return &rec, nil
}

// put overwrites a record without touching its expiry.
func (s *RedisIdempotencyStore) put(ctx context.Context, rec *Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal idempotency record: %w", err)
	}
	return s.client.Set(ctx, redisKey(rec.Key), payload, redis.KeepTTL).Err()
}

func redisKey(key string) string {
	return redisKeyPrefix + key
}

var _ IdempotencyStore = (*RedisIdempotencyStore)(nil)
