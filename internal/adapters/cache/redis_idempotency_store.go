package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nischaysood/creator-connect/internal/domain"
	"github.com/nischaysood/creator-connect/internal/ports"
)

const idempotencyKeyPrefix = "verification:idempotency:"

// RedisIdempotencyStore keeps one JSON record per Idempotency-Key. Reserve
// uses SETNX so concurrent retries of the same key collapse to one winner;
// Complete overwrites the reservation while keeping its TTL.
type RedisIdempotencyStore struct {
	client *redis.Client
}

func NewRedisIdempotencyStore(client *redis.Client) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client}
}

type idempotencyEntry struct {
	RequestHash  string          `json:"request_hash"`
	ResponseCode int             `json:"response_code,omitempty"`
	ResponseBody json.RawMessage `json:"response_body,omitempty"`
	ExpiresAt    time.Time       `json:"expires_at"`
}

func (s *RedisIdempotencyStore) Get(ctx context.Context, key string, _ time.Time) (*ports.IdempotencyRecord, error) {
	raw, err := s.client.Get(ctx, idempotencyKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("idempotency get: %w", err)
	}
	var entry idempotencyEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("idempotency decode: %w", err)
	}
	return &ports.IdempotencyRecord{
		Key:          key,
		RequestHash:  entry.RequestHash,
		ResponseCode: entry.ResponseCode,
		ResponseBody: []byte(entry.ResponseBody),
		ExpiresAt:    entry.ExpiresAt,
	}, nil
}

func (s *RedisIdempotencyStore) Reserve(ctx context.Context, key, requestHash string, expiresAt time.Time) error {
	raw, err := json.Marshal(idempotencyEntry{RequestHash: requestHash, ExpiresAt: expiresAt})
	if err != nil {
		return err
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		ttl = time.Minute
	}
	ok, err := s.client.SetNX(ctx, idempotencyKeyPrefix+key, raw, ttl).Result()
	if err != nil {
		return fmt.Errorf("idempotency reserve: %w", err)
	}
	if !ok {
		return domain.ErrConflict
	}
	return nil
}

func (s *RedisIdempotencyStore) Complete(ctx context.Context, key string, responseCode int, responseBody []byte, _ time.Time) error {
	fullKey := idempotencyKeyPrefix + key
	raw, err := s.client.Get(ctx, fullKey).Bytes()
	if err == redis.Nil {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("idempotency complete: %w", err)
	}
	var entry idempotencyEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return fmt.Errorf("idempotency decode: %w", err)
	}
	entry.ResponseCode = responseCode
	entry.ResponseBody = json.RawMessage(responseBody)
	updated, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, fullKey, updated, redis.KeepTTL).Err()
}

func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, idempotencyKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}
