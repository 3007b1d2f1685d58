package draftstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	draftKeyPrefix  = "wizard:draft:"    // wizard:draft:{owner}:{wizard}
	DefaultDraftTTL = 7 * 24 * time.Hour // abandoned drafts expire after a week
)

// RedisSlot stores each draft as a JSON string with a TTL that is refreshed on every save.
type RedisSlot struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSlot creates a RedisSlot. A non-positive ttl falls back to DefaultDraftTTL.
func NewRedisSlot(client *redis.Client, ttl time.Duration) *RedisSlot {
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}
	return &RedisSlot{client: client, ttl: ttl}
}

func (r *RedisSlot) Get(ctx context.Context, key Key) ([]byte, error) {
	data, err := r.client.Get(ctx, r.draftKey(key)).Bytes()
	if err == redis.Nil {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	return data, nil
}

func (r *RedisSlot) Set(ctx context.Context, key Key, payload []byte) error {
	if err := r.client.Set(ctx, r.draftKey(key), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set draft: %w", err)
	}
	return nil
}

func (r *RedisSlot) Delete(ctx context.Context, key Key) error {
	if err := r.client.Del(ctx, r.draftKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}

func (r *RedisSlot) draftKey(key Key) string {
	return fmt.Sprintf("%s%s:%s", draftKeyPrefix, key.Owner, key.Wizard)
}
