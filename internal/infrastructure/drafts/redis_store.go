package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"rumfor-market.backend/internal/domain/entities"
	domainerrors "rumfor-market.backend/internal/domain/errors"
)

const keyPrefix = "draft:"

// RedisStore persists draft snapshots in Redis with a TTL. Implements the
// usecases.DraftStore contract: save stamps a fresh savedAt, load of a
// missing key returns nil, clear is idempotent.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a draft store over an existing client
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Save writes the snapshot, refreshing savedAt so the stored timestamp is
// never older than the write itself
func (s *RedisStore) Save(ctx context.Context, key string, snapshot entities.DraftSnapshot) error {
	if snapshot.SavedAt.IsZero() {
		snapshot.SavedAt = time.Now()
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, keyPrefix+key, data, s.ttl).Err(); err != nil {
		return domainerrors.Transient(err)
	}
	return nil
}

// Load returns the stored snapshot, or nil when no draft exists
func (s *RedisStore) Load(ctx context.Context, key string) (*entities.DraftSnapshot, error) {
	data, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, domainerrors.Transient(err)
	}

	var snapshot entities.DraftSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// Clear removes the snapshot; clearing twice is safe
func (s *RedisStore) Clear(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return domainerrors.Transient(err)
	}
	return nil
}
