package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/V4T54L/brokerdesk/internal/domain"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "brokerdesk:"

// KVStore implements domain.KVStore with plain Redis strings. Every key is
// namespaced with a prefix so several deployments can share one instance.
type KVStore struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewKVStore creates a Redis-backed KVStore. An empty prefix selects "brokerdesk:".
func NewKVStore(client *redis.Client, prefix string, logger *slog.Logger) *KVStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &KVStore{
		client: client,
		prefix: prefix,
		logger: logger.With("component", "redis_kv_store"),
	}
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	payload, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		s.logger.Error("failed to read key", "key", key, "error", err)
		return nil, fmt.Errorf("failed to read %s from redis: %w", key, err)
	}
	return payload, nil
}

func (s *KVStore) Put(ctx context.Context, key string, payload []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, payload, 0).Err(); err != nil {
		s.logger.Error("failed to write key", "key", key, "error", err)
		return fmt.Errorf("failed to write %s to redis: %w", key, err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (s *KVStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
