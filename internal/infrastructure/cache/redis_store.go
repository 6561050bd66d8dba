// Package cache keeps researched service detail in Redis across runs.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"LaunchDigest/internal/domain"
	"LaunchDigest/internal/ports"
)

const defaultPrefix = "launchdigest:detail:"

// RedisDetailStore implements ports.DetailStore.
type RedisDetailStore struct {
	client redis.Cmdable
	prefix string
}

var _ ports.DetailStore = (*RedisDetailStore)(nil)

// NewRedisDetailStore stores entries under prefix (a default is used when empty).
func NewRedisDetailStore(client redis.Cmdable, prefix string) *RedisDetailStore {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &RedisDetailStore{client: client, prefix: prefix}
}

func (s *RedisDetailStore) key(name string) string {
	sum := sha256.Sum256([]byte(domain.NormalizeName(name)))
	return s.prefix + hex.EncodeToString(sum[:])
}

// Load returns the stored detail for key; a missing key is not an error.
func (s *RedisDetailStore) Load(ctx context.Context, key string) (domain.ServiceDetail, bool, error) {
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.ServiceDetail{}, false, nil
	}
	if err != nil {
		return domain.ServiceDetail{}, false, fmt.Errorf("get detail: %w", err)
	}

	var detail domain.ServiceDetail
	if err := json.Unmarshal(raw, &detail); err != nil {
		return domain.ServiceDetail{}, false, fmt.Errorf("decode detail: %w", err)
	}
	return detail, true, nil
}

// Save stores detail with a TTL.
func (s *RedisDetailStore) Save(ctx context.Context, key string, detail domain.ServiceDetail, ttl time.Duration) error {
	raw, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("encode detail: %w", err)
	}
	if err := s.client.Set(ctx, s.key(key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("set detail: %w", err)
	}
	return nil
}
