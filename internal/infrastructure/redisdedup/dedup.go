package redisdedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/go-redis/redis/v8"
)

// Store suppresses replayed webhook deliveries with a SETNX claim per
// delivery fingerprint. Losing redis only degrades to re-processing, which
// the processed_at gate already makes safe.
type Store struct {
	client *redis.Client
}

func NewStore(addr, password string) *Store {
	return &Store{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
	}
}

func (s *Store) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, "webhook:dedup:"+key, 1, ttl).Result()
}

func (s *Store) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, "webhook:dedup:"+key).Err()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

// Fingerprint builds the dedup key for a provider delivery.
func Fingerprint(provider, externalID, status string) string {
	sum := sha256.Sum256([]byte(provider + "|" + externalID + "|" + status))
	return hex.EncodeToString(sum[:])
}
