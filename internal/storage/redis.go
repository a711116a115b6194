package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore indexes the latest completed audit job per site. Job
// bodies stay process-local; this index only answers "which job id is
// the freshest audit of this site" across restarts.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(addr string, ttl time.Duration) *RedisStore {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{client: rdb, ttl: ttl}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// SetLatestJobID records jobID as the freshest completed audit of a
// site, with a TTL so stale pointers age out.
func (s *RedisStore) SetLatestJobID(ctx context.Context, siteURL, jobID string) error {
	return s.client.Set(ctx, latestKey(siteURL), jobID, s.ttl).Err()
}

// GetLatestJobID returns the freshest job id for a site, or "" when no
// audit is indexed.
func (s *RedisStore) GetLatestJobID(ctx context.Context, siteURL string) (string, error) {
	val, err := s.client.Get(ctx, latestKey(siteURL)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

// latestKey normalizes a site URL so http/https and trailing-slash
// variants share one index entry.
func latestKey(siteURL string) string {
	key := siteURL
	if u, err := url.Parse(siteURL); err == nil && u.Host != "" {
		key = strings.ToLower(u.Host) + strings.TrimSuffix(u.Path, "/")
	}
	return fmt.Sprintf("audit:latest:%s", key)
}
