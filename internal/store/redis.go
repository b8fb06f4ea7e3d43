package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// DefaultKeyPrefix namespaces every cached report.
const DefaultKeyPrefix = "weather:"

// RedisStore caches reports in Redis as JSON with a TTL, so several instances
// can share one cache.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisClient connects to addr and verifies the connection with a PING.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

// NewRedisStore wraps an existing client. A ttl <= 0 keeps reports until evicted.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: DefaultKeyPrefix,
		ttl:    ttl,
	}
}

func (s *RedisStore) makeKey(key string) string {
	return s.prefix + key
}

// Save implements weather.Store.
func (s *RedisStore) Save(ctx context.Context, key string, report weather.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, s.makeKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store report: %w", err)
	}
	return nil
}

// Get implements weather.Store. Unreadable entries are dropped and reported as
// misses.
func (s *RedisStore) Get(ctx context.Context, key string) (weather.Report, error) {
	data, err := s.client.Get(ctx, s.makeKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return weather.Report{}, weather.ErrNotFound
		}
		return weather.Report{}, fmt.Errorf("failed to get report: %w", err)
	}

	var report weather.Report
	if err := json.Unmarshal(data, &report); err != nil {
		_ = s.client.Del(ctx, s.makeKey(key)).Err()
		return weather.Report{}, weather.ErrNotFound
	}
	return report, nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
