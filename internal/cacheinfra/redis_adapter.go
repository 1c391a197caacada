package cacheinfra

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisBackend stores payloads in redis and lists keys with SCAN.
type RedisBackend struct {
	client    redis.UniversalClient
	scanCount int64
	prefix    string
}

// NewRedisBackend connects to redis and verifies the connection with PING.
func NewRedisBackend(ctx context.Context, cfg Config) (*RedisBackend, error) {
	cfg.Driver = DriverRedis
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
	}

	return NewRedisBackendFromClient(client, cfg.Redis), nil
}

// NewRedisBackendFromClient wraps an existing client. Only ScanCount and
// KeyPrefix are read from cfg.
func NewRedisBackendFromClient(client redis.UniversalClient, cfg RedisConfig) *RedisBackend {
	scanCount := cfg.ScanCount
	if scanCount <= 0 {
		scanCount = 100
	}
	return &RedisBackend{client: client, scanCount: scanCount, prefix: cfg.KeyPrefix}
}

func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := b.client.Get(ctx, b.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (b *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return b.client.Set(ctx, b.prefix+key, value, ttl).Err()
}

func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	return b.client.Del(ctx, b.prefix+key).Err()
}

// Reset flushes the selected redis database, or only the keys under the
// prefix when one is configured.
func (b *RedisBackend) Reset(ctx context.Context) error {
	if b.prefix == "" {
		return b.client.FlushDB(ctx).Err()
	}

	return b.scan(ctx, func(batch []string) error {
		if len(batch) == 0 {
			return nil
		}
		return b.client.Del(ctx, batch...).Err()
	})
}

// Keys walks the keyspace under the prefix with SCAN and returns the keys
// without it.
func (b *RedisBackend) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	err := b.scan(ctx, func(batch []string) error {
		for _, key := range batch {
			keys = append(keys, strings.TrimPrefix(key, b.prefix))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (b *RedisBackend) scan(ctx context.Context, fn func(batch []string) error) error {
	match := matchEscaper.Replace(b.prefix) + "*"

	var cursor uint64
	for {
		batch, next, err := b.client.Scan(ctx, cursor, match, b.scanCount).Result()
		if err != nil {
			return err
		}
		if err := fn(batch); err != nil {
			return err
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// matchEscaper quotes glob metacharacters for SCAN MATCH.
var matchEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

// Close releases the underlying client.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}
