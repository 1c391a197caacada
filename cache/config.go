package cache

import (
	"context"
	"time"

	"github.com/goliatone/go-order-catalog/internal/cacheinfra"
)

// Config exposes cache configuration options for consumers of the cache package.
type Config struct {
	Driver             string        `mapstructure:"driver"`
	TTL                time.Duration `mapstructure:"ttl"`
	Capacity           int           `mapstructure:"capacity"`
	NumShards          int           `mapstructure:"num_shards"`
	EvictionPercentage int           `mapstructure:"eviction_percentage"`
	EvictionInterval   time.Duration `mapstructure:"eviction_interval"`
	Redis              RedisConfig   `mapstructure:"redis"`
}

// RedisConfig mirrors the redis backend options.
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	ScanCount int64  `mapstructure:"scan_count"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return convertFromInternal(cacheinfra.DefaultConfig())
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return c.toInternal().Validate()
}

// NewBackend constructs the backend selected by cfg.Driver.
func NewBackend(ctx context.Context, cfg Config) (Backend, error) {
	return cacheinfra.NewBackend(ctx, cfg.toInternal())
}

func (c Config) toInternal() cacheinfra.Config {
	return cacheinfra.Config{
		Driver:             c.Driver,
		TTL:                c.TTL,
		Capacity:           c.Capacity,
		NumShards:          c.NumShards,
		EvictionPercentage: c.EvictionPercentage,
		EvictionInterval:   c.EvictionInterval,
		Redis: cacheinfra.RedisConfig{
			Addr:      c.Redis.Addr,
			Password:  c.Redis.Password,
			DB:        c.Redis.DB,
			ScanCount: c.Redis.ScanCount,
			KeyPrefix: c.Redis.KeyPrefix,
		},
	}
}

func convertFromInternal(cfg cacheinfra.Config) Config {
	return Config{
		Driver:             cfg.Driver,
		TTL:                cfg.TTL,
		Capacity:           cfg.Capacity,
		NumShards:          cfg.NumShards,
		EvictionPercentage: cfg.EvictionPercentage,
		EvictionInterval:   cfg.EvictionInterval,
		Redis: RedisConfig{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			ScanCount: cfg.Redis.ScanCount,
			KeyPrefix: cfg.Redis.KeyPrefix,
		},
	}
}
