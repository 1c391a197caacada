package cacheinfra

import (
	"time"
)

// Supported backend drivers.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverNone   = "none"
)

// Config holds the configuration for the cache backends.
type Config struct {
	// Driver selects the backend: memory (sturdyc), redis or none.
	Driver string

	// TTL is the lifetime of cached entries.
	// Must be greater than 0.
	TTL time.Duration

	// Capacity defines the maximum number of entries the memory backend can store.
	// Must be greater than 0.
	Capacity int

	// NumShards determines the number of memory cache shards for concurrent access.
	// Higher values improve concurrency but increase memory overhead.
	// Must be greater than 0. Default: 256
	NumShards int

	// EvictionPercentage specifies what percentage of entries to evict
	// when the memory cache reaches its capacity. Must be between 1-100.
	EvictionPercentage int

	// EvictionInterval sets how often the memory cache checks for expired entries.
	// Zero value uses the default interval.
	EvictionInterval time.Duration

	// Redis configures the redis driver.
	Redis RedisConfig
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// ScanCount is the COUNT hint passed to SCAN when listing keys.
	ScanCount int64

	// KeyPrefix is prepended to every key. When set, key listing and Reset
	// only touch keys under the prefix, so the database can be shared.
	KeyPrefix string
}

// DefaultConfig returns a Config with sensible defaults for most use cases.
func DefaultConfig() Config {
	return Config{
		Driver:             DriverMemory,
		TTL:                5 * time.Minute,
		Capacity:           10000,
		NumShards:          256,
		EvictionPercentage: 10,
		EvictionInterval:   0, // Use default
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			ScanCount: 100,
		},
	}
}

// Validate checks if the configuration values are valid.
// Returns an error if any configuration parameter is invalid.
func (c Config) Validate() error {
	switch c.Driver {
	case DriverMemory, DriverRedis, DriverNone:
	default:
		return &ConfigError{Field: "Driver", Message: "must be one of memory, redis, none"}
	}

	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}

	if c.Driver == DriverMemory {
		if c.Capacity <= 0 {
			return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
		}

		if c.NumShards <= 0 {
			return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
		}

		if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
			return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
		}

		if c.EvictionInterval < 0 {
			return &ConfigError{Field: "EvictionInterval", Message: "must be non-negative"}
		}
	}

	if c.Driver == DriverRedis && c.Redis.Addr == "" {
		return &ConfigError{Field: "Redis.Addr", Message: "must not be empty"}
	}

	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}
