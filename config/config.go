// Package config loads the application configuration.
//
// Values are resolved in this order, first match wins: process environment,
// dotenv files, the config file, defaults. Environment keys are the config
// keys upper-cased with dots replaced by underscores and the CATALOG_ prefix,
// e.g. cache.ttl is CATALOG_CACHE_TTL.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-order-catalog/cache"
	"github.com/goliatone/go-order-catalog/internal/database"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const EnvPrefix = "CATALOG"

type Config struct {
	LogLevel string          `mapstructure:"log_level"`
	Database database.Config `mapstructure:"database"`
	Cache    cache.Config    `mapstructure:"cache"`
	Listing  ListingConfig   `mapstructure:"listing"`
}

type ListingConfig struct {
	// ConcurrentReads runs the count and page queries of a listing in
	// parallel.
	ConcurrentReads bool `mapstructure:"concurrent_reads"`
}

func Default() Config {
	return Config{
		LogLevel: logrus.InfoLevel.String(),
		Database: database.DefaultConfig(),
		Cache:    cache.DefaultConfig(),
	}
}

func (c Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return nil
}

// NewLogger returns a logger at the configured level.
func (c Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(c.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	return logger
}

type loader struct {
	file     string
	envFiles []string
}

type Option func(*loader)

// WithFile reads configuration from path. The file must exist.
func WithFile(path string) Option {
	return func(l *loader) {
		l.file = path
	}
}

// WithEnvFiles replaces the default dotenv file list (".env"). Missing files
// are skipped.
func WithEnvFiles(paths ...string) Option {
	return func(l *loader) {
		l.envFiles = paths
	}
}

// Load resolves the configuration and validates it. Without WithFile it
// looks for an optional catalog.{toml,yaml,json} in ./config and ./.
func Load(opts ...Option) (Config, error) {
	l := &loader{envFiles: []string{".env"}}
	for _, opt := range opts {
		opt(l)
	}

	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if l.file != "" {
		v.SetConfigFile(l.file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", l.file, err)
		}
	} else {
		v.SetConfigName("catalog")
		v.AddConfigPath("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	if err := applyEnvFiles(v, l.envFiles); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnvFiles reads dotenv files without touching the process
// environment. A dotenv value is used only when the real environment does
// not define the same key.
func applyEnvFiles(v *viper.Viper, files []string) error {
	values := map[string]string{}
	for _, file := range files {
		read, err := godotenv.Read(file)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to read env file %s: %w", file, err)
		}
		for k, val := range read {
			if _, ok := values[k]; !ok {
				values[k] = val
			}
		}
	}

	for _, key := range v.AllKeys() {
		name := envName(key)
		if _, ok := os.LookupEnv(name); ok {
			continue
		}
		if val, ok := values[name]; ok {
			v.Set(key, val)
		}
	}
	return nil
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("log_level", cfg.LogLevel)

	v.SetDefault("database.driver", cfg.Database.Driver)
	v.SetDefault("database.dsn", cfg.Database.DSN)
	v.SetDefault("database.max_open_conns", cfg.Database.MaxOpenConns)

	v.SetDefault("cache.driver", cfg.Cache.Driver)
	v.SetDefault("cache.ttl", cfg.Cache.TTL)
	v.SetDefault("cache.capacity", cfg.Cache.Capacity)
	v.SetDefault("cache.num_shards", cfg.Cache.NumShards)
	v.SetDefault("cache.eviction_percentage", cfg.Cache.EvictionPercentage)
	v.SetDefault("cache.eviction_interval", cfg.Cache.EvictionInterval)
	v.SetDefault("cache.redis.addr", cfg.Cache.Redis.Addr)
	v.SetDefault("cache.redis.password", cfg.Cache.Redis.Password)
	v.SetDefault("cache.redis.db", cfg.Cache.Redis.DB)
	v.SetDefault("cache.redis.scan_count", cfg.Cache.Redis.ScanCount)
	v.SetDefault("cache.redis.key_prefix", cfg.Cache.Redis.KeyPrefix)

	v.SetDefault("listing.concurrent_reads", cfg.Listing.ConcurrentReads)
}
