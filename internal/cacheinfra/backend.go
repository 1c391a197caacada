package cacheinfra

import (
	"context"
	"time"
)

// NopBackend never stores anything. It does not list keys, so pattern
// invalidation against it is skipped.
type NopBackend struct{}

func (NopBackend) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NopBackend) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NopBackend) Delete(context.Context, string) error                     { return nil }
func (NopBackend) Reset(context.Context) error                              { return nil }

// Backend is the method set shared by every adapter in this package.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Reset(ctx context.Context) error
}

// NewBackend builds the backend selected by cfg.Driver.
func NewBackend(ctx context.Context, cfg Config) (Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Driver {
	case DriverRedis:
		backend, err := NewRedisBackend(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return backend, nil
	case DriverNone:
		return NopBackend{}, nil
	default:
		backend, err := NewMemoryBackend(cfg)
		if err != nil {
			return nil, err
		}
		return backend, nil
	}
}
