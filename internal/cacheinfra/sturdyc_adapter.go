package cacheinfra

import (
	"context"
	"time"

	"github.com/viccon/sturdyc"
)

// MemoryBackend is an in-process backend on top of a sturdyc client.
// Entries live for the client TTL; sturdyc has no per-entry lifetime, so the
// ttl passed to Set is ignored and Config.TTL is authoritative.
type MemoryBackend struct {
	client *sturdyc.Client[[]byte]
}

// NewMemoryBackend validates the configuration and initializes a sturdyc client.
//
// Capacity, NumShards, TTL and EvictionPercentage are passed to sturdyc.New();
// EvictionInterval is applied as an option.
func NewMemoryBackend(cfg Config) (*MemoryBackend, error) {
	cfg.Driver = DriverMemory
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var options []sturdyc.Option
	if cfg.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(cfg.EvictionInterval))
	}

	client := sturdyc.New[[]byte](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		options...,
	)

	return &MemoryBackend{client: client}, nil
}

// Get returns a copy of the stored payload so callers never share a buffer.
func (b *MemoryBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, ok := b.client.Get(key)
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (b *MemoryBackend) Set(ctx context.Context, key string, value []byte, _ time.Duration) error {
	b.client.Set(key, append([]byte(nil), value...))
	return nil
}

func (b *MemoryBackend) Delete(ctx context.Context, key string) error {
	b.client.Delete(key)
	return nil
}

// Reset removes every key currently held by the client.
func (b *MemoryBackend) Reset(ctx context.Context) error {
	for _, key := range b.client.ScanKeys() {
		b.client.Delete(key)
	}
	return nil
}

// Keys lists the keys currently held by the client.
func (b *MemoryBackend) Keys(ctx context.Context) ([]string, error) {
	return b.client.ScanKeys(), nil
}

// Size reports the number of entries held by the client.
func (b *MemoryBackend) Size() int {
	return b.client.Size()
}
