// Package cache provides the cache-aside layer used by listing reads.
//
// # Overview
//
// The package exports three pieces:
//
//   - Key codec: Encode builds a deterministic key from a namespace and a
//     parameter set, Matches tests a key against a wildcard pattern.
//   - Store: a fail-open front for a Backend with Get, Set, Delete,
//     InvalidatePattern and Flush.
//   - Typed helpers: Get, Put and GetOrFetch encode values with msgpack and
//     implement the cache-aside read.
//
// # Basic Usage
//
//	backend, err := cache.NewBackend(ctx, cache.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	store := cache.NewStore(backend, cache.WithLogger(logger))
//
//	key := cache.Encode("orders:list", map[string]any{"skip": 0, "limit": 10})
//	page, err := cache.GetOrFetch(ctx, store, key, func(ctx context.Context) (Page, error) {
//		return loadPage(ctx)
//	})
//
// After a write commits, drop every cached variant of the listing:
//
//	store.InvalidatePattern(ctx, "orders:list:*")
//
// # Key Schema
//
// Keys are "namespace:name1=value1:name2=value2". Names are sorted, values
// are JSON encoded and absent values (nil, nil pointers, empty strings) are
// omitted. Two logically equal parameter sets always produce the same key.
//
// # Failure Semantics
//
// Every Store operation is advisory. Get reports backend failures as a miss,
// Set/Delete/Flush log and swallow failures, and InvalidatePattern is a no-op
// when the backend cannot enumerate keys (see KeyLister). Operations return
// Lookup and Outcome values instead of errors so callers cannot propagate a
// cache failure by accident. The worst case is a stale read until the entry
// TTL expires.
//
// # Backends
//
// Backends live in internal/cacheinfra: an in-process sturdyc client, a redis
// client (SCAN based key listing) and a no-op backend for disabled caching.
package cache
