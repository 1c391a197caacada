package cache

import (
	"context"
	"fmt"
	"reflect"
)

// FetchFn computes a value from the source of truth on a cache miss.
type FetchFn[T any] func(ctx context.Context) (T, error)

// Get returns the decoded value stored under key. Payloads that fail to
// decode are logged and reported as a miss.
func Get[T any](ctx context.Context, store *Store, key string) (T, bool) {
	var zero T

	data, ok := store.Get(ctx, key).Value()
	if !ok {
		return zero, false
	}

	var value T
	if err := Unmarshal(data, &value); err != nil {
		store.logger.WithError(err).WithField("key", key).
			Warnf("cache payload does not decode as %s, treating as miss", typeName[T]())
		return zero, false
	}
	return value, true
}

// Put encodes value and stores it under key with the Store's TTL.
func Put[T any](ctx context.Context, store *Store, key string, value T) Outcome {
	data, err := Marshal(value)
	if err != nil {
		store.logger.WithError(err).WithField("key", key).Warn("cache payload encode failed")
		return Outcome{Op: OpSet, Target: key, err: err}
	}
	return store.Set(ctx, key, data, 0)
}

// GetOrFetch is the cache-aside read: return the cached value for key or
// call fetchFn, store its result and return it. Errors from fetchFn are
// returned unchanged and never cached; cache failures are invisible here.
func GetOrFetch[T any](ctx context.Context, store *Store, key string, fetchFn FetchFn[T]) (T, error) {
	if value, ok := Get[T](ctx, store, key); ok {
		return value, nil
	}

	value, err := fetchFn(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	Put(ctx, store, key, value)
	return value, nil
}

func typeName[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	return fmt.Sprintf("%v", t)
}
