package cache

import (
	"context"
	"time"
)

// Backend is the key-value store behind a Store. Implementations report
// failures as errors; the Store decides how to degrade.
type Backend interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Reset(ctx context.Context) error
}

// KeyLister is implemented by backends that can enumerate their keys.
// Pattern invalidation is a no-op on backends that do not implement it.
type KeyLister interface {
	Keys(ctx context.Context) ([]string, error)
}

// Op names a cache operation in results and log lines.
type Op string

const (
	OpGet        Op = "get"
	OpSet        Op = "set"
	OpDelete     Op = "delete"
	OpInvalidate Op = "invalidate"
	OpFlush      Op = "flush"
)

// Lookup is the result of Store.Get. A failed lookup is reported as absent.
type Lookup struct {
	Key   string
	value []byte
	found bool
	err   error
}

// Value returns the cached bytes and whether they were present.
// Backend errors collapse to (nil, false).
func (l Lookup) Value() ([]byte, bool) {
	if l.err != nil || !l.found {
		return nil, false
	}
	return l.value, true
}

// Hit reports a successful lookup that found a value.
func (l Lookup) Hit() bool {
	_, ok := l.Value()
	return ok
}

// Err exposes the backend error for diagnostics. Callers must not branch
// read-path correctness on it.
func (l Lookup) Err() error { return l.err }

// Outcome is the result of a mutating cache operation. It is advisory: a
// failed outcome has already been logged and never needs handling.
type Outcome struct {
	Op      Op
	Target  string
	Removed int
	err     error
}

// Failed reports whether the backend rejected the operation.
func (o Outcome) Failed() bool { return o.err != nil }

// Err exposes the backend error for diagnostics.
func (o Outcome) Err() error { return o.err }
