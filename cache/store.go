package cache

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultTTL is the canonical lifetime of cached list pages.
const DefaultTTL = 5 * time.Minute

// ErrNoBackend is reported by outcomes of a Store built without a backend.
var ErrNoBackend = errors.New("cache: no backend configured")

// Store is the cache-aside front of a Backend. Every operation is advisory:
// backend failures are logged and degrade to a miss or a no-op, they are
// never returned to the caller. The read path stays correct with the backend
// fully unavailable, it only recomputes more often.
//
// A Store is safe for concurrent use; writes to the same key race freely.
type Store struct {
	backend Backend
	ttl     time.Duration
	logger  logrus.FieldLogger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithLogger sets the logger used for hit/miss and failure lines.
func WithLogger(logger logrus.FieldLogger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore wraps backend. A nil backend yields a Store that always misses.
func NewStore(backend Backend, opts ...StoreOption) *Store {
	s := &Store{
		backend: backend,
		ttl:     DefaultTTL,
		logger:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithField("component", "cache")
	return s
}

// TTL returns the lifetime applied by Set when no explicit ttl is given.
func (s *Store) TTL() time.Duration { return s.ttl }

// Get looks key up. Backend errors are logged and reported as absent.
func (s *Store) Get(ctx context.Context, key string) Lookup {
	if s.backend == nil {
		return Lookup{Key: key, err: ErrNoBackend}
	}

	value, found, err := s.backend.Get(ctx, key)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("cache get failed, treating as miss")
		return Lookup{Key: key, err: err}
	}

	if found {
		s.logger.WithField("key", key).Debug("cache hit")
	} else {
		s.logger.WithField("key", key).Debug("cache miss")
	}
	return Lookup{Key: key, value: value, found: found}
}

// Set stores value under key. A non-positive ttl uses the Store's TTL.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) Outcome {
	out := Outcome{Op: OpSet, Target: key}
	if s.backend == nil {
		out.err = ErrNoBackend
		return out
	}
	if ttl <= 0 {
		ttl = s.ttl
	}

	if err := s.backend.Set(ctx, key, value, ttl); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("cache set failed")
		out.err = err
		return out
	}

	s.logger.WithFields(logrus.Fields{"key": key, "ttl": ttl}).Debug("cache set")
	return out
}

// Delete removes one key.
func (s *Store) Delete(ctx context.Context, key string) Outcome {
	out := Outcome{Op: OpDelete, Target: key}
	if s.backend == nil {
		out.err = ErrNoBackend
		return out
	}

	if err := s.backend.Delete(ctx, key); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("cache delete failed")
		out.err = err
		return out
	}
	out.Removed = 1
	return out
}

// InvalidatePattern removes every known key matching pattern (see Matches).
// When the backend cannot enumerate keys the call is a logged no-op and
// stale entries survive until their TTL expires.
func (s *Store) InvalidatePattern(ctx context.Context, pattern string) Outcome {
	out := Outcome{Op: OpInvalidate, Target: pattern}
	if s.backend == nil {
		out.err = ErrNoBackend
		return out
	}

	lister, ok := s.backend.(KeyLister)
	if !ok {
		s.logger.WithField("pattern", pattern).Warn("cache backend cannot list keys, invalidation skipped")
		return out
	}

	keys, err := lister.Keys(ctx)
	if err != nil {
		s.logger.WithError(err).WithField("pattern", pattern).Warn("cache key listing failed, invalidation skipped")
		out.err = err
		return out
	}

	for _, key := range keys {
		if !Matches(pattern, key) {
			continue
		}
		if err := s.backend.Delete(ctx, key); err != nil {
			s.logger.WithError(err).WithField("key", key).Warn("cache delete failed during invalidation")
			out.err = err
			continue
		}
		out.Removed++
	}

	s.logger.WithFields(logrus.Fields{"pattern": pattern, "removed": out.Removed}).Debug("cache invalidated")
	return out
}

// Flush removes every entry. Maintenance and tests only.
func (s *Store) Flush(ctx context.Context) Outcome {
	out := Outcome{Op: OpFlush, Target: Wildcard}
	if s.backend == nil {
		out.err = ErrNoBackend
		return out
	}

	if err := s.backend.Reset(ctx); err != nil {
		s.logger.WithError(err).Warn("cache flush failed")
		out.err = err
		return out
	}

	s.logger.Info("cache flushed")
	return out
}
