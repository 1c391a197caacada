package cache

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

// mapBackend is an in-memory Backend that records calls and can be told to fail.
type mapBackend struct {
	mu      sync.Mutex
	data    map[string][]byte
	ttls    map[string]time.Duration
	calls   []string
	failAll error
}

func newMapBackend() *mapBackend {
	return &mapBackend{
		data: make(map[string][]byte),
		ttls: make(map[string]time.Duration),
	}
}

func (b *mapBackend) record(call string) {
	b.calls = append(b.calls, call)
}

func (b *mapBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("Get")
	if b.failAll != nil {
		return nil, false, b.failAll
	}
	v, ok := b.data[key]
	return v, ok, nil
}

func (b *mapBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("Set")
	if b.failAll != nil {
		return b.failAll
	}
	b.data[key] = value
	b.ttls[key] = ttl
	return nil
}

func (b *mapBackend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("Delete")
	if b.failAll != nil {
		return b.failAll
	}
	delete(b.data, key)
	return nil
}

func (b *mapBackend) Reset(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("Reset")
	if b.failAll != nil {
		return b.failAll
	}
	b.data = make(map[string][]byte)
	return nil
}

// listingBackend adds key enumeration to mapBackend.
type listingBackend struct {
	*mapBackend
	keysErr error
}

func (b *listingBackend) Keys(ctx context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("Keys")
	if b.keysErr != nil {
		return nil, b.keysErr
	}
	keys := make([]string, 0, len(b.data))
	for k := range b.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestStore_GetSet(t *testing.T) {
	backend := &listingBackend{mapBackend: newMapBackend()}
	store := NewStore(backend, WithLogger(quietLogger()))
	ctx := context.Background()

	if store.Get(ctx, "k").Hit() {
		t.Fatal("expected miss on empty store")
	}

	if out := store.Set(ctx, "k", []byte("v"), 0); out.Failed() {
		t.Fatalf("unexpected set failure: %v", out.Err())
	}

	value, ok := store.Get(ctx, "k").Value()
	if !ok || string(value) != "v" {
		t.Errorf("expected hit with v, got %q (hit=%v)", value, ok)
	}

	if backend.ttls["k"] != DefaultTTL {
		t.Errorf("expected default ttl %v, got %v", DefaultTTL, backend.ttls["k"])
	}
}

func TestStore_TTLOverride(t *testing.T) {
	backend := newMapBackend()
	store := NewStore(backend, WithTTL(time.Minute), WithLogger(quietLogger()))

	store.Set(context.Background(), "a", []byte("1"), 0)
	store.Set(context.Background(), "b", []byte("1"), 3*time.Second)

	if backend.ttls["a"] != time.Minute {
		t.Errorf("expected store ttl, got %v", backend.ttls["a"])
	}
	if backend.ttls["b"] != 3*time.Second {
		t.Errorf("expected explicit ttl, got %v", backend.ttls["b"])
	}
	if store.TTL() != time.Minute {
		t.Errorf("expected TTL() to report override, got %v", store.TTL())
	}
}

func TestStore_FailOpen(t *testing.T) {
	backendErr := errors.New("connection refused")
	backend := &listingBackend{mapBackend: newMapBackend()}
	backend.failAll = backendErr
	store := NewStore(backend, WithLogger(quietLogger()))
	ctx := context.Background()

	lookup := store.Get(ctx, "k")
	if lookup.Hit() {
		t.Error("expected failed get to be a miss")
	}
	if !errors.Is(lookup.Err(), backendErr) {
		t.Errorf("expected diagnostic error, got %v", lookup.Err())
	}

	if out := store.Set(ctx, "k", []byte("v"), 0); !out.Failed() {
		t.Error("expected set outcome to report failure")
	}
	if out := store.Delete(ctx, "k"); !out.Failed() {
		t.Error("expected delete outcome to report failure")
	}
	if out := store.Flush(ctx); !out.Failed() {
		t.Error("expected flush outcome to report failure")
	}
}

func TestStore_NilBackend(t *testing.T) {
	store := NewStore(nil, WithLogger(quietLogger()))
	ctx := context.Background()

	if store.Get(ctx, "k").Hit() {
		t.Error("expected miss")
	}
	if out := store.Set(ctx, "k", nil, 0); !errors.Is(out.Err(), ErrNoBackend) {
		t.Errorf("expected ErrNoBackend, got %v", out.Err())
	}
	if out := store.InvalidatePattern(ctx, "*"); !errors.Is(out.Err(), ErrNoBackend) {
		t.Errorf("expected ErrNoBackend, got %v", out.Err())
	}
}

func TestStore_InvalidatePattern(t *testing.T) {
	backend := &listingBackend{mapBackend: newMapBackend()}
	store := NewStore(backend, WithLogger(quietLogger()))
	ctx := context.Background()

	keys := []string{
		Encode("orders:list", map[string]any{"skip": 0, "limit": 10}),
		Encode("orders:list", map[string]any{"skip": 10, "limit": 10}),
		Encode("orders:get", map[string]any{"id": "1"}),
		Encode("product-colors:list", map[string]any{"skip": 0, "limit": 10}),
	}
	for _, k := range keys {
		store.Set(ctx, k, []byte("page"), 0)
	}

	out := store.InvalidatePattern(ctx, "orders:list:*")
	if out.Failed() {
		t.Fatalf("unexpected failure: %v", out.Err())
	}
	if out.Removed != 2 {
		t.Errorf("expected 2 keys removed, got %d", out.Removed)
	}

	for _, k := range keys[:2] {
		if store.Get(ctx, k).Hit() {
			t.Errorf("expected %q to be invalidated", k)
		}
	}
	for _, k := range keys[2:] {
		if !store.Get(ctx, k).Hit() {
			t.Errorf("expected %q to survive", k)
		}
	}
}

func TestStore_InvalidatePattern_NoKeyListing(t *testing.T) {
	backend := newMapBackend()
	store := NewStore(backend, WithLogger(quietLogger()))
	ctx := context.Background()

	store.Set(ctx, "orders:list:skip=0", []byte("page"), 0)

	out := store.InvalidatePattern(ctx, "orders:list:*")
	if out.Failed() {
		t.Errorf("expected no-op outcome, got %v", out.Err())
	}
	if out.Removed != 0 {
		t.Errorf("expected nothing removed, got %d", out.Removed)
	}
	if !store.Get(ctx, "orders:list:skip=0").Hit() {
		t.Error("expected entry to survive until ttl expiry")
	}
}

func TestStore_InvalidatePattern_KeyListingFails(t *testing.T) {
	backend := &listingBackend{mapBackend: newMapBackend(), keysErr: errors.New("keys unsupported")}
	store := NewStore(backend, WithLogger(quietLogger()))
	ctx := context.Background()

	store.Set(ctx, "orders:list:skip=0", []byte("page"), 0)

	out := store.InvalidatePattern(ctx, "orders:list:*")
	if !out.Failed() {
		t.Error("expected failure to be reported on the outcome")
	}
	if !store.Get(ctx, "orders:list:skip=0").Hit() {
		t.Error("expected entry to survive failed invalidation")
	}
}

func TestStore_Flush(t *testing.T) {
	backend := &listingBackend{mapBackend: newMapBackend()}
	store := NewStore(backend, WithLogger(quietLogger()))
	ctx := context.Background()

	store.Set(ctx, "a", []byte("1"), 0)
	store.Set(ctx, "b", []byte("2"), 0)

	if out := store.Flush(ctx); out.Failed() {
		t.Fatalf("unexpected failure: %v", out.Err())
	}
	if store.Get(ctx, "a").Hit() || store.Get(ctx, "b").Hit() {
		t.Error("expected empty store after flush")
	}
}

type page struct {
	Items []string `json:"items"`
	Total int      `json:"total"`
}

func TestGetOrFetch(t *testing.T) {
	backend := &listingBackend{mapBackend: newMapBackend()}
	store := NewStore(backend, WithLogger(quietLogger()))
	ctx := context.Background()

	calls := 0
	fetch := func(ctx context.Context) (page, error) {
		calls++
		return page{Items: []string{"a", "b"}, Total: 5}, nil
	}

	first, err := GetOrFetch(ctx, store, "k", fetch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := GetOrFetch(ctx, store, "k", fetch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if calls != 1 {
		t.Errorf("expected fetch to run once, ran %d times", calls)
	}
	if second.Total != first.Total || len(second.Items) != 2 || second.Items[1] != "b" {
		t.Errorf("cached value differs: %+v vs %+v", second, first)
	}
}

func TestGetOrFetch_ErrorNotCached(t *testing.T) {
	backend := &listingBackend{mapBackend: newMapBackend()}
	store := NewStore(backend, WithLogger(quietLogger()))
	ctx := context.Background()

	fetchErr := errors.New("store down")
	_, err := GetOrFetch(ctx, store, "k", func(ctx context.Context) (page, error) {
		return page{}, fetchErr
	})
	if !errors.Is(err, fetchErr) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if store.Get(ctx, "k").Hit() {
		t.Error("errors must not be cached")
	}
}

func TestGetOrFetch_CacheDown(t *testing.T) {
	backend := newMapBackend()
	backend.failAll = errors.New("connection refused")
	store := NewStore(backend, WithLogger(quietLogger()))

	got, err := GetOrFetch(context.Background(), store, "k", func(ctx context.Context) (page, error) {
		return page{Total: 3}, nil
	})
	if err != nil {
		t.Fatalf("cache failure must not surface, got %v", err)
	}
	if got.Total != 3 {
		t.Errorf("expected freshly computed value, got %+v", got)
	}
}

func TestGet_UndecodablePayloadIsMiss(t *testing.T) {
	backend := newMapBackend()
	store := NewStore(backend, WithLogger(quietLogger()))
	ctx := context.Background()

	store.Set(ctx, "k", []byte{0xc1}, 0) // 0xc1 is never used by msgpack

	if _, ok := Get[page](ctx, store, "k"); ok {
		t.Error("expected undecodable payload to be a miss")
	}
}
