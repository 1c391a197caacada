package di

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/goliatone/go-order-catalog/colors"
	"github.com/goliatone/go-order-catalog/config"
	"github.com/goliatone/go-order-catalog/internal/cacheinfra"
	"github.com/goliatone/go-order-catalog/model"
	"github.com/goliatone/go-order-catalog/orders"
	"github.com/goliatone/go-order-catalog/pagination"
	"github.com/goliatone/go-order-catalog/productcolors"
	"github.com/google/uuid"
)

func redisConfig(t *testing.T) (config.Config, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)

	cfg := testConfig(t)
	cfg.Cache.Driver = cacheinfra.DriverRedis
	cfg.Cache.Redis.Addr = server.Addr()
	cfg.Cache.Redis.ScanCount = 3
	return cfg, server
}

func keysWithPrefix(server *miniredis.Miniredis, prefix string) []string {
	var out []string
	for _, k := range server.Keys() {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out
}

func TestIntegration_RedisListingsAndInvalidation(t *testing.T) {
	cfg, server := redisConfig(t)
	container := newSeededContainer(t, cfg)
	ctx := context.Background()

	for skip := 0; skip < 6; skip += 2 {
		if _, err := container.Orders().List(ctx, orders.ListFilter{Request: pagination.Request{Skip: skip, Limit: 2}}); err != nil {
			t.Fatalf("orders list failed: %v", err)
		}
	}
	if _, err := container.ProductColors().List(ctx, productcolors.ListFilter{}); err != nil {
		t.Fatalf("product colors list failed: %v", err)
	}
	if _, err := container.Colors().List(ctx, colors.ListFilter{}); err != nil {
		t.Fatalf("colors list failed: %v", err)
	}

	if got := len(keysWithPrefix(server, "orders:list:")); got != 3 {
		t.Fatalf("expected 3 cached order pages, got %d (%v)", got, server.Keys())
	}
	if got := len(keysWithPrefix(server, "product-colors:list:")); got != 1 {
		t.Fatalf("expected 1 cached product colors page, got %d", got)
	}
	for _, key := range keysWithPrefix(server, "orders:list:") {
		if ttl := server.TTL(key); ttl != cfg.Cache.TTL {
			t.Errorf("key %s: ttl = %v, want %v", key, ttl, cfg.Cache.TTL)
		}
	}

	// sku 1 is on two orders and belongs to product color 1.
	if _, err := container.Skus().UpdatePrice(ctx, uuid.MustParse("50000000-0000-0000-0000-000000000001"), 11); err != nil {
		t.Fatalf("update price failed: %v", err)
	}

	if keys := keysWithPrefix(server, "orders:"); len(keys) != 0 {
		t.Errorf("expected order pages to be invalidated, left %v", keys)
	}
	if keys := keysWithPrefix(server, "product-colors:"); len(keys) != 0 {
		t.Errorf("expected product color pages to be invalidated, left %v", keys)
	}
	if keys := keysWithPrefix(server, "colors:list:"); len(keys) != 1 {
		t.Errorf("expected colors page to survive, got %v", keys)
	}

	page, err := container.Orders().List(ctx, orders.ListFilter{})
	if err != nil {
		t.Fatalf("orders list failed: %v", err)
	}
	if page.Items[0].TotalValue != 27 {
		t.Errorf("expected recomputed total 27, got %v", page.Items[0].TotalValue)
	}

	if out := container.FlushCache(ctx); out.Failed() {
		t.Fatalf("flush failed: %v", out.Err())
	}
	if len(server.Keys()) != 0 {
		t.Errorf("expected empty redis after flush, got %v", server.Keys())
	}
}

func TestIntegration_RedisOutageFailsOpen(t *testing.T) {
	cfg, server := redisConfig(t)
	container := newSeededContainer(t, cfg)
	ctx := context.Background()

	if _, err := container.Orders().List(ctx, orders.ListFilter{}); err != nil {
		t.Fatalf("orders list failed: %v", err)
	}

	server.Close()

	page, err := container.Orders().List(ctx, orders.ListFilter{Status: "CONFIRMED"})
	if err != nil {
		t.Fatalf("cache outage must not fail reads, got %v", err)
	}
	if page.Total != 2 {
		t.Errorf("expected 2 confirmed orders, got %d", page.Total)
	}

	if _, err := container.Orders().UpdateStatus(ctx, uuid.MustParse("60000000-0000-0000-0000-000000000001"), model.OrderStatusShipped); err != nil {
		t.Fatalf("cache outage must not fail writes, got %v", err)
	}
}

func TestIntegration_ConcurrentListing(t *testing.T) {
	cfg := testConfig(t)
	cfg.Listing.ConcurrentReads = true
	container := newSeededContainer(t, cfg)
	ctx := context.Background()

	const workers = 20
	const callsPerWorker = 10

	var wg sync.WaitGroup
	errs := make(chan error, workers*callsPerWorker)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < callsPerWorker; i++ {
				skip := (worker + i) % 3 * 2
				page, err := container.Orders().List(ctx, orders.ListFilter{Request: pagination.Request{Skip: skip, Limit: 2}})
				if err != nil {
					errs <- fmt.Errorf("worker %d call %d: %w", worker, i, err)
					continue
				}
				if page.Total != 5 {
					errs <- fmt.Errorf("worker %d call %d: total %d", worker, i, page.Total)
				}
				want := 2
				if skip == 4 {
					want = 1
				}
				if len(page.Items) != want {
					errs <- fmt.Errorf("worker %d call %d: skip %d returned %d items", worker, i, skip, len(page.Items))
				}
			}
		}(w)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
