package testsupport

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/goliatone/go-order-catalog/internal/database"
	"github.com/goliatone/go-order-catalog/model"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
)

//go:embed testdata/catalog.json
var catalogJSON []byte

// Seed is a catalog snapshot. Slices are inserted in the order of the
// struct fields, which follows foreign key dependencies.
type Seed struct {
	Customers     []*model.Customer     `json:"customers"`
	Products      []*model.Product      `json:"products"`
	Colors        []*model.Color        `json:"colors"`
	ProductColors []*model.ProductColor `json:"productColors"`
	Skus          []*model.Sku          `json:"skus"`
	Orders        []*model.Order        `json:"orders"`
	OrderItems    []*model.OrderItem    `json:"orderItems"`
}

// Catalog returns the shared catalog seed: 3 customers, 3 products,
// 4 colors, 5 product colors, 6 skus, 5 orders and 6 order items.
func Catalog(t testing.TB) Seed {
	t.Helper()

	var seed Seed
	if err := json.Unmarshal(catalogJSON, &seed); err != nil {
		t.Fatalf("failed to decode catalog seed: %v", err)
	}
	return seed
}

// Insert writes every non-empty slice of the seed.
func (s Seed) Insert(ctx context.Context, db bun.IDB) error {
	steps := []struct {
		name  string
		rows  any
		count int
	}{
		{"customers", &s.Customers, len(s.Customers)},
		{"products", &s.Products, len(s.Products)},
		{"colors", &s.Colors, len(s.Colors)},
		{"product colors", &s.ProductColors, len(s.ProductColors)},
		{"skus", &s.Skus, len(s.Skus)},
		{"orders", &s.Orders, len(s.Orders)},
		{"order items", &s.OrderItems, len(s.OrderItems)},
	}

	for _, step := range steps {
		if step.count == 0 {
			continue
		}
		if _, err := db.NewInsert().Model(step.rows).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert %s: %w", step.name, err)
		}
	}
	return nil
}

var dbSeq atomic.Int64

// NewDB opens a private in-memory sqlite database with the catalog schema
// and a counting query hook. The database is closed when the test ends.
func NewDB(t testing.TB) (*bun.DB, *database.QueryHook) {
	t.Helper()

	cfg := database.DefaultConfig()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg.DSN = fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))

	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	hook := database.NewQueryHook(QuietLogger())
	db.AddQueryHook(hook)
	return db, hook
}

// SeededDB is NewDB followed by inserting the catalog seed.
func SeededDB(t testing.TB) (*bun.DB, *database.QueryHook) {
	t.Helper()

	db, hook := NewDB(t)
	if err := Catalog(t).Insert(context.Background(), db); err != nil {
		t.Fatalf("failed to seed catalog: %v", err)
	}
	hook.Reset()
	return db, hook
}

// QuietLogger returns a logger that discards its output.
func QuietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// LoadFixture loads test data from a fixture file.
// The path is relative to the test package directory.
func LoadFixture(t testing.TB, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}

	return data
}

// LoadFixtureJSON loads JSON test data from a fixture file and unmarshals it.
func LoadFixtureJSON(t testing.TB, path string, dest any) {
	t.Helper()

	data := LoadFixture(t, path)
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// WriteGolden writes test output to a golden file.
func WriteGolden(t testing.TB, path string, data []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write golden file to %s: %v", path, err)
	}
}

// CompareWithGolden compares actual data with expected data from a golden file.
// If the golden file doesn't exist, it creates one with the actual data.
func CompareWithGolden(t testing.TB, path string, actual []byte) {
	t.Helper()

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Logf("Golden file %s does not exist, creating it", path)
			WriteGolden(t, path, actual)
			return
		}
		t.Fatalf("failed to read golden file %s: %v", path, err)
	}

	if string(actual) != string(expected) {
		t.Errorf("output mismatch for %s:\nExpected:\n%s\nActual:\n%s", path, expected, actual)
	}
}

// FixturePath constructs a path to a fixture file relative to the testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}

// GoldenPath constructs a path to a golden file relative to the testdata directory.
func GoldenPath(filename string) string {
	return filepath.Join("testdata", "golden", filename)
}
