package colors

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-order-catalog/cache"
	"github.com/goliatone/go-order-catalog/internal/cacheinfra"
	"github.com/goliatone/go-order-catalog/internal/database"
	"github.com/goliatone/go-order-catalog/model"
	"github.com/goliatone/go-order-catalog/pagination"
	"github.com/goliatone/go-order-catalog/pkg/testsupport"
	"github.com/goliatone/go-order-catalog/productcolors"
	"github.com/goliatone/go-order-catalog/repositorycache"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

const (
	red     = "30000000-0000-0000-0000-000000000001"
	darkRed = "30000000-0000-0000-0000-000000000004"
)

type fixture struct {
	colors        *Service
	productColors *productcolors.Service
	hook          *database.QueryHook
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	db, hook := testsupport.SeededDB(t)
	backend, err := cacheinfra.NewMemoryBackend(cacheinfra.DefaultConfig())
	if err != nil {
		t.Fatalf("failed to create backend: %v", err)
	}
	logger := testsupport.QuietLogger()
	store := cache.NewStore(backend, cache.WithLogger(logger))

	repo := repositorycache.New[*model.Color](
		repository.NewRepository[*model.Color](db, model.NewHandlers[*model.Color]("name")),
		store,
		repositorycache.WithDependentNamespaces(productcolors.Namespace),
		repositorycache.WithLogger(logger),
	)

	return fixture{
		colors:        NewService(repo, logger),
		productColors: productcolors.NewService(db, store, productcolors.WithLogger(logger)),
		hook:          hook,
	}
}

func names(page pagination.Page[*model.Color]) []string {
	out := make([]string, 0, len(page.Items))
	for _, c := range page.Items {
		out = append(out, c.Name)
	}
	return out
}

func TestService_List(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter ListFilter
		total  int
		want   []string
	}{
		{"all", ListFilter{}, 4, []string{"red", "blue", "green", "dark red"}},
		{"substring", ListFilter{Name: "RED"}, 2, []string{"red", "dark red"}},
		{"window", ListFilter{Request: pagination.Request{Skip: 1, Limit: 2}}, 4, []string{"blue", "green"}},
		{"no match", ListFilter{Name: "purple"}, 0, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := f.colors.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if page.Total != tt.total {
				t.Errorf("total = %d, want %d", page.Total, tt.total)
			}
			got := names(page)
			if len(got) != len(tt.want) {
				t.Fatalf("names = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("names = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestService_ListCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.colors.List(ctx, ListFilter{Name: "red"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.hook.Reset()

	page, err := f.colors.List(ctx, ListFilter{Name: " red "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.hook.Queries() != 0 {
		t.Errorf("expected cache hit, got %d queries", f.hook.Queries())
	}
	if page.Total != 2 {
		t.Errorf("unexpected cached total %d", page.Total)
	}
}

func TestService_ListInvalidFilter(t *testing.T) {
	f := newFixture(t)

	_, err := f.colors.List(context.Background(), ListFilter{Request: pagination.Request{Limit: -5}})
	var typed *goerrors.Error
	if !errors.As(err, &typed) || typed.Category != goerrors.CategoryValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestService_RenameInvalidatesDependents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	before, err := f.productColors.List(ctx, productcolors.ListFilter{ProductCodeOrName: "cap"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(before.Items) != 1 || before.Items[0].Color.Name != "dark red" {
		t.Fatalf("unexpected product colors page %+v", before)
	}
	if _, err := f.colors.List(ctx, ListFilter{Name: "dark"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	renamed, err := f.colors.Rename(ctx, uuid.MustParse(darkRed), "  burgundy ")
	if err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if renamed.Name != "burgundy" {
		t.Errorf("expected trimmed name, got %q", renamed.Name)
	}

	after, err := f.productColors.List(ctx, productcolors.ListFilter{ProductCodeOrName: "cap"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if after.Items[0].Color.Name != "burgundy" {
		t.Errorf("expected dependent listing to be invalidated, got %q", after.Items[0].Color.Name)
	}

	colors, err := f.colors.List(ctx, ListFilter{Name: "dark"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if colors.Total != 0 {
		t.Errorf("expected renamed color to leave the listing, got %v", names(colors))
	}
}

func TestService_RenameErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		id       string
		newName  string
		category goerrors.Category
	}{
		{"blank name", red, "   ", goerrors.CategoryValidation},
		{"missing color", "30000000-0000-0000-0000-000000000099", "teal", goerrors.CategoryNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.colors.Rename(ctx, uuid.MustParse(tt.id), tt.newName)
			var typed *goerrors.Error
			if !errors.As(err, &typed) || typed.Category != tt.category {
				t.Errorf("expected %v error, got %v", tt.category, err)
			}
		})
	}
}
