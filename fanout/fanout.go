// Package fanout assembles a page of parent rows with their children using
// narrow queries instead of one row-multiplying join.
//
// A Plan supplies three queries: a count of the filtered parents, the
// windowed parent page in primary key order, and one batched child query for
// the keys of that page. Execute runs them, groups children by parent key in
// memory and returns a fully hydrated page or an error; partial pages are
// never returned.
package fanout

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-order-catalog/pagination"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrIncompletePlan is returned when a Plan is missing one of its functions.
var ErrIncompletePlan = errors.New("fanout: plan is missing a query or key function")

// Plan describes the queries behind one listing. K is the parent key type,
// P the parent row and C the child row.
type Plan[K comparable, P any, C any] struct {
	// Count returns the number of parents matching the filter. It must not
	// join children.
	Count func(ctx context.Context) (int, error)
	// Page returns the windowed parents ordered by primary key.
	Page func(ctx context.Context) ([]P, error)
	// Children returns every child whose parent key is in keys, ordered by
	// (parent key, child key).
	Children func(ctx context.Context, keys []K) ([]C, error)
	// ParentKey returns the key of a parent row.
	ParentKey func(P) K
	// ChildParentKey returns the parent key a child row points to.
	ChildParentKey func(C) K
}

func (p Plan[K, P, C]) validate() error {
	if p.Count == nil || p.Page == nil || p.Children == nil || p.ParentKey == nil || p.ChildParentKey == nil {
		return ErrIncompletePlan
	}
	return nil
}

// Hydrated is a parent row with its child collection attached. Children is
// never nil.
type Hydrated[P any, C any] struct {
	Parent   P
	Children []C
}

type options struct {
	concurrent bool
	logger     logrus.FieldLogger
}

// Option configures Execute.
type Option func(*options)

// WithConcurrentReads issues the count and page queries concurrently. The
// child query always waits for the page.
func WithConcurrentReads(enabled bool) Option {
	return func(o *options) {
		o.concurrent = enabled
	}
}

// WithLogger sets the logger for the per-query debug lines.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Execute runs plan and returns the hydrated page. Any query error fails the
// whole call.
func Execute[K comparable, P any, C any](ctx context.Context, plan Plan[K, P, C], opts ...Option) (pagination.Page[Hydrated[P, C]], error) {
	o := options{logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	if err := plan.validate(); err != nil {
		return pagination.Page[Hydrated[P, C]]{}, err
	}

	total, parents, err := countAndPage(ctx, plan, o.concurrent)
	if err != nil {
		return pagination.Page[Hydrated[P, C]]{}, err
	}

	keys := Keys(parents, plan.ParentKey)

	var children []C
	if len(keys) > 0 {
		children, err = plan.Children(ctx, keys)
		if err != nil {
			return pagination.Page[Hydrated[P, C]]{}, fmt.Errorf("fanout children: %w", err)
		}
	}

	o.logger.WithFields(logrus.Fields{
		"total":    total,
		"parents":  len(parents),
		"children": len(children),
	}).Debug("fanout page assembled")

	return pagination.Of(Attach(parents, children, plan.ParentKey, plan.ChildParentKey), total), nil
}

func countAndPage[K comparable, P any, C any](ctx context.Context, plan Plan[K, P, C], concurrent bool) (int, []P, error) {
	var (
		total   int
		parents []P
	)

	if !concurrent {
		var err error
		if total, err = plan.Count(ctx); err != nil {
			return 0, nil, fmt.Errorf("fanout count: %w", err)
		}
		if parents, err = plan.Page(ctx); err != nil {
			return 0, nil, fmt.Errorf("fanout page: %w", err)
		}
		return total, parents, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := plan.Count(gctx)
		if err != nil {
			return fmt.Errorf("fanout count: %w", err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		rows, err := plan.Page(gctx)
		if err != nil {
			return fmt.Errorf("fanout page: %w", err)
		}
		parents = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return 0, nil, err
	}
	return total, parents, nil
}

// Keys returns the distinct keys of parents in first-seen order.
func Keys[K comparable, P any](parents []P, key func(P) K) []K {
	seen := make(map[K]struct{}, len(parents))
	keys := make([]K, 0, len(parents))
	for _, p := range parents {
		k := key(p)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

// Group maps each parent key to its children, preserving the relative order
// the children arrived in.
func Group[K comparable, C any](children []C, parentKey func(C) K) map[K][]C {
	groups := make(map[K][]C)
	for _, c := range children {
		k := parentKey(c)
		groups[k] = append(groups[k], c)
	}
	return groups
}

// Attach pairs every parent with its group of children. Parents without
// children get an empty, non-nil slice. Children whose parent is not in
// parents are dropped.
func Attach[K comparable, P any, C any](parents []P, children []C, parentKey func(P) K, childParentKey func(C) K) []Hydrated[P, C] {
	groups := Group(children, childParentKey)

	items := make([]Hydrated[P, C], 0, len(parents))
	for _, p := range parents {
		group := groups[parentKey(p)]
		if group == nil {
			group = []C{}
		}
		items = append(items, Hydrated[P, C]{Parent: p, Children: group})
	}
	return items
}
