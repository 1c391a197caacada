package productcolors

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-order-catalog/cache"
	"github.com/goliatone/go-order-catalog/fanout"
	"github.com/goliatone/go-order-catalog/pagination"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
)

// Namespace is the cache namespace of the product colors listing. Writes to
// skus, products or colors must invalidate it.
const Namespace = "product-colors"

var ListNamespace = cache.Namespace(Namespace, "list")

type Service struct {
	queries    *Queries
	store      *cache.Store
	logger     logrus.FieldLogger
	concurrent bool
}

type Option func(*Service)

func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithConcurrentReads(enabled bool) Option {
	return func(s *Service) {
		s.concurrent = enabled
	}
}

func NewService(db bun.IDB, store *cache.Store, opts ...Option) *Service {
	s := &Service{
		queries: NewQueries(db),
		store:   store,
		logger:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithField("service", Namespace)
	return s
}

// List returns one page of product colors with their minimum sku price.
func (s *Service) List(ctx context.Context, filter ListFilter) (pagination.Page[Summary], error) {
	filter = filter.Normalize()
	if err := filter.Validate(); err != nil {
		return pagination.Page[Summary]{}, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid product colors filter")
	}

	key := cache.Encode(ListNamespace, filter.CacheParams())
	page, err := cache.GetOrFetch(ctx, s.store, key, func(ctx context.Context) (pagination.Page[Summary], error) {
		return s.load(ctx, filter)
	})
	if err != nil {
		return pagination.Page[Summary]{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list product colors")
	}
	return pagination.Of(page.Items, page.Total), nil
}

func (s *Service) load(ctx context.Context, filter ListFilter) (pagination.Page[Summary], error) {
	rows, err := fanout.Execute(ctx, s.queries.Plan(filter),
		fanout.WithConcurrentReads(s.concurrent),
		fanout.WithLogger(s.logger),
	)
	if err != nil {
		return pagination.Page[Summary]{}, err
	}

	items := make([]Summary, 0, len(rows.Items))
	for _, row := range rows.Items {
		items = append(items, summarize(row))
	}
	return pagination.Of(items, rows.Total), nil
}
