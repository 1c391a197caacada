package repositorycache

import (
	"context"

	"github.com/goliatone/go-order-catalog/cache"
	"github.com/goliatone/go-order-catalog/pagination"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
)

// Interface assertion to ensure CachedRepository implements Repository[T]
var _ repository.Repository[any] = (*CachedRepository[any])(nil)

// CachedRepository decorates a base repository with a namespaced cache.
//
// Reads by id, by identifier and ListPage are cached under the namespace.
// Every successful non-transactional write drops all keys of the namespace
// and of its dependent namespaces. Transactional writes leave the cache alone;
// run them through RunInTx to invalidate once the transaction commits.
type CachedRepository[T any] struct {
	base       repository.Repository[T]
	store      *cache.Store
	namespace  string
	dependents []string
	logger     logrus.FieldLogger
}

type settings struct {
	namespace  string
	dependents []string
	logger     logrus.FieldLogger
}

// Option configures a CachedRepository.
type Option func(*settings)

// WithNamespace overrides the namespace derived from the model type name.
func WithNamespace(namespace string) Option {
	return func(s *settings) {
		if namespace != "" {
			s.namespace = namespace
		}
	}
}

// WithDependentNamespaces lists namespaces whose pages embed data of this
// repository. They are invalidated together with the repository namespace.
func WithDependentNamespaces(namespaces ...string) Option {
	return func(s *settings) {
		s.dependents = append(s.dependents, namespaces...)
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a CachedRepository that wraps base. Without WithNamespace the
// namespace is the plural kebab case of the model type, e.g. ProductColor
// becomes product-colors.
func New[T any](base repository.Repository[T], store *cache.Store, opts ...Option) *CachedRepository[T] {
	s := settings{logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&s)
	}
	if s.namespace == "" {
		s.namespace = namespaceFor[T]()
	}

	return &CachedRepository[T]{
		base:       base,
		store:      store,
		namespace:  s.namespace,
		dependents: dedupeStrings(s.dependents),
		logger:     s.logger.WithField("namespace", s.namespace),
	}
}

// Namespace returns the cache namespace of the repository.
func (c *CachedRepository[T]) Namespace() string {
	return c.namespace
}

func (c *CachedRepository[T]) getKey(params map[string]any) string {
	return cache.Encode(cache.Namespace(c.namespace, "get"), params)
}

func (c *CachedRepository[T]) listKey(params map[string]any) string {
	return cache.Encode(cache.Namespace(c.namespace, "list"), params)
}

// GetByID retrieves a record by ID. Calls without criteria are cached.
func (c *CachedRepository[T]) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (T, error) {
	if len(criteria) > 0 {
		return c.base.GetByID(ctx, id, criteria...)
	}
	return cache.GetOrFetch(ctx, c.store, c.getKey(map[string]any{"id": id}), func(ctx context.Context) (T, error) {
		return c.base.GetByID(ctx, id)
	})
}

// GetByIdentifier retrieves a record by identifier. Calls without criteria are cached.
func (c *CachedRepository[T]) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (T, error) {
	if len(criteria) > 0 {
		return c.base.GetByIdentifier(ctx, identifier, criteria...)
	}
	return cache.GetOrFetch(ctx, c.store, c.getKey(map[string]any{"identifier": identifier}), func(ctx context.Context) (T, error) {
		return c.base.GetByIdentifier(ctx, identifier)
	})
}

// ListPage returns one window of the records matching filter, ordered by
// primary key, together with the filtered total. Results are cached under
// the namespace list key built from the filter's cache parameters.
func (c *CachedRepository[T]) ListPage(ctx context.Context, filter pagination.Filter) (pagination.Page[T], error) {
	if err := filter.Validate(); err != nil {
		return pagination.Page[T]{}, err
	}

	page, err := cache.GetOrFetch(ctx, c.store, c.listKey(filter.CacheParams()), func(ctx context.Context) (pagination.Page[T], error) {
		records, total, err := c.base.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
			q = filter.BuildPredicate(q)
			q = q.OrderExpr("?TableAlias.id ASC")
			return filter.Window().Apply(q)
		})
		if err != nil {
			return pagination.Page[T]{}, err
		}
		return pagination.Of(records, total), nil
	})
	if err != nil {
		return pagination.Page[T]{}, err
	}
	return pagination.Of(page.Items, page.Total), nil
}

// Get is not cached: criteria are functions and have no stable key.
func (c *CachedRepository[T]) Get(ctx context.Context, criteria ...repository.SelectCriteria) (T, error) {
	return c.base.Get(ctx, criteria...)
}

// List is not cached, use ListPage for cached listings.
func (c *CachedRepository[T]) List(ctx context.Context, criteria ...repository.SelectCriteria) ([]T, int, error) {
	return c.base.List(ctx, criteria...)
}

func (c *CachedRepository[T]) Count(ctx context.Context, criteria ...repository.SelectCriteria) (int, error) {
	return c.base.Count(ctx, criteria...)
}

func (c *CachedRepository[T]) Create(ctx context.Context, record T, criteria ...repository.InsertCriteria) (T, error) {
	result, err := c.base.Create(ctx, record, criteria...)
	c.afterWrite(ctx, err)
	return result, err
}

func (c *CachedRepository[T]) CreateMany(ctx context.Context, records []T, criteria ...repository.InsertCriteria) ([]T, error) {
	result, err := c.base.CreateMany(ctx, records, criteria...)
	c.afterWrite(ctx, err)
	return result, err
}

// GetOrCreate may insert, so it invalidates like a create.
func (c *CachedRepository[T]) GetOrCreate(ctx context.Context, record T) (T, error) {
	result, err := c.base.GetOrCreate(ctx, record)
	c.afterWrite(ctx, err)
	return result, err
}

func (c *CachedRepository[T]) Update(ctx context.Context, record T, criteria ...repository.UpdateCriteria) (T, error) {
	result, err := c.base.Update(ctx, record, criteria...)
	c.afterWrite(ctx, err)
	return result, err
}

func (c *CachedRepository[T]) UpdateMany(ctx context.Context, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	result, err := c.base.UpdateMany(ctx, records, criteria...)
	c.afterWrite(ctx, err)
	return result, err
}

func (c *CachedRepository[T]) Upsert(ctx context.Context, record T, criteria ...repository.UpdateCriteria) (T, error) {
	result, err := c.base.Upsert(ctx, record, criteria...)
	c.afterWrite(ctx, err)
	return result, err
}

func (c *CachedRepository[T]) UpsertMany(ctx context.Context, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	result, err := c.base.UpsertMany(ctx, records, criteria...)
	c.afterWrite(ctx, err)
	return result, err
}

func (c *CachedRepository[T]) Delete(ctx context.Context, record T) error {
	err := c.base.Delete(ctx, record)
	c.afterWrite(ctx, err)
	return err
}

func (c *CachedRepository[T]) DeleteMany(ctx context.Context, criteria ...repository.DeleteCriteria) error {
	err := c.base.DeleteMany(ctx, criteria...)
	c.afterWrite(ctx, err)
	return err
}

func (c *CachedRepository[T]) DeleteWhere(ctx context.Context, criteria ...repository.DeleteCriteria) error {
	err := c.base.DeleteWhere(ctx, criteria...)
	c.afterWrite(ctx, err)
	return err
}

func (c *CachedRepository[T]) ForceDelete(ctx context.Context, record T) error {
	err := c.base.ForceDelete(ctx, record)
	c.afterWrite(ctx, err)
	return err
}

// Transactional operations pass through untouched. Reads inside a
// transaction must see its own writes, and invalidating before commit would
// let a concurrent reader cache pre-write data again.

func (c *CachedRepository[T]) GetTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) (T, error) {
	return c.base.GetTx(ctx, tx, criteria...)
}

func (c *CachedRepository[T]) GetByIDTx(ctx context.Context, tx bun.IDB, id string, criteria ...repository.SelectCriteria) (T, error) {
	return c.base.GetByIDTx(ctx, tx, id, criteria...)
}

func (c *CachedRepository[T]) GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (T, error) {
	return c.base.GetByIdentifierTx(ctx, tx, identifier, criteria...)
}

func (c *CachedRepository[T]) ListTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) ([]T, int, error) {
	return c.base.ListTx(ctx, tx, criteria...)
}

func (c *CachedRepository[T]) CountTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) (int, error) {
	return c.base.CountTx(ctx, tx, criteria...)
}

func (c *CachedRepository[T]) CreateTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.InsertCriteria) (T, error) {
	return c.base.CreateTx(ctx, tx, record, criteria...)
}

func (c *CachedRepository[T]) CreateManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...repository.InsertCriteria) ([]T, error) {
	return c.base.CreateManyTx(ctx, tx, records, criteria...)
}

func (c *CachedRepository[T]) GetOrCreateTx(ctx context.Context, tx bun.IDB, record T) (T, error) {
	return c.base.GetOrCreateTx(ctx, tx, record)
}

func (c *CachedRepository[T]) UpdateTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.UpdateCriteria) (T, error) {
	return c.base.UpdateTx(ctx, tx, record, criteria...)
}

func (c *CachedRepository[T]) UpdateManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	return c.base.UpdateManyTx(ctx, tx, records, criteria...)
}

func (c *CachedRepository[T]) UpsertTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.UpdateCriteria) (T, error) {
	return c.base.UpsertTx(ctx, tx, record, criteria...)
}

func (c *CachedRepository[T]) UpsertManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	return c.base.UpsertManyTx(ctx, tx, records, criteria...)
}

func (c *CachedRepository[T]) DeleteTx(ctx context.Context, tx bun.IDB, record T) error {
	return c.base.DeleteTx(ctx, tx, record)
}

func (c *CachedRepository[T]) DeleteManyTx(ctx context.Context, tx bun.IDB, criteria ...repository.DeleteCriteria) error {
	return c.base.DeleteManyTx(ctx, tx, criteria...)
}

func (c *CachedRepository[T]) DeleteWhereTx(ctx context.Context, tx bun.IDB, criteria ...repository.DeleteCriteria) error {
	return c.base.DeleteWhereTx(ctx, tx, criteria...)
}

func (c *CachedRepository[T]) ForceDeleteTx(ctx context.Context, tx bun.IDB, record T) error {
	return c.base.ForceDeleteTx(ctx, tx, record)
}

func (c *CachedRepository[T]) Raw(ctx context.Context, sql string, args ...any) ([]T, error) {
	return c.base.Raw(ctx, sql, args...)
}

func (c *CachedRepository[T]) RawTx(ctx context.Context, tx bun.IDB, sql string, args ...any) ([]T, error) {
	return c.base.RawTx(ctx, tx, sql, args...)
}

// Handlers returns the model handlers from the base repository
func (c *CachedRepository[T]) Handlers() repository.ModelHandlers[T] {
	return c.base.Handlers()
}

// RunInTx runs fn inside a transaction on db and invalidates the namespace
// after the transaction commits. Nothing is invalidated when fn or the
// commit fails.
func (c *CachedRepository[T]) RunInTx(ctx context.Context, db bun.IDB, fn func(ctx context.Context, tx bun.Tx) error) error {
	err := db.RunInTx(ctx, nil, fn)
	c.afterWrite(ctx, err)
	return err
}

// Invalidate drops every cached key of the namespace, its dependent
// namespaces and any namespaces attached to ctx with WithInvalidation.
func (c *CachedRepository[T]) Invalidate(ctx context.Context) {
	c.InvalidateNamespaces(ctx, append(append([]string{c.namespace}, c.dependents...), invalidationFromContext(ctx)...)...)
}

// InvalidateNamespaces drops every cached key of the given namespaces only.
func (c *CachedRepository[T]) InvalidateNamespaces(ctx context.Context, namespaces ...string) {
	for _, ns := range dedupeStrings(namespaces) {
		out := c.store.InvalidatePattern(ctx, cache.Pattern(ns))
		c.logger.WithFields(logrus.Fields{
			"pattern": out.Target,
			"removed": out.Removed,
		}).Debug("cache namespace invalidated")
	}
}

func (c *CachedRepository[T]) afterWrite(ctx context.Context, err error) {
	if err != nil {
		return
	}
	c.Invalidate(ctx)
}
