package di

import (
	"context"
	"io"

	"github.com/goliatone/go-order-catalog/cache"
	"github.com/goliatone/go-order-catalog/colors"
	"github.com/goliatone/go-order-catalog/config"
	"github.com/goliatone/go-order-catalog/internal/database"
	"github.com/goliatone/go-order-catalog/model"
	"github.com/goliatone/go-order-catalog/orders"
	"github.com/goliatone/go-order-catalog/productcolors"
	"github.com/goliatone/go-order-catalog/repositorycache"
	"github.com/goliatone/go-order-catalog/skus"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
)

// Container wires the cache store, the database handle, the cached
// repositories and the listing services. Everything is built once in
// NewContainer and passed down explicitly; nothing is global.
type Container struct {
	config  config.Config
	logger  logrus.FieldLogger
	backend cache.Backend
	store   *cache.Store
	db      *bun.DB
	ownsDB  bool

	orders        *orders.Service
	productColors *productcolors.Service
	colors        *colors.Service
	skus          *skus.Service
}

type Option func(*Container)

func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDB uses an existing handle instead of opening cfg.Database. The
// container does not close it.
func WithDB(db *bun.DB) Option {
	return func(c *Container) {
		c.db = db
	}
}

// WithBackend uses backend instead of building one from cfg.Cache.
func WithBackend(backend cache.Backend) Option {
	return func(c *Container) {
		c.backend = backend
	}
}

// NewContainer builds every component from cfg.
func NewContainer(ctx context.Context, cfg config.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{config: cfg}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = cfg.NewLogger()
	}

	if c.backend == nil {
		backend, err := cache.NewBackend(ctx, cfg.Cache)
		if err != nil {
			return nil, err
		}
		c.backend = backend
	}
	c.store = cache.NewStore(c.backend, cache.WithTTL(cfg.Cache.TTL), cache.WithLogger(c.logger))

	if c.db == nil {
		db, err := database.Open(cfg.Database)
		if err != nil {
			closeBackend(c.backend)
			return nil, err
		}
		db.AddQueryHook(database.NewQueryHook(c.logger))
		c.db = db
		c.ownsDB = true
	}

	orderRepo := NewCachedRepository(c,
		repository.NewRepository[*model.Order](c.db, model.NewHandlers[*model.Order]("id")),
		repositorycache.WithNamespace(orders.Namespace),
	)
	colorRepo := NewCachedRepository(c,
		repository.NewRepository[*model.Color](c.db, model.NewHandlers[*model.Color]("name")),
		repositorycache.WithNamespace(colors.Namespace),
		repositorycache.WithDependentNamespaces(productcolors.Namespace),
	)
	skuRepo := NewCachedRepository(c,
		repository.NewRepository[*model.Sku](c.db, model.NewHandlers[*model.Sku]("code")),
		repositorycache.WithNamespace(skus.Namespace),
		repositorycache.WithDependentNamespaces(productcolors.Namespace),
	)

	concurrent := cfg.Listing.ConcurrentReads
	c.orders = orders.NewService(c.db, orderRepo, c.store,
		orders.WithLogger(c.logger),
		orders.WithConcurrentReads(concurrent),
	)
	c.productColors = productcolors.NewService(c.db, c.store,
		productcolors.WithLogger(c.logger),
		productcolors.WithConcurrentReads(concurrent),
	)
	c.colors = colors.NewService(colorRepo, c.logger)
	c.skus = skus.NewService(c.db, skuRepo, c.logger)

	c.logger.WithFields(logrus.Fields{
		"cache":    cfg.Cache.Driver,
		"database": cfg.Database.Driver,
	}).Info("container ready")
	return c, nil
}

// NewContainerWithDefaults builds a container over in-memory sqlite and the
// in-process cache.
func NewContainerWithDefaults(ctx context.Context, opts ...Option) (*Container, error) {
	return NewContainer(ctx, config.Default(), opts...)
}

// NewCachedRepository wraps base with the container store and logger.
//
// Since Go methods cannot have type parameters, this is provided as a package-level function.
func NewCachedRepository[T any](c *Container, base repository.Repository[T], opts ...repositorycache.Option) *repositorycache.CachedRepository[T] {
	opts = append([]repositorycache.Option{repositorycache.WithLogger(c.logger)}, opts...)
	return repositorycache.New(base, c.store, opts...)
}

func (c *Container) Config() config.Config                 { return c.config }
func (c *Container) Store() *cache.Store                   { return c.store }
func (c *Container) DB() *bun.DB                           { return c.db }
func (c *Container) Orders() *orders.Service               { return c.orders }
func (c *Container) ProductColors() *productcolors.Service { return c.productColors }
func (c *Container) Colors() *colors.Service               { return c.colors }
func (c *Container) Skus() *skus.Service                   { return c.skus }

// EnsureSchema creates missing tables. Used by demos and tests running on
// sqlite.
func (c *Container) EnsureSchema(ctx context.Context) error {
	return database.EnsureSchema(ctx, c.db)
}

// FlushCache drops every cached entry.
func (c *Container) FlushCache(ctx context.Context) cache.Outcome {
	return c.store.Flush(ctx)
}

// Close releases the cache backend and, unless it was supplied with WithDB,
// the database handle.
func (c *Container) Close() error {
	closeBackend(c.backend)
	if c.ownsDB {
		return c.db.Close()
	}
	return nil
}

func closeBackend(backend cache.Backend) {
	if closer, ok := backend.(io.Closer); ok {
		closer.Close()
	}
}
