package orders

import (
	"context"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-order-catalog/cache"
	"github.com/goliatone/go-order-catalog/fanout"
	"github.com/goliatone/go-order-catalog/model"
	"github.com/goliatone/go-order-catalog/pagination"
	"github.com/goliatone/go-order-catalog/repositorycache"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
)

// Namespace is the cache namespace of everything derived from orders.
const Namespace = "orders"

// ListNamespace prefixes the keys of cached order pages.
var ListNamespace = cache.Namespace(Namespace, "list")

// Repository is the write side the service needs. A
// *repositorycache.CachedRepository[*model.Order] satisfies it.
type Repository interface {
	GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*model.Order, error)
	GetByIDTx(ctx context.Context, tx bun.IDB, id string, criteria ...repository.SelectCriteria) (*model.Order, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *model.Order, criteria ...repository.InsertCriteria) (*model.Order, error)
	UpdateTx(ctx context.Context, tx bun.IDB, record *model.Order, criteria ...repository.UpdateCriteria) (*model.Order, error)
	DeleteTx(ctx context.Context, tx bun.IDB, record *model.Order) error
	RunInTx(ctx context.Context, db bun.IDB, fn func(ctx context.Context, tx bun.Tx) error) error
}

// Service serves the orders listing through the cache and applies order
// mutations.
type Service struct {
	db         bun.IDB
	queries    *Queries
	repo       Repository
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

// WithConcurrentReads issues the count and page queries of a listing
// concurrently.
func WithConcurrentReads(enabled bool) Option {
	return func(s *Service) {
		s.concurrent = enabled
	}
}

func NewService(db bun.IDB, repo Repository, store *cache.Store, opts ...Option) *Service {
	s := &Service{
		db:      db,
		queries: NewQueries(db),
		repo:    repo,
		store:   store,
		logger:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithField("service", Namespace)
	return s
}

// List returns one page of order summaries. Pages are served from the cache
// when present; otherwise they are assembled with a count query, a page query
// and one batched item query, then cached.
func (s *Service) List(ctx context.Context, filter ListFilter) (pagination.Page[Summary], error) {
	filter = filter.Normalize()
	if err := filter.Validate(); err != nil {
		return pagination.Page[Summary]{}, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid orders filter")
	}

	key := cache.Encode(ListNamespace, filter.CacheParams())
	page, err := cache.GetOrFetch(ctx, s.store, key, func(ctx context.Context) (pagination.Page[Summary], error) {
		return s.load(ctx, filter)
	})
	if err != nil {
		return pagination.Page[Summary]{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list orders")
	}
	return normalizePage(page), nil
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

// normalizePage restores empty slices a cache round trip may have dropped.
func normalizePage(page pagination.Page[Summary]) pagination.Page[Summary] {
	page = pagination.Of(page.Items, page.Total)
	for i := range page.Items {
		if page.Items[i].Items == nil {
			page.Items[i].Items = []ItemSummary{}
		}
	}
	return page
}

// Get returns a single order.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, repositorycache.ClassifyError(err, "failed to get order")
	}
	return order, nil
}

// Patch lists the order fields to change. Nil fields are left untouched.
type Patch struct {
	Status     *model.OrderStatus `json:"status,omitempty"`
	CustomerID *uuid.UUID         `json:"customerId,omitempty"`
}

func (p Patch) Validate() error {
	if p.Status == nil && p.CustomerID == nil {
		return validation.Errors{"patch": errors.New("at least one field is required")}
	}
	return validation.ValidateStruct(&p,
		validation.Field(&p.Status),
		validation.Field(&p.CustomerID, validation.By(notNilUUID)),
	)
}

func (p Patch) apply(order *model.Order, now time.Time) {
	if p.Status != nil {
		order.Status = *p.Status
	}
	if p.CustomerID != nil {
		order.CustomerID = *p.CustomerID
	}
	order.UpdatedAt = now
}

// Update applies patch to one order. Cached order pages are invalidated
// after the transaction commits.
func (s *Service) Update(ctx context.Context, id uuid.UUID, patch Patch) (*model.Order, error) {
	updated, err := s.BatchUpdate(ctx, []uuid.UUID{id}, patch)
	if err != nil {
		return nil, err
	}
	return updated[0], nil
}

// UpdateStatus moves one order to status.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	return s.Update(ctx, id, Patch{Status: &status})
}

// BatchUpdate applies patch to every order in ids inside one transaction.
// Either every order is updated or none is. The cache is invalidated once,
// after commit.
func (s *Service) BatchUpdate(ctx context.Context, ids []uuid.UUID, patch Patch) ([]*model.Order, error) {
	if len(ids) == 0 {
		return nil, goerrors.New("at least one order id is required", goerrors.CategoryValidation)
	}
	if err := patch.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid order patch")
	}

	now := time.Now().UTC()
	updated := make([]*model.Order, 0, len(ids))

	err := s.repo.RunInTx(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		for _, id := range ids {
			order, err := s.repo.GetByIDTx(ctx, tx, id.String())
			if err != nil {
				return err
			}
			patch.apply(order, now)
			order, err = s.repo.UpdateTx(ctx, tx, order)
			if err != nil {
				return err
			}
			updated = append(updated, order)
		}
		return nil
	})
	if err != nil {
		return nil, repositorycache.ClassifyError(err, "failed to update orders")
	}

	s.logger.WithField("orders", len(updated)).Debug("orders updated")
	return updated, nil
}

// CreateInput describes a new order and its lines.
type CreateInput struct {
	CustomerID uuid.UUID         `json:"customerId"`
	Status     model.OrderStatus `json:"status,omitempty"`
	Items      []ItemInput       `json:"items"`
}

type ItemInput struct {
	SkuID    uuid.UUID `json:"skuId"`
	Quantity int       `json:"quantity"`
}

func (in ItemInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.SkuID, validation.By(notNilUUID)),
		validation.Field(&in.Quantity, validation.Required, validation.Min(1)),
	)
}

func (in CreateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.CustomerID, validation.By(notNilUUID)),
		validation.Field(&in.Status),
		validation.Field(&in.Items),
	)
}

// Create inserts an order with its lines in one transaction.
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.Order, error) {
	if err := in.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid order")
	}

	status := in.Status
	if status == "" {
		status = model.OrderStatusDraft
	}

	order := &model.Order{
		ID:         uuid.New(),
		CustomerID: in.CustomerID,
		Status:     status,
	}

	items := make([]*model.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, &model.OrderItem{
			ID:       uuid.New(),
			OrderID:  order.ID,
			SkuID:    it.SkuID,
			Quantity: it.Quantity,
		})
	}

	var created *model.Order
	err := s.repo.RunInTx(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		var err error
		if created, err = s.repo.CreateTx(ctx, tx, order); err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		_, err = tx.NewInsert().Model(&items).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, repositorycache.ClassifyError(err, "failed to create order")
	}
	return created, nil
}

// Delete removes an order and its lines.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.RunInTx(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		order, err := s.repo.GetByIDTx(ctx, tx, id.String())
		if err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*model.OrderItem)(nil)).Where("oi.order_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		return s.repo.DeleteTx(ctx, tx, order)
	})
	if err != nil {
		return repositorycache.ClassifyError(err, "failed to delete order")
	}
	return nil
}

func notNilUUID(value any) error {
	switch id := value.(type) {
	case uuid.UUID:
		if id == uuid.Nil {
			return errors.New("is required")
		}
	case *uuid.UUID:
		if id != nil && *id == uuid.Nil {
			return errors.New("is required")
		}
	}
	return nil
}
