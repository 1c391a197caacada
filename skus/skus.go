// Package skus lists skus and updates their prices. Sku prices feed the
// aggregates of the orders and product colors listings, so price writes
// invalidate those namespaces too.
package skus

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-order-catalog/model"
	"github.com/goliatone/go-order-catalog/orders"
	"github.com/goliatone/go-order-catalog/pagination"
	"github.com/goliatone/go-order-catalog/repositorycache"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
)

const Namespace = "skus"

// ListFilter selects skus of one product color and/or by code substring.
type ListFilter struct {
	pagination.Request
	ProductColorID *uuid.UUID `json:"productColorId,omitempty"`
	Code           string     `json:"code,omitempty"`
}

var _ pagination.Filter = ListFilter{}

func (f ListFilter) Normalize() ListFilter {
	f.Code = strings.TrimSpace(f.Code)
	f.Request = pagination.Paginate(f.Request, nil, nil)
	return f
}

func (f ListFilter) Window() pagination.Request { return f.Request }

func (f ListFilter) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Request),
		validation.Field(&f.Code, validation.Length(0, 64)),
	)
}

func (f ListFilter) BuildPredicate(q *bun.SelectQuery) *bun.SelectQuery {
	if f.ProductColorID != nil {
		q = q.Where("sku.product_color_id = ?", *f.ProductColorID)
	}
	if f.Code != "" {
		q = q.Where("LOWER(sku.code) LIKE ? ESCAPE '!'", pagination.ContainsPattern(f.Code))
	}
	return q
}

func (f ListFilter) CacheParams() map[string]any {
	params := f.Request.Params()
	params["code"] = f.Code
	if f.ProductColorID != nil {
		params["productColorId"] = f.ProductColorID.String()
	}
	return params
}

// Repository is satisfied by *repositorycache.CachedRepository[*model.Sku].
type Repository interface {
	GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*model.Sku, error)
	Update(ctx context.Context, record *model.Sku, criteria ...repository.UpdateCriteria) (*model.Sku, error)
	ListPage(ctx context.Context, filter pagination.Filter) (pagination.Page[*model.Sku], error)
	InvalidateNamespaces(ctx context.Context, namespaces ...string)
}

type Service struct {
	db     bun.IDB
	repo   Repository
	logger logrus.FieldLogger
}

func NewService(db bun.IDB, repo Repository, logger logrus.FieldLogger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{db: db, repo: repo, logger: logger.WithField("service", Namespace)}
}

func (s *Service) List(ctx context.Context, filter ListFilter) (pagination.Page[*model.Sku], error) {
	filter = filter.Normalize()
	if err := filter.Validate(); err != nil {
		return pagination.Page[*model.Sku]{}, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid skus filter")
	}
	page, err := s.repo.ListPage(ctx, filter)
	if err != nil {
		return pagination.Page[*model.Sku]{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list skus")
	}
	return page, nil
}

// UpdatePrice sets the price of one sku. Order pages are invalidated as
// well when any order line references the sku. The lines are counted after
// the price commits, so an order committed in between is either seen here
// or has already invalidated the orders namespace itself.
func (s *Service) UpdatePrice(ctx context.Context, id uuid.UUID, price float64) (*model.Sku, error) {
	if err := validation.Validate(price, validation.Min(0.0)); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid sku price")
	}

	sku, err := s.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, repositorycache.ClassifyError(err, "failed to load sku")
	}

	repriced := *sku
	repriced.Price = price
	repriced.UpdatedAt = time.Now().UTC()

	updated, err := s.repo.Update(ctx, &repriced)
	if err != nil {
		return nil, repositorycache.ClassifyError(err, "failed to update sku price")
	}

	logger := s.logger.WithFields(logrus.Fields{
		"sku":   id,
		"price": price,
	})

	lines, err := s.db.NewSelect().Model((*model.OrderItem)(nil)).Where("oi.sku_id = ?", id).Count(ctx)
	if err != nil {
		logger.WithError(err).Warn("failed to count order lines, invalidating orders")
		lines = -1
	}
	if lines != 0 {
		s.repo.InvalidateNamespaces(ctx, orders.Namespace)
	}

	logger.WithField("order_lines", lines).Info("sku price updated")
	return updated, nil
}
