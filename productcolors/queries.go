package productcolors

import (
	"context"

	"github.com/goliatone/go-order-catalog/fanout"
	"github.com/goliatone/go-order-catalog/model"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Queries holds the reads behind the product colors listing.
type Queries struct {
	db bun.IDB
}

func NewQueries(db bun.IDB) *Queries {
	return &Queries{db: db}
}

func (q *Queries) Count(ctx context.Context, filter ListFilter) (int, error) {
	query := q.db.NewSelect().Model((*model.ProductColor)(nil))
	return filter.BuildPredicate(query).Count(ctx)
}

// IDs returns the primary keys of the filtered window, in ascending order.
func (q *Queries) IDs(ctx context.Context, filter ListFilter) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, filter.Limit)
	query := q.db.NewSelect().Model((*model.ProductColor)(nil)).ColumnExpr("pc.id")
	query = filter.BuildPredicate(query).OrderExpr("pc.id ASC")
	if err := filter.Window().Apply(query).Scan(ctx, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// Details loads the given product colors with product and color.
func (q *Queries) Details(ctx context.Context, ids []uuid.UUID) ([]*model.ProductColor, error) {
	rows := make([]*model.ProductColor, 0, len(ids))
	if len(ids) == 0 {
		return rows, nil
	}
	err := q.db.NewSelect().
		Model(&rows).
		Relation("Product").
		Relation("Color").
		Where("pc.id IN (?)", bun.In(ids)).
		OrderExpr("pc.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Page is IDs followed by Details.
func (q *Queries) Page(ctx context.Context, filter ListFilter) ([]*model.ProductColor, error) {
	ids, err := q.IDs(ctx, filter)
	if err != nil {
		return nil, err
	}
	return q.Details(ctx, ids)
}

// Skus returns the id, product color and price of every sku of the given
// product colors, ordered by (product_color_id, price).
func (q *Queries) Skus(ctx context.Context, productColorIDs []uuid.UUID) ([]*model.Sku, error) {
	skus := make([]*model.Sku, 0, len(productColorIDs))
	err := q.db.NewSelect().
		Model(&skus).
		Column("id", "product_color_id", "price").
		Where("sku.product_color_id IN (?)", bun.In(productColorIDs)).
		OrderExpr("sku.product_color_id ASC, sku.price ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return skus, nil
}

func (q *Queries) Plan(filter ListFilter) fanout.Plan[uuid.UUID, *model.ProductColor, *model.Sku] {
	return fanout.Plan[uuid.UUID, *model.ProductColor, *model.Sku]{
		Count: func(ctx context.Context) (int, error) {
			return q.Count(ctx, filter)
		},
		Page: func(ctx context.Context) ([]*model.ProductColor, error) {
			return q.Page(ctx, filter)
		},
		Children:       q.Skus,
		ParentKey:      func(pc *model.ProductColor) uuid.UUID { return pc.ID },
		ChildParentKey: func(s *model.Sku) uuid.UUID { return s.ProductColorID },
	}
}
