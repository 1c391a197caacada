package orders

import (
	"context"

	"github.com/goliatone/go-order-catalog/fanout"
	"github.com/goliatone/go-order-catalog/model"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Queries holds the three narrow reads behind the orders listing.
type Queries struct {
	db bun.IDB
}

func NewQueries(db bun.IDB) *Queries {
	return &Queries{db: db}
}

// Count returns the number of orders matching filter. The customer table is
// joined only when the predicate needs it; items are never joined.
func (q *Queries) Count(ctx context.Context, filter ListFilter) (int, error) {
	query := q.db.NewSelect().Model((*model.Order)(nil))
	if filter.joinsCustomer() {
		query = query.Join("LEFT JOIN customers AS customer ON customer.id = o.customer_id")
	}
	return filter.BuildPredicate(query).Count(ctx)
}

// Page returns the filtered window of orders with their customer, ordered
// by primary key.
func (q *Queries) Page(ctx context.Context, filter ListFilter) ([]*model.Order, error) {
	orders := make([]*model.Order, 0, filter.Limit)
	query := q.db.NewSelect().Model(&orders).Relation("Customer")
	query = filter.BuildPredicate(query).OrderExpr("o.id ASC")
	if err := filter.Window().Apply(query).Scan(ctx); err != nil {
		return nil, err
	}
	return orders, nil
}

// Items returns the line items of the given orders with their sku, ordered
// by (order_id, id).
func (q *Queries) Items(ctx context.Context, orderIDs []uuid.UUID) ([]*model.OrderItem, error) {
	items := make([]*model.OrderItem, 0, len(orderIDs))
	err := q.db.NewSelect().
		Model(&items).
		Relation("Sku").
		Where("oi.order_id IN (?)", bun.In(orderIDs)).
		OrderExpr("oi.order_id ASC, oi.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Plan binds the queries to filter.
func (q *Queries) Plan(filter ListFilter) fanout.Plan[uuid.UUID, *model.Order, *model.OrderItem] {
	return fanout.Plan[uuid.UUID, *model.Order, *model.OrderItem]{
		Count: func(ctx context.Context) (int, error) {
			return q.Count(ctx, filter)
		},
		Page: func(ctx context.Context) ([]*model.Order, error) {
			return q.Page(ctx, filter)
		},
		Children:       q.Items,
		ParentKey:      func(o *model.Order) uuid.UUID { return o.ID },
		ChildParentKey: func(i *model.OrderItem) uuid.UUID { return i.OrderID },
	}
}
