// Package model holds the bun table models of the order catalog.
//
// Table aliases match the relation names bun uses for joins (customer,
// product, color, sku) so predicates read the same whether a table is the
// query root or a joined relation. Orders and product colors use the short
// aliases o and pc.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Customer struct {
	bun.BaseModel `bun:"table:customers,alias:customer"`

	ID        uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Email     string    `bun:"email,notnull" json:"email"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID         uuid.UUID   `bun:"id,pk,type:uuid" json:"id"`
	CustomerID uuid.UUID   `bun:"customer_id,type:uuid,notnull" json:"customerId"`
	Customer   *Customer   `bun:"rel:belongs-to,join:customer_id=id" json:"customer,omitempty"`
	Status     OrderStatus `bun:"status,notnull" json:"status"`
	CreatedAt  time.Time   `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt  time.Time   `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

// OrderItem is one line of an order. It references the sku being bought.
type OrderItem struct {
	bun.BaseModel `bun:"table:order_items,alias:oi"`

	ID       uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	OrderID  uuid.UUID `bun:"order_id,type:uuid,notnull" json:"orderId"`
	SkuID    uuid.UUID `bun:"sku_id,type:uuid,notnull" json:"skuId"`
	Sku      *Sku      `bun:"rel:belongs-to,join:sku_id=id" json:"sku,omitempty"`
	Quantity int       `bun:"quantity,notnull" json:"quantity"`
}

// Sku is a sellable size of a product color.
type Sku struct {
	bun.BaseModel `bun:"table:skus,alias:sku"`

	ID             uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	ProductColorID uuid.UUID `bun:"product_color_id,type:uuid,notnull" json:"productColorId"`
	Code           string    `bun:"code,notnull,unique" json:"code"`
	Size           string    `bun:"size" json:"size"`
	Price          float64   `bun:"price,notnull" json:"price"`
	UpdatedAt      time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

type Product struct {
	bun.BaseModel `bun:"table:products,alias:product"`

	ID          uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Code        string    `bun:"code,notnull,unique" json:"code"`
	Name        string    `bun:"name,notnull" json:"name"`
	Description string    `bun:"description" json:"description"`
	ImageURL    string    `bun:"image_url" json:"imageUrl"`
}

type Color struct {
	bun.BaseModel `bun:"table:colors,alias:color"`

	ID   uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Name string    `bun:"name,notnull,unique" json:"name"`
	Hex  string    `bun:"hex" json:"hex"`
}

// ProductColor is a product offered in one color. Its skus are the children
// aggregated by the product colors listing.
type ProductColor struct {
	bun.BaseModel `bun:"table:product_colors,alias:pc"`

	ID        uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	ProductID uuid.UUID `bun:"product_id,type:uuid,notnull" json:"productId"`
	Product   *Product  `bun:"rel:belongs-to,join:product_id=id" json:"product,omitempty"`
	ColorID   uuid.UUID `bun:"color_id,type:uuid,notnull" json:"colorId"`
	Color     *Color    `bun:"rel:belongs-to,join:color_id=id" json:"color,omitempty"`
}

// All lists every model in foreign key dependency order.
func All() []any {
	return []any{
		(*Customer)(nil),
		(*Product)(nil),
		(*Color)(nil),
		(*ProductColor)(nil),
		(*Sku)(nil),
		(*Order)(nil),
		(*OrderItem)(nil),
	}
}
