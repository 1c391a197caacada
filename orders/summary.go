package orders

import (
	"time"

	"github.com/goliatone/go-order-catalog/aggregate"
	"github.com/goliatone/go-order-catalog/fanout"
	"github.com/goliatone/go-order-catalog/model"
	"github.com/google/uuid"
)

// Summary is one row of the orders listing: the order, its customer, its
// lines and the totals derived from them.
type Summary struct {
	ID                          uuid.UUID         `json:"id"`
	Status                      model.OrderStatus `json:"status"`
	CreatedAt                   time.Time         `json:"createdAt"`
	Customer                    CustomerSummary   `json:"customer"`
	Items                       []ItemSummary     `json:"items"`
	TotalValue                  float64           `json:"totalValue"`
	TotalQuantity               int               `json:"totalQuantity"`
	TotalProductColors          int               `json:"totalProductColors"`
	AverageValuePerUnit         float64           `json:"averageValuePerUnit"`
	AverageValuePerProductColor float64           `json:"averageValuePerProductColor"`
}

type CustomerSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type ItemSummary struct {
	ID             uuid.UUID `json:"id"`
	SkuID          uuid.UUID `json:"skuId"`
	SkuCode        string    `json:"skuCode"`
	ProductColorID uuid.UUID `json:"productColorId"`
	UnitPrice      float64   `json:"unitPrice"`
	Quantity       int       `json:"quantity"`
}

func itemLine(item ItemSummary) (float64, int, uuid.UUID) {
	return item.UnitPrice, item.Quantity, item.ProductColorID
}

func summarize(row fanout.Hydrated[*model.Order, *model.OrderItem]) Summary {
	order := row.Parent

	items := make([]ItemSummary, 0, len(row.Children))
	for _, child := range row.Children {
		item := ItemSummary{
			ID:       child.ID,
			SkuID:    child.SkuID,
			Quantity: child.Quantity,
		}
		if child.Sku != nil {
			item.SkuCode = child.Sku.Code
			item.ProductColorID = child.Sku.ProductColorID
			item.UnitPrice = child.Sku.Price
		}
		items = append(items, item)
	}

	totals := aggregate.Compute(items, itemLine)

	summary := Summary{
		ID:                          order.ID,
		Status:                      order.Status,
		CreatedAt:                   order.CreatedAt,
		Items:                       items,
		TotalValue:                  totals.TotalValue,
		TotalQuantity:               totals.TotalQuantity,
		TotalProductColors:          totals.DistinctGroupCount,
		AverageValuePerUnit:         totals.AverageValuePerUnit,
		AverageValuePerProductColor: totals.AverageValuePerGroup,
	}
	if order.Customer != nil {
		summary.Customer = CustomerSummary{
			ID:    order.Customer.ID,
			Name:  order.Customer.Name,
			Email: order.Customer.Email,
		}
	}
	return summary
}
