package productcolors

import (
	"github.com/goliatone/go-order-catalog/aggregate"
	"github.com/goliatone/go-order-catalog/fanout"
	"github.com/goliatone/go-order-catalog/model"
	"github.com/google/uuid"
)

// Summary is one row of the product colors listing. Price is the lowest
// price among the product color's skus, 0 when it has none.
type Summary struct {
	ID       uuid.UUID      `json:"id"`
	Product  ProductSummary `json:"product"`
	Color    ColorSummary   `json:"color"`
	Price    float64        `json:"price"`
	SkuCount int            `json:"skuCount"`
}

type ProductSummary struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
}

type ColorSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Hex  string    `json:"hex,omitempty"`
}

func skuPrice(s *model.Sku) float64 { return s.Price }

func summarize(row fanout.Hydrated[*model.ProductColor, *model.Sku]) Summary {
	pc := row.Parent

	summary := Summary{
		ID:       pc.ID,
		Price:    aggregate.MinPrice(row.Children, skuPrice),
		SkuCount: len(row.Children),
	}
	if pc.Product != nil {
		summary.Product = ProductSummary{
			ID:          pc.Product.ID,
			Code:        pc.Product.Code,
			Name:        pc.Product.Name,
			Description: pc.Product.Description,
			ImageURL:    pc.Product.ImageURL,
		}
	}
	if pc.Color != nil {
		summary.Color = ColorSummary{
			ID:   pc.Color.ID,
			Name: pc.Color.Name,
			Hex:  pc.Color.Hex,
		}
	}
	return summary
}
