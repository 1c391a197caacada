package productcolors

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-order-catalog/pagination"
	"github.com/uptrace/bun"
)

// ListFilter selects product colors whose product code or name contains a
// term.
type ListFilter struct {
	pagination.Request
	ProductCodeOrName string `json:"productCodeOrName,omitempty"`
}

var _ pagination.Filter = ListFilter{}

func (f ListFilter) Normalize() ListFilter {
	f.ProductCodeOrName = strings.TrimSpace(f.ProductCodeOrName)
	f.Request = pagination.Paginate(f.Request, nil, nil)
	return f
}

func (f ListFilter) Window() pagination.Request {
	return f.Request
}

func (f ListFilter) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Request),
		validation.Field(&f.ProductCodeOrName, validation.Length(0, 255)),
	)
}

// BuildPredicate matches through a correlated subquery so the product
// table is never joined and every product color is counted once.
func (f ListFilter) BuildPredicate(q *bun.SelectQuery) *bun.SelectQuery {
	if f.ProductCodeOrName == "" {
		return q
	}
	pattern := pagination.ContainsPattern(f.ProductCodeOrName)
	return q.Where(
		"EXISTS (SELECT 1 FROM products AS p WHERE p.id = pc.product_id AND (LOWER(p.code) LIKE ? ESCAPE '!' OR LOWER(p.name) LIKE ? ESCAPE '!'))",
		pattern, pattern,
	)
}

func (f ListFilter) CacheParams() map[string]any {
	params := f.Request.Params()
	params["productCodeOrName"] = f.ProductCodeOrName
	return params
}
