package orders

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-order-catalog/model"
	"github.com/goliatone/go-order-catalog/pagination"
	"github.com/uptrace/bun"
)

// ListFilter selects orders by customer text match and status.
type ListFilter struct {
	pagination.Request
	// CustomerNameOrEmail is a case-insensitive substring of the customer
	// name or email.
	CustomerNameOrEmail string            `json:"customerNameOrEmail,omitempty"`
	Status              model.OrderStatus `json:"status,omitempty"`
}

var _ pagination.Filter = ListFilter{}

// Normalize trims the text term and applies pagination defaults.
func (f ListFilter) Normalize() ListFilter {
	f.CustomerNameOrEmail = strings.TrimSpace(f.CustomerNameOrEmail)
	f.Request = pagination.Paginate(f.Request, nil, nil)
	return f
}

func (f ListFilter) Window() pagination.Request {
	return f.Request
}

func (f ListFilter) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Request),
		validation.Field(&f.CustomerNameOrEmail, validation.Length(0, 255)),
		validation.Field(&f.Status),
	)
}

// joinsCustomer reports whether the predicate references the customer table.
func (f ListFilter) joinsCustomer() bool {
	return f.CustomerNameOrEmail != ""
}

// BuildPredicate expects the customer relation to be joined under the alias
// "customer" when a text term is set.
func (f ListFilter) BuildPredicate(q *bun.SelectQuery) *bun.SelectQuery {
	if f.CustomerNameOrEmail != "" {
		pattern := pagination.ContainsPattern(f.CustomerNameOrEmail)
		q = q.Where("(LOWER(customer.name) LIKE ? ESCAPE '!' OR LOWER(customer.email) LIKE ? ESCAPE '!')", pattern, pattern)
	}
	if f.Status != "" {
		q = q.Where("o.status = ?", f.Status)
	}
	return q
}

func (f ListFilter) CacheParams() map[string]any {
	params := f.Request.Params()
	params["customerNameOrEmail"] = f.CustomerNameOrEmail
	params["status"] = string(f.Status)
	return params
}
