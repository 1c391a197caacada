package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "DRAFT"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
)

// OrderStatuses returns every known status.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusDraft,
		OrderStatusConfirmed,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCanceled,
	}
}

// Validate rejects unknown statuses. The empty status is accepted so optional
// filter fields can embed it.
func (s OrderStatus) Validate() error {
	values := make([]any, 0, 5)
	for _, v := range OrderStatuses() {
		values = append(values, string(v))
	}
	return validation.Validate(string(s), validation.In(values...).Error("unknown order status"))
}
