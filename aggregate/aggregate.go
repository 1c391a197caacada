// Package aggregate derives per-parent totals from a child collection.
//
// Everything here is a pure function of its input. Results are recomputed
// whenever a page is rebuilt and are never cached on their own.
package aggregate

import "math"

// Totals holds the derived fields of one parent row.
type Totals struct {
	TotalValue           float64 `json:"totalValue"`
	TotalQuantity        int     `json:"totalQuantity"`
	DistinctGroupCount   int     `json:"distinctGroupCount"`
	AverageValuePerUnit  float64 `json:"averageValuePerUnit"`
	AverageValuePerGroup float64 `json:"averageValuePerGroup"`
}

// LineFunc extracts the unit price, quantity and classification group of a child.
type LineFunc[C any, G comparable] func(child C) (unitPrice float64, quantity int, group G)

// Compute folds children into Totals. Averages are rounded to two decimal
// places and are 0 when their divisor is 0. An empty collection yields the
// zero Totals.
func Compute[C any, G comparable](children []C, line LineFunc[C, G]) Totals {
	var totals Totals
	groups := make(map[G]struct{}, len(children))

	for _, child := range children {
		price, qty, group := line(child)
		totals.TotalValue += price * float64(qty)
		totals.TotalQuantity += qty
		groups[group] = struct{}{}
	}

	totals.DistinctGroupCount = len(groups)
	totals.AverageValuePerUnit = Average(totals.TotalValue, totals.TotalQuantity)
	totals.AverageValuePerGroup = Average(totals.TotalValue, totals.DistinctGroupCount)
	return totals
}

// Average returns total/count rounded to two decimal places, or 0 when count is 0.
func Average(total float64, count int) float64 {
	if count <= 0 {
		return 0
	}
	return Round2(total / float64(count))
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// MinPrice returns the smallest price reported by price, or 0 for an empty collection.
func MinPrice[C any](children []C, price func(C) float64) float64 {
	if len(children) == 0 {
		return 0
	}
	lowest := price(children[0])
	for _, child := range children[1:] {
		if p := price(child); p < lowest {
			lowest = p
		}
	}
	return lowest
}
