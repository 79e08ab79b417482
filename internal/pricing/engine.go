package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

// LineItem is one row of an order form. Total is always derived, never trusted from input.
// The validate tags apply on submission only.
type LineItem struct {
	ProductName string  `json:"productName" validate:"required"`
	Description string  `json:"description,omitempty"`
	Quantity    float64 `json:"quantity" validate:"gt=0"`
	UnitPrice   float64 `json:"unitPrice" validate:"gt=0"`
	Total       float64 `json:"total"`
}

// Totals aggregates computed pricing components.
type Totals struct {
	Items      []LineItem `json:"items"`
	Subtotal   float64    `json:"subtotal"`
	Tax        float64    `json:"tax"`
	Shipping   float64    `json:"shipping"`
	GrandTotal float64    `json:"grandTotal"`
}

// Recompute fills in every line total and derives subtotal and grand total.
// Negative or non-finite inputs count as zero so totals are never negative or NaN.
func Recompute(items []LineItem, tax, shipping float64) Totals {
	out := make([]LineItem, len(items))
	subtotal := decimal.Zero
	for i, it := range items {
		qty := sanitize(it.Quantity)
		price := sanitize(it.UnitPrice)
		line := qty.Mul(price).Round(2)
		it.Total = line.InexactFloat64()
		out[i] = it
		subtotal = subtotal.Add(line)
	}
	taxD := sanitize(tax).Round(2)
	shipD := sanitize(shipping).Round(2)
	return Totals{
		Items:      out,
		Subtotal:   subtotal.InexactFloat64(),
		Tax:        taxD.InexactFloat64(),
		Shipping:   shipD.InexactFloat64(),
		GrandTotal: subtotal.Add(taxD).Add(shipD).InexactFloat64(),
	}
}

// LineTotal returns quantity * unitPrice with the same coercion rules as Recompute.
func LineTotal(quantity, unitPrice float64) float64 {
	return sanitize(quantity).Mul(sanitize(unitPrice)).Round(2).InexactFloat64()
}

func sanitize(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}
