package domain

import "github.com/shopspring/decimal"

type Totals struct {
	UniqueCount   int             `json:"uniqueCount"`
	TotalQuantity int             `json:"totalQuantity"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
}

func Summarize(items []CartItem) Totals {
	t := Totals{UniqueCount: len(items), TotalPrice: decimal.Zero}
	for _, it := range items {
		t.TotalQuantity += it.Quantity
		t.TotalPrice = t.TotalPrice.Add(it.Subtotal)
	}
	return t
}

// Equal compares totals by value; decimals with different exponents but the
// same value are equal.
func (t Totals) Equal(o Totals) bool {
	return t.UniqueCount == o.UniqueCount &&
		t.TotalQuantity == o.TotalQuantity &&
		t.TotalPrice.Equal(o.TotalPrice)
}
