package domain

import "github.com/shopspring/decimal"

type QuoteLine struct {
	ItemID         string
	ProductID      string
	Name           string
	Quantity       int
	UnitPrice      decimal.Decimal
	LineTotal      decimal.Decimal
	AvailableStock int
	// PriceChanged is set when the catalog price differs from the price held in the cart.
	PriceChanged bool
	// Short is set when the catalog no longer has Quantity units in stock.
	Short bool
}

type Quote struct {
	Lines []QuoteLine
	Total decimal.Decimal
}

// NeedsReview reports whether any line changed price or is short on stock.
func (q Quote) NeedsReview() bool {
	for _, l := range q.Lines {
		if l.PriceChanged || l.Short {
			return true
		}
	}
	return false
}

type Confirmation struct {
	OrderID     string
	CheckoutURL string
	Total       decimal.Decimal
}
