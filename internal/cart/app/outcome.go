package app

import "github.com/dwikikusuma/storefront-cart/internal/cart/domain"

type Outcome string

const (
	OutcomeAdded           Outcome = "added"
	OutcomeUpdated         Outcome = "updated"
	OutcomeAdjusted        Outcome = "adjusted"
	OutcomeAtMaxStock      Outcome = "at_max_stock"
	OutcomeStockMaxReached Outcome = "stock_max_reached"
	OutcomeBelowMinimum    Outcome = "below_minimum"
	OutcomeOutOfStock      Outcome = "out_of_stock"
	OutcomeNoChange        Outcome = "no_change"
	OutcomeInvalid         Outcome = "invalid"
	OutcomeNotFound        Outcome = "not_found"
	OutcomeRemoved         Outcome = "removed"
	OutcomeCancelled       Outcome = "cancelled"
	OutcomeBusy            Outcome = "busy"
)

var outcomeMessages = map[Outcome]string{
	OutcomeAdded:           "added to cart",
	OutcomeUpdated:         "cart updated",
	OutcomeAdjusted:        "quantity adjusted due to availability",
	OutcomeAtMaxStock:      "already at maximum available stock",
	OutcomeStockMaxReached: "stock max reached",
	OutcomeBelowMinimum:    "quantity cannot go below 1",
	OutcomeOutOfStock:      "product is out of stock",
	OutcomeNoChange:        "nothing to change",
	OutcomeInvalid:         "invalid quantity",
	OutcomeNotFound:        "item not found in cart",
	OutcomeRemoved:         "item removed from cart",
	OutcomeCancelled:       "removal cancelled",
	OutcomeBusy:            "another change is still in progress",
}

func (o Outcome) Message() string {
	return outcomeMessages[o]
}

// Result is what every Cart Core mutation returns; stock conditions are
// reported here instead of as errors.
type Result struct {
	Outcome Outcome
	Item    domain.CartItem
}

func (r Result) Message() string {
	return r.Outcome.Message()
}

// Changed reports whether the cart state was modified.
func (r Result) Changed() bool {
	switch r.Outcome {
	case OutcomeAdded, OutcomeUpdated, OutcomeAdjusted, OutcomeRemoved:
		return true
	}
	return false
}

// Warning reports whether the outcome should be surfaced as a non-fatal warning.
func (r Result) Warning() bool {
	switch r.Outcome {
	case OutcomeAdjusted, OutcomeAtMaxStock, OutcomeStockMaxReached, OutcomeOutOfStock, OutcomeBusy:
		return true
	}
	return false
}
