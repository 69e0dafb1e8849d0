package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID          string
	UserID      string
	Status      string
	Total       decimal.Decimal
	CheckoutURL string
	OrderItems  []OrderItem
	CreatedAt   time.Time
}

type OrderItem struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	Subtotal  decimal.Decimal
}

type CreateOrderRequest struct {
	UserID string
	Items  []OrderItemRequest
}

type OrderItemRequest struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// OrderResponse is the body of POST /orders.
type OrderResponse struct {
	Success     bool            `json:"success"`
	ID          string          `json:"orderId"`
	CheckoutURL string          `json:"checkoutUrl"`
	Status      string          `json:"status,omitempty"`
	Total       decimal.Decimal `json:"total"`
	Message     string          `json:"message,omitempty"`
}
