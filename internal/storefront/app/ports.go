package app

import (
	"context"

	catalogdomain "github.com/dwikikusuma/storefront-cart/internal/catalog/domain"
	orderdomain "github.com/dwikikusuma/storefront-cart/internal/order/domain"
	"github.com/dwikikusuma/storefront-cart/internal/storefront/domain"
)

// CartStore persists one ordered line list per user.
type CartStore interface {
	Get(ctx context.Context, userID string) ([]domain.Line, error)
	Replace(ctx context.Context, userID string, lines []domain.Line) error
	Clear(ctx context.Context, userID string) error
}

type ProductLookup interface {
	GetProducts(ctx context.Context, ids []string) (map[string]catalogdomain.Product, error)
}

type OrderCreator interface {
	CreateOrder(ctx context.Context, req orderdomain.CreateOrderRequest) (orderdomain.OrderResponse, error)
}
