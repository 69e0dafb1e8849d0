package app

import (
	"context"

	"github.com/dwikikusuma/storefront-cart/internal/cart/domain"
)

// Replica is the durable local copy of the cart.
type Replica interface {
	Load(ctx context.Context) ([]domain.CartItem, error)
	Save(ctx context.Context, items []domain.CartItem) error
	Remove(ctx context.Context) error
}
