package adapter

import (
	"context"

	cartapp "github.com/dwikikusuma/storefront-cart/internal/cart/app"
	checkoutapp "github.com/dwikikusuma/storefront-cart/internal/checkout/app"
)

// CartServiceReader exposes Cart Core to checkout.
type CartServiceReader struct {
	svc *cartapp.Service
}

func NewCartServiceReader(svc *cartapp.Service) *CartServiceReader {
	return &CartServiceReader{svc: svc}
}

func (r *CartServiceReader) GetCart(_ context.Context) ([]checkoutapp.CartItem, error) {
	cart := r.svc.Items()

	items := make([]checkoutapp.CartItem, 0, len(cart))
	for _, it := range cart {
		items = append(items, checkoutapp.CartItem{
			ItemID:    it.ID.String(),
			ProductID: it.ProductID.String(),
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return items, nil
}

// LocalCartClearer clears the local cart through the sync coordinator, which
// also resets its acknowledged baseline.
type LocalCartClearer struct {
	local interface{ ClearLocal(ctx context.Context) }
}

func NewLocalCartClearer(local interface{ ClearLocal(ctx context.Context) }) *LocalCartClearer {
	return &LocalCartClearer{local: local}
}

func (c *LocalCartClearer) ClearCart(ctx context.Context) error {
	c.local.ClearLocal(ctx)
	return nil
}
