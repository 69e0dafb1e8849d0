package adapter

import (
	"context"

	checkoutdomain "github.com/dwikikusuma/storefront-cart/internal/checkout/domain"
	orderdomain "github.com/dwikikusuma/storefront-cart/internal/order/domain"
)

type OrderCreator interface {
	CreateOrder(ctx context.Context) (orderdomain.OrderResponse, error)
}

type OrderClientPlacer struct {
	orders OrderCreator
}

func NewOrderClientPlacer(orders OrderCreator) *OrderClientPlacer {
	return &OrderClientPlacer{orders: orders}
}

func (p *OrderClientPlacer) PlaceOrder(ctx context.Context) (checkoutdomain.Confirmation, error) {
	resp, err := p.orders.CreateOrder(ctx)
	if err != nil {
		return checkoutdomain.Confirmation{}, err
	}
	return checkoutdomain.Confirmation{OrderID: resp.ID, CheckoutURL: resp.CheckoutURL, Total: resp.Total}, nil
}

// RemoteCartClearer adapts the server cart client to checkout.
type RemoteCartClearer struct {
	remote interface{ Clear(ctx context.Context) error }
}

func NewRemoteCartClearer(remote interface{ Clear(ctx context.Context) error }) *RemoteCartClearer {
	return &RemoteCartClearer{remote: remote}
}

func (c *RemoteCartClearer) ClearCart(ctx context.Context) error {
	return c.remote.Clear(ctx)
}
