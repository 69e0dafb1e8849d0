package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dwikikusuma/storefront-cart/internal/order/domain"
	"github.com/dwikikusuma/storefront-cart/pkg/apiclient"
)

var ErrOrderRejected = errors.New("order rejected")

// OrderClient confirms an order from the caller's server-side cart.
type OrderClient struct {
	api *apiclient.Client
}

func NewOrderClient(api *apiclient.Client) *OrderClient {
	return &OrderClient{api: api}
}

func (c *OrderClient) CreateOrder(ctx context.Context) (domain.OrderResponse, error) {
	resp, err := c.api.Do(ctx, http.MethodPost, "/orders", struct{}{}, nil)
	if err != nil {
		return domain.OrderResponse{}, fmt.Errorf("create order: %w", err)
	}

	var body domain.OrderResponse
	if err := resp.Decode(&body); err != nil {
		return domain.OrderResponse{}, fmt.Errorf("create order: %w", err)
	}
	if !resp.OK() || !body.Success {
		msg := body.Message
		if msg == "" {
			msg = http.StatusText(resp.Status)
		}
		return domain.OrderResponse{}, fmt.Errorf("%w: %s", ErrOrderRejected, msg)
	}
	if body.ID == "" {
		return domain.OrderResponse{}, fmt.Errorf("%w: missing order id", ErrOrderRejected)
	}
	return body, nil
}
