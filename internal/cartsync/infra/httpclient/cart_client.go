package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/storefront-cart/internal/cart/domain"
	"github.com/dwikikusuma/storefront-cart/internal/cartsync/app"
	"github.com/dwikikusuma/storefront-cart/pkg/apiclient"
)

const SeqHeader = "X-Cart-Seq"

// wireItem tells an absent subtotal apart from a zero one.
type wireItem struct {
	domain.CartItem
	Subtotal decimal.NullDecimal `json:"subtotal"`
}

type envelope struct {
	Success  bool       `json:"success"`
	Items    []wireItem `json:"items,omitempty"`
	Warnings []string   `json:"warnings,omitempty"`
	Message  string     `json:"message,omitempty"`
}

func (e envelope) items() ([]domain.CartItem, []decimal.NullDecimal) {
	if e.Items == nil {
		return nil, nil
	}
	items := make([]domain.CartItem, len(e.Items))
	subtotals := make([]decimal.NullDecimal, len(e.Items))
	for i, w := range e.Items {
		items[i] = w.CartItem
		items[i].Subtotal = w.Subtotal.Decimal
		subtotals[i] = w.Subtotal
	}
	return items, subtotals
}

type syncBody struct {
	Items []domain.CartItem `json:"items"`
	Merge bool              `json:"merge,omitempty"`
}

// CartClient implements app.RemoteCart over the storefront HTTP API.
type CartClient struct {
	api *apiclient.Client
}

func NewCartClient(api *apiclient.Client) *CartClient {
	return &CartClient{api: api}
}

var _ app.RemoteCart = (*CartClient)(nil)

func (c *CartClient) Load(ctx context.Context) ([]domain.CartItem, error) {
	env, err := c.call(ctx, "load", http.MethodGet, "/cart/load", nil, nil)
	if err != nil {
		return nil, err
	}
	items, _ := env.items()
	return items, nil
}

func (c *CartClient) Sync(ctx context.Context, req app.SyncRequest) (app.SyncResponse, error) {
	items := req.Items
	if items == nil {
		items = []domain.CartItem{}
	}
	headers := map[string]string{SeqHeader: strconv.FormatUint(req.Seq, 10)}

	env, err := c.call(ctx, "sync", http.MethodPost, "/cart/sync", syncBody{Items: items, Merge: req.Merge}, headers)
	if err != nil {
		return app.SyncResponse{}, err
	}
	items, subtotals := env.items()
	return app.SyncResponse{Items: items, Subtotals: subtotals, Warnings: env.Warnings, Message: env.Message}, nil
}

func (c *CartClient) Clear(ctx context.Context) error {
	_, err := c.call(ctx, "clear", http.MethodPost, "/cart/clear", struct{}{}, nil)
	return err
}

// call maps the response onto the sync error taxonomy: unreachable servers
// and 5xx without an envelope are transport failures, success:false is a
// rejection.
func (c *CartClient) call(ctx context.Context, op, method, path string, body any, headers map[string]string) (envelope, error) {
	resp, err := c.api.Do(ctx, method, path, body, headers)
	if err != nil {
		return envelope{}, app.Unreachable(op, err)
	}

	var env envelope
	if err := resp.Decode(&env); err != nil {
		if resp.Status >= 500 || resp.OK() {
			return envelope{}, app.Unreachable(op, err)
		}
		return envelope{}, app.Rejected(op, http.StatusText(resp.Status))
	}

	if resp.Status >= 500 && env.Message == "" {
		return envelope{}, app.Unreachable(op, fmt.Errorf("%w %d", apiclient.ErrStatus, resp.Status))
	}
	if !resp.OK() || !env.Success {
		reason := env.Message
		if reason == "" {
			reason = http.StatusText(resp.Status)
		}
		return envelope{}, app.Rejected(op, reason)
	}
	return env, nil
}
