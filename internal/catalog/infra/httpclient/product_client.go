package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	cartdomain "github.com/dwikikusuma/storefront-cart/internal/cart/domain"
	"github.com/dwikikusuma/storefront-cart/internal/catalog/app"
	"github.com/dwikikusuma/storefront-cart/internal/catalog/domain"
	"github.com/dwikikusuma/storefront-cart/pkg/apiclient"
)

type productBody struct {
	ID             cartdomain.ProductID `json:"id"`
	Name           string               `json:"name"`
	Price          decimal.Decimal      `json:"price"`
	AvailableStock int                  `json:"availableStock"`
	ImageURL       string               `json:"imageUrl"`
	Brand          string               `json:"brand"`
	Message        string               `json:"message"`
}

// ProductClient reads products from the storefront catalog endpoint.
type ProductClient struct {
	api *apiclient.Client
}

func NewProductClient(api *apiclient.Client) *ProductClient {
	return &ProductClient{api: api}
}

func (c *ProductClient) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	if id == "" {
		return domain.Product{}, app.ErrInvalidInput
	}
	resp, err := c.api.Do(ctx, http.MethodGet, "/catalog/product/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return domain.Product{}, fmt.Errorf("catalog: %w", err)
	}

	var body productBody
	if decodeErr := resp.Decode(&body); decodeErr != nil && resp.OK() {
		return domain.Product{}, fmt.Errorf("catalog: %w", decodeErr)
	}

	switch {
	case resp.Status == http.StatusNotFound:
		return domain.Product{}, fmt.Errorf("product %s: %w", id, app.ErrNotFound)
	case resp.Status == http.StatusBadRequest:
		return domain.Product{}, fmt.Errorf("product %s: %w", id, app.ErrInvalidInput)
	case !resp.OK():
		return domain.Product{}, fmt.Errorf("catalog: %w %d %s", apiclient.ErrStatus, resp.Status, body.Message)
	}

	return domain.Product{
		ID:             body.ID.String(),
		Name:           body.Name,
		Brand:          body.Brand,
		ImageURL:       body.ImageURL,
		Price:          body.Price,
		AvailableStock: body.AvailableStock,
	}, nil
}
