package adapter

import (
	"context"

	catalogdomain "github.com/dwikikusuma/storefront-cart/internal/catalog/domain"
	checkoutapp "github.com/dwikikusuma/storefront-cart/internal/checkout/app"
)

// ProductGetter is satisfied by the catalog app service and the catalog
// HTTP client.
type ProductGetter interface {
	GetProduct(ctx context.Context, id string) (catalogdomain.Product, error)
}

type CatalogServiceReader struct {
	svc ProductGetter
}

func NewCatalogServiceReader(svc ProductGetter) *CatalogServiceReader {
	return &CatalogServiceReader{svc: svc}
}

func (r *CatalogServiceReader) GetProduct(ctx context.Context, productID string) (checkoutapp.Product, error) {
	p, err := r.svc.GetProduct(ctx, productID)
	if err != nil {
		return checkoutapp.Product{}, err
	}

	return checkoutapp.Product{
		ID:             p.ID,
		Name:           p.Name,
		Price:          p.Price,
		AvailableStock: p.AvailableStock,
	}, nil
}
