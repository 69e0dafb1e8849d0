package domain

import (
	"time"

	"github.com/shopspring/decimal"

	cartdomain "github.com/dwikikusuma/storefront-cart/internal/cart/domain"
)

type Product struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Brand          string          `json:"brand,omitempty"`
	ImageURL       string          `json:"imageUrl,omitempty"`
	Description    string          `json:"description,omitempty"`
	Price          decimal.Decimal `json:"price"`
	AvailableStock int             `json:"availableStock"`
	CreatedAt      time.Time       `json:"-"`
	UpdatedAt      time.Time       `json:"-"`
}

// Snapshot is the denormalized copy a cart line keeps for offline rendering.
func (p Product) Snapshot() cartdomain.ProductSnapshot {
	return cartdomain.ProductSnapshot{
		Name:           p.Name,
		ImageURL:       p.ImageURL,
		Brand:          p.Brand,
		Price:          p.Price,
		AvailableStock: p.AvailableStock,
	}
}
