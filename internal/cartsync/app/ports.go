package app

import (
	"context"

	"github.com/shopspring/decimal"

	cartapp "github.com/dwikikusuma/storefront-cart/internal/cart/app"
	"github.com/dwikikusuma/storefront-cart/internal/cart/domain"
)

type SyncRequest struct {
	Items []domain.CartItem
	Merge bool
	Seq   uint64
}

type SyncResponse struct {
	Items []domain.CartItem
	// Subtotals[i] is the subtotal the server sent for Items[i]; an invalid
	// entry means the field was absent. A nil slice means every item had one.
	Subtotals []decimal.NullDecimal
	Warnings  []string
	Message   string
}

func (r SyncResponse) hasSubtotal(i int) bool {
	if r.Subtotals == nil {
		return true
	}
	return i < len(r.Subtotals) && r.Subtotals[i].Valid
}

// RemoteCart is the authoritative server-side cart.
type RemoteCart interface {
	Load(ctx context.Context) ([]domain.CartItem, error)
	Sync(ctx context.Context, req SyncRequest) (SyncResponse, error)
	Clear(ctx context.Context) error
}

// LocalCart is the part of Cart Core the coordinator drives.
type LocalCart interface {
	Snapshot() cartapp.Snapshot
	ReplaceItems(ctx context.Context, items []domain.CartItem)
	RestoreIfVersion(ctx context.Context, version uint64, items []domain.CartItem) bool
	Clear(ctx context.Context)
	IsEmpty() bool
}
