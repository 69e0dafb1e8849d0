package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/dwikikusuma/storefront-cart/internal/checkout/domain"
)

type CartReader interface {
	GetCart(ctx context.Context) ([]CartItem, error)
}

type CartItem struct {
	ItemID    string
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

type CatalogReader interface {
	GetProduct(ctx context.Context, productID string) (Product, error)
}

type Product struct {
	ID             string
	Name           string
	Price          decimal.Decimal
	AvailableStock int
}

// Syncer drains pending cart pushes so the server cart matches the local one.
type Syncer interface {
	Flush(ctx context.Context) error
}

type OrderPlacer interface {
	PlaceOrder(ctx context.Context) (domain.Confirmation, error)
}

// CartClearer empties one replica of the cart.
type CartClearer interface {
	ClearCart(ctx context.Context) error
}

type Service struct {
	Cart    CartReader
	Catalog CatalogReader

	maxConcurrent int
}

func NewService(cart CartReader, catalog CatalogReader, maxConcurrent int) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}

	return &Service{
		Cart:          cart,
		Catalog:       catalog,
		maxConcurrent: maxConcurrent,
	}
}

var ErrEmptyCart = errors.New("cart is empty")

// Quote re-prices every cart line against the catalog.
func (s *Service) Quote(ctx context.Context) (domain.Quote, error) {
	items, err := s.Cart.GetCart(ctx)
	if err != nil {
		return domain.Quote{}, err
	}

	if len(items) == 0 {
		return domain.Quote{}, ErrEmptyCart
	}

	lines := make([]domain.QuoteLine, len(items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for idx := range items {
		g.Go(func() error {
			it := items[idx]
			if it.Quantity <= 0 {
				return fmt.Errorf("quantity must be greater than zero: %d", it.Quantity)
			}

			product, err := s.Catalog.GetProduct(ctx, it.ProductID)
			if err != nil {
				return fmt.Errorf("failed to get product %s: %w", it.ProductID, err)
			}

			lines[idx] = domain.QuoteLine{
				ItemID:         it.ItemID,
				ProductID:      it.ProductID,
				Name:           product.Name,
				Quantity:       it.Quantity,
				UnitPrice:      product.Price,
				LineTotal:      product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))),
				AvailableStock: product.AvailableStock,
				PriceChanged:   !product.Price.Equal(it.UnitPrice),
				Short:          product.AvailableStock < it.Quantity,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return domain.Quote{}, err
	}

	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.LineTotal)
	}

	return domain.Quote{Lines: lines, Total: total}, nil
}

// Confirmer runs the confirmation sequence: flush pending pushes, create the
// order from the server cart, then clear the server and the local cart.
type Confirmer struct {
	cart   CartReader
	sync   Syncer
	orders OrderPlacer
	remote CartClearer
	local  CartClearer
	log    *slog.Logger
}

func NewConfirmer(cart CartReader, sync Syncer, orders OrderPlacer, remote, local CartClearer, log *slog.Logger) *Confirmer {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Confirmer{cart: cart, sync: sync, orders: orders, remote: remote, local: local, log: log}
}

func (c *Confirmer) Confirm(ctx context.Context) (domain.Confirmation, error) {
	items, err := c.cart.GetCart(ctx)
	if err != nil {
		return domain.Confirmation{}, err
	}
	if len(items) == 0 {
		return domain.Confirmation{}, ErrEmptyCart
	}

	if err := c.sync.Flush(ctx); err != nil {
		return domain.Confirmation{}, fmt.Errorf("flush pending cart changes: %w", err)
	}

	conf, err := c.orders.PlaceOrder(ctx)
	if err != nil {
		return domain.Confirmation{}, fmt.Errorf("place order: %w", err)
	}
	c.log.Info("order confirmed", slog.String("order_id", conf.OrderID))

	// The order exists from here on; cleanup failures are logged, not returned.
	if err := c.remote.ClearCart(ctx); err != nil {
		c.log.Error("server cart clear failed", slog.String("order_id", conf.OrderID), slog.Any("err", err))
	}
	if err := c.local.ClearCart(ctx); err != nil {
		c.log.Error("local cart clear failed", slog.String("order_id", conf.OrderID), slog.Any("err", err))
	}
	return conf, nil
}
