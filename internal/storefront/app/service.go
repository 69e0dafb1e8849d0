package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	cartdomain "github.com/dwikikusuma/storefront-cart/internal/cart/domain"
	catalogdomain "github.com/dwikikusuma/storefront-cart/internal/catalog/domain"
	orderdomain "github.com/dwikikusuma/storefront-cart/internal/order/domain"
	"github.com/dwikikusuma/storefront-cart/internal/storefront/domain"
	"github.com/dwikikusuma/storefront-cart/pkg/metrics"
)

const (
	WarnStockAdjusted = "cantidad ajustada por stock"
	WarnOutOfStock    = "producto sin stock, eliminado del carrito"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	// ErrRejected marks a cart the server refuses to accept; the message is
	// shown to the shopper.
	ErrRejected     = errors.New("cart rejected")
	ErrEmptyCart    = errors.New("cart is empty")
)

type SyncResult struct {
	Items    []cartdomain.CartItem
	Warnings []string
}

type Service struct {
	store   CartStore
	catalog ProductLookup
	orders  OrderCreator
	metrics *metrics.Server
	log     *slog.Logger
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithMetrics(m *metrics.Server) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(store CartStore, catalog ProductLookup, orders OrderCreator, opts ...Option) *Service {
	s := &Service{
		store:   store,
		catalog: catalog,
		orders:  orders,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the user's cart joined with current catalog data. Lines whose
// product no longer exists are skipped.
func (s *Service) Load(ctx context.Context, userID string) ([]cartdomain.CartItem, error) {
	lines, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	products, err := s.products(ctx, lines)
	if err != nil {
		return nil, err
	}
	return join(lines, products), nil
}

// Sync applies a client cart. A push replaces the server cart keyed by
// product; a merge keeps server lines and raises each matched quantity to the
// larger of the two sides. Quantities are clamped to stock either way.
func (s *Service) Sync(ctx context.Context, userID string, items []cartdomain.CartItem, merge bool) (SyncResult, error) {
	if err := validate(items); err != nil {
		return SyncResult{}, err
	}

	existing, err := s.store.Get(ctx, userID)
	if err != nil {
		return SyncResult{}, fmt.Errorf("load cart: %w", err)
	}

	ids := make([]string, 0, len(items)+len(existing))
	for _, it := range items {
		ids = append(ids, it.ProductID.String())
	}
	for _, l := range existing {
		ids = append(ids, l.ProductID)
	}
	products, err := s.catalog.GetProducts(ctx, ids)
	if err != nil {
		return SyncResult{}, fmt.Errorf("lookup products: %w", err)
	}
	for _, it := range items {
		if _, ok := products[it.ProductID.String()]; !ok {
			return SyncResult{}, fmt.Errorf("%w: producto %s no existe", ErrRejected, it.ProductID)
		}
	}

	var lines []domain.Line
	if merge {
		lines = mergeLines(existing, items)
	} else {
		lines = replaceLines(existing, items)
	}

	lines, warnings := clamp(lines, products)
	s.metrics.AddStockAdjusted(len(warnings))

	if err := s.store.Replace(ctx, userID, lines); err != nil {
		return SyncResult{}, fmt.Errorf("save cart: %w", err)
	}
	s.log.Info("cart synced",
		slog.String("user_id", userID),
		slog.Bool("merge", merge),
		slog.Int("lines", len(lines)),
		slog.Int("warnings", len(warnings)),
	)
	return SyncResult{Items: join(lines, products), Warnings: warnings}, nil
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	if err := s.store.Clear(ctx, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	s.metrics.IncrementCartsCleared()
	return nil
}

// PlaceOrder creates an order from the server cart at current catalog prices.
// The cart itself is left for the client to clear.
func (s *Service) PlaceOrder(ctx context.Context, userID string) (orderdomain.OrderResponse, error) {
	items, err := s.Load(ctx, userID)
	if err != nil {
		return orderdomain.OrderResponse{}, err
	}
	if len(items) == 0 {
		return orderdomain.OrderResponse{}, ErrEmptyCart
	}

	req := orderdomain.CreateOrderRequest{UserID: userID}
	for _, it := range items {
		if it.Quantity > it.Product.AvailableStock {
			return orderdomain.OrderResponse{}, fmt.Errorf("%w: %s: stock insuficiente", ErrRejected, it.Product.Name)
		}
		req.Items = append(req.Items, orderdomain.OrderItemRequest{
			ProductID: it.ProductID.String(),
			Name:      it.Product.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
		})
	}

	resp, err := s.orders.CreateOrder(ctx, req)
	if err != nil {
		return orderdomain.OrderResponse{}, err
	}
	s.metrics.IncrementOrdersCreated()
	s.log.Info("order created", slog.String("user_id", userID), slog.String("order_id", resp.ID))
	return resp, nil
}

func (s *Service) products(ctx context.Context, lines []domain.Line) (map[string]catalogdomain.Product, error) {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	products, err := s.catalog.GetProducts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("lookup products: %w", err)
	}
	return products, nil
}

func validate(items []cartdomain.CartItem) error {
	seen := make(map[cartdomain.ProductID]bool, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.ProductID.String()) == "" {
			return fmt.Errorf("%w: productId is required", ErrInvalidInput)
		}
		if it.Quantity < 1 {
			return fmt.Errorf("%w: quantity for %s must be at least 1", ErrInvalidInput, it.ProductID)
		}
		if seen[it.ProductID] {
			return fmt.Errorf("%w: duplicate product %s", ErrInvalidInput, it.ProductID)
		}
		seen[it.ProductID] = true
	}
	return nil
}

// replaceLines builds the pushed cart. Temporary client ids are never
// trusted: each product keeps its existing server line id or gets a new one.
func replaceLines(existing []domain.Line, items []cartdomain.CartItem) []domain.Line {
	byProduct := domain.IndexByProduct(existing)
	out := make([]domain.Line, 0, len(items))
	for _, it := range items {
		id := uuid.NewString()
		if i, ok := byProduct[it.ProductID.String()]; ok {
			id = existing[i].ID
		}
		out = append(out, domain.Line{ID: id, ProductID: it.ProductID.String(), Quantity: it.Quantity})
	}
	return out
}

func mergeLines(existing []domain.Line, items []cartdomain.CartItem) []domain.Line {
	out := make([]domain.Line, len(existing))
	copy(out, existing)
	byProduct := domain.IndexByProduct(out)
	byID := make(map[string]int, len(out))
	for i, l := range out {
		byID[l.ID] = i
	}

	for _, it := range items {
		i, ok := -1, false
		if !cartdomain.IsTemporary(it.ID) {
			i, ok = byID[it.ID.String()]
			if ok && out[i].ProductID != it.ProductID.String() {
				ok = false
			}
		}
		if !ok {
			i, ok = byProduct[it.ProductID.String()]
		}
		if ok {
			out[i].Quantity = max(out[i].Quantity, it.Quantity)
			continue
		}
		out = append(out, domain.Line{ID: uuid.NewString(), ProductID: it.ProductID.String(), Quantity: it.Quantity})
		byProduct[it.ProductID.String()] = len(out) - 1
	}
	return out
}

func clamp(lines []domain.Line, products map[string]catalogdomain.Product) ([]domain.Line, []string) {
	out := make([]domain.Line, 0, len(lines))
	var warnings []string
	for _, l := range lines {
		p, ok := products[l.ProductID]
		if !ok {
			continue
		}
		if p.AvailableStock < 1 {
			warnings = append(warnings, fmt.Sprintf("%s: %s", p.Name, WarnOutOfStock))
			continue
		}
		if l.Quantity > p.AvailableStock {
			l.Quantity = p.AvailableStock
			warnings = append(warnings, fmt.Sprintf("%s: %s", p.Name, WarnStockAdjusted))
		}
		out = append(out, l)
	}
	return out, warnings
}

func join(lines []domain.Line, products map[string]catalogdomain.Product) []cartdomain.CartItem {
	items := make([]cartdomain.CartItem, 0, len(lines))
	for _, l := range lines {
		p, ok := products[l.ProductID]
		if !ok {
			continue
		}
		it := cartdomain.CartItem{
			ID:        cartdomain.ItemID(l.ID),
			ProductID: cartdomain.ProductID(l.ProductID),
			Quantity:  l.Quantity,
			Product:   p.Snapshot(),
		}
		it.Reprice()
		items = append(items, it)
	}
	return items
}
