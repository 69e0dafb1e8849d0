package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/dwikikusuma/storefront-cart/internal/cart/domain"
	"github.com/shopspring/decimal"
)

var ErrStorage = errors.New("local cart storage failure")

type Service struct {
	mu      sync.Mutex
	cart    domain.Cart
	version uint64

	replica Replica
	ids     *domain.IDAllocator
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

func WithIDAllocator(a *domain.IDAllocator) Option {
	return func(s *Service) {
		if a != nil {
			s.ids = a
		}
	}
}

func NewService(replica Replica, opts ...Option) *Service {
	s := &Service{
		cart:    domain.NewCart(nil),
		replica: replica,
		ids:     domain.NewIDAllocator(),
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot is a deep copy of the item list tagged with the version it was
// taken at.
type Snapshot struct {
	Items   []domain.CartItem
	Version uint64
}

// Load hydrates the in-memory cart from the replica. On a read failure the
// cart stays empty for this session and the error is returned for reporting.
func (s *Service) Load(ctx context.Context) error {
	items, err := s.replica.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.log.Error("cart replica load failed, starting empty", slog.Any("err", err))
		s.cart = domain.NewCart(nil)
		s.version++
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	clean, dropped := normalize(items)
	if dropped > 0 {
		s.log.Warn("dropped invalid items from replica", slog.Int("dropped", dropped))
	}
	for _, it := range clean {
		s.ids.Observe(it.ID)
	}
	s.cart = domain.NewCart(clean)
	s.version++
	if dropped > 0 {
		s.persistLocked(ctx)
	}
	return nil
}

func (s *Service) AddItem(ctx context.Context, productID domain.ProductID, requested int, snap domain.ProductSnapshot) Result {
	if requested == 0 {
		return Result{Outcome: OutcomeNoChange}
	}
	if requested < 0 || productID == "" {
		return Result{Outcome: OutcomeInvalid}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.cart.IndexByProduct(productID)
	if idx < 0 {
		qty := domain.Clamp(requested, snap.AvailableStock)
		if qty == 0 {
			return Result{Outcome: OutcomeOutOfStock}
		}
		item := domain.CartItem{
			ID:        s.ids.Next(),
			ProductID: productID,
			Quantity:  qty,
			Product:   snap,
		}
		item.Reprice()
		s.cart.Items = append(s.cart.Items, item)
		s.commitLocked(ctx)

		if qty < requested {
			return Result{Outcome: OutcomeAdjusted, Item: item}
		}
		return Result{Outcome: OutcomeAdded, Item: item}
	}

	existing := s.cart.Items[idx]
	wanted := existing.Quantity + requested
	newQty := min(wanted, snap.AvailableStock)
	if newQty <= existing.Quantity {
		return Result{Outcome: OutcomeAtMaxStock, Item: existing}
	}

	item := existing
	item.Quantity = newQty
	item.Product = snap
	item.Reprice()
	s.cart.Items[idx] = item
	s.commitLocked(ctx)

	if newQty < wanted {
		return Result{Outcome: OutcomeAdjusted, Item: item}
	}
	return Result{Outcome: OutcomeUpdated, Item: item}
}

func (s *Service) UpdateQuantity(ctx context.Context, id domain.ItemID, delta int) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.cart.IndexByID(id)
	if idx < 0 {
		return Result{Outcome: OutcomeNotFound}
	}
	item := s.cart.Items[idx]
	if delta == 0 {
		return Result{Outcome: OutcomeNoChange, Item: item}
	}

	next := item.Quantity + delta
	if next < 1 {
		return Result{Outcome: OutcomeBelowMinimum, Item: item}
	}
	if next > item.Product.AvailableStock {
		return Result{Outcome: OutcomeStockMaxReached, Item: item}
	}

	item.Quantity = next
	item.Subtotal = item.UnitPrice.Mul(decimalInt(next))
	s.cart.Items[idx] = item
	s.commitLocked(ctx)
	return Result{Outcome: OutcomeUpdated, Item: item}
}

func (s *Service) RemoveItem(ctx context.Context, id domain.ItemID) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.cart.IndexByID(id)
	if idx < 0 {
		return Result{Outcome: OutcomeNotFound}
	}
	removed := s.cart.Items[idx]
	s.cart.Items = append(s.cart.Items[:idx:idx], s.cart.Items[idx+1:]...)
	s.commitLocked(ctx)
	return Result{Outcome: OutcomeRemoved, Item: removed}
}

// RefreshProduct applies a fresh catalog snapshot to the item holding
// productID. A drop in stock clamps the quantity down; zero stock leaves the
// item untouched so that removal stays an explicit user decision.
func (s *Service) RefreshProduct(ctx context.Context, productID domain.ProductID, snap domain.ProductSnapshot) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.cart.IndexByProduct(productID)
	if idx < 0 {
		return Result{Outcome: OutcomeNotFound}
	}
	item := s.cart.Items[idx]
	if snap.AvailableStock < 1 {
		return Result{Outcome: OutcomeOutOfStock, Item: item}
	}

	outcome := OutcomeUpdated
	if item.Quantity > snap.AvailableStock {
		item.Quantity = snap.AvailableStock
		outcome = OutcomeAdjusted
	}
	item.Product = snap
	item.Reprice()
	s.cart.Items[idx] = item
	s.commitLocked(ctx)
	return Result{Outcome: outcome, Item: item}
}

func (s *Service) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = domain.NewCart(nil)
	s.version++
	if err := s.replica.Remove(ctx); err != nil {
		s.log.Error("cart replica remove failed", slog.Any("err", err))
	}
}

// ReplaceItems overwrites the whole list; used by hydrate and merge.
func (s *Service) ReplaceItems(ctx context.Context, items []domain.CartItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceLocked(ctx, items)
}

// RestoreIfVersion replaces the list with items only when no mutation has
// happened since version. It reports whether the restore was applied.
func (s *Service) RestoreIfVersion(ctx context.Context, version uint64, items []domain.CartItem) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.version != version {
		return false
	}
	s.replaceLocked(ctx, items)
	return true
}

func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Items: domain.CloneItems(s.cart.Items), Version: s.version}
}

func (s *Service) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneItems(s.cart.Items)
}

func (s *Service) Totals() domain.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Totals
}

func (s *Service) Item(id domain.ItemID) (domain.CartItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.cart.IndexByID(id)
	if idx < 0 {
		return domain.CartItem{}, false
	}
	return s.cart.Items[idx], true
}

func (s *Service) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cart.Items) == 0
}

func (s *Service) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *Service) replaceLocked(ctx context.Context, items []domain.CartItem) {
	for _, it := range items {
		s.ids.Observe(it.ID)
	}
	s.cart.Items = domain.CloneItems(items)
	s.commitLocked(ctx)
}

// commitLocked recomputes the aggregates and persists; it runs after every
// mutation while the lock is held so replica writes keep mutation order.
func (s *Service) commitLocked(ctx context.Context) {
	s.version++
	s.cart.Recompute()
	s.persistLocked(ctx)
}

func (s *Service) persistLocked(ctx context.Context) {
	if err := s.replica.Save(ctx, s.cart.Items); err != nil {
		s.log.Error("cart replica save failed", slog.Any("err", err), slog.Int("items", len(s.cart.Items)))
	}
}

// normalize enforces the replica invariants on data read back from storage:
// one item per product and a quantity inside the stock snapshot.
func normalize(items []domain.CartItem) ([]domain.CartItem, int) {
	out := make([]domain.CartItem, 0, len(items))
	seen := make(map[domain.ProductID]struct{}, len(items))
	dropped := 0
	for _, it := range items {
		if it.ID == "" || it.ProductID == "" || it.Quantity < 1 || it.Product.AvailableStock < 1 {
			dropped++
			continue
		}
		if _, dup := seen[it.ProductID]; dup {
			dropped++
			continue
		}
		seen[it.ProductID] = struct{}{}
		if it.Quantity > it.Product.AvailableStock {
			it.Quantity = it.Product.AvailableStock
			it.Subtotal = it.UnitPrice.Mul(decimalInt(it.Quantity))
		}
		out = append(out, it)
	}
	return out, dropped
}

func decimalInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}
