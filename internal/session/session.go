package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	cartapp "github.com/dwikikusuma/storefront-cart/internal/cart/app"
	"github.com/dwikikusuma/storefront-cart/internal/cart/domain"
	cartsyncapp "github.com/dwikikusuma/storefront-cart/internal/cartsync/app"
	catalogdomain "github.com/dwikikusuma/storefront-cart/internal/catalog/domain"
	checkoutapp "github.com/dwikikusuma/storefront-cart/internal/checkout/app"
	checkoutdomain "github.com/dwikikusuma/storefront-cart/internal/checkout/domain"
	"github.com/dwikikusuma/storefront-cart/internal/notify"
)

var (
	ErrBusy             = errors.New("another cart change is still in progress")
	ErrNotAuthenticated = errors.New("sign in to check out")
)

// Confirmer asks the shopper before an item is removed.
type Confirmer interface {
	ConfirmRemoval(ctx context.Context, item domain.CartItem) bool
}

type ConfirmFunc func(ctx context.Context, item domain.CartItem) bool

func (f ConfirmFunc) ConfirmRemoval(ctx context.Context, item domain.CartItem) bool { return f(ctx, item) }

type ProductSource interface {
	GetProduct(ctx context.Context, id string) (catalogdomain.Product, error)
}

type Deps struct {
	Cart     *cartapp.Service
	Sync     *cartsyncapp.Coordinator
	Catalog  ProductSource
	Quotes   *checkoutapp.Service
	Checkout *checkoutapp.Confirmer
	Notifier notify.Notifier
	Log      *slog.Logger
}

// Session is the cart service handed to the UI layer. It owns the
// isUpdating and isDeleting guards and turns outcomes and errors into notices.
type Session struct {
	cart     *cartapp.Service
	sync     *cartsyncapp.Coordinator
	catalog  ProductSource
	quotes   *checkoutapp.Service
	checkout *checkoutapp.Confirmer
	notifier notify.Notifier
	log      *slog.Logger

	updating atomic.Bool
	deleting atomic.Bool
}

func New(d Deps) (*Session, error) {
	switch {
	case d.Cart == nil:
		return nil, errors.New("session: cart is required")
	case d.Sync == nil:
		return nil, errors.New("session: sync coordinator is required")
	case d.Catalog == nil:
		return nil, errors.New("session: catalog is required")
	}
	s := &Session{
		cart:     d.Cart,
		sync:     d.Sync,
		catalog:  d.Catalog,
		quotes:   d.Quotes,
		checkout: d.Checkout,
		notifier: d.Notifier,
		log:      d.Log,
	}
	if s.notifier == nil {
		s.notifier = notify.Discard
	}
	if s.log == nil {
		s.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s, nil
}

func (s *Session) Items() []domain.CartItem { return s.cart.Items() }
func (s *Session) Totals() domain.Totals    { return s.cart.Totals() }
func (s *Session) Updating() bool           { return s.updating.Load() }
func (s *Session) Deleting() bool           { return s.deleting.Load() }
func (s *Session) Authenticated() bool      { return s.sync.Synced() }

// Add fetches the current catalog snapshot and adds requested units of the
// product. The updating guard is held across the catalog call.
func (s *Session) Add(ctx context.Context, productID string, requested int) (cartapp.Result, error) {
	if !s.updating.CompareAndSwap(false, true) {
		return s.busy(ctx), nil
	}
	defer s.updating.Store(false)

	p, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		s.notify(ctx, notify.LevelError, "product_unavailable", fmt.Sprintf("could not load product %s", productID))
		return cartapp.Result{}, fmt.Errorf("get product %s: %w", productID, err)
	}

	res := s.cart.AddItem(ctx, domain.ProductID(p.ID), requested, p.Snapshot())
	s.apply(ctx, res)
	return res, nil
}

func (s *Session) Update(ctx context.Context, id domain.ItemID, delta int) cartapp.Result {
	if !s.updating.CompareAndSwap(false, true) {
		return s.busy(ctx)
	}
	defer s.updating.Store(false)

	res := s.cart.UpdateQuantity(ctx, id, delta)
	s.apply(ctx, res)
	return res
}

// Remove deletes an item only after the shopper confirms it.
func (s *Session) Remove(ctx context.Context, id domain.ItemID, confirm Confirmer) cartapp.Result {
	if !s.deleting.CompareAndSwap(false, true) {
		return s.busy(ctx)
	}
	defer s.deleting.Store(false)

	item, ok := s.cart.Item(id)
	if !ok {
		res := cartapp.Result{Outcome: cartapp.OutcomeNotFound}
		s.report(ctx, res)
		return res
	}
	if confirm == nil || !confirm.ConfirmRemoval(ctx, item) {
		res := cartapp.Result{Outcome: cartapp.OutcomeCancelled, Item: item}
		s.report(ctx, res)
		return res
	}

	res := s.cart.RemoveItem(ctx, id)
	s.apply(ctx, res)
	return res
}

// Clear empties the cart. Once signed in the empty cart is pushed too.
func (s *Session) Clear(ctx context.Context) {
	s.cart.Clear(ctx)
	s.push()
}

// Refresh re-reads a product from the catalog and updates the cart line.
func (s *Session) Refresh(ctx context.Context, productID string) (cartapp.Result, error) {
	if !s.updating.CompareAndSwap(false, true) {
		return s.busy(ctx), nil
	}
	defer s.updating.Store(false)

	p, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return cartapp.Result{}, fmt.Errorf("get product %s: %w", productID, err)
	}
	res := s.cart.RefreshProduct(ctx, domain.ProductID(p.ID), p.Snapshot())
	s.apply(ctx, res)
	return res, nil
}

// Login synchronizes the cart with the server once an identity is known.
// Both guards are held so no mutation interleaves with hydrate or merge.
func (s *Session) Login(ctx context.Context) error {
	if !s.updating.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.updating.Store(false)
	if !s.deleting.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.deleting.Store(false)

	if err := s.sync.Authenticate(ctx); err != nil {
		return err
	}
	s.log.Info("session authenticated", slog.Int("items", len(s.cart.Items())))
	s.notify(ctx, notify.LevelSuccess, "cart_synced", "cart synchronized")
	return nil
}

func (s *Session) Logout(ctx context.Context) error {
	return s.sync.Logout(ctx)
}

// Push sends the current cart and waits for it to settle.
func (s *Session) Push(ctx context.Context) error {
	if !s.sync.Synced() {
		return ErrNotAuthenticated
	}
	s.sync.PushLocalChanges()
	return s.sync.Flush(ctx)
}

func (s *Session) Flush(ctx context.Context) error {
	return s.sync.Flush(ctx)
}

func (s *Session) Quote(ctx context.Context) (checkoutdomain.Quote, error) {
	if s.quotes == nil {
		return checkoutdomain.Quote{}, errors.New("session: checkout is not configured")
	}
	return s.quotes.Quote(ctx)
}

// Checkout confirms the order. Both guards are held for the duration.
func (s *Session) Checkout(ctx context.Context) (checkoutdomain.Confirmation, error) {
	if s.checkout == nil {
		return checkoutdomain.Confirmation{}, errors.New("session: checkout is not configured")
	}
	if !s.sync.Synced() {
		return checkoutdomain.Confirmation{}, ErrNotAuthenticated
	}
	if !s.updating.CompareAndSwap(false, true) {
		return checkoutdomain.Confirmation{}, ErrBusy
	}
	defer s.updating.Store(false)
	if !s.deleting.CompareAndSwap(false, true) {
		return checkoutdomain.Confirmation{}, ErrBusy
	}
	defer s.deleting.Store(false)

	conf, err := s.checkout.Confirm(ctx)
	if err != nil {
		s.notify(ctx, notify.LevelError, "checkout_failed", checkoutMessage(err))
		return checkoutdomain.Confirmation{}, err
	}
	s.notify(ctx, notify.LevelSuccess, "order_created", "order "+conf.OrderID+" created")
	return conf, nil
}

func (s *Session) apply(ctx context.Context, res cartapp.Result) {
	s.report(ctx, res)
	if res.Changed() {
		s.push()
	}
}

func (s *Session) push() {
	if s.sync.Synced() {
		s.sync.PushLocalChanges()
	}
}

func (s *Session) busy(ctx context.Context) cartapp.Result {
	res := cartapp.Result{Outcome: cartapp.OutcomeBusy}
	s.report(ctx, res)
	return res
}

func (s *Session) report(ctx context.Context, res cartapp.Result) {
	level := notify.LevelInfo
	switch {
	case res.Outcome == cartapp.OutcomeNoChange, res.Outcome == cartapp.OutcomeBelowMinimum:
		return
	case res.Outcome == cartapp.OutcomeInvalid, res.Outcome == cartapp.OutcomeNotFound:
		level = notify.LevelError
	case res.Warning():
		level = notify.LevelWarning
	case res.Changed():
		level = notify.LevelSuccess
	}
	s.notify(ctx, level, string(res.Outcome), res.Message())
}

func (s *Session) notify(ctx context.Context, level notify.Level, code, msg string) {
	s.notifier.Notify(ctx, notify.Notice{Level: level, Code: code, Message: msg})
}

func checkoutMessage(err error) string {
	var se *cartsyncapp.SyncError
	switch {
	case errors.Is(err, checkoutapp.ErrEmptyCart):
		return "your cart is empty"
	case errors.As(err, &se):
		return cartsyncapp.UserMessage(se)
	}
	return "the order could not be created"
}
