package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/dwikikusuma/storefront-cart/internal/cart/domain"
	"github.com/dwikikusuma/storefront-cart/internal/notify"
	"github.com/dwikikusuma/storefront-cart/pkg/metrics"
)

const (
	opHydrate = "hydrate"
	opMerge   = "merge"
	opPush    = "push"
)

// Coordinator keeps Cart Core and the server cart in step. Pushes are
// serialized: at most one request is in flight, and mutations made meanwhile
// set a resend flag that is drained when it returns.
type Coordinator struct {
	cart     LocalCart
	remote   RemoteCart
	notifier notify.Notifier
	log      *slog.Logger
	metrics  *metrics.Sync

	mu          sync.Mutex
	synced      bool
	hasBaseline bool
	baseline    []domain.CartItem
	seq         uint64
	inFlight    bool
	dirty       bool
	done        chan struct{}
}

type Option func(*Coordinator)

func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.log = l
		}
	}
}

func WithNotifier(n notify.Notifier) Option {
	return func(c *Coordinator) {
		if n != nil {
			c.notifier = n
		}
	}
}

func WithMetrics(m *metrics.Sync) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

func NewCoordinator(cart LocalCart, remote RemoteCart, opts ...Option) (*Coordinator, error) {
	if cart == nil {
		return nil, errors.New("local cart is required")
	}
	if remote == nil {
		return nil, errors.New("remote cart is required")
	}
	c := &Coordinator{
		cart:     cart,
		remote:   remote,
		notifier: notify.Discard,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Authenticate runs once per session when an identity is recognized: an
// empty local cart is hydrated from the server, anything else is merged.
// A failed attempt may be retried.
func (c *Coordinator) Authenticate(ctx context.Context) error {
	c.mu.Lock()
	synced := c.synced
	c.mu.Unlock()
	if synced {
		c.log.Debug("cart already synchronized for this session")
		return nil
	}

	var err error
	if c.cart.IsEmpty() {
		err = c.LoadFromServer(ctx)
	} else {
		err = c.MergeLocalWithServer(ctx)
	}
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.synced = true
	c.mu.Unlock()
	return nil
}

// LoadFromServer replaces local state with the server cart verbatim. On
// failure local state is left untouched.
func (c *Coordinator) LoadFromServer(ctx context.Context) error {
	started := time.Now()
	items, err := c.remote.Load(ctx)
	if err != nil {
		err = withOp(opHydrate, err)
		c.metrics.Observe(opHydrate, resultOf(err), started)
		c.fail(ctx, err)
		return err
	}
	c.metrics.Observe(opHydrate, "ok", started)

	c.cart.ReplaceItems(ctx, items)
	c.log.Info("cart hydrated from server", slog.Int("items", len(items)))
	c.acknowledge(ctx, items)
	return nil
}

// MergeLocalWithServer sends the local cart with the merge flag and applies
// the reconciled result. On failure local state is left untouched and no
// hydrate is attempted.
func (c *Coordinator) MergeLocalWithServer(ctx context.Context) error {
	snap := c.cart.Snapshot()
	seq := c.nextSeq()

	started := time.Now()
	resp, err := c.remote.Sync(ctx, SyncRequest{Items: snap.Items, Merge: true, Seq: seq})
	if err != nil {
		err = withOp(opMerge, err)
		c.metrics.Observe(opMerge, resultOf(err), started)
		c.fail(ctx, err)
		return err
	}
	c.metrics.Observe(opMerge, "ok", started)

	reconciled := Reconcile(snap.Items, resp)
	c.cart.ReplaceItems(ctx, reconciled)
	c.log.Info("local cart merged with server",
		slog.Int("local", len(snap.Items)),
		slog.Int("server", len(resp.Items)),
		slog.Int("reconciled", len(reconciled)),
	)
	c.warn(ctx, resp.Warnings)
	c.acknowledge(ctx, reconciled)
	return nil
}

// PushLocalChanges schedules a push of the current cart and returns at once.
// It does nothing before the session has synchronized; pushes requested
// while hydrate or merge is pending are sent once the baseline exists.
func (c *Coordinator) PushLocalChanges() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hasBaseline {
		c.dirty = true
		return
	}
	if c.inFlight {
		if !c.dirty {
			c.metrics.IncrementCoalesced()
		}
		c.dirty = true
		return
	}
	c.startLocked()
}

// Flush blocks until no push is in flight or pending.
func (c *Coordinator) Flush(ctx context.Context) error {
	for {
		c.mu.Lock()
		if !c.inFlight {
			c.mu.Unlock()
			return nil
		}
		done := c.done
		c.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Logout waits for the pending push, then clears the local cart and forgets
// the server baseline.
func (c *Coordinator) Logout(ctx context.Context) error {
	if err := c.Flush(ctx); err != nil {
		return err
	}
	c.mu.Lock()
	c.synced = false
	c.hasBaseline = false
	c.baseline = nil
	c.dirty = false
	c.mu.Unlock()

	c.cart.Clear(ctx)
	c.log.Info("cart cleared on logout")
	return nil
}

// ClearLocal empties the local cart after an order consumed the server cart.
// The acknowledged baseline becomes the empty cart, so a later failed push
// cannot roll ordered items back in.
func (c *Coordinator) ClearLocal(ctx context.Context) {
	c.mu.Lock()
	if c.hasBaseline {
		c.baseline = []domain.CartItem{}
	}
	c.mu.Unlock()

	c.cart.Clear(ctx)
	c.log.Info("local cart cleared after order")
}

func (c *Coordinator) Synced() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.synced
}

// Baseline returns the last item list the server acknowledged.
func (c *Coordinator) Baseline() ([]domain.CartItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.CloneItems(c.baseline), c.hasBaseline
}

func (c *Coordinator) startLocked() {
	c.inFlight = true
	c.dirty = false
	c.done = make(chan struct{})
	go c.drain(c.done)
}

func (c *Coordinator) drain(done chan struct{}) {
	for {
		c.pushOnce()

		c.mu.Lock()
		if !c.dirty || !c.hasBaseline {
			c.inFlight = false
			c.mu.Unlock()
			close(done)
			return
		}
		c.dirty = false
		c.mu.Unlock()
	}
}

func (c *Coordinator) pushOnce() {
	// A push outlives the UI action that triggered it.
	ctx := context.Background()
	snap := c.cart.Snapshot()
	seq := c.nextSeq()

	started := time.Now()
	resp, err := c.remote.Sync(ctx, SyncRequest{Items: snap.Items, Seq: seq})
	if err == nil {
		c.metrics.Observe(opPush, "ok", started)
		c.log.Debug("cart pushed", slog.Uint64("seq", seq), slog.Int("items", len(snap.Items)))
		c.warn(ctx, resp.Warnings)

		c.mu.Lock()
		if seq == c.seq {
			c.baseline = snap.Items
		}
		c.mu.Unlock()
		return
	}

	err = withOp(opPush, err)
	c.metrics.Observe(opPush, resultOf(err), started)

	c.mu.Lock()
	latest := seq == c.seq
	baseline := domain.CloneItems(c.baseline)
	c.mu.Unlock()

	// The version check proves nothing changed since the send, so a resend
	// requested after this point belongs to a newer mutation and is kept.
	restored := latest && c.cart.RestoreIfVersion(ctx, snap.Version, baseline)
	if restored {
		c.metrics.IncrementRollbacks()
	}
	c.log.Warn("cart push failed",
		slog.Uint64("seq", seq),
		slog.Bool("rolled_back", restored),
		slog.Any("err", err),
	)
	c.fail(ctx, err)
}

func (c *Coordinator) acknowledge(ctx context.Context, items []domain.CartItem) {
	c.mu.Lock()
	c.baseline = domain.CloneItems(items)
	c.hasBaseline = true
	pending := c.dirty && !c.inFlight
	if pending {
		c.startLocked()
	}
	c.mu.Unlock()
	if pending {
		c.log.DebugContext(ctx, "sending push deferred until sync")
	}
}

func (c *Coordinator) nextSeq() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

func (c *Coordinator) warn(ctx context.Context, warnings []string) {
	for _, w := range warnings {
		c.notifier.Notify(ctx, notify.Notice{Level: notify.LevelWarning, Code: "server_warning", Message: w})
	}
}

func (c *Coordinator) fail(ctx context.Context, err error) {
	code := "sync_failed"
	switch {
	case errors.Is(err, ErrConflict):
		code = "sync_rejected"
	case errors.Is(err, ErrTransport):
		code = "sync_unreachable"
	}
	c.notifier.Notify(ctx, notify.Notice{Level: notify.LevelError, Code: code, Message: UserMessage(err)})
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrTransport):
		return "transport"
	}
	return "error"
}
