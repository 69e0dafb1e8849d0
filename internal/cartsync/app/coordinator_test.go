package app_test

//go:generate mockgen -destination=mocks/mocks.go -package=mocks github.com/dwikikusuma/storefront-cart/internal/cartsync/app RemoteCart

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	cartapp "github.com/dwikikusuma/storefront-cart/internal/cart/app"
	"github.com/dwikikusuma/storefront-cart/internal/cart/domain"
	"github.com/dwikikusuma/storefront-cart/internal/cart/infra/kv"
	"github.com/dwikikusuma/storefront-cart/internal/cart/infra/replica"
	"github.com/dwikikusuma/storefront-cart/internal/cartsync/app"
	"github.com/dwikikusuma/storefront-cart/internal/cartsync/app/mocks"
	"github.com/dwikikusuma/storefront-cart/internal/checkout/infra/adapter"
	"github.com/dwikikusuma/storefront-cart/internal/notify"
	"github.com/dwikikusuma/storefront-cart/pkg/metrics"
)

type CoordinatorSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	remote  *mocks.MockRemoteCart
	cart    *cartapp.Service
	store   *replica.Store
	notices *notify.Collector
	metrics *metrics.Sync
	coord   *app.Coordinator
	ctx     context.Context
}

func TestCoordinatorSuite(t *testing.T) {
	suite.Run(t, new(CoordinatorSuite))
}

func (s *CoordinatorSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.remote = mocks.NewMockRemoteCart(s.ctrl)
	s.store = replica.New(kv.NewMemory(), replica.DefaultKey)
	s.cart = cartapp.NewService(s.store)
	s.notices = notify.NewCollector()
	s.metrics = metrics.NewSync(prometheus.NewRegistry())

	var err error
	s.coord, err = app.NewCoordinator(s.cart, s.remote,
		app.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		app.WithNotifier(s.notices),
		app.WithMetrics(s.metrics),
	)
	s.Require().NoError(err)
}

func (s *CoordinatorSuite) TearDownTest() {
	s.ctrl.Finish()
}

func snap(price int64, stock int) domain.ProductSnapshot {
	return domain.ProductSnapshot{Name: "Product", Price: decimal.NewFromInt(price), AvailableStock: stock}
}

func (s *CoordinatorSuite) flush() {
	ctx, cancel := context.WithTimeout(s.ctx, 2*time.Second)
	defer cancel()
	s.Require().NoError(s.coord.Flush(ctx))
}

// hydrate establishes a server baseline of items.
func (s *CoordinatorSuite) hydrate(items ...domain.CartItem) {
	s.remote.EXPECT().Load(gomock.Any()).Return(items, nil)
	s.Require().NoError(s.coord.Authenticate(s.ctx))
}

func (s *CoordinatorSuite) TestNew() {
	s.Run("nil local cart", func() {
		_, err := app.NewCoordinator(nil, s.remote)
		s.Error(err)
	})
	s.Run("nil remote", func() {
		_, err := app.NewCoordinator(s.cart, nil)
		s.Error(err)
	})
}

func (s *CoordinatorSuite) TestAuthenticate() {
	s.Run("empty local cart hydrates verbatim", func() {
		server := []domain.CartItem{item("srv_1", "P1", 2, 19), item("srv_2", "P2", 1, 5)}
		s.hydrate(server...)

		s.Equal(server, s.cart.Items())
		s.True(s.coord.Synced())
		baseline, ok := s.coord.Baseline()
		s.True(ok)
		s.Equal(server, baseline)

		persisted, err := s.store.Load(s.ctx)
		s.Require().NoError(err)
		s.Len(persisted, 2)
	})

	s.Run("second call in the same session is a no-op", func() {
		s.NoError(s.coord.Authenticate(s.ctx))
	})
}

func (s *CoordinatorSuite) TestAuthenticateMergesNonEmptyCart() {
	s.cart.AddItem(s.ctx, "P1", 2, snap(10, 5))

	var sent app.SyncRequest
	s.remote.EXPECT().Sync(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req app.SyncRequest) (app.SyncResponse, error) {
			sent = req
			return app.SyncResponse{Items: []domain.CartItem{item("srv_9", "P1", 2, 20)}}, nil
		})

	s.Require().NoError(s.coord.Authenticate(s.ctx))

	s.True(sent.Merge)
	s.Require().Len(sent.Items, 1)
	s.Equal(domain.ItemID("temp_1"), sent.Items[0].ID)

	items := s.cart.Items()
	s.Require().Len(items, 1)
	s.Equal(domain.ItemID("srv_9"), items[0].ID)
	s.Equal(2, items[0].Quantity)
	s.True(items[0].Subtotal.Equal(decimal.NewFromInt(20)))
	s.True(s.cart.Totals().TotalPrice.Equal(decimal.NewFromInt(20)))
}

func (s *CoordinatorSuite) TestMergeDropsAndAppends() {
	s.cart.ReplaceItems(s.ctx, []domain.CartItem{item("srv_5", "P2", 3, 30)})
	s.remote.EXPECT().Sync(gomock.Any(), gomock.Any()).
		Return(app.SyncResponse{Items: []domain.CartItem{item("srv_7", "P3", 1, 10)}}, nil)

	s.Require().NoError(s.coord.MergeLocalWithServer(s.ctx))

	items := s.cart.Items()
	s.Require().Len(items, 1)
	s.Equal(domain.ItemID("srv_7"), items[0].ID)
	s.Equal(domain.ProductID("P3"), items[0].ProductID)
}

func (s *CoordinatorSuite) TestMergeTwiceIsStable() {
	s.cart.AddItem(s.ctx, "P1", 2, snap(10, 5))
	response := app.SyncResponse{Items: []domain.CartItem{item("srv_9", "P1", 2, 20), item("srv_3", "P3", 1, 10)}}
	s.remote.EXPECT().Sync(gomock.Any(), gomock.Any()).Return(response, nil).Times(2)

	s.Require().NoError(s.coord.MergeLocalWithServer(s.ctx))
	first := s.cart.Items()
	s.Require().NoError(s.coord.MergeLocalWithServer(s.ctx))
	s.Equal(first, s.cart.Items())
}

func (s *CoordinatorSuite) TestMergeFailureLeavesStateUntouched() {
	s.cart.AddItem(s.ctx, "P1", 2, snap(10, 5))
	before := s.cart.Items()

	s.remote.EXPECT().Sync(gomock.Any(), gomock.Any()).Return(app.SyncResponse{}, app.Unreachable("sync", errors.New("dial tcp: refused")))

	err := s.coord.Authenticate(s.ctx)
	s.Require().Error(err)
	s.ErrorIs(err, app.ErrTransport)
	s.Equal(before, s.cart.Items())
	s.False(s.coord.Synced())

	notices := s.notices.Drain()
	s.Require().Len(notices, 1)
	s.Equal("sync_unreachable", notices[0].Code)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Requests.WithLabelValues("merge", "transport")))
}

func (s *CoordinatorSuite) TestHydrateFailureLeavesStateUntouched() {
	s.remote.EXPECT().Load(gomock.Any()).Return(nil, app.Rejected("load", "cart locked"))

	err := s.coord.LoadFromServer(s.ctx)
	s.Require().Error(err)
	s.ErrorIs(err, app.ErrConflict)
	s.True(s.cart.IsEmpty())

	var se *app.SyncError
	s.Require().ErrorAs(err, &se)
	s.Equal("hydrate", se.Op)
	s.Equal("cart locked", se.Reason)
}

func (s *CoordinatorSuite) TestPushBeforeSyncIsDeferred() {
	s.cart.AddItem(s.ctx, "P1", 1, snap(10, 5))
	s.coord.PushLocalChanges()
	s.flush()

	pushed := make(chan app.SyncRequest, 1)
	gomock.InOrder(
		s.remote.EXPECT().Sync(gomock.Any(), gomock.Any()).
			Return(app.SyncResponse{Items: []domain.CartItem{item("srv_1", "P1", 1, 10)}}, nil),
		s.remote.EXPECT().Sync(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, req app.SyncRequest) (app.SyncResponse, error) {
				pushed <- req
				return app.SyncResponse{}, nil
			}),
	)

	s.Require().NoError(s.coord.Authenticate(s.ctx))
	s.flush()

	req := <-pushed
	s.False(req.Merge)
	s.Equal(uint64(2), req.Seq)
}

func (s *CoordinatorSuite) TestPushSuccessKeepsLocalState() {
	s.hydrate()
	s.cart.AddItem(s.ctx, "P1", 3, snap(10, 5))
	local := s.cart.Items()

	s.remote.EXPECT().Sync(gomock.Any(), gomock.Any()).Return(app.SyncResponse{
		Items:    []domain.CartItem{item("srv_1", "P1", 2, 20)},
		Warnings: []string{"cantidad ajustada por stock"},
	}, nil)

	s.coord.PushLocalChanges()
	s.flush()

	s.Equal(local, s.cart.Items(), "echoed items are not applied")
	baseline, _ := s.coord.Baseline()
	s.Equal(local, baseline)

	notices := s.notices.Drain()
	s.Require().Len(notices, 1)
	s.Equal(notify.LevelWarning, notices[0].Level)
	s.Equal("cantidad ajustada por stock", notices[0].Message)
}

func (s *CoordinatorSuite) TestPushTransportFailureRestoresSnapshot() {
	s.hydrate(item("srv_1", "P1", 1, 10))
	prePush := s.cart.Items()

	s.remote.EXPECT().Sync(gomock.Any(), gomock.Any()).Return(app.SyncResponse{}, app.Unreachable("sync", errors.New("timeout")))
	s.coord.PushLocalChanges()
	s.flush()

	s.Equal(prePush, s.cart.Items())
	notices := s.notices.Drain()
	s.Require().Len(notices, 1)
	s.Equal("sync_unreachable", notices[0].Code)
}

func (s *CoordinatorSuite) TestPushFailureUndoesOptimisticMutation() {
	s.hydrate(item("srv_1", "P1", 1, 10))
	acked := s.cart.Items()

	s.cart.AddItem(s.ctx, "P2", 2, snap(5, 5))
	s.remote.EXPECT().Sync(gomock.Any(), gomock.Any()).Return(app.SyncResponse{}, app.Rejected("sync", "product P2 is no longer available"))

	s.coord.PushLocalChanges()
	s.flush()

	s.Equal(acked, s.cart.Items())
	persisted, err := s.store.Load(s.ctx)
	s.Require().NoError(err)
	s.Len(persisted, 1)

	notices := s.notices.Drain()
	s.Require().Len(notices, 1)
	s.Equal("sync_rejected", notices[0].Code)
	s.Equal("product P2 is no longer available", notices[0].Message)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Rollbacks))
}

func (s *CoordinatorSuite) TestFailedPushDoesNotClobberLaterMutation() {
	s.hydrate()
	s.cart.AddItem(s.ctx, "P1", 1, snap(10, 5))

	release := make(chan struct{})
	entered := make(chan struct{})
	var (
		mu   sync.Mutex
		seqs []uint64
		last app.SyncRequest
	)
	record := func(req app.SyncRequest) {
		mu.Lock()
		seqs = append(seqs, req.Seq)
		last = req
		mu.Unlock()
	}
	gomock.InOrder(
		s.remote.EXPECT().Sync(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, req app.SyncRequest) (app.SyncResponse, error) {
				record(req)
				close(entered)
				<-release
				return app.SyncResponse{}, app.Unreachable("sync", errors.New("reset by peer"))
			}),
		s.remote.EXPECT().Sync(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, req app.SyncRequest) (app.SyncResponse, error) {
				record(req)
				return app.SyncResponse{}, nil
			}),
	)

	s.coord.PushLocalChanges()
	<-entered

	s.cart.AddItem(s.ctx, "P2", 1, snap(4, 5))
	s.coord.PushLocalChanges()
	s.cart.AddItem(s.ctx, "P3", 1, snap(4, 5))
	s.coord.PushLocalChanges()
	close(release)
	s.flush()

	items := s.cart.Items()
	s.Require().Len(items, 3, "the failed push must not roll back newer mutations")

	mu.Lock()
	defer mu.Unlock()
	s.Equal([]uint64{1, 2}, seqs, "pending mutations coalesce into one resend")
	s.Len(last.Items, 3)
	s.Equal(0.0, testutil.ToFloat64(s.metrics.Rollbacks))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Coalesced))
}

// restoreHook calls after once, right after a rollback reaches the cart.
type restoreHook struct {
	*cartapp.Service
	after func()
}

func (r *restoreHook) RestoreIfVersion(ctx context.Context, version uint64, items []domain.CartItem) bool {
	ok := r.Service.RestoreIfVersion(ctx, version, items)
	if ok && r.after != nil {
		after := r.after
		r.after = nil
		after()
	}
	return ok
}

func (s *CoordinatorSuite) TestMutationRightAfterRollbackIsPushed() {
	hooked := &restoreHook{Service: s.cart}
	coord, err := app.NewCoordinator(hooked, s.remote, app.WithNotifier(s.notices))
	s.Require().NoError(err)

	s.remote.EXPECT().Load(gomock.Any()).Return(nil, nil)
	s.Require().NoError(coord.Authenticate(s.ctx))

	hooked.after = func() {
		s.cart.AddItem(s.ctx, "P9", 1, snap(3, 5))
		coord.PushLocalChanges()
	}
	pushed := make(chan app.SyncRequest, 1)
	gomock.InOrder(
		s.remote.EXPECT().Sync(gomock.Any(), gomock.Any()).
			Return(app.SyncResponse{}, app.Rejected("sync", "product P1 is no longer available")),
		s.remote.EXPECT().Sync(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, req app.SyncRequest) (app.SyncResponse, error) {
				pushed <- req
				return app.SyncResponse{}, nil
			}),
	)

	s.cart.AddItem(s.ctx, "P1", 1, snap(10, 5))
	coord.PushLocalChanges()

	ctx, cancel := context.WithTimeout(s.ctx, 2*time.Second)
	defer cancel()
	s.Require().NoError(coord.Flush(ctx))

	select {
	case req := <-pushed:
		s.Require().Len(req.Items, 1)
		s.Equal(domain.ProductID("P9"), req.Items[0].ProductID)
	case <-time.After(2 * time.Second):
		s.FailNow("mutation made after the rollback was not pushed")
	}

	items := s.cart.Items()
	s.Require().Len(items, 1)
	s.Equal(domain.ProductID("P9"), items[0].ProductID)
	baseline, _ := coord.Baseline()
	s.Equal(items, baseline)
}

func (s *CoordinatorSuite) TestFailedPushAfterOrderDoesNotRestoreOrderedItems() {
	s.hydrate(item("srv_1", "P1", 2, 20))

	s.Require().NoError(adapter.NewLocalCartClearer(s.coord).ClearCart(s.ctx))
	s.True(s.cart.IsEmpty())
	baseline, ok := s.coord.Baseline()
	s.True(ok)
	s.Empty(baseline)

	s.cart.AddItem(s.ctx, "P2", 1, snap(5, 5))
	s.remote.EXPECT().Sync(gomock.Any(), gomock.Any()).Return(app.SyncResponse{}, app.Unreachable("sync", errors.New("timeout")))
	s.coord.PushLocalChanges()
	s.flush()

	s.Empty(s.cart.Items(), "rollback targets the emptied cart")
	persisted, err := s.store.Load(s.ctx)
	s.Require().NoError(err)
	s.Empty(persisted)
}

func (s *CoordinatorSuite) TestLogoutClearsCart() {
	s.hydrate(item("srv_1", "P1", 1, 10))

	s.Require().NoError(s.coord.Logout(s.ctx))
	s.True(s.cart.IsEmpty())
	s.False(s.coord.Synced())
	_, ok := s.coord.Baseline()
	s.False(ok)

	persisted, err := s.store.Load(s.ctx)
	s.Require().NoError(err)
	s.Empty(persisted)

	s.cart.AddItem(s.ctx, "P1", 1, snap(10, 5))
	s.coord.PushLocalChanges()
	s.flush()
}

func (s *CoordinatorSuite) TestUserMessage() {
	s.Equal("out of stock", app.UserMessage(app.Rejected("sync", "out of stock")))
	s.Equal("could not reach the server, check your connection", app.UserMessage(app.Unreachable("load", errors.New("x"))))
	s.Equal("", app.UserMessage(nil))
}
