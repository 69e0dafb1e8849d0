package app_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	cartdomain "github.com/dwikikusuma/storefront-cart/internal/cart/domain"
	catalogapp "github.com/dwikikusuma/storefront-cart/internal/catalog/app"
	catalogmemory "github.com/dwikikusuma/storefront-cart/internal/catalog/infra/memory"
	orderapp "github.com/dwikikusuma/storefront-cart/internal/order/app"
	ordermemory "github.com/dwikikusuma/storefront-cart/internal/order/infra/memory"
	"github.com/dwikikusuma/storefront-cart/internal/storefront/app"
	"github.com/dwikikusuma/storefront-cart/internal/storefront/infra/memory"
	"github.com/dwikikusuma/storefront-cart/pkg/metrics"
)

const user = "user-1"

type StorefrontSuite struct {
	suite.Suite
	ctx      context.Context
	products *catalogmemory.ProductRepo
	orders   *ordermemory.OrderRepo
	metrics  *metrics.Server
	svc      *app.Service

	mug, tea, lamp string
}

func TestStorefrontSuite(t *testing.T) {
	suite.Run(t, new(StorefrontSuite))
}

func (s *StorefrontSuite) SetupTest() {
	s.ctx = context.Background()
	s.products = catalogmemory.NewProductRepo()
	s.orders = ordermemory.NewOrderRepo()
	s.metrics = metrics.NewServer(prometheus.NewRegistry())

	catalog := catalogapp.NewService(s.products)
	s.mug = s.create(catalog, "Mug", "10", 5)
	s.tea = s.create(catalog, "Tea", "2.5", 8)
	s.lamp = s.create(catalog, "Lamp", "40", 0)

	s.svc = app.NewService(memory.NewCartStore(), catalog,
		orderapp.NewService(s.orders, "https://pay.example.com/checkout"),
		app.WithMetrics(s.metrics),
	)
}

func (s *StorefrontSuite) create(catalog *catalogapp.Service, name, price string, stock int) string {
	p, err := catalog.CreateProduct(s.ctx, catalogapp.NewProduct{Name: name, Price: decimal.RequireFromString(price), Stock: stock})
	s.Require().NoError(err)
	return p.ID
}

func line(id, product string, qty int) cartdomain.CartItem {
	return cartdomain.CartItem{ID: cartdomain.ItemID(id), ProductID: cartdomain.ProductID(product), Quantity: qty}
}

func (s *StorefrontSuite) TestPushReplacesCart() {
	res, err := s.svc.Sync(s.ctx, user, []cartdomain.CartItem{line("temp_1", s.mug, 2), line("temp_2", s.tea, 1)}, false)
	s.Require().NoError(err)
	s.Require().Len(res.Items, 2)
	s.Empty(res.Warnings)
	s.False(cartdomain.IsTemporary(res.Items[0].ID), "temporary ids are replaced")
	s.True(res.Items[0].Subtotal.Equal(decimal.NewFromInt(20)))
	mugID := res.Items[0].ID

	res, err = s.svc.Sync(s.ctx, user, []cartdomain.CartItem{line("temp_9", s.mug, 3)}, false)
	s.Require().NoError(err)
	s.Require().Len(res.Items, 1, "push replaces rather than merges")
	s.Equal(mugID, res.Items[0].ID, "a product keeps its server line id")
	s.Equal(3, res.Items[0].Quantity)

	loaded, err := s.svc.Load(s.ctx, user)
	s.Require().NoError(err)
	s.Equal(res.Items, loaded)
}

func (s *StorefrontSuite) TestPushClampsAndDrops() {
	res, err := s.svc.Sync(s.ctx, user, []cartdomain.CartItem{line("temp_1", s.mug, 9), line("temp_2", s.lamp, 1)}, false)
	s.Require().NoError(err)

	s.Require().Len(res.Items, 1)
	s.Equal(5, res.Items[0].Quantity)
	s.Equal([]string{"Mug: " + app.WarnStockAdjusted, "Lamp: " + app.WarnOutOfStock}, res.Warnings)
	s.Equal(2.0, testutil.ToFloat64(s.metrics.StockAdjusted))
}

func (s *StorefrontSuite) TestPushRejections() {
	s.Run("unknown product", func() {
		_, err := s.svc.Sync(s.ctx, user, []cartdomain.CartItem{line("temp_1", "ghost", 1)}, false)
		s.ErrorIs(err, app.ErrRejected)
	})
	s.Run("zero quantity", func() {
		_, err := s.svc.Sync(s.ctx, user, []cartdomain.CartItem{line("temp_1", s.mug, 0)}, false)
		s.ErrorIs(err, app.ErrInvalidInput)
	})
	s.Run("duplicate product", func() {
		_, err := s.svc.Sync(s.ctx, user, []cartdomain.CartItem{line("temp_1", s.mug, 1), line("temp_2", s.mug, 1)}, false)
		s.ErrorIs(err, app.ErrInvalidInput)
	})
	s.Run("rejected push leaves cart untouched", func() {
		loaded, err := s.svc.Load(s.ctx, user)
		s.Require().NoError(err)
		s.Empty(loaded)
	})
}

func (s *StorefrontSuite) TestMergeTakesLargerQuantity() {
	_, err := s.svc.Sync(s.ctx, user, []cartdomain.CartItem{line("temp_1", s.mug, 3), line("temp_2", s.tea, 1)}, false)
	s.Require().NoError(err)

	local := []cartdomain.CartItem{line("temp_7", s.mug, 1), line("temp_8", s.tea, 4)}
	first, err := s.svc.Sync(s.ctx, user, local, true)
	s.Require().NoError(err)
	s.Require().Len(first.Items, 2)
	s.Equal(3, first.Items[0].Quantity)
	s.Equal(4, first.Items[1].Quantity)

	second, err := s.svc.Sync(s.ctx, user, first.Items, true)
	s.Require().NoError(err)
	s.Equal(first.Items, second.Items, "merging the reconciled cart again changes nothing")
}

func (s *StorefrontSuite) TestMergeKeepsServerOnlyAndAppendsNew() {
	_, err := s.svc.Sync(s.ctx, user, []cartdomain.CartItem{line("temp_1", s.tea, 2)}, false)
	s.Require().NoError(err)

	res, err := s.svc.Sync(s.ctx, user, []cartdomain.CartItem{line("temp_1", s.mug, 7)}, true)
	s.Require().NoError(err)
	s.Require().Len(res.Items, 2)
	s.Equal(cartdomain.ProductID(s.tea), res.Items[0].ProductID)
	s.Equal(cartdomain.ProductID(s.mug), res.Items[1].ProductID)
	s.Equal(5, res.Items[1].Quantity)
	s.Equal([]string{"Mug: " + app.WarnStockAdjusted}, res.Warnings)
}

func (s *StorefrontSuite) TestPlaceOrder() {
	s.Run("empty cart", func() {
		_, err := s.svc.PlaceOrder(s.ctx, user)
		s.ErrorIs(err, app.ErrEmptyCart)
	})

	s.Run("creates order at catalog prices", func() {
		_, err := s.svc.Sync(s.ctx, user, []cartdomain.CartItem{line("temp_1", s.mug, 2), line("temp_2", s.tea, 2)}, false)
		s.Require().NoError(err)

		resp, err := s.svc.PlaceOrder(s.ctx, user)
		s.Require().NoError(err)
		s.True(resp.Success)
		s.NotEmpty(resp.ID)
		s.Contains(resp.CheckoutURL, resp.ID)
		s.True(resp.Total.Equal(decimal.NewFromInt(25)))
		s.Equal(1, s.orders.Count())
		s.Equal(1.0, testutil.ToFloat64(s.metrics.OrdersCreated))
	})

	s.Run("stock drop rejects the order", func() {
		s.Require().NoError(s.products.SetStock(s.mug, 1))
		_, err := s.svc.PlaceOrder(s.ctx, user)
		s.ErrorIs(err, app.ErrRejected)
	})
}

func (s *StorefrontSuite) TestClear() {
	_, err := s.svc.Sync(s.ctx, user, []cartdomain.CartItem{line("temp_1", s.mug, 1)}, false)
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Clear(s.ctx, user))
	loaded, err := s.svc.Load(s.ctx, user)
	s.Require().NoError(err)
	s.Empty(loaded)
}
