package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cartdomain "github.com/dwikikusuma/storefront-cart/internal/cart/domain"
	catalogdomain "github.com/dwikikusuma/storefront-cart/internal/catalog/domain"
	orderdomain "github.com/dwikikusuma/storefront-cart/internal/order/domain"
	"github.com/dwikikusuma/storefront-cart/internal/storefront/app"
	"github.com/dwikikusuma/storefront-cart/pkg/authtoken"
	"github.com/dwikikusuma/storefront-cart/pkg/metrics"
)

// SeqHeader carries the client's push sequence number on /cart/sync.
const SeqHeader = "X-Cart-Seq"

type Carts interface {
	Load(ctx context.Context, userID string) ([]cartdomain.CartItem, error)
	Sync(ctx context.Context, userID string, items []cartdomain.CartItem, merge bool) (app.SyncResult, error)
	Clear(ctx context.Context, userID string) error
	PlaceOrder(ctx context.Context, userID string) (orderdomain.OrderResponse, error)
}

type Catalog interface {
	GetProduct(ctx context.Context, id string) (catalogdomain.Product, error)
	ListProducts(ctx context.Context, query string, limit int, cursor string) ([]catalogdomain.Product, string, error)
}

type Deps struct {
	Carts    Carts
	Catalog  Catalog
	Tokens   *authtoken.Service
	Metrics  *metrics.Server
	Gatherer prometheus.Gatherer
	Log      *slog.Logger
}

func NewRouter(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}
	h := &handlers{carts: d.Carts, catalog: d.Catalog, log: d.Log}

	r := gin.New()
	r.Use(gin.Recovery(), observe(d.Log, d.Metrics))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))

	catalog := r.Group("/catalog")
	{
		catalog.GET("/product/:id", h.getProduct)
		catalog.GET("/products", h.listProducts)
	}

	auth := r.Group("/")
	auth.Use(requireUser(d.Tokens))
	{
		auth.GET("/cart/load", h.loadCart)
		auth.POST("/cart/sync", h.syncCart)
		auth.POST("/cart/clear", h.clearCart)
		auth.POST("/orders", h.createOrder)
	}
	return r
}
