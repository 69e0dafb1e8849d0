package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"

	catalogapp "github.com/dwikikusuma/storefront-cart/internal/catalog/app"
	catalogmemory "github.com/dwikikusuma/storefront-cart/internal/catalog/infra/memory"
	catalogpg "github.com/dwikikusuma/storefront-cart/internal/catalog/infra/postgres"
	orderapp "github.com/dwikikusuma/storefront-cart/internal/order/app"
	ordermemory "github.com/dwikikusuma/storefront-cart/internal/order/infra/memory"
	orderpg "github.com/dwikikusuma/storefront-cart/internal/order/infra/postgres"
	storefrontapp "github.com/dwikikusuma/storefront-cart/internal/storefront/app"
	"github.com/dwikikusuma/storefront-cart/internal/storefront/httpapi"
	storefrontmemory "github.com/dwikikusuma/storefront-cart/internal/storefront/infra/memory"
	storefrontpg "github.com/dwikikusuma/storefront-cart/internal/storefront/infra/postgres"
	storefrontredis "github.com/dwikikusuma/storefront-cart/internal/storefront/infra/redis"
	"github.com/dwikikusuma/storefront-cart/pkg/authtoken"
	"github.com/dwikikusuma/storefront-cart/pkg/config"
	"github.com/dwikikusuma/storefront-cart/pkg/logger"
	"github.com/dwikikusuma/storefront-cart/pkg/metrics"
	"github.com/dwikikusuma/storefront-cart/pkg/postgres"
	pkgredis "github.com/dwikikusuma/storefront-cart/pkg/redis"
	"github.com/dwikikusuma/storefront-cart/pkg/shutdown"
)

const cartTTL = 30 * 24 * time.Hour

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{Service: "cartd", Env: cfg.AppEnv, Level: cfg.LogLevel, AddSource: true})

	ctx, cancel := shutdown.WithSignals(context.Background(), log)
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewServer(reg)

	var (
		products catalogapp.ProductRepo
		orders   orderapp.OrderRepo
		carts    storefrontapp.CartStore
	)

	if cfg.DatabaseURL != "" {
		db := mustDB(ctx, cfg, log)
		defer db.Close()
		products = catalogpg.NewProductRepo(db)
		orders = orderpg.NewOrderRepo(db)
		carts = storefrontpg.NewCartStore(db)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory storage with demo products")
		repo := catalogmemory.NewProductRepo()
		if err := seed(ctx, catalogapp.NewService(repo)); err != nil {
			log.Error("seed catalog failed", slog.Any("err", err))
			os.Exit(1)
		}
		products = repo
		orders = ordermemory.NewOrderRepo()
		carts = storefrontmemory.NewCartStore()
	}

	rdb, err := pkgredis.New(ctx, pkgredis.Config{URL: cfg.RedisURL, DialTimeout: 5 * time.Second})
	if err != nil {
		log.Error("redis connect failed", slog.Any("err", err))
		os.Exit(1)
	}
	if rdb != nil {
		defer rdb.Close()
		carts = storefrontredis.NewCartStore(rdb, cartTTL)
		log.Info("carts stored in redis")
	}

	catalogSvc := catalogapp.NewService(products)
	orderSvc := orderapp.NewService(orders, cfg.CheckoutBaseURL)
	cartSvc := storefrontapp.NewService(carts, catalogSvc, orderSvc,
		storefrontapp.WithLogger(log),
		storefrontapp.WithMetrics(m),
	)

	router := httpapi.NewRouter(httpapi.Deps{
		Carts:    cartSvc,
		Catalog:  catalogSvc,
		Tokens:   authtoken.New(cfg.JWTSecret),
		Metrics:  m,
		Gatherer: reg,
		Log:      log,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("http server starting", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", slog.Any("err", err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", slog.Any("err", err))
	}

	wg.Wait()
	log.Info("bye")
}

func mustDB(ctx context.Context, cfg config.Config, log *slog.Logger) *pgxpool.Pool {
	db, err := postgres.Open(ctx, postgres.DefaultConfig(cfg.DatabaseURL))
	if err != nil {
		log.Error("db open failed", slog.Any("err", err))
		os.Exit(1)
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		db.Close()
		log.Error("db migrate failed", slog.Any("err", err))
		os.Exit(1)
	}
	return db
}

func seed(ctx context.Context, catalog *catalogapp.Service) error {
	demo := []catalogapp.NewProduct{
		{Name: "Ceramic Mug", Brand: "Acme", Price: decimal.RequireFromString("12.50"), Stock: 20},
		{Name: "Loose Leaf Tea", Brand: "Acme", Price: decimal.RequireFromString("7.90"), Stock: 8},
		{Name: "Desk Lamp", Brand: "Lumen", Price: decimal.RequireFromString("39.00"), Stock: 3},
		{Name: "Notebook", Brand: "Paperco", Price: decimal.RequireFromString("4.25"), Stock: 0},
	}
	for _, p := range demo {
		if _, err := catalog.CreateProduct(ctx, p); err != nil {
			return fmt.Errorf("seed %s: %w", p.Name, err)
		}
	}
	return nil
}
