package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	cartapp "github.com/dwikikusuma/storefront-cart/internal/cart/app"
	"github.com/dwikikusuma/storefront-cart/internal/cart/infra/kv"
	"github.com/dwikikusuma/storefront-cart/internal/cart/infra/replica"
	cartsyncapp "github.com/dwikikusuma/storefront-cart/internal/cartsync/app"
	cartsynchttp "github.com/dwikikusuma/storefront-cart/internal/cartsync/infra/httpclient"
	catalogclient "github.com/dwikikusuma/storefront-cart/internal/catalog/infra/httpclient"
	checkoutapp "github.com/dwikikusuma/storefront-cart/internal/checkout/app"
	"github.com/dwikikusuma/storefront-cart/internal/checkout/infra/adapter"
	"github.com/dwikikusuma/storefront-cart/internal/notify"
	orderclient "github.com/dwikikusuma/storefront-cart/internal/order/infra/httpclient"
	"github.com/dwikikusuma/storefront-cart/internal/session"
	"github.com/dwikikusuma/storefront-cart/pkg/apiclient"
	pkgbadger "github.com/dwikikusuma/storefront-cart/pkg/badger"
	"github.com/dwikikusuma/storefront-cart/pkg/config"
	"github.com/dwikikusuma/storefront-cart/pkg/metrics"
	pkgredis "github.com/dwikikusuma/storefront-cart/pkg/redis"
)

// sessionKey marks a signed-in CLI session next to the cart replica, so
// later invocations resynchronize before they mutate.
const sessionKey = "cart:session"

// Env is everything one CLI invocation works with.
type Env struct {
	Session *session.Session
	Notices *notify.Collector
	Metrics *metrics.Sync

	store   replica.KV
	token   string
	closers []func() error
}

type EnvConfig struct {
	APIURL  string
	Token   string
	Timeout time.Duration
	Options []apiclient.Option
}

// Opener builds the Env for a command; tests swap it for one backed by
// in-process servers.
type Opener func(ctx context.Context, opts *RootOptions) (*Env, error)

// OpenEnv picks the replica backend from configuration and wires a session
// against the configured cart API.
func OpenEnv(ctx context.Context, opts *RootOptions) (*Env, error) {
	cfg := opts.Config
	store, closer, err := openStore(ctx, cfg, opts.Log)
	if err != nil {
		return nil, err
	}

	token := cfg.CartAPIToken
	if opts.Token != "" {
		token = opts.Token
	}
	env, err := NewEnv(ctx, store, EnvConfig{APIURL: cfg.CartAPIURL, Token: token, Timeout: cfg.HTTPTimeout}, opts.Log)
	if err != nil {
		_ = closer()
		return nil, err
	}
	env.closers = append(env.closers, closer)
	return env, nil
}

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (replica.KV, func() error, error) {
	switch strings.ToLower(cfg.ReplicaBackend) {
	case "", "badger":
		db, err := pkgbadger.Open(pkgbadger.Config{
			Path:       filepath.Join(cfg.ReplicaPath, "badger"),
			SyncWrites: true,
			Logger:     log,
		})
		if err != nil {
			return nil, nil, err
		}
		return kv.NewBadger(db), db.Close, nil
	case "redis":
		client, err := pkgredis.New(ctx, pkgredis.Config{URL: cfg.RedisURL, DialTimeout: cfg.HTTPTimeout})
		if err != nil {
			return nil, nil, err
		}
		if client == nil {
			return nil, nil, errors.New("REDIS_URL is required for the redis replica backend")
		}
		return kv.NewRedis(client, "cartctl:"), client.Close, nil
	case "memory":
		return kv.NewMemory(), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown replica backend %q (badger|redis|memory)", cfg.ReplicaBackend)
	}
}

// NewEnv loads the local replica and wires Cart Core, the sync coordinator
// and checkout behind one session.
func NewEnv(ctx context.Context, store replica.KV, ec EnvConfig, log *slog.Logger) (*Env, error) {
	apiOpts := append([]apiclient.Option{apiclient.WithToken(ec.Token)}, ec.Options...)
	if ec.Timeout > 0 {
		apiOpts = append(apiOpts, apiclient.WithTimeout(ec.Timeout))
	}
	api := apiclient.New(ec.APIURL, apiOpts...)

	notices := notify.NewCollector()
	notifier := notify.Multi(notices, notify.NewLogger(log))

	cart := cartapp.NewService(replica.New(store, replica.DefaultKey), cartapp.WithLogger(log))
	if err := cart.Load(ctx); err != nil {
		notices.Notify(ctx, notify.Notice{Level: notify.LevelError, Code: "storage", Message: cartsyncapp.UserMessage(err)})
	}

	m := metrics.NewSync(prometheus.NewRegistry())
	remote := cartsynchttp.NewCartClient(api)
	coord, err := cartsyncapp.NewCoordinator(cart, remote,
		cartsyncapp.WithLogger(log),
		cartsyncapp.WithNotifier(notifier),
		cartsyncapp.WithMetrics(m),
	)
	if err != nil {
		return nil, err
	}

	products := catalogclient.NewProductClient(api)
	reader := adapter.NewCartServiceReader(cart)
	sess, err := session.New(session.Deps{
		Cart:    cart,
		Sync:    coord,
		Catalog: products,
		Quotes:  checkoutapp.NewService(reader, adapter.NewCatalogServiceReader(products), 4),
		Checkout: checkoutapp.NewConfirmer(reader, coord,
			adapter.NewOrderClientPlacer(orderclient.NewOrderClient(api)),
			adapter.NewRemoteCartClearer(remote), adapter.NewLocalCartClearer(coord), log),
		Notifier: notifier,
		Log:      log,
	})
	if err != nil {
		return nil, err
	}

	return &Env{Session: sess, Notices: notices, Metrics: m, store: store, token: ec.Token}, nil
}

func (e *Env) HasToken() bool { return e.token != "" }

func (e *Env) SignedIn(ctx context.Context) (bool, error) {
	_, found, err := e.store.Get(ctx, sessionKey)
	return found, err
}

func (e *Env) MarkSignedIn(ctx context.Context) error {
	return e.store.Set(ctx, sessionKey, time.Now().UTC().Format(time.RFC3339))
}

func (e *Env) ForgetSignIn(ctx context.Context) error {
	return e.store.Delete(ctx, sessionKey)
}

func (e *Env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
