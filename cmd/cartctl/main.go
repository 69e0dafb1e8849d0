package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dwikikusuma/storefront-cart/internal/cli"
	"github.com/dwikikusuma/storefront-cart/pkg/config"
	"github.com/dwikikusuma/storefront-cart/pkg/logger"
	"github.com/dwikikusuma/storefront-cart/pkg/shutdown"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service: "cartctl",
		Env:     cfg.AppEnv,
		Level:   envOr("CARTCTL_LOG_LEVEL", "warn"),
		Writer:  os.Stderr,
		Text:    true,
	})

	ctx, cancel := shutdown.WithSignals(context.Background(), log)
	defer cancel()

	err := cli.NewRootCommand(cfg, log).ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	cancel()
	os.Exit(cli.GetExitCode(err))
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
