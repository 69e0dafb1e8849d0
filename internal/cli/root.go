package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/dwikikusuma/storefront-cart/pkg/config"
)

// RootOptions holds global flags and shared wiring for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Token   string

	Config config.Config
	Log    *slog.Logger
	Open   Opener
}

var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the cartctl command tree.
func NewRootCommand(cfg config.Config, log *slog.Logger) *cobra.Command {
	return newRootCommand(&RootOptions{Config: cfg, Log: log, Open: OpenEnv})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	if opts.Log == nil {
		opts.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	cmd := &cobra.Command{
		Use:   "cartctl",
		Short: "Storefront cart from the command line",
		Long: `cartctl keeps a local storefront cart that works offline and
synchronizes it with the storefront server once you log in.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "print every notice, including info")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Token, "token", "", "bearer token for the cart API (overrides CART_API_TOKEN)")

	cmd.AddCommand(
		NewShowCommand(opts),
		NewAddCommand(opts),
		NewUpdateCommand(opts),
		NewRemoveCommand(opts),
		NewClearCommand(opts),
		NewLoginCommand(opts),
		NewLogoutCommand(opts),
		NewPushCommand(opts),
		NewQuoteCommand(opts),
		NewCheckoutCommand(opts),
		NewTokenCommand(opts),
	)
	return cmd
}

// run opens the environment, resynchronizes a signed-in session, runs fn and
// waits for pending pushes before printing notices.
func run(cmd *cobra.Command, opts *RootOptions, resync bool, fn func(ctx context.Context, env *Env) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	env, err := opts.Open(ctx, opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "open cart", err)
	}
	defer func() {
		if cerr := env.Close(); cerr != nil {
			opts.Log.Warn("close cart environment", slog.Any("err", cerr))
		}
	}()

	out := newPrinter(cmd, opts)
	if resync {
		signedIn, err := env.SignedIn(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "read session", err)
		}
		if signedIn && env.HasToken() {
			if err := env.Session.Login(ctx); err != nil {
				out.notices(env.Notices.Drain())
				return WrapExitError(ExitFailure, "synchronize cart", err)
			}
		}
	}

	runErr := fn(ctx, env)
	if err := env.Session.Flush(ctx); err != nil && runErr == nil {
		runErr = err
	}
	out.notices(env.Notices.Drain())
	return runErr
}
