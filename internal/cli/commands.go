package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	cartapp "github.com/dwikikusuma/storefront-cart/internal/cart/app"
	"github.com/dwikikusuma/storefront-cart/internal/cart/domain"
	"github.com/dwikikusuma/storefront-cart/internal/session"
	"github.com/dwikikusuma/storefront-cart/pkg/authtoken"
)

func NewShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the cart and its totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, true, func(ctx context.Context, env *Env) error {
				return newPrinter(cmd, opts).cart(env.Session.Items(), env.Session.Totals())
			})
		},
	}
}

func NewAddCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <product-id> [quantity]",
		Short: "Add units of a product to the cart",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty := 1
			if len(args) == 2 {
				n, err := strconv.Atoi(args[1])
				if err != nil {
					return NewExitError(ExitCommandError, fmt.Sprintf("invalid quantity %q", args[1]))
				}
				qty = n
			}
			return run(cmd, opts, true, func(ctx context.Context, env *Env) error {
				res, err := env.Session.Add(ctx, args[0], qty)
				if err != nil {
					return WrapExitError(ExitFailure, "add item", err)
				}
				return result(cmd, opts, env, res)
			})
		},
	}
}

func NewUpdateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "update <item-id> <delta>",
		Short: "Change an item quantity by a signed delta",
		Example: `  cartctl update temp_1 +2
  cartctl update -- temp_1 -1`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, err := strconv.Atoi(args[1])
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid delta %q", args[1]))
			}
			return run(cmd, opts, true, func(ctx context.Context, env *Env) error {
				return result(cmd, opts, env, env.Session.Update(ctx, domain.ItemID(args[0]), delta))
			})
		},
	}
}

func NewRemoveCommand(opts *RootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "remove <item-id>",
		Short: "Remove an item after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			confirm := session.ConfirmFunc(func(_ context.Context, it domain.CartItem) bool {
				if yes {
					return true
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "remove %s (%d)? [y/N] ", it.Product.Name, it.Quantity)
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				answer = strings.ToLower(strings.TrimSpace(answer))
				return answer == "y" || answer == "yes"
			})
			return run(cmd, opts, true, func(ctx context.Context, env *Env) error {
				return result(cmd, opts, env, env.Session.Remove(ctx, domain.ItemID(args[0]), confirm))
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func NewClearCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, true, func(ctx context.Context, env *Env) error {
				env.Session.Clear(ctx)
				return newPrinter(cmd, opts).line("cart cleared")
			})
		},
	}
}

func NewLoginCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Synchronize the local cart with your server cart",
		Long: `Synchronize the local cart with your server cart.

An empty local cart is replaced by the server cart; otherwise both are
merged. Later commands keep the server cart up to date until logout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, false, func(ctx context.Context, env *Env) error {
				if !env.HasToken() {
					return NewExitError(ExitCommandError, "a token is required: pass --token or set CART_API_TOKEN")
				}
				if err := env.Session.Login(ctx); err != nil {
					return WrapExitError(ExitFailure, "login", err)
				}
				if err := env.MarkSignedIn(ctx); err != nil {
					return WrapExitError(ExitCommandError, "save session", err)
				}
				return newPrinter(cmd, opts).cart(env.Session.Items(), env.Session.Totals())
			})
		},
	}
}

func NewLogoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the session and clear the local cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, false, func(ctx context.Context, env *Env) error {
				if err := env.Session.Logout(ctx); err != nil {
					return WrapExitError(ExitFailure, "logout", err)
				}
				if err := env.ForgetSignIn(ctx); err != nil {
					return WrapExitError(ExitCommandError, "clear session", err)
				}
				return newPrinter(cmd, opts).line("logged out")
			})
		},
	}
}

func NewPushCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Send the local cart to the server and wait for it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, true, func(ctx context.Context, env *Env) error {
				if err := env.Session.Push(ctx); err != nil {
					if errors.Is(err, session.ErrNotAuthenticated) {
						return NewExitError(ExitCommandError, "not logged in")
					}
					return WrapExitError(ExitFailure, "push", err)
				}
				return newPrinter(cmd, opts).cart(env.Session.Items(), env.Session.Totals())
			})
		},
	}
}

func NewQuoteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "quote",
		Short: "Re-price the cart against the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, true, func(ctx context.Context, env *Env) error {
				q, err := env.Session.Quote(ctx)
				if err != nil {
					return WrapExitError(ExitFailure, "quote", err)
				}
				return newPrinter(cmd, opts).quote(q)
			})
		},
	}
}

func NewCheckoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Create an order from the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, true, func(ctx context.Context, env *Env) error {
				conf, err := env.Session.Checkout(ctx)
				if err != nil {
					if errors.Is(err, session.ErrNotAuthenticated) {
						return NewExitError(ExitCommandError, "log in before checking out")
					}
					return WrapExitError(ExitFailure, "checkout", err)
				}
				return newPrinter(cmd, opts).confirmation(conf)
			})
		},
	}
}

// NewTokenCommand mints a development token from JWT_SECRET. It is not a
// login flow: whoever holds the secret can act as any user.
func NewTokenCommand(opts *RootOptions) *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:    "token <user-id>",
		Short:  "Mint a development bearer token",
		Args:   cobra.ExactArgs(1),
		Hidden: opts.Config.AppEnv == "prod",
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := authtoken.New(opts.Config.JWTSecret).Issue(args[0], ttl)
			if err != nil {
				return WrapExitError(ExitCommandError, "issue token", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

func result(cmd *cobra.Command, opts *RootOptions, env *Env, res cartapp.Result) error {
	p := newPrinter(cmd, opts)
	if opts.Format == "json" {
		return p.json(map[string]any{
			"outcome": res.Outcome,
			"message": res.Message(),
			"item":    res.Item,
			"totals":  env.Session.Totals(),
		})
	}
	if res.Outcome == cartapp.OutcomeBelowMinimum || res.Outcome == cartapp.OutcomeNoChange {
		return p.line("%s", res.Message())
	}
	return p.cart(env.Session.Items(), env.Session.Totals())
}
