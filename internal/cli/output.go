package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dwikikusuma/storefront-cart/internal/cart/domain"
	checkoutdomain "github.com/dwikikusuma/storefront-cart/internal/checkout/domain"
	"github.com/dwikikusuma/storefront-cart/internal/notify"
)

const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the server or the cart refused the operation
	ExitCommandError = 2 // bad arguments or an unusable environment
)

type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns ExitFailure for errors that carry no code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

type printer struct {
	format  string
	verbose bool
	out     io.Writer
	errOut  io.Writer
}

func newPrinter(cmd *cobra.Command, opts *RootOptions) *printer {
	return &printer{format: opts.Format, verbose: opts.Verbose, out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}
}

type cartView struct {
	Items  []domain.CartItem `json:"items"`
	Totals domain.Totals     `json:"totals"`
}

func (p *printer) cart(items []domain.CartItem, totals domain.Totals) error {
	if p.format == "json" {
		if items == nil {
			items = []domain.CartItem{}
		}
		return p.json(cartView{Items: items, Totals: totals})
	}
	if len(items) == 0 {
		_, err := fmt.Fprintln(p.out, "cart is empty")
		return err
	}

	w := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRODUCT\tNAME\tQTY\tPRICE\tSUBTOTAL")
	for _, it := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			it.ID, it.ProductID, it.Product.Name, it.Quantity, it.UnitPrice.StringFixed(2), it.Subtotal.StringFixed(2))
	}
	fmt.Fprintf(w, "\t\t%d items\t%d\t\t%s\n", totals.UniqueCount, totals.TotalQuantity, totals.TotalPrice.StringFixed(2))
	return w.Flush()
}

func (p *printer) quote(q checkoutdomain.Quote) error {
	if p.format == "json" {
		return p.json(struct {
			checkoutdomain.Quote
			NeedsReview bool `json:"needsReview"`
		}{q, q.NeedsReview()})
	}

	w := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PRODUCT\tNAME\tQTY\tPRICE\tTOTAL\tNOTE")
	for _, l := range q.Lines {
		note := ""
		switch {
		case l.Short:
			note = fmt.Sprintf("only %d in stock", l.AvailableStock)
		case l.PriceChanged:
			note = "price changed"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
			l.ProductID, l.Name, l.Quantity, l.UnitPrice.StringFixed(2), l.LineTotal.StringFixed(2), note)
	}
	fmt.Fprintf(w, "\t\t\t\t%s\t\n", q.Total.StringFixed(2))
	return w.Flush()
}

func (p *printer) confirmation(c checkoutdomain.Confirmation) error {
	if p.format == "json" {
		return p.json(map[string]string{
			"orderId":     c.OrderID,
			"checkoutUrl": c.CheckoutURL,
			"total":       c.Total.String(),
		})
	}
	_, err := fmt.Fprintf(p.out, "order %s created\npay at %s\n", c.OrderID, c.CheckoutURL)
	return err
}

func (p *printer) line(format string, args ...any) error {
	if p.format == "json" {
		return p.json(map[string]string{"message": fmt.Sprintf(format, args...)})
	}
	_, err := fmt.Fprintf(p.out, format+"\n", args...)
	return err
}

// notices go to stderr so JSON output stays parseable.
func (p *printer) notices(ns []notify.Notice) {
	for _, n := range ns {
		if n.Level == notify.LevelInfo && !p.verbose {
			continue
		}
		fmt.Fprintf(p.errOut, "[%s] %s\n", n.Level, n.Message)
	}
}

func (p *printer) json(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
