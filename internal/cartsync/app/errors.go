package app

import (
	"errors"
	"fmt"

	cartapp "github.com/dwikikusuma/storefront-cart/internal/cart/app"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("server rejected cart")
	ErrTransport  = errors.New("cart server unreachable")
	ErrStorage    = cartapp.ErrStorage
)

// SyncError carries the failed operation, its taxonomy kind and, for
// rejections, the reason the server gave.
type SyncError struct {
	Op     string
	Kind   error
	Reason string
	Err    error
}

func (e *SyncError) Error() string {
	msg := e.Op + ": " + e.Kind.Error()
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SyncError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func Rejected(op, reason string) error {
	return &SyncError{Op: op, Kind: ErrConflict, Reason: reason}
}

func Unreachable(op string, err error) error {
	return &SyncError{Op: op, Kind: ErrTransport, Err: err}
}

// withOp re-labels err under op, keeping the kind when err is already a
// SyncError and treating anything else as a transport failure.
func withOp(op string, err error) error {
	var se *SyncError
	if errors.As(err, &se) {
		cp := *se
		cp.Op = op
		return &cp
	}
	return &SyncError{Op: op, Kind: ErrTransport, Err: err}
}

// UserMessage renders err the way it is shown to the shopper.
func UserMessage(err error) string {
	var se *SyncError
	switch {
	case errors.As(err, &se) && errors.Is(se.Kind, ErrConflict):
		if se.Reason != "" {
			return se.Reason
		}
		return "the server rejected your cart"
	case errors.Is(err, ErrTransport):
		return "could not reach the server, check your connection"
	case errors.Is(err, ErrStorage):
		return "your saved cart could not be read"
	case err != nil:
		return fmt.Sprintf("unexpected error: %v", err)
	}
	return ""
}
