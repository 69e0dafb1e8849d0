package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	catalogapp "github.com/dwikikusuma/storefront-cart/internal/catalog/app"
	orderapp "github.com/dwikikusuma/storefront-cart/internal/order/app"
	"github.com/dwikikusuma/storefront-cart/internal/storefront/app"
	"github.com/dwikikusuma/storefront-cart/pkg/authtoken"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// statusFor maps service sentinels onto HTTP status codes and the message
// shown to the shopper. Unknown errors never leak their text.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, authtoken.ErrExpired), errors.Is(err, authtoken.ErrInvalid):
		return http.StatusUnauthorized, "invalid or expired token"
	case errors.Is(err, app.ErrRejected):
		return http.StatusConflict, reason(err, app.ErrRejected)
	case errors.Is(err, app.ErrEmptyCart), errors.Is(err, orderapp.ErrEmptyOrder):
		return http.StatusUnprocessableEntity, "el carrito está vacío"
	case errors.Is(err, app.ErrInvalidInput), errors.Is(err, catalogapp.ErrInvalidInput), errors.Is(err, orderapp.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, catalogapp.ErrNotFound), errors.Is(err, orderapp.ErrNotFound):
		return http.StatusNotFound, "not found"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// reason strips the sentinel prefix from a wrapped rejection.
func reason(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()+": "); i >= 0 {
		return msg[i+len(sentinel.Error())+2:]
	}
	return msg
}

func abortWithError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, errorResponse{Success: false, Message: msg})
}
