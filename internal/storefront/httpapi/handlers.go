package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	cartdomain "github.com/dwikikusuma/storefront-cart/internal/cart/domain"
	catalogdomain "github.com/dwikikusuma/storefront-cart/internal/catalog/domain"
	"github.com/dwikikusuma/storefront-cart/internal/storefront/app"
)

type handlers struct {
	carts   Carts
	catalog Catalog
	log     *slog.Logger
}

type cartResponse struct {
	Success  bool                  `json:"success"`
	Items    []cartdomain.CartItem `json:"items"`
	Warnings []string              `json:"warnings,omitempty"`
}

type syncRequest struct {
	Items []cartdomain.CartItem `json:"items"`
	Merge bool                  `json:"merge"`
}

type productPage struct {
	Success    bool                    `json:"success"`
	Items      []catalogdomain.Product `json:"items"`
	NextCursor string                  `json:"nextCursor,omitempty"`
}

func (h *handlers) getProduct(c *gin.Context) {
	p, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) listProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	items, next, err := h.catalog.ListProducts(c.Request.Context(), c.Query("q"), limit, c.Query("cursor"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if items == nil {
		items = []catalogdomain.Product{}
	}
	c.JSON(http.StatusOK, productPage{Success: true, Items: items, NextCursor: next})
}

func (h *handlers) loadCart(c *gin.Context) {
	items, err := h.carts.Load(c.Request.Context(), userID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse{Success: true, Items: nonNil(items)})
}

func (h *handlers) syncCart(c *gin.Context) {
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, fmt.Errorf("%w: %v", app.ErrInvalidInput, err))
		return
	}

	if seq := c.GetHeader(SeqHeader); seq != "" {
		h.log.Debug("cart sync received",
			slog.String("user_id", userID(c)),
			slog.String("seq", seq),
			slog.Bool("merge", req.Merge),
			slog.Int("items", len(req.Items)),
		)
	}

	res, err := h.carts.Sync(c.Request.Context(), userID(c), req.Items, req.Merge)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse{Success: true, Items: nonNil(res.Items), Warnings: res.Warnings})
}

func (h *handlers) clearCart(c *gin.Context) {
	if err := h.carts.Clear(c.Request.Context(), userID(c)); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handlers) createOrder(c *gin.Context) {
	resp, err := h.carts.PlaceOrder(c.Request.Context(), userID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	resp.Success = true
	c.JSON(http.StatusCreated, resp)
}

func nonNil(items []cartdomain.CartItem) []cartdomain.CartItem {
	if items == nil {
		return []cartdomain.CartItem{}
	}
	return items
}
