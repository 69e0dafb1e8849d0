package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type ItemID string

type ProductID string

func (id ItemID) String() string    { return string(id) }
func (id ProductID) String() string { return string(id) }

// Server ids may arrive as JSON numbers.
func (id *ItemID) UnmarshalJSON(b []byte) error {
	s, err := decodeID(b)
	if err != nil {
		return fmt.Errorf("item id: %w", err)
	}
	*id = ItemID(s)
	return nil
}

func (id *ProductID) UnmarshalJSON(b []byte) error {
	s, err := decodeID(b)
	if err != nil {
		return fmt.Errorf("product id: %w", err)
	}
	*id = ProductID(s)
	return nil
}

func decodeID(b []byte) (string, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return "", nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

type ProductSnapshot struct {
	Name           string          `json:"name"`
	ImageURL       string          `json:"imageUrl,omitempty"`
	Brand          string          `json:"brand,omitempty"`
	Price          decimal.Decimal `json:"price"`
	AvailableStock int             `json:"availableStock"`
}

func (p ProductSnapshot) IsZero() bool {
	return p.Name == "" && p.ImageURL == "" && p.Brand == "" && p.Price.IsZero() && p.AvailableStock == 0
}

type CartItem struct {
	ID        ItemID          `json:"id"`
	ProductID ProductID       `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Product   ProductSnapshot `json:"product"`
}

// Reprice sets UnitPrice from the snapshot and Subtotal from UnitPrice and Quantity.
func (it *CartItem) Reprice() {
	it.UnitPrice = it.Product.Price
	it.Subtotal = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

type Cart struct {
	Items  []CartItem
	Totals Totals
}

func NewCart(items []CartItem) Cart {
	c := Cart{Items: CloneItems(items)}
	c.Recompute()
	return c
}

func (c *Cart) Recompute() {
	c.Totals = Summarize(c.Items)
}

func (c Cart) IndexByProduct(productID ProductID) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (c Cart) IndexByID(id ItemID) int {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// CloneItems deep-copies items. decimal.Decimal values are immutable, so a
// struct copy is sufficient per item.
func CloneItems(items []CartItem) []CartItem {
	if items == nil {
		return nil
	}
	out := make([]CartItem, len(items))
	copy(out, items)
	return out
}
