package app

import "github.com/dwikikusuma/storefront-cart/internal/cart/domain"

// Reconcile folds the server's post-merge list into the local one.
//
// Temporary local ids match server items by product, server ids match by id.
// A matched item takes the server id, the server quantity when the local id
// was temporary or the quantities disagree, and the server subtotal and
// snapshot. A zero server subtotal is kept (promotions); only an absent one
// leaves the local subtotal. Each server item is consumed at most once;
// unmatched local items are dropped and unconsumed server items are appended
// in server order.
func Reconcile(local []domain.CartItem, resp SyncResponse) []domain.CartItem {
	server := resp.Items
	byID := make(map[domain.ItemID]int, len(server))
	byProduct := make(map[domain.ProductID]int, len(server))
	for i, it := range server {
		if _, ok := byID[it.ID]; !ok {
			byID[it.ID] = i
		}
		if _, ok := byProduct[it.ProductID]; !ok {
			byProduct[it.ProductID] = i
		}
	}
	consumed := make([]bool, len(server))

	take := func(i int) domain.CartItem {
		s := server[i]
		consumed[i] = true
		if j, ok := byID[s.ID]; ok && j == i {
			delete(byID, s.ID)
		}
		if j, ok := byProduct[s.ProductID]; ok && j == i {
			delete(byProduct, s.ProductID)
		}
		return s
	}

	out := make([]domain.CartItem, 0, len(server))
	for _, l := range local {
		var (
			i  int
			ok bool
		)
		temp := domain.IsTemporary(l.ID)
		if temp {
			i, ok = byProduct[l.ProductID]
		} else {
			i, ok = byID[l.ID]
		}
		if !ok {
			continue
		}
		s := take(i)

		r := l
		r.ID = s.ID
		if temp || s.Quantity != l.Quantity {
			r.Quantity = s.Quantity
		}
		if resp.hasSubtotal(i) {
			r.Subtotal = s.Subtotal
		}
		if !s.Product.IsZero() {
			r.Product = s.Product
		}
		if !s.UnitPrice.IsZero() {
			r.UnitPrice = s.UnitPrice
		}
		out = append(out, r)
	}

	for i, s := range server {
		if !consumed[i] {
			out = append(out, s)
		}
	}
	return out
}
