package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dwikikusuma/storefront-cart/internal/order/app"
	"github.com/dwikikusuma/storefront-cart/internal/order/domain"
)

type OrderRepo struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
}

func NewOrderRepo() *OrderRepo {
	return &OrderRepo{orders: make(map[string]domain.Order)}
}

func (r *OrderRepo) CreateOrderTx(_ context.Context, order domain.Order) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.ID]; exists {
		return domain.Order{}, fmt.Errorf("order %s already exists", order.ID)
	}
	order.CreatedAt = time.Now().UTC()
	order.OrderItems = append([]domain.OrderItem(nil), order.OrderItems...)
	r.orders[order.ID] = order
	return order, nil
}

func (r *OrderRepo) Get(_ context.Context, id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return domain.Order{}, app.ErrNotFound
	}
	return o, nil
}

func (r *OrderRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}
