package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dwikikusuma/storefront-cart/internal/catalog/app"
	"github.com/dwikikusuma/storefront-cart/internal/catalog/domain"
)

// ProductRepo keeps products in insertion order; list cursors are product ids.
type ProductRepo struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]domain.Product
}

func NewProductRepo() *ProductRepo {
	return &ProductRepo{byID: make(map[string]domain.Product)}
}

func (r *ProductRepo) Create(_ context.Context, p domain.Product) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if _, exists := r.byID[p.ID]; exists {
		return domain.Product{}, app.ErrInvalidInput
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	r.byID[p.ID] = p
	r.order = append(r.order, p.ID)
	return p, nil
}

func (r *ProductRepo) Get(_ context.Context, id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return domain.Product{}, app.ErrNotFound
	}
	return p, nil
}

func (r *ProductRepo) GetMany(_ context.Context, ids []string) (map[string]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]domain.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.byID[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (r *ProductRepo) List(_ context.Context, query string, limit int, cursor string) ([]domain.Product, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	start := 0
	if cursor = strings.TrimSpace(cursor); cursor != "" {
		if _, ok := r.byID[cursor]; !ok {
			return nil, "", app.ErrInvalidInput
		}
		for i, id := range r.order {
			if id == cursor {
				start = i + 1
				break
			}
		}
	}

	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]domain.Product, 0, limit)
	var nextCursor string
	for _, id := range r.order[start:] {
		p := r.byID[id]
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Brand), q) {
			continue
		}
		out = append(out, p)
		nextCursor = p.ID
		if len(out) == limit {
			break
		}
	}

	if len(out) < limit {
		nextCursor = ""
	}
	return out, nextCursor, nil
}

// SetStock overwrites the available stock of an existing product.
func (r *ProductRepo) SetStock(id string, stock int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return app.ErrNotFound
	}
	p.AvailableStock = stock
	p.UpdatedAt = time.Now().UTC()
	r.byID[id] = p
	return nil
}
