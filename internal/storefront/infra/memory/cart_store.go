package memory

import (
	"context"
	"sync"

	"github.com/dwikikusuma/storefront-cart/internal/storefront/domain"
)

type CartStore struct {
	mu    sync.RWMutex
	carts map[string][]domain.Line
}

func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[string][]domain.Line)}
}

func (s *CartStore) Get(_ context.Context, userID string) ([]domain.Line, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Line(nil), s.carts[userID]...), nil
}

func (s *CartStore) Replace(_ context.Context, userID string, lines []domain.Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(lines) == 0 {
		delete(s.carts, userID)
		return nil
	}
	s.carts[userID] = append([]domain.Line(nil), lines...)
	return nil
}

func (s *CartStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
	return nil
}
