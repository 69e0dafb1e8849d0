// Package replica owns the on-disk form of the local cart: a JSON array of
// cart items stored as one blob under a single well-known key.
package replica

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dwikikusuma/storefront-cart/internal/cart/domain"
)

const DefaultKey = "cart:items"

// KV is the durable string store the replica is written to.
type KV interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type Store struct {
	kv  KV
	key string
}

func New(kv KV, key string) *Store {
	if strings.TrimSpace(key) == "" {
		key = DefaultKey
	}
	return &Store{kv: kv, key: key}
}

func (s *Store) Load(ctx context.Context) ([]domain.CartItem, error) {
	raw, found, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.key, err)
	}
	if !found || strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	return Decode([]byte(raw))
}

func (s *Store) Save(ctx context.Context, items []domain.CartItem) error {
	b, err := Encode(items)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, s.key, string(b)); err != nil {
		return fmt.Errorf("write %s: %w", s.key, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("delete %s: %w", s.key, err)
	}
	return nil
}

func Encode(items []domain.CartItem) ([]byte, error) {
	if items == nil {
		items = []domain.CartItem{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode cart items: %w", err)
	}
	return b, nil
}

func Decode(b []byte) ([]domain.CartItem, error) {
	var items []domain.CartItem
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("decode cart items: %w", err)
	}
	return items, nil
}
