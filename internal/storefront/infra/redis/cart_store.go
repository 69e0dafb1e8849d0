package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dwikikusuma/storefront-cart/internal/storefront/domain"
)

const keyPrefix = "storefront:cart:"

type line struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CartStore keeps each server cart as one JSON value with a sliding TTL.
type CartStore struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewCartStore(client *goredis.Client, ttl time.Duration) *CartStore {
	return &CartStore{client: client, ttl: ttl}
}

func (s *CartStore) Get(ctx context.Context, userID string) ([]domain.Line, error) {
	raw, err := s.client.Get(ctx, keyPrefix+userID).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var stored []line
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", userID, err)
	}
	out := make([]domain.Line, 0, len(stored))
	for _, l := range stored {
		out = append(out, domain.Line{ID: l.ID, ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return out, nil
}

func (s *CartStore) Replace(ctx context.Context, userID string, lines []domain.Line) error {
	if len(lines) == 0 {
		return s.Clear(ctx, userID)
	}
	stored := make([]line, 0, len(lines))
	for _, l := range lines {
		stored = append(stored, line{ID: l.ID, ProductID: l.ProductID, Quantity: l.Quantity})
	}
	raw, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefix+userID, raw, s.ttl).Err()
}

func (s *CartStore) Clear(ctx context.Context, userID string) error {
	return s.client.Del(ctx, keyPrefix+userID).Err()
}
