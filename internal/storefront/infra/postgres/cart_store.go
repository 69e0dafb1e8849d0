package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dwikikusuma/storefront-cart/internal/storefront/domain"
)

type CartStore struct {
	db *pgxpool.Pool
}

func NewCartStore(db *pgxpool.Pool) *CartStore {
	return &CartStore{db: db}
}

func (s *CartStore) Get(ctx context.Context, userID string) ([]domain.Line, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id::text, product_id::text, quantity
		FROM cart_items
		WHERE user_id = $1
		ORDER BY position`, userID)
	if err != nil {
		return nil, err
	}

	lines, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Line, error) {
		var l domain.Line
		err := row.Scan(&l.ID, &l.ProductID, &l.Quantity)
		return l, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan cart lines: %w", err)
	}
	return lines, nil
}

// Replace swaps the whole cart in one transaction, preserving line order.
func (s *CartStore) Replace(ctx context.Context, userID string, lines []domain.Line) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("delete cart lines: %w", err)
		}
		if len(lines) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for i, l := range lines {
			batch.Queue(`
				INSERT INTO cart_items (id, user_id, product_id, quantity, position)
				VALUES ($1::uuid, $2, $3::uuid, $4, $5)`,
				l.ID, userID, l.ProductID, l.Quantity, i,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert cart lines: %w", err)
		}
		return nil
	})
}

func (s *CartStore) Clear(ctx context.Context, userID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	return err
}
