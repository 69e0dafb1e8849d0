package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/storefront-cart/internal/order/app"
	"github.com/dwikikusuma/storefront-cart/internal/order/domain"
)

type OrderRepo struct {
	db *pgxpool.Pool
}

func NewOrderRepo(db *pgxpool.Pool) *OrderRepo {
	return &OrderRepo{db: db}
}

func (r *OrderRepo) execTX(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}

	err = fn(tx)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("tx err: %w; rollback err: %v", err, rbErr)
		}
		return err
	}

	return tx.Commit(ctx)
}

func (r *OrderRepo) CreateOrderTx(ctx context.Context, order domain.Order) (domain.Order, error) {
	createdOrder := order

	err := r.execTX(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO orders (id, user_id, status, total, checkout_url)
			VALUES ($1::uuid, $2, $3, $4::numeric, $5)
			RETURNING created_at`,
			order.ID, order.UserID, order.Status, order.Total.String(), order.CheckoutURL,
		).Scan(&createdOrder.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for i, item := range order.OrderItems {
			expected := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			if !item.Subtotal.Equal(expected) {
				return fmt.Errorf("item %d: line total mismatch", i)
			}

			if _, err := uuid.Parse(item.ProductID); err != nil {
				return fmt.Errorf("item %d: invalid product UUID: %w", i, err)
			}

			_, err := tx.Exec(ctx, `
				INSERT INTO order_items (order_id, product_id, name, quantity, unit_price, subtotal)
				VALUES ($1::uuid, $2::uuid, $3, $4, $5::numeric, $6::numeric)`,
				order.ID, item.ProductID, item.Name, item.Quantity, item.UnitPrice.String(), item.Subtotal.String(),
			)
			if err != nil {
				return fmt.Errorf("failed to insert item %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return createdOrder, nil
}

func (r *OrderRepo) Get(ctx context.Context, id string) (domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Order{}, app.ErrNotFound
	}

	var (
		o     domain.Order
		total string
	)
	err := r.db.QueryRow(ctx, `
		SELECT id::text, user_id, status, total::text, checkout_url, created_at
		FROM orders WHERE id = $1::uuid`, id,
	).Scan(&o.ID, &o.UserID, &o.Status, &total, &o.CheckoutURL, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return domain.Order{}, fmt.Errorf("order %s total: %w", id, err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT product_id::text, name, quantity, unit_price::text, subtotal::text
		FROM order_items WHERE order_id = $1::uuid ORDER BY product_id`, id)
	if err != nil {
		return domain.Order{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			it              domain.OrderItem
			price, subtotal string
		)
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Quantity, &price, &subtotal); err != nil {
			return domain.Order{}, err
		}
		it.UnitPrice, _ = decimal.NewFromString(price)
		it.Subtotal, _ = decimal.NewFromString(subtotal)
		o.OrderItems = append(o.OrderItems, it)
	}
	return o, rows.Err()
}
