package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/storefront-cart/internal/catalog/app"
	"github.com/dwikikusuma/storefront-cart/internal/catalog/domain"
)

const productColumns = `id::text, name, brand, image_url, description, price::text, available_stock, created_at, updated_at`

type ProductRepo struct {
	db *pgxpool.Pool
}

func NewProductRepo(db *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{db: db}
}

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO products (id, name, brand, image_url, description, price, available_stock)
		VALUES ($1::uuid, $2, $3, $4, $5, $6::numeric, $7)
		RETURNING `+productColumns,
		p.ID, p.Name, p.Brand, p.ImageURL, p.Description, p.Price.String(), p.AvailableStock,
	)
	return scanProduct(row)
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	prodID, err := uuid.Parse(id)
	if err != nil {
		return domain.Product{}, app.ErrNotFound
	}

	product, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1::uuid`, prodID.String()))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

func (r *ProductRepo) GetMany(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	uids := make([]string, 0, len(ids))
	for _, id := range ids {
		if uid, err := uuid.Parse(id); err == nil {
			uids = append(uids, uid.String())
		}
	}
	out := make(map[string]domain.Product, len(uids))
	if len(uids) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1::uuid[])`, uids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

func (r *ProductRepo) List(ctx context.Context, query string, limit int, cursor string) ([]domain.Product, string, error) {
	var cur *string
	if strings.TrimSpace(cursor) != "" {
		uid, err := uuid.Parse(strings.TrimSpace(cursor))
		if err != nil {
			return nil, "", app.ErrInvalidInput
		}
		s := uid.String()
		cur = &s
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR brand ILIKE '%' || $1 || '%')
		  AND ($2::uuid IS NULL OR id > $2::uuid)
		ORDER BY id
		LIMIT $3`,
		strings.TrimSpace(query), cur, limit,
	)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	out := make([]domain.Product, 0, limit)
	var nextCursor string

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, "", err
		}
		out = append(out, p)
		nextCursor = p.ID
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	if len(out) < limit {
		nextCursor = ""
	}

	return out, nextCursor, nil
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var (
		p     domain.Product
		price string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Brand, &p.ImageURL, &p.Description, &price, &p.AvailableStock, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return domain.Product{}, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return domain.Product{}, fmt.Errorf("product %s price %q: %w", p.ID, price, err)
	}
	p.Price = d
	return p, nil
}
