package app

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/storefront-cart/internal/catalog/domain"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo ProductRepo
}

func NewService(repo ProductRepo) *Service {
	return &Service{
		repo: repo,
	}
}

type NewProduct struct {
	Name        string
	Brand       string
	ImageURL    string
	Description string
	Price       decimal.Decimal
	Stock       int
}

func (s *Service) CreateProduct(ctx context.Context, in NewProduct) (domain.Product, error) {
	name := strings.TrimSpace(in.Name)

	if name == "" || !in.Price.IsPositive() || in.Stock < 0 {
		return domain.Product{}, ErrInvalidInput
	}

	p := domain.Product{
		Name:           name,
		Brand:          strings.TrimSpace(in.Brand),
		ImageURL:       strings.TrimSpace(in.ImageURL),
		Description:    in.Description,
		Price:          in.Price,
		AvailableStock: in.Stock,
	}

	product, err := s.repo.Create(ctx, p)
	if err != nil {
		return domain.Product{}, err
	}

	return product, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Product{}, ErrInvalidInput
	}
	return s.repo.Get(ctx, strings.TrimSpace(id))
}

// GetProducts returns the products found for ids; missing ids are simply
// absent from the map.
func (s *Service) GetProducts(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	clean := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			clean = append(clean, id)
		}
	}
	if len(clean) == 0 {
		return map[string]domain.Product{}, nil
	}
	return s.repo.GetMany(ctx, clean)
}

func (s *Service) ListProducts(ctx context.Context, query string, limit int, cursor string) ([]domain.Product, string, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, query, limit, cursor)
}
