package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/storefront-cart/internal/order/domain"
)

var (
	ErrEmptyOrder   = errors.New("order has no items")
	ErrInvalidInput = errors.New("invalid order")
	ErrNotFound     = errors.New("order not found")
)

const (
	OrderStatusPending = "PENDING"
)

type Service struct {
	repo            OrderRepo
	checkoutBaseURL string
}

func NewService(repo OrderRepo, checkoutBaseURL string) *Service {
	return &Service{repo: repo, checkoutBaseURL: strings.TrimRight(checkoutBaseURL, "/")}
}

func (s *Service) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (domain.OrderResponse, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return domain.OrderResponse{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if len(req.Items) == 0 {
		return domain.OrderResponse{}, ErrEmptyOrder
	}

	orderItems := make([]domain.OrderItem, 0, len(req.Items))
	total := decimal.Zero

	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return domain.OrderResponse{}, fmt.Errorf("%w: item %d: quantity must be positive, got %d", ErrInvalidInput, i, item.Quantity)
		}
		if item.UnitPrice.IsNegative() {
			return domain.OrderResponse{}, fmt.Errorf("%w: item %d: unit price cannot be negative, got %s", ErrInvalidInput, i, item.UnitPrice)
		}

		subtotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		orderItems = append(orderItems, domain.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Subtotal:  subtotal,
		})

		total = total.Add(subtotal)
	}

	id := uuid.NewString()
	order := domain.Order{
		ID:          id,
		UserID:      req.UserID,
		Status:      OrderStatusPending,
		Total:       total,
		CheckoutURL: s.checkoutURL(id),
		OrderItems:  orderItems,
	}

	createdOrder, err := s.repo.CreateOrderTx(ctx, order)
	if err != nil {
		return domain.OrderResponse{}, err
	}

	return domain.OrderResponse{
		Success:     true,
		ID:          createdOrder.ID,
		CheckoutURL: createdOrder.CheckoutURL,
		Status:      createdOrder.Status,
		Total:       createdOrder.Total,
	}, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Order{}, ErrInvalidInput
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) checkoutURL(orderID string) string {
	return s.checkoutBaseURL + "/" + url.PathEscape(orderID)
}
