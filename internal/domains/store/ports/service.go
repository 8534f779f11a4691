package ports

import (
	"context"

	"github.com/Apurer/brew-ha-ha/internal/domains/store/domain"
)

// PlaceOrderInput is the validated-by-service request to place an order.
type PlaceOrderInput struct {
	PaymentMethod  string
	Items          []PlaceOrderItem
	IdempotencyKey string
}

// PlaceOrderItem is one requested line.
type PlaceOrderItem struct {
	ProductID int64
	Quantity  int32
}

// Service exposes order use cases to adapters.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error)
	GetOrderByID(ctx context.Context, id int64) (*domain.Order, error)
}
