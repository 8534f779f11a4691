package ports

import (
	"context"
	"errors"

	"github.com/Apurer/brew-ha-ha/internal/domains/store/domain"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrProductNotFound is returned when an order line names an unknown product.
	ErrProductNotFound = errors.New("product not found")
	// ErrStockChanged is returned when a guarded decrement finds less stock than was locked.
	ErrStockChanged = errors.New("stock changed during placement")
)

// Repository persists orders. InTx runs fn in a single transaction: any
// error returned by fn rolls back every write made through tx.
type Repository interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// GetByID loads an order with its items in insertion order and current product names.
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
}

// Tx is the write surface available inside a placement transaction.
type Tx interface {
	// ProductForUpdate locks the product row until the transaction ends.
	ProductForUpdate(ctx context.Context, productID int64) (*domain.Stock, error)
	// CreateOrder inserts the order header and assigns its id.
	CreateOrder(ctx context.Context, order *domain.Order) error
	AddItem(ctx context.Context, orderID int64, item domain.OrderItem) error
	DecrementStock(ctx context.Context, productID int64, qty int32) error
}
