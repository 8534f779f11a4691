package ports

import (
	"context"
	"errors"

	"github.com/Apurer/brew-ha-ha/internal/domains/catalog/domain"
)

var (
	ErrNotFound = errors.New("product not found")
	// ErrProductInUse is returned when deleting a product that order items still reference.
	ErrProductInUse = errors.New("product is referenced by existing orders")
)

// Repository persists catalog products.
type Repository interface {
	// List returns every product ordered by id.
	List(ctx context.Context) ([]*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}
