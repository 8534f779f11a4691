package ports

import (
	"context"

	"github.com/Apurer/brew-ha-ha/internal/domains/catalog/domain"
)

// Service exposes catalog use cases to adapters.
type Service interface {
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	AddProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	RemoveProduct(ctx context.Context, id int64) error
	// SeedIfEmpty adds products only when the catalog holds none and reports how many were added.
	SeedIfEmpty(ctx context.Context, products []*domain.Product) (int, error)
}
