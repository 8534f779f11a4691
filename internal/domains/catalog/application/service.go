package application

import (
	"context"
	"errors"

	"github.com/Apurer/brew-ha-ha/internal/domains/catalog/domain"
	"github.com/Apurer/brew-ha-ha/internal/domains/catalog/ports"
)

// Service orchestrates catalog use cases.
type Service struct {
	repo ports.Repository
}

func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

// ListProducts returns every product ordered by id.
func (s *Service) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	if id <= 0 {
		return nil, ports.ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// AddProduct validates and persists a new product.
func (s *Service) AddProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	candidate := product.Clone()
	candidate.Normalize()
	if err := candidate.Validate(); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Create(ctx, candidate)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// RemoveProduct deletes a product that no order item references.
func (s *Service) RemoveProduct(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) SeedIfEmpty(ctx context.Context, products []*domain.Product) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}
	added := 0
	for _, product := range products {
		if _, err := s.AddProduct(ctx, product); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

var _ ports.Service = (*Service)(nil)
