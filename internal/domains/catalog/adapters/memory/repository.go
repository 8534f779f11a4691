package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Apurer/brew-ha-ha/internal/domains/catalog/domain"
	"github.com/Apurer/brew-ha-ha/internal/domains/catalog/ports"
)

var _ ports.Repository = (*Repository)(nil)

// ErrInsufficientStock is returned by Withdraw when a line exceeds the stock on hand.
var ErrInsufficientStock = errors.New("insufficient stock")

// Repository is an in-memory catalog adapter. It also acts as the stock ledger
// for the in-memory order store.
type Repository struct {
	mu         sync.RWMutex
	products   map[int64]*domain.Product
	references map[int64]int
	nextID     int64
}

func NewRepository() *Repository {
	return &Repository{
		products:   map[int64]*domain.Product{},
		references: map[int64]int{},
	}
}

func (r *Repository) List(_ context.Context) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Product, 0, len(r.products))
	for _, product := range r.products {
		list = append(list, product.Clone())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.products[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return product.Clone(), nil
}

// Create stores the product, assigning an id when none is set.
func (r *Repository) Create(_ context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	clone := product.Clone()
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if clone.ID == 0 {
		r.nextID++
		clone.ID = r.nextID
	} else {
		if _, exists := r.products[clone.ID]; exists {
			return nil, fmt.Errorf("product %d already exists", clone.ID)
		}
		if clone.ID > r.nextID {
			r.nextID = clone.ID
		}
	}
	r.products[clone.ID] = clone
	return clone.Clone(), nil
}

func (r *Repository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return ports.ErrNotFound
	}
	if r.references[id] > 0 {
		return ports.ErrProductInUse
	}
	delete(r.products, id)
	return nil
}

func (r *Repository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.products)), nil
}

// Withdraw decrements stock for every product in lines and records each
// product as referenced by an order item. Either every line applies or none does.
func (r *Repository) Withdraw(_ context.Context, lines map[int64]int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, qty := range lines {
		product, ok := r.products[id]
		if !ok {
			return ports.ErrNotFound
		}
		if qty < 0 || product.Quantity < qty {
			return fmt.Errorf("%w: %s", ErrInsufficientStock, product.Name)
		}
	}
	for id, qty := range lines {
		r.products[id].Quantity -= qty
		r.references[id]++
	}
	return nil
}
