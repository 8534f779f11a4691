package memory

import (
	"context"
	"errors"
	"sync"

	catalogdomain "github.com/Apurer/brew-ha-ha/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/brew-ha-ha/internal/domains/catalog/ports"
	"github.com/Apurer/brew-ha-ha/internal/domains/store/domain"
	"github.com/Apurer/brew-ha-ha/internal/domains/store/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Inventory is the stock ledger orders draw from. The in-memory catalog
// repository satisfies it.
type Inventory interface {
	GetByID(ctx context.Context, id int64) (*catalogdomain.Product, error)
	Withdraw(ctx context.Context, lines map[int64]int32) error
}

// Repository is an in-memory order persistence adapter. Placements are
// serialized; writes are staged and applied only when fn succeeds.
type Repository struct {
	inventory Inventory

	placement sync.Mutex
	mu        sync.RWMutex
	orders    map[int64]*domain.Order
	nextID    int64
}

func NewRepository(inventory Inventory) *Repository {
	return &Repository{
		inventory: inventory,
		orders:    map[int64]*domain.Order{},
	}
}

func (r *Repository) InTx(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	if r.inventory == nil {
		return errors.New("memory order repository has no inventory")
	}
	r.placement.Lock()
	defer r.placement.Unlock()

	tx := &stagedTx{repo: r, withdrawals: map[int64]int32{}}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if tx.order == nil {
		return nil
	}
	if err := r.inventory.Withdraw(ctx, tx.withdrawals); err != nil {
		if errors.Is(err, catalogports.ErrNotFound) {
			return ports.ErrProductNotFound
		}
		return errors.Join(ports.ErrStockChanged, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[tx.order.ID] = tx.order
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	r.mu.RLock()
	order, ok := r.orders[id]
	if ok {
		order = order.Clone()
	}
	r.mu.RUnlock()
	if !ok {
		return nil, ports.ErrNotFound
	}
	for i := range order.Items {
		product, err := r.inventory.GetByID(ctx, order.Items[i].ProductID)
		if err != nil {
			return nil, err
		}
		order.Items[i].ProductName = product.Name
	}
	return order, nil
}

func (r *Repository) reserveID() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	return r.nextID
}

type stagedTx struct {
	repo        *Repository
	order       *domain.Order
	withdrawals map[int64]int32
}

func (t *stagedTx) ProductForUpdate(ctx context.Context, productID int64) (*domain.Stock, error) {
	product, err := t.repo.inventory.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, catalogports.ErrNotFound) {
			return nil, ports.ErrProductNotFound
		}
		return nil, err
	}
	return &domain.Stock{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    product.Quantity - t.withdrawals[productID],
	}, nil
}

// CreateOrder assigns the id up front. Ids of rolled back placements are not reused.
func (t *stagedTx) CreateOrder(_ context.Context, order *domain.Order) error {
	if order == nil {
		return errors.New("order is nil")
	}
	order.ID = t.repo.reserveID()
	t.order = &domain.Order{
		ID:            order.ID,
		PaymentMethod: order.PaymentMethod,
		OrderDate:     order.OrderDate,
		Status:        order.Status,
	}
	return nil
}

func (t *stagedTx) AddItem(_ context.Context, orderID int64, item domain.OrderItem) error {
	if t.order == nil || t.order.ID != orderID {
		return ports.ErrNotFound
	}
	t.order.Items = append(t.order.Items, domain.OrderItem{ProductID: item.ProductID, Quantity: item.Quantity})
	return nil
}

func (t *stagedTx) DecrementStock(ctx context.Context, productID int64, qty int32) error {
	stock, err := t.ProductForUpdate(ctx, productID)
	if err != nil {
		return err
	}
	if stock.Quantity < qty {
		return ports.ErrStockChanged
	}
	t.withdrawals[productID] += qty
	return nil
}
