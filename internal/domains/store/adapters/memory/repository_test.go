package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogmemory "github.com/Apurer/brew-ha-ha/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/Apurer/brew-ha-ha/internal/domains/catalog/domain"
	"github.com/Apurer/brew-ha-ha/internal/domains/store/domain"
	"github.com/Apurer/brew-ha-ha/internal/domains/store/ports"
)

func newInventory(t *testing.T, stock map[string]int32) *catalogmemory.Repository {
	t.Helper()
	inventory := catalogmemory.NewRepository()
	for _, name := range []string{"Espresso", "muffin", "Latte"} {
		qty, ok := stock[name]
		if !ok {
			continue
		}
		product, err := catalogdomain.NewProduct(name, decimal.RequireFromString("2.50"), qty)
		require.NoError(t, err)
		_, err = inventory.Create(context.Background(), product)
		require.NoError(t, err)
	}
	return inventory
}

func place(ctx context.Context, repo *Repository, items ...domain.OrderItem) (*domain.Order, error) {
	order, err := domain.NewOrder(domain.PaymentCredit, items, time.Now())
	if err != nil {
		return nil, err
	}
	err = repo.InTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}
		for _, item := range order.Items {
			stock, err := tx.ProductForUpdate(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if err := stock.Reserve(item.Quantity); err != nil {
				return err
			}
			if err := tx.AddItem(ctx, order.ID, item); err != nil {
				return err
			}
			if err := tx.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func TestRepository_CommitAppliesStockAndResolvesNames(t *testing.T) {
	inventory := newInventory(t, map[string]int32{"Espresso": 10, "muffin": 5})
	repo := NewRepository(inventory)
	ctx := context.Background()

	order, err := place(ctx, repo, domain.OrderItem{ProductID: 2, Quantity: 2}, domain.OrderItem{ProductID: 1, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), order.ID)

	loaded, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 2)
	assert.Equal(t, "muffin", loaded.Items[0].ProductName)
	assert.Equal(t, "Espresso", loaded.Items[1].ProductName)

	muffin, err := inventory.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int32(3), muffin.Quantity)
}

func TestRepository_FailureLeavesNothingBehind(t *testing.T) {
	inventory := newInventory(t, map[string]int32{"Espresso": 10, "muffin": 5})
	repo := NewRepository(inventory)
	ctx := context.Background()

	_, err := place(ctx, repo, domain.OrderItem{ProductID: 1, Quantity: 2}, domain.OrderItem{ProductID: 2, Quantity: 6})
	var outOfStock *domain.OutOfStockError
	require.True(t, errors.As(err, &outOfStock))
	assert.Equal(t, "muffin", outOfStock.ProductName)

	espresso, err := inventory.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(10), espresso.Quantity)
	_, err = repo.GetByID(ctx, 1)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_RepeatedLinesShareStock(t *testing.T) {
	inventory := newInventory(t, map[string]int32{"muffin": 5})
	repo := NewRepository(inventory)

	_, err := place(context.Background(), repo, domain.OrderItem{ProductID: 1, Quantity: 3}, domain.OrderItem{ProductID: 1, Quantity: 3})
	var outOfStock *domain.OutOfStockError
	require.True(t, errors.As(err, &outOfStock))
	assert.Equal(t, int32(2), outOfStock.Available)

	muffin, err := inventory.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int32(5), muffin.Quantity)
}

func TestRepository_UnknownProduct(t *testing.T) {
	repo := NewRepository(newInventory(t, map[string]int32{"Espresso": 1}))

	_, err := place(context.Background(), repo, domain.OrderItem{ProductID: 42, Quantity: 1})
	assert.ErrorIs(t, err, ports.ErrProductNotFound)
}

func TestRepository_ReferencedProductCannotBeDeleted(t *testing.T) {
	inventory := newInventory(t, map[string]int32{"Espresso": 3})
	repo := NewRepository(inventory)

	_, err := place(context.Background(), repo, domain.OrderItem{ProductID: 1, Quantity: 1})
	require.NoError(t, err)
	assert.Error(t, inventory.Delete(context.Background(), 1))
}

func TestIdempotencyStore_SaveAndConflict(t *testing.T) {
	store := NewIdempotencyStore()
	fixed := time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)
	store.WithClock(func() time.Time { return fixed })
	ctx := context.Background()

	missing, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, missing)

	saved, err := store.Save(ctx, ports.IdempotencyRecord{Key: "abc", RequestHash: "h1", OrderID: 7})
	require.NoError(t, err)
	assert.Equal(t, fixed, saved.CreatedAt)

	again, err := store.Save(ctx, ports.IdempotencyRecord{Key: "abc", RequestHash: "h1", OrderID: 7})
	require.NoError(t, err)
	assert.Equal(t, int64(7), again.OrderID)

	existing, err := store.Save(ctx, ports.IdempotencyRecord{Key: "abc", RequestHash: "h2", OrderID: 8})
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)
	assert.Equal(t, "h1", existing.RequestHash)
}

func TestIdempotencyStore_ClaimIsExclusive(t *testing.T) {
	store := NewIdempotencyStore()
	now := time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)
	store.WithClock(func() time.Time { return now })
	ctx := context.Background()

	held, err := store.Claim(ctx, "abc", "h1")
	require.NoError(t, err)
	assert.Nil(t, held)

	held, err = store.Claim(ctx, "abc", "h1")
	require.NoError(t, err)
	require.NotNil(t, held)
	assert.True(t, held.Pending())

	_, err = store.Save(ctx, ports.IdempotencyRecord{Key: "abc", RequestHash: "h1", OrderID: 7})
	require.NoError(t, err)
	held, err = store.Claim(ctx, "abc", "h1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), held.OrderID)

	require.NoError(t, store.Release(ctx, "abc", "h1"))
	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.OrderID)
}

func TestIdempotencyStore_ReleaseAndAbandonedClaims(t *testing.T) {
	store := NewIdempotencyStore()
	now := time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)
	store.WithClock(func() time.Time { return now })
	ctx := context.Background()

	_, err := store.Claim(ctx, "k", "h1")
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, "k", "h2"))
	held, err := store.Claim(ctx, "k", "h2")
	require.NoError(t, err)
	require.NotNil(t, held)
	assert.Equal(t, "h1", held.RequestHash)

	require.NoError(t, store.Release(ctx, "k", "h1"))
	held, err = store.Claim(ctx, "k", "h2")
	require.NoError(t, err)
	assert.Nil(t, held)

	now = now.Add(ports.ClaimLease + time.Second)
	held, err = store.Claim(ctx, "k", "h3")
	require.NoError(t, err)
	assert.Nil(t, held)
	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "h3", got.RequestHash)
}
