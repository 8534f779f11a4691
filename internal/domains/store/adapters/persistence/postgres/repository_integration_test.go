//go:build integration

package postgres

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	catalogdomain "github.com/Apurer/brew-ha-ha/internal/domains/catalog/domain"
	catalogpostgres "github.com/Apurer/brew-ha-ha/internal/domains/catalog/adapters/persistence/postgres"
	"github.com/Apurer/brew-ha-ha/internal/domains/store/application"
	"github.com/Apurer/brew-ha-ha/internal/domains/store/domain"
	"github.com/Apurer/brew-ha-ha/internal/domains/store/ports"
	"github.com/Apurer/brew-ha-ha/internal/platform/postgres/postgrestest"
)

func seedProducts(t *testing.T, db *gorm.DB) {
	t.Helper()
	catalog := catalogpostgres.NewRepository(db)
	for _, p := range []struct {
		name string
		qty  int32
	}{{"Espresso", 10}, {"muffin", 5}} {
		product, err := catalogdomain.NewProduct(p.name, decimal.RequireFromString("2.50"), p.qty)
		require.NoError(t, err)
		_, err = catalog.Create(context.Background(), product)
		require.NoError(t, err)
	}
}

func stockOf(t *testing.T, db *gorm.DB, id int64) int32 {
	t.Helper()
	var record stockRecord
	require.NoError(t, db.First(&record, "id = ?", id).Error)
	return record.Quantity
}

func muffins(qty int32) ports.PlaceOrderInput {
	return ports.PlaceOrderInput{
		PaymentMethod: "Credit",
		Items:         []ports.PlaceOrderItem{{ProductID: 2, Quantity: qty}},
	}
}

func TestRepository_PlaceAndLoadOrder(t *testing.T) {
	db := postgrestest.Start(t)
	seedProducts(t, db)
	svc := application.NewService(NewRepository(db))
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, ports.PlaceOrderInput{
		PaymentMethod: "Debit",
		Items: []ports.PlaceOrderItem{
			{ProductID: 2, Quantity: 2},
			{ProductID: 1, Quantity: 1},
		},
	})
	require.NoError(t, err)
	require.NotZero(t, order.ID)
	assert.Equal(t, domain.StatusInProgress, order.Status)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "muffin", order.Items[0].ProductName)
	assert.Equal(t, "Espresso", order.Items[1].ProductName)
	assert.Equal(t, int32(3), stockOf(t, db, 2))
	assert.Equal(t, int32(9), stockOf(t, db, 1))

	_, err = NewRepository(db).GetByID(ctx, order.ID+100)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_RollbackOnOutOfStock(t *testing.T) {
	db := postgrestest.Start(t)
	seedProducts(t, db)
	svc := application.NewService(NewRepository(db))

	_, err := svc.PlaceOrder(context.Background(), ports.PlaceOrderInput{
		PaymentMethod: "Credit",
		Items: []ports.PlaceOrderItem{
			{ProductID: 1, Quantity: 3},
			{ProductID: 2, Quantity: 6},
		},
	})
	var outOfStock *domain.OutOfStockError
	require.True(t, errors.As(err, &outOfStock))
	assert.Equal(t, "muffin", outOfStock.ProductName)

	var orders, items int64
	require.NoError(t, db.Model(&orderRecord{}).Count(&orders).Error)
	require.NoError(t, db.Model(&orderItemRecord{}).Count(&items).Error)
	assert.Zero(t, orders)
	assert.Zero(t, items)
	assert.Equal(t, int32(10), stockOf(t, db, 1))
	assert.Equal(t, int32(5), stockOf(t, db, 2))
}

func TestRepository_UnknownProductRollsBack(t *testing.T) {
	db := postgrestest.Start(t)
	seedProducts(t, db)
	svc := application.NewService(NewRepository(db))

	_, err := svc.PlaceOrder(context.Background(), ports.PlaceOrderInput{
		PaymentMethod: "Credit",
		Items:         []ports.PlaceOrderItem{{ProductID: 1, Quantity: 1}, {ProductID: 77, Quantity: 1}},
	})
	require.ErrorIs(t, err, ports.ErrProductNotFound)
	assert.Equal(t, int32(10), stockOf(t, db, 1))
}

func TestRepository_GuardedDecrement(t *testing.T) {
	db := postgrestest.Start(t)
	seedProducts(t, db)

	err := NewRepository(db).InTx(context.Background(), func(ctx context.Context, tx ports.Tx) error {
		return tx.DecrementStock(ctx, 2, 6)
	})
	assert.ErrorIs(t, err, ports.ErrStockChanged)
	assert.Equal(t, int32(5), stockOf(t, db, 2))
}

func TestRepository_ConcurrentPlacementsNeverOversell(t *testing.T) {
	db := postgrestest.Start(t)
	seedProducts(t, db)
	svc := application.NewService(NewRepository(db))

	var placed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.PlaceOrder(context.Background(), muffins(1)); err == nil {
				placed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), placed.Load())
	assert.Equal(t, int32(0), stockOf(t, db, 2))
}

func TestIdempotencyStore_RoundTrip(t *testing.T) {
	db := postgrestest.Start(t)
	store := NewIdempotencyStore(db)
	ctx := context.Background()

	missing, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, missing)

	created := time.Now().UTC().Truncate(time.Second)
	_, err = store.Save(ctx, ports.IdempotencyRecord{Key: "abc", RequestHash: "h1", OrderID: 1, CreatedAt: created})
	require.NoError(t, err)

	same, err := store.Save(ctx, ports.IdempotencyRecord{Key: "abc", RequestHash: "h1", OrderID: 1, CreatedAt: created})
	require.NoError(t, err)
	assert.Equal(t, int64(1), same.OrderID)

	existing, err := store.Save(ctx, ports.IdempotencyRecord{Key: "abc", RequestHash: "h2", OrderID: 2, CreatedAt: created})
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)
	assert.Equal(t, "h1", existing.RequestHash)
}

func TestIdempotencyStore_ClaimReleaseAndFinish(t *testing.T) {
	db := postgrestest.Start(t)
	store := NewIdempotencyStore(db)
	ctx := context.Background()

	held, err := store.Claim(ctx, "k", "h1")
	require.NoError(t, err)
	assert.Nil(t, held)
	held, err = store.Claim(ctx, "k", "h1")
	require.NoError(t, err)
	require.NotNil(t, held)
	assert.True(t, held.Pending())

	require.NoError(t, store.Release(ctx, "k", "h1"))
	held, err = store.Claim(ctx, "k", "h2")
	require.NoError(t, err)
	assert.Nil(t, held)

	saved, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k", RequestHash: "h2", OrderID: 9})
	require.NoError(t, err)
	assert.Equal(t, int64(9), saved.OrderID)
	require.NoError(t, store.Release(ctx, "k", "h2"))
	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(9), got.OrderID)
}

func TestIdempotencyStore_ConcurrentRetriesPlaceOnce(t *testing.T) {
	db := postgrestest.Start(t)
	seedProducts(t, db)
	svc := application.NewService(NewRepository(db), application.WithIdempotencyStore(NewIdempotencyStore(db)))
	input := muffins(2)
	input.IdempotencyKey = "retry-1"

	var placed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.PlaceOrder(context.Background(), input)
			if err == nil {
				placed.Add(1)
				return
			}
			assert.ErrorIs(t, err, ports.ErrIdempotencyInProgress)
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, placed.Load(), int32(1))
	assert.Equal(t, int32(3), stockOf(t, db, 2))
	var orders int64
	require.NoError(t, db.Table("orders").Count(&orders).Error)
	assert.Equal(t, int64(1), orders)
}
