package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrder_DefaultsStatusAndUTC(t *testing.T) {
	local := time.Date(2024, 6, 12, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	order, err := NewOrder(PaymentCredit, []OrderItem{{ProductID: 2, Quantity: 2}}, local)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, order.Status)
	assert.Equal(t, time.UTC, order.OrderDate.Location())
	assert.True(t, order.OrderDate.Equal(local))
}

func TestNewOrder_CollectsFieldErrors(t *testing.T) {
	_, err := NewOrder("Cash", []OrderItem{{ProductID: 0, Quantity: 1}, {ProductID: 3, Quantity: -1}}, time.Now())

	var fields FieldErrors
	require.True(t, errors.As(err, &fields))
	assert.Equal(t, ErrInvalidPaymentMethod.Error(), fields["payment_method"])
	assert.Equal(t, ErrInvalidProductID.Error(), fields["order_items[0].product_id"])
	assert.Equal(t, ErrInvalidQuantity.Error(), fields["order_items[1].quantity"])
	assert.NotContains(t, fields, "order_items[0].quantity")
}

func TestNewOrder_RejectsPaddedPaymentMethod(t *testing.T) {
	_, err := NewOrder(" Credit ", []OrderItem{{ProductID: 2, Quantity: 1}}, time.Now())

	var fields FieldErrors
	require.True(t, errors.As(err, &fields))
	assert.Equal(t, ErrInvalidPaymentMethod.Error(), fields["payment_method"])
}

func TestNewOrder_RequiresItems(t *testing.T) {
	_, err := NewOrder(PaymentDebit, nil, time.Now())

	var fields FieldErrors
	require.True(t, errors.As(err, &fields))
	assert.Equal(t, ErrNoItems.Error(), fields["order_items"])
}

func TestFieldErrors_MessageIsDeterministic(t *testing.T) {
	err := FieldErrors{"order_items": "b", "payment_method": "a"}
	assert.Equal(t, "invalid order: order_items: b; payment_method: a", err.Error())
}

func TestStockReserve(t *testing.T) {
	stock := Stock{ProductID: 2, ProductName: "muffin", Quantity: 3}

	require.NoError(t, stock.Reserve(3))

	err := stock.Reserve(10)
	var outOfStock *OutOfStockError
	require.True(t, errors.As(err, &outOfStock))
	assert.Equal(t, "muffin is out of stock", err.Error())
	assert.Equal(t, int32(3), outOfStock.Available)
}

func TestOrderClone_DoesNotShareItems(t *testing.T) {
	order, err := NewOrder(PaymentCredit, []OrderItem{{ProductID: 1, Quantity: 1}}, time.Now())
	require.NoError(t, err)

	clone := order.Clone()
	clone.Items[0].Quantity = 9

	assert.Equal(t, int32(1), order.Items[0].Quantity)
}
