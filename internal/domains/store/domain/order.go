package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// PaymentMethod enumerates accepted payment options.
type PaymentMethod string

const (
	PaymentCredit PaymentMethod = "Credit"
	PaymentDebit  PaymentMethod = "Debit"
)

// StatusInProgress is the status every order is created with.
const StatusInProgress = "in progress"

var (
	ErrInvalidPaymentMethod = errors.New(`payment method must be "Credit" or "Debit"`)
	ErrNoItems              = errors.New("order must contain at least one item")
	ErrInvalidProductID     = errors.New("product id must be greater than zero")
	ErrInvalidQuantity      = errors.New("quantity must be greater than zero")
)

// Order is the purchase aggregate. Items keep request order.
type Order struct {
	ID            int64
	PaymentMethod PaymentMethod
	OrderDate     time.Time
	Status        string
	Items         []OrderItem
}

// OrderItem is one line of an order. ProductName is resolved when reading.
type OrderItem struct {
	ProductID   int64
	ProductName string
	Quantity    int32
}

// Stock is the locked view of a product taken while placing an order.
type Stock struct {
	ProductID   int64
	ProductName string
	Quantity    int32
}

// FieldErrors collects per-field validation messages.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, f[k]))
	}
	return "invalid order: " + strings.Join(parts, "; ")
}

// OutOfStockError reports the first line whose quantity exceeds stock.
type OutOfStockError struct {
	ProductID   int64
	ProductName string
	Requested   int32
	Available   int32
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("%s is out of stock", e.ProductName)
}

// NewOrder validates and constructs an order stamped with orderDate.
func NewOrder(method PaymentMethod, items []OrderItem, orderDate time.Time) (*Order, error) {
	order := &Order{
		PaymentMethod: method,
		OrderDate:     orderDate.UTC(),
		Status:        StatusInProgress,
		Items:         append([]OrderItem(nil), items...),
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// Validate enforces invariants on the aggregate and returns FieldErrors.
func (o *Order) Validate() error {
	fields := FieldErrors{}
	if !o.PaymentMethod.Valid() {
		fields["payment_method"] = ErrInvalidPaymentMethod.Error()
	}
	if len(o.Items) == 0 {
		fields["order_items"] = ErrNoItems.Error()
	}
	for i, item := range o.Items {
		if item.ProductID <= 0 {
			fields[fmt.Sprintf("order_items[%d].product_id", i)] = ErrInvalidProductID.Error()
		}
		if item.Quantity <= 0 {
			fields[fmt.Sprintf("order_items[%d].quantity", i)] = ErrInvalidQuantity.Error()
		}
	}
	if len(fields) > 0 {
		return fields
	}
	return nil
}

// Valid reports whether the method is one of the accepted options.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCredit, PaymentDebit:
		return true
	default:
		return false
	}
}

// Reserve checks that qty can be taken from the stock.
func (s Stock) Reserve(qty int32) error {
	if qty > s.Quantity {
		return &OutOfStockError{
			ProductID:   s.ProductID,
			ProductName: s.ProductName,
			Requested:   qty,
			Available:   s.Quantity,
		}
	}
	return nil
}

// Clone returns a copy that does not share the items slice.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = append([]OrderItem(nil), o.Items...)
	return &clone
}
