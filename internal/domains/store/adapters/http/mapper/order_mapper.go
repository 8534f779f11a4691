package mapper

import (
	"time"

	storedomain "github.com/Apurer/brew-ha-ha/internal/domains/store/domain"
	storeports "github.com/Apurer/brew-ha-ha/internal/domains/store/ports"
)

// PlaceOrderRequest is the JSON body accepted by POST /orders.
type PlaceOrderRequest struct {
	PaymentMethod string             `json:"payment_method"`
	OrderItems    []OrderItemRequest `json:"order_items"`
}

type OrderItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int32 `json:"quantity"`
}

// Order is the JSON shape returned for an order.
type Order struct {
	ID            int64       `json:"id"`
	PaymentMethod string      `json:"payment_method"`
	OrderDate     time.Time   `json:"order_date"`
	Status        string      `json:"status"`
	OrderItems    []OrderItem `json:"order_items"`
}

type OrderItem struct {
	ProductID   int64  `json:"product_id"`
	Quantity    int32  `json:"quantity"`
	ProductName string `json:"product_name"`
}

// ToPlaceOrderInput converts a request body into the service input.
func ToPlaceOrderInput(req PlaceOrderRequest, idempotencyKey string) storeports.PlaceOrderInput {
	input := storeports.PlaceOrderInput{
		PaymentMethod:  req.PaymentMethod,
		Items:          make([]storeports.PlaceOrderItem, 0, len(req.OrderItems)),
		IdempotencyKey: idempotencyKey,
	}
	for _, item := range req.OrderItems {
		input.Items = append(input.Items, storeports.PlaceOrderItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return input
}

// FromDomainOrder converts a domain order to the transport representation.
func FromDomainOrder(order *storedomain.Order) Order {
	if order == nil {
		return Order{OrderItems: []OrderItem{}}
	}
	out := Order{
		ID:            order.ID,
		PaymentMethod: string(order.PaymentMethod),
		OrderDate:     order.OrderDate,
		Status:        order.Status,
		OrderItems:    make([]OrderItem, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		out.OrderItems = append(out.OrderItems, OrderItem{
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			ProductName: item.ProductName,
		})
	}
	return out
}
