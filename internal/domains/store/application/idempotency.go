package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/Apurer/brew-ha-ha/internal/domains/store/ports"
)

type normalizedPlaceOrder struct {
	PaymentMethod string                `json:"payment_method"`
	Items         []normalizedOrderLine `json:"order_items"`
}

type normalizedOrderLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int32 `json:"quantity"`
}

// FingerprintPlaceOrder builds a deterministic hash of the request payload,
// excluding the idempotency key. Line order is significant.
func FingerprintPlaceOrder(input ports.PlaceOrderInput) (string, error) {
	normalized := normalizedPlaceOrder{
		PaymentMethod: input.PaymentMethod,
		Items:         make([]normalizedOrderLine, 0, len(input.Items)),
	}
	for _, item := range input.Items {
		normalized.Items = append(normalized.Items, normalizedOrderLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	payload, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
