package mapper

import (
	"github.com/shopspring/decimal"

	catalogdomain "github.com/Apurer/brew-ha-ha/internal/domains/catalog/domain"
)

// Price encodes a decimal as an exact JSON number rather than a quoted string.
type Price struct {
	decimal.Decimal
}

func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Price) UnmarshalJSON(data []byte) error {
	return p.Decimal.UnmarshalJSON(data)
}

// Product is the JSON shape returned by the product endpoints.
type Product struct {
	ID             int64   `json:"id"`
	Name           string  `json:"product_name"`
	Temperature    *string `json:"temperature,omitempty"`
	CaffeineAmount *int32  `json:"caffeine_amount,omitempty"`
	Price          Price   `json:"price"`
	Description    string  `json:"description"`
	Quantity       int32   `json:"quantity"`
}

// FromDomainProduct converts a domain product to the transport representation.
func FromDomainProduct(product *catalogdomain.Product) Product {
	if product == nil {
		return Product{}
	}
	clone := product.Clone()
	return Product{
		ID:             clone.ID,
		Name:           clone.Name,
		Temperature:    clone.Temperature,
		CaffeineAmount: clone.CaffeineAmount,
		Price:          Price{clone.Price},
		Description:    clone.Description,
		Quantity:       clone.Quantity,
	}
}

// FromDomainProducts converts a slice, never returning nil so empty lists encode as [].
func FromDomainProducts(products []*catalogdomain.Product) []Product {
	result := make([]Product, 0, len(products))
	for _, product := range products {
		result = append(result, FromDomainProduct(product))
	}
	return result
}
