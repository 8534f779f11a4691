package domain

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// DefaultDescription is applied when a product is created without one.
const DefaultDescription = "Default Description"

const (
	maxNameLength        = 200
	maxDescriptionLength = 200
	maxTemperatureLength = 500
)

var (
	ErrEmptyName              = errors.New("product name is required")
	ErrNameTooLong            = errors.New("product name must be at most 200 characters")
	ErrDescriptionTooLong     = errors.New("description must be at most 200 characters")
	ErrTemperatureTooLong     = errors.New("temperature must be at most 500 characters")
	ErrNegativePrice          = errors.New("price must not be negative")
	ErrNegativeQuantity       = errors.New("quantity must not be negative")
	ErrNegativeCaffeineAmount = errors.New("caffeine amount must not be negative")
)

// Product is a sellable catalog item together with its stock level.
type Product struct {
	ID             int64
	Name           string
	Temperature    *string
	CaffeineAmount *int32
	Price          decimal.Decimal
	Description    string
	Quantity       int32
}

// NewProduct validates and constructs a product. Stock starts at quantity.
func NewProduct(name string, price decimal.Decimal, quantity int32) (*Product, error) {
	product := &Product{
		Name:     strings.TrimSpace(name),
		Price:    price,
		Quantity: quantity,
	}
	product.Normalize()
	if err := product.Validate(); err != nil {
		return nil, err
	}
	return product, nil
}

// Normalize trims text fields and fills the default description.
func (p *Product) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	if p.Description == "" {
		p.Description = DefaultDescription
	}
	if p.Temperature != nil {
		trimmed := strings.TrimSpace(*p.Temperature)
		if trimmed == "" {
			p.Temperature = nil
		} else {
			p.Temperature = &trimmed
		}
	}
}

// Validate enforces invariants on the aggregate.
func (p *Product) Validate() error {
	if p.Name == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(p.Name) > maxNameLength {
		return ErrNameTooLong
	}
	if utf8.RuneCountInString(p.Description) > maxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if p.Temperature != nil && utf8.RuneCountInString(*p.Temperature) > maxTemperatureLength {
		return ErrTemperatureTooLong
	}
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}
	if p.Quantity < 0 {
		return ErrNegativeQuantity
	}
	if p.CaffeineAmount != nil && *p.CaffeineAmount < 0 {
		return ErrNegativeCaffeineAmount
	}
	return nil
}

// WithTemperature sets the serving temperature.
func (p *Product) WithTemperature(temperature string) *Product {
	p.Temperature = &temperature
	return p
}

// WithCaffeine sets the caffeine amount in milligrams.
func (p *Product) WithCaffeine(mg int32) *Product {
	p.CaffeineAmount = &mg
	return p
}

// Clone returns a deep copy so callers can't alias optional fields.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	if p.Temperature != nil {
		temperature := *p.Temperature
		clone.Temperature = &temperature
	}
	if p.CaffeineAmount != nil {
		caffeine := *p.CaffeineAmount
		clone.CaffeineAmount = &caffeine
	}
	return &clone
}
