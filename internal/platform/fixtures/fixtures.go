// Package fixtures loads the seed product catalog from YAML.
package fixtures

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	catalogdomain "github.com/Apurer/brew-ha-ha/internal/domains/catalog/domain"
)

//go:embed products.yaml
var defaultProducts []byte

type document struct {
	Products []productEntry `yaml:"products"`
}

type productEntry struct {
	ID             int64   `yaml:"id"`
	Name           string  `yaml:"product_name"`
	Temperature    *string `yaml:"temperature"`
	CaffeineAmount *int32  `yaml:"caffeine_amount"`
	// Price is a string so values like 2.50 keep their scale.
	Price       string `yaml:"price"`
	Description string `yaml:"description"`
	Quantity    int32  `yaml:"quantity"`
}

// Default returns the catalog bundled with the binary.
func Default() ([]*catalogdomain.Product, error) {
	return Parse(defaultProducts)
}

// Load reads path, or the bundled catalog when path is empty.
func Load(path string) ([]*catalogdomain.Product, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates every product in data.
func Parse(data []byte) ([]*catalogdomain.Product, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	products := make([]*catalogdomain.Product, 0, len(doc.Products))
	for i, entry := range doc.Products {
		price, err := decimal.NewFromString(entry.Price)
		if err != nil {
			return nil, fmt.Errorf("fixture %d (%s): price: %w", i, entry.Name, err)
		}
		product := &catalogdomain.Product{
			ID:             entry.ID,
			Name:           entry.Name,
			Temperature:    entry.Temperature,
			CaffeineAmount: entry.CaffeineAmount,
			Price:          price,
			Description:    entry.Description,
			Quantity:       entry.Quantity,
		}
		product.Normalize()
		if err := product.Validate(); err != nil {
			return nil, fmt.Errorf("fixture %d (%s): %w", i, entry.Name, err)
		}
		products = append(products, product)
	}
	return products, nil
}
