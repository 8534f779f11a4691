package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Apurer/brew-ha-ha/internal/domains/catalog/domain"
	"github.com/Apurer/brew-ha-ha/internal/domains/catalog/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists products in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle
// and runs migrations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type productRecord struct {
	ID             int64           `gorm:"primaryKey;column:id"`
	Name           string          `gorm:"column:product_name"`
	Temperature    *string         `gorm:"column:temperature"`
	CaffeineAmount *int32          `gorm:"column:caffeine_amount"`
	Price          decimal.Decimal `gorm:"column:price;type:numeric(10,2)"`
	Description    string          `gorm:"column:description"`
	Quantity       int32           `gorm:"column:quantity"`
	CreatedAt      time.Time       `gorm:"column:created_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at"`
}

func (productRecord) TableName() string { return "products" }

// List returns all products ordered by id.
func (r *Repository) List(ctx context.Context) ([]*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []productRecord
	if err := r.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	products := make([]*domain.Product, 0, len(records))
	for i := range records {
		products = append(products, records[i].toDomain())
	}
	return products, nil
}

// GetByID fetches a product by identifier.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record productRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// Create inserts a product and returns it with its assigned id.
func (r *Repository) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errors.New("product is nil")
	}
	record := toRecord(product)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	if product.ID != 0 {
		if err := r.syncSequence(ctx); err != nil {
			return nil, err
		}
	}
	return record.toDomain(), nil
}

// Delete removes a product. Products referenced by order items are kept.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&productRecord{}, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrForeignKeyViolated) {
			return ports.ErrProductInUse
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&productRecord{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// syncSequence moves the id sequence past explicitly inserted ids.
func (r *Repository) syncSequence(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Exec("SELECT setval(pg_get_serial_sequence('products', 'id'), (SELECT COALESCE(MAX(id), 1) FROM products))").
		Error
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres product repository not configured")
	}
	return nil
}

func toRecord(product *domain.Product) productRecord {
	return productRecord{
		ID:             product.ID,
		Name:           product.Name,
		Temperature:    product.Temperature,
		CaffeineAmount: product.CaffeineAmount,
		Price:          product.Price,
		Description:    product.Description,
		Quantity:       product.Quantity,
	}
}

func (r productRecord) toDomain() *domain.Product {
	return (&domain.Product{
		ID:             r.ID,
		Name:           r.Name,
		Temperature:    r.Temperature,
		CaffeineAmount: r.CaffeineAmount,
		Price:          r.Price,
		Description:    r.Description,
		Quantity:       r.Quantity,
	}).Clone()
}
