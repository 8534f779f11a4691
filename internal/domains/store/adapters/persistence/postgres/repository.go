package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/brew-ha-ha/internal/domains/store/domain"
	"github.com/Apurer/brew-ha-ha/internal/domains/store/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders in PostgreSQL using GORM. Caller manages DB
// lifecycle and runs migrations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type orderRecord struct {
	ID            int64     `gorm:"primaryKey;column:id"`
	PaymentMethod string    `gorm:"column:payment_method"`
	OrderDate     time.Time `gorm:"column:order_date"`
	Status        string    `gorm:"column:status"`
}

func (orderRecord) TableName() string { return "orders" }

type orderItemRecord struct {
	ID        int64 `gorm:"primaryKey;column:id"`
	OrderID   int64 `gorm:"column:order_id"`
	ProductID int64 `gorm:"column:product_id"`
	Quantity  int32 `gorm:"column:quantity"`
}

func (orderItemRecord) TableName() string { return "order_items" }

// stockRecord is the slice of the products table placement needs.
type stockRecord struct {
	ID       int64  `gorm:"primaryKey;column:id"`
	Name     string `gorm:"column:product_name"`
	Quantity int32  `gorm:"column:quantity"`
}

func (stockRecord) TableName() string { return "products" }

type itemRow struct {
	ProductID   int64
	ProductName string
	Quantity    int32
}

// InTx runs fn inside a database transaction.
func (r *Repository) InTx(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(ctx, &gormTx{db: db})
	})
}

// GetByID loads the order with its items in insertion order.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	db := r.db.WithContext(ctx)
	var record orderRecord
	if err := db.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	var rows []itemRow
	err := db.Table("order_items AS oi").
		Select("oi.product_id, p.product_name, oi.quantity").
		Joins("JOIN products p ON p.id = oi.product_id").
		Where("oi.order_id = ?", id).
		Order("oi.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return record.toDomain(rows), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

type gormTx struct {
	db *gorm.DB
}

// ProductForUpdate takes a row lock held until commit or rollback.
func (t *gormTx) ProductForUpdate(ctx context.Context, productID int64) (*domain.Stock, error) {
	var record stockRecord
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&record, "id = ?", productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrProductNotFound
		}
		return nil, err
	}
	return &domain.Stock{ProductID: record.ID, ProductName: record.Name, Quantity: record.Quantity}, nil
}

func (t *gormTx) CreateOrder(ctx context.Context, order *domain.Order) error {
	if order == nil {
		return errors.New("order is nil")
	}
	record := orderRecord{
		PaymentMethod: string(order.PaymentMethod),
		OrderDate:     order.OrderDate,
		Status:        order.Status,
	}
	if err := t.db.WithContext(ctx).Create(&record).Error; err != nil {
		return err
	}
	order.ID = record.ID
	return nil
}

func (t *gormTx) AddItem(ctx context.Context, orderID int64, item domain.OrderItem) error {
	record := orderItemRecord{OrderID: orderID, ProductID: item.ProductID, Quantity: item.Quantity}
	err := t.db.WithContext(ctx).Create(&record).Error
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return ports.ErrProductNotFound
	}
	return err
}

// DecrementStock is guarded on the remaining quantity so it can never go negative.
func (t *gormTx) DecrementStock(ctx context.Context, productID int64, qty int32) error {
	result := t.db.WithContext(ctx).
		Model(&stockRecord{}).
		Where("id = ? AND quantity >= ?", productID, qty).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrStockChanged
	}
	return nil
}

func (r orderRecord) toDomain(rows []itemRow) *domain.Order {
	order := &domain.Order{
		ID:            r.ID,
		PaymentMethod: domain.PaymentMethod(r.PaymentMethod),
		OrderDate:     r.OrderDate.UTC(),
		Status:        r.Status,
		Items:         make([]domain.OrderItem, 0, len(rows)),
	}
	for _, row := range rows {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			Quantity:    row.Quantity,
		})
	}
	return order
}
