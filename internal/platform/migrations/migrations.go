package migrations

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for every bounded context. Adapters never migrate on their own.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&productRecord{},
		&orderRecord{},
		&orderItemRecord{},
		&orderIdempotencyRecord{},
		&userRecord{},
		&sessionRecord{},
	)
}

// Product schema mirrors the catalog Postgres adapter.
type productRecord struct {
	ID             int64           `gorm:"primaryKey;column:id"`
	Name           string          `gorm:"column:product_name;size:200;not null"`
	Temperature    *string         `gorm:"column:temperature;size:500"`
	CaffeineAmount *int32          `gorm:"column:caffeine_amount;check:chk_products_caffeine_nonnegative,caffeine_amount >= 0"`
	Price          decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null;check:chk_products_price_nonnegative,price >= 0"`
	Description    string          `gorm:"column:description;size:200;not null;default:'Default Description'"`
	Quantity       int32           `gorm:"column:quantity;not null;default:0;check:chk_products_quantity_nonnegative,quantity >= 0"`
	CreatedAt      time.Time       `gorm:"column:created_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at"`
}

func (productRecord) TableName() string { return "products" }

// Order schema mirrors the store Postgres adapter. Items cascade with their order.
type orderRecord struct {
	ID            int64             `gorm:"primaryKey;column:id"`
	PaymentMethod string            `gorm:"column:payment_method;type:varchar(10);not null"`
	OrderDate     time.Time         `gorm:"column:order_date;not null;index"`
	Status        string            `gorm:"column:status;type:varchar(100);not null;default:'in progress'"`
	Items         []orderItemRecord `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (orderRecord) TableName() string { return "orders" }

// Order items restrict deletion of the products they reference.
type orderItemRecord struct {
	ID        int64         `gorm:"primaryKey;column:id"`
	OrderID   int64         `gorm:"column:order_id;not null;index"`
	ProductID int64         `gorm:"column:product_id;not null;index"`
	Quantity  int32         `gorm:"column:quantity;not null;check:chk_order_items_quantity_positive,quantity > 0"`
	Product   productRecord `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
}

func (orderItemRecord) TableName() string { return "order_items" }

// Idempotency schema mirrors the store Postgres idempotency store.
type orderIdempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128;not null"`
	OrderID     int64     `gorm:"column:order_id;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;index"`
}

func (orderIdempotencyRecord) TableName() string { return "order_idempotency_keys" }

// User schema mirrors the users Postgres adapter.
type userRecord struct {
	ID           int64     `gorm:"primaryKey;column:id"`
	Username     string    `gorm:"column:username;size:150;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (userRecord) TableName() string { return "users" }

// Session schema mirrors the refresh session store.
type sessionRecord struct {
	TokenID   string    `gorm:"primaryKey;column:token_id;size:64"`
	Username  string    `gorm:"column:username;size:150;index;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;index;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (sessionRecord) TableName() string { return "user_sessions" }
