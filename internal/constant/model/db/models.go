package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusAuthorized OrderStatus = "authorized"
)

// Cart mirrors the host shop's cart row. The reconciler only reads it and locks it.
type Cart struct {
	ID         string    `gorm:"type:varchar(64);primary_key" json:"id"`
	TotalCents int64     `gorm:"not null" json:"total_cents"`
	Currency   string    `gorm:"type:varchar(3);not null" json:"currency"`
	UpdatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Cart) TableName() string {
	return "carts"
}

// Order represents an order entity in the database.
// One order per cart and one order per payment intent.
type Order struct {
	ID              uuid.UUID   `gorm:"type:uuid;primary_key" json:"id"`
	CartID          string      `gorm:"type:varchar(64);not null;uniqueIndex" json:"cart_id"`
	PaymentIntentID string      `gorm:"type:varchar(255);not null;uniqueIndex" json:"payment_intent_id"`
	SecureKey       string      `gorm:"type:varchar(32);not null" json:"secure_key"`
	AmountCents     int64       `gorm:"not null" json:"amount_cents"`
	Currency        string      `gorm:"type:varchar(3);not null" json:"currency"`
	Status          OrderStatus `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt       time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// BeforeCreate is a GORM hook that runs before creating a record
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	now := time.Now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = now
	}
	return nil
}
