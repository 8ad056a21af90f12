package models

import (
	"time"

	"gorm.io/gorm"
)

// PaymentMethod is how the customer paid
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodMobile       PaymentMethod = "mobile"
	PaymentMethodOther        PaymentMethod = "other"
)

// Valid reports whether m is a known payment method
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodBankTransfer,
		PaymentMethodMobile, PaymentMethodOther:
		return true
	}
	return false
}

// Payment is money received from the order's customer
type Payment struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	OrderID    uint           `gorm:"not null;index" json:"order_id"`
	CustomerID uint           `gorm:"not null;index" json:"customer_id"`
	TailorID   uint           `gorm:"not null;index" json:"tailor_id"`
	Title      string         `gorm:"not null" json:"title"`
	Method     PaymentMethod  `gorm:"type:varchar(20);not null;default:'cash'" json:"method"`
	Amount     int64          `gorm:"not null;check:amount > 0" json:"amount"`
	PaidAt     time.Time      `gorm:"not null" json:"paid_at"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}
