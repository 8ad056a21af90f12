package models

import (
	"time"

	"gorm.io/gorm"
)

// Discount reduces what the customer owes on an order
type Discount struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	OrderID   uint           `gorm:"not null;index" json:"order_id"`
	TailorID  uint           `gorm:"not null;index" json:"tailor_id"`
	Title     string         `gorm:"not null" json:"title"`
	Amount    int64          `gorm:"not null;check:amount >= 0" json:"amount"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Discount model
func (Discount) TableName() string {
	return "discounts"
}
