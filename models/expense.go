package models

import (
	"time"

	"gorm.io/gorm"
)

// Expense is a cost billed to the order, entered manually or generated from a cloth
type Expense struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	OrderID   uint           `gorm:"not null;index" json:"order_id"`
	DressID   *uint          `gorm:"index" json:"dress_id"`
	ClothID   *uint          `gorm:"index" json:"cloth_id"`
	TailorID  uint           `gorm:"not null;index" json:"tailor_id"`
	Title     string         `gorm:"not null" json:"title"`
	Amount    int64          `gorm:"not null;check:amount >= 0" json:"amount"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Expense model
func (Expense) TableName() string {
	return "expenses"
}
