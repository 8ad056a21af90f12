package models

import (
	"time"

	"gorm.io/gorm"
)

// Tailor is an authenticated shop user; its ID scopes every ledger operation
type Tailor struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Auth0ID   string         `gorm:"uniqueIndex;not null" json:"auth0_id"` // Auth0 user ID (from 'sub' claim)
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	ShopID    uint           `gorm:"index" json:"shop_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Tailor model
func (Tailor) TableName() string {
	return "tailors"
}
