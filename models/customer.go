package models

import (
	"time"

	"gorm.io/gorm"
)

// Customer belongs to the tailor who registered them
type Customer struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	TailorID   uint           `gorm:"not null;index" json:"tailor_id"`
	ShopID     uint           `gorm:"index" json:"shop_id"`
	Name       string         `gorm:"not null" json:"name"`
	Phone      string         `gorm:"index" json:"phone"`
	Address    *string        `json:"address"`
	PictureKey *string        `json:"picture_key"`                 // storage key returned by the file service
	PictureURL *string        `gorm:"-" json:"picture_url,omitempty"` // computed field, presigned URL
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}
