package models

import (
	"time"

	"gorm.io/gorm"
)

// ProvidedByTailor marks cloth the shop supplies and bills for
const ProvidedByTailor = "tailor"

// Cloth is a fabric item for a dress; tailor-provided cloth is billed through one expense
type Cloth struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	OrderID      uint           `gorm:"not null;index" json:"order_id"`
	DressID      uint           `gorm:"not null;index" json:"dress_id"`
	TailorID     uint           `gorm:"not null;index" json:"tailor_id"`
	DressImageID *uint          `gorm:"index" json:"dress_image_id"`
	Title        string         `gorm:"not null" json:"title"`
	Length       float64        `json:"length"`
	Unit         string         `gorm:"type:varchar(20)" json:"unit"`
	ProvidedBy   string         `gorm:"type:varchar(20);not null" json:"provided_by"`
	Price        *int64         `json:"price"` // only tailor-provided cloth has a price
	Expense      *Expense       `gorm:"foreignKey:ClothID" json:"expense,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Cloth model
func (Cloth) TableName() string {
	return "cloths"
}

// IsBillable reports whether the cloth must generate an expense
func (c *Cloth) IsBillable() bool {
	return c.ProvidedBy == ProvidedByTailor && c.Price != nil
}
