package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Measurement records the answers to a dress's measurement questions
type Measurement struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	OrderID   uint              `gorm:"not null;index" json:"order_id"`
	DressID   uint              `gorm:"not null;index" json:"dress_id"`
	TailorID  uint              `gorm:"not null;index" json:"tailor_id"`
	Values    datatypes.JSONMap `json:"values"` // question -> answer
	Notes     *string           `json:"notes"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	DeletedAt gorm.DeletedAt    `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Measurement model
func (Measurement) TableName() string {
	return "measurements"
}
