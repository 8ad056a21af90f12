package models

import (
	"time"

	"gorm.io/gorm"
)

// ImageKind classifies a dress image
type ImageKind string

const (
	ImageKindDesign    ImageKind = "design"
	ImageKindCloth     ImageKind = "cloth"
	ImageKindReference ImageKind = "reference"
)

// Valid reports whether k is a known image kind
func (k ImageKind) Valid() bool {
	return k == ImageKindDesign || k == ImageKindCloth || k == ImageKindReference
}

// DressImage points at an image held by the file service
type DressImage struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	OrderID    uint           `gorm:"not null;index" json:"order_id"`
	DressID    uint           `gorm:"not null;index" json:"dress_id"`
	Kind       ImageKind      `gorm:"type:varchar(20);not null;default:'design'" json:"kind"`
	StorageKey string         `gorm:"not null" json:"storage_key"`
	URL        *string        `gorm:"-" json:"url,omitempty"` // computed field, presigned URL
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the DressImage model
func (DressImage) TableName() string {
	return "dress_images"
}

// Recording points at a voice note held by the file service
type Recording struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	OrderID     uint           `gorm:"not null;index" json:"order_id"`
	DressID     uint           `gorm:"not null;index" json:"dress_id"`
	StorageKey  string         `gorm:"not null" json:"storage_key"`
	DurationSec int            `json:"duration_sec"`
	URL         *string        `gorm:"-" json:"url,omitempty"` // computed field, presigned URL
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Recording model
func (Recording) TableName() string {
	return "recordings"
}
