package models

import (
	"time"

	"gorm.io/gorm"
)

// DressType distinguishes new work from changes to an existing garment
type DressType string

const (
	DressTypeStitching  DressType = "stitching"
	DressTypeAlteration DressType = "alteration"
)

// Valid reports whether t is a known dress type
func (t DressType) Valid() bool {
	return t == DressTypeStitching || t == DressTypeAlteration
}

// DressStatus is the workshop state of a single dress
type DressStatus string

const (
	DressStatusPending   DressStatus = "pending"
	DressStatusCutting   DressStatus = "cutting"
	DressStatusStitching DressStatus = "stitching"
	DressStatusReady     DressStatus = "ready"
	DressStatusDelivered DressStatus = "delivered"
	DressStatusCancelled DressStatus = "cancelled" // excluded from the order's dress total
)

// Valid reports whether s is a known dress status
func (s DressStatus) Valid() bool {
	switch s {
	case DressStatusPending, DressStatusCutting, DressStatusStitching,
		DressStatusReady, DressStatusDelivered, DressStatusCancelled:
		return true
	}
	return false
}

// Dress is one stitching/alteration job within an order
type Dress struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	OrderID      uint           `gorm:"not null;index" json:"order_id"`
	TailorID     uint           `gorm:"not null;index" json:"tailor_id"`
	ShopID       uint           `gorm:"index" json:"shop_id"`
	CategoryID   *uint          `gorm:"index" json:"category_id"`
	Type         DressType      `gorm:"type:varchar(20);not null" json:"type"`
	Quantity     int            `gorm:"not null;default:1;check:quantity > 0" json:"quantity"`
	Price        int64          `gorm:"not null;default:0;check:price >= 0" json:"price"` // per unit
	DeliveryDate *time.Time     `json:"delivery_date"`
	TrialDate    *time.Time     `json:"trial_date"`
	Status       DressStatus    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Notes        *string        `json:"notes"`
	Measurements []Measurement  `gorm:"foreignKey:DressID" json:"measurements,omitempty"`
	Clothes      []Cloth        `gorm:"foreignKey:DressID" json:"clothes,omitempty"`
	Images       []DressImage   `gorm:"foreignKey:DressID" json:"images,omitempty"`
	Recordings   []Recording    `gorm:"foreignKey:DressID" json:"recordings,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Dress model
func (Dress) TableName() string {
	return "dresses"
}

// LineTotal is the dress's contribution to the order's dress total
func (d *Dress) LineTotal() int64 {
	if d.Status == DressStatusCancelled {
		return 0
	}
	return d.Price * int64(d.Quantity)
}
