package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderStatus is the order lifecycle state
type OrderStatus string

const (
	OrderStatusCreated    OrderStatus = "created"
	OrderStatusActive     OrderStatus = "active" // has at least one live dress
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusReady      OrderStatus = "ready"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// manualTransitions lists the moves a tailor may request.
// created <-> active is derived from the dress count during recalculation, never requested.
var manualTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusCreated:    {OrderStatusCancelled},
	OrderStatusActive:     {OrderStatusInProgress, OrderStatusCancelled},
	OrderStatusInProgress: {OrderStatusReady, OrderStatusCancelled},
	OrderStatusReady:      {OrderStatusDelivered, OrderStatusInProgress, OrderStatusCancelled},
}

// Valid reports whether s is a known order status
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusCreated, OrderStatusActive, OrderStatusInProgress,
		OrderStatusReady, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo reports whether a tailor may move an order from s to next
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range manualTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is a customer's request spanning one or more dresses, with consolidated financials
type Order struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	CustomerID       uint           `gorm:"not null;index" json:"customer_id"`
	Customer         *Customer      `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	TailorID         uint           `gorm:"not null;index" json:"tailor_id"`
	ShopID           uint           `gorm:"index" json:"shop_id"`
	Name             string         `gorm:"not null" json:"name"`
	Notes            *string        `json:"notes"`
	Status           OrderStatus    `gorm:"type:varchar(20);not null;default:'created';index" json:"status"`
	PaymentStatus    PaymentStatus  `gorm:"type:varchar(20);not null;default:'unpaid'" json:"payment_status"`
	TotalDressAmount int64          `gorm:"not null;default:0" json:"total_dress_amount"`
	TotalExpenses    int64          `gorm:"not null;default:0" json:"total_expenses"`
	TotalDiscount    int64          `gorm:"not null;default:0" json:"total_discount"`
	TotalPayment     int64          `gorm:"not null;default:0" json:"total_payment"`
	Dresses          []Dress        `gorm:"foreignKey:OrderID" json:"dresses,omitempty"`
	Expenses         []Expense      `gorm:"foreignKey:OrderID" json:"expenses,omitempty"`
	Discounts        []Discount     `gorm:"foreignKey:OrderID" json:"discounts,omitempty"`
	Payments         []Payment      `gorm:"foreignKey:OrderID" json:"payments,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// Totals returns the four stored running totals
func (o Order) Totals() Totals {
	return Totals{
		DressAmount: o.TotalDressAmount,
		Expenses:    o.TotalExpenses,
		Discount:    o.TotalDiscount,
		Payment:     o.TotalPayment,
	}
}

// ApplyTotals copies recomputed totals onto the order
func (o *Order) ApplyTotals(t Totals) {
	o.TotalDressAmount = t.DressAmount
	o.TotalExpenses = t.Expenses
	o.TotalDiscount = t.Discount
	o.TotalPayment = t.Payment
}
