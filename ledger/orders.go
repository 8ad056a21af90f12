package ledger

import (
	"context"

	"gorm.io/gorm"

	"github.com/tailorbook/tailorbook-api/models"
)

// CreateOrder creates an order, optionally with its first dress, in one transaction
func (l *Ledger) CreateOrder(ctx context.Context, tailorID uint, in NewOrder, first *DressInput) (models.Order, error) {
	return CreateOrderTransaction(ctx, l, tailorID, in, func(t *OrderTx) (models.Order, error) {
		if first == nil {
			return t.Order(), nil
		}
		if _, err := t.AddDress(*first); err != nil {
			return models.Order{}, err
		}
		return t.Recalculate()
	})
}

// GetOrder loads an order with its customer, dresses and ledger entries
func (l *Ledger) GetOrder(ctx context.Context, tailorID, orderID uint) (*models.Order, error) {
	const op = "ledger.GetOrder"
	var order models.Order
	res := l.db.WithContext(ctx).
		Preload("Customer").
		Preload("Dresses", func(db *gorm.DB) *gorm.DB { return db.Order("dresses.id") }).
		Preload("Dresses.Measurements").
		Preload("Dresses.Images").
		Preload("Dresses.Recordings").
		Preload("Dresses.Clothes").
		Preload("Dresses.Clothes.Expense").
		Preload("Expenses", func(db *gorm.DB) *gorm.DB { return db.Order("expenses.id") }).
		Preload("Discounts", func(db *gorm.DB) *gorm.DB { return db.Order("discounts.id") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("payments.paid_at, payments.id") }).
		Where("id = ? AND tailor_id = ?", orderID, tailorID).
		Limit(1).
		Find(&order)
	if res.Error != nil {
		return nil, MapError(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, notFoundError(op, ErrOrderNotFound, orderID)
	}
	return &order, nil
}

// OrderFilter narrows ListOrders; zero fields match everything
type OrderFilter struct {
	CustomerID    uint
	Status        models.OrderStatus
	PaymentStatus models.PaymentStatus
	Limit         int
	Offset        int
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// ListOrders returns the tailor's orders, newest first
func (l *Ledger) ListOrders(ctx context.Context, tailorID uint, f OrderFilter) ([]models.Order, error) {
	const op = "ledger.ListOrders"
	if f.Status != "" && !f.Status.Valid() {
		return nil, validationError(op, "unknown order status %q", f.Status)
	}
	if f.PaymentStatus != "" && !f.PaymentStatus.Valid() {
		return nil, validationError(op, "unknown payment status %q", f.PaymentStatus)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	q := l.db.WithContext(ctx).Preload("Customer").Where("tailor_id = ?", tailorID)
	if f.CustomerID != 0 {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.PaymentStatus != "" {
		q = q.Where("payment_status = ?", f.PaymentStatus)
	}

	var orders []models.Order
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&orders).Error; err != nil {
		return nil, MapError(op, err)
	}
	return orders, nil
}

// OrderSummary is the financial view of an order
type OrderSummary struct {
	OrderID       uint                 `json:"order_id"`
	Status        models.OrderStatus   `json:"status"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
	models.Totals
	AmountOwed int64 `json:"amount_owed"`
	Balance    int64 `json:"balance"`
}

// Summary reads the stored totals of an order without locking it
func (l *Ledger) Summary(ctx context.Context, tailorID, orderID uint) (OrderSummary, error) {
	const op = "ledger.Summary"
	var order models.Order
	res := l.db.WithContext(ctx).Where("id = ? AND tailor_id = ?", orderID, tailorID).Limit(1).Find(&order)
	if res.Error != nil {
		return OrderSummary{}, MapError(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return OrderSummary{}, notFoundError(op, ErrOrderNotFound, orderID)
	}
	return SummaryOf(&order), nil
}

// SummaryOf derives the financial view from an order's stored totals
func SummaryOf(order *models.Order) OrderSummary {
	totals := order.Totals()
	return OrderSummary{
		OrderID:       order.ID,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		Totals:        totals,
		AmountOwed:    totals.Owed(),
		Balance:       totals.Balance(),
	}
}

// Entry names a kind of row that belongs to an order
type Entry string

const (
	EntryDress     Entry = "dresses"
	EntryCloth     Entry = "cloths"
	EntryExpense   Entry = "expenses"
	EntryDiscount  Entry = "discounts"
	EntryPayment   Entry = "payments"
	EntryImage     Entry = "dress_images"
	EntryRecording Entry = "recordings"
)

var entrySentinels = map[Entry]error{
	EntryDress:     ErrDressNotFound,
	EntryCloth:     ErrClothNotFound,
	EntryExpense:   ErrExpenseNotFound,
	EntryDiscount:  ErrDiscountNotFound,
	EntryPayment:   ErrPaymentNotFound,
	EntryImage:     ErrAttachmentNotFound,
	EntryRecording: ErrAttachmentNotFound,
}

// OrderOf finds the order an entry belongs to, so handlers addressing an entry by its own
// id can open the right order transaction. The entry is checked again under the lock.
func (l *Ledger) OrderOf(ctx context.Context, tailorID uint, entry Entry, id uint) (uint, error) {
	const op = "ledger.OrderOf"
	sentinel, ok := entrySentinels[entry]
	if !ok {
		return 0, validationError(op, "unknown entry kind %q", entry)
	}

	table := string(entry)
	var orderIDs []uint
	err := l.db.WithContext(ctx).
		Table(table).
		Joins("JOIN orders ON orders.id = "+table+".order_id AND orders.deleted_at IS NULL").
		Where(table+".id = ? AND "+table+".deleted_at IS NULL AND orders.tailor_id = ?", id, tailorID).
		Limit(1).
		Pluck(table+".order_id", &orderIDs).Error
	if err != nil {
		return 0, MapError(op, err)
	}
	if len(orderIDs) == 0 {
		return 0, notFoundError(op, sentinel, id)
	}
	return orderIDs[0], nil
}
