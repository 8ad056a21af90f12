package ledger

import (
	"context"

	"gorm.io/gorm"

	"github.com/tailorbook/tailorbook-api/models"
)

type dressSums struct {
	DressCount  int64
	DressAmount int64
}

// Recalculate recomputes the order's totals, payment status and derived lifecycle status
// from the rows persisted in this transaction and writes them to the order row.
func (t *OrderTx) Recalculate() (models.Order, error) {
	const op = "ledger.Recalculate"
	if t.deleted {
		return models.Order{}, notFoundError(op, ErrOrderNotFound, t.order.ID)
	}

	totals, liveDresses, err := sumTotals(t.tx, t.order.ID)
	if err != nil {
		return models.Order{}, recalculationError(op, "sum order entries", err)
	}

	status := deriveStatus(t.order.Status, liveDresses)
	paymentStatus := t.ledger.rule(totals)
	now := t.ledger.now()

	res := t.tx.Model(&models.Order{}).
		Where("id = ?", t.order.ID).
		Updates(map[string]interface{}{
			"total_dress_amount": totals.DressAmount,
			"total_expenses":     totals.Expenses,
			"total_discount":     totals.Discount,
			"total_payment":      totals.Payment,
			"payment_status":     paymentStatus,
			"status":             status,
			"updated_at":         now,
		})
	if res.Error != nil {
		return models.Order{}, recalculationError(op, "write order totals", res.Error)
	}
	if res.RowsAffected != 1 {
		return models.Order{}, newError(CodeRecalculation, op, "order row was not updated", nil)
	}

	t.order.ApplyTotals(totals)
	t.order.PaymentStatus = paymentStatus
	t.order.Status = status
	t.order.UpdatedAt = now
	t.dirty = false
	return t.order, nil
}

// RecalculateOrder recomputes an order on demand, e.g. after a manual data repair
func (l *Ledger) RecalculateOrder(ctx context.Context, tailorID, orderID uint) (models.Order, error) {
	return WithOrderTransaction(ctx, l, tailorID, orderID, func(t *OrderTx) (models.Order, error) {
		return t.Recalculate()
	})
}

// recalculationError keeps lock conflicts distinguishable from genuine recalculation failures
func recalculationError(op, message string, err error) error {
	if mapped := MapError(op, err); IsCode(mapped, CodeConflict) {
		return mapped
	}
	return newError(CodeRecalculation, op, message+": "+err.Error(), err)
}

func sumTotals(tx *gorm.DB, orderID uint) (models.Totals, int64, error) {
	var totals models.Totals

	var dresses dressSums
	err := tx.Model(&models.Dress{}).
		Select("COUNT(*) AS dress_count, CAST(COALESCE(SUM(price * quantity), 0) AS BIGINT) AS dress_amount").
		Where("order_id = ? AND status <> ?", orderID, models.DressStatusCancelled).
		Scan(&dresses).Error
	if err != nil {
		return totals, 0, err
	}
	totals.DressAmount = dresses.DressAmount

	if totals.Expenses, err = sumAmount(tx, &models.Expense{}, orderID); err != nil {
		return totals, 0, err
	}
	if totals.Discount, err = sumAmount(tx, &models.Discount{}, orderID); err != nil {
		return totals, 0, err
	}
	if totals.Payment, err = sumAmount(tx, &models.Payment{}, orderID); err != nil {
		return totals, 0, err
	}
	return totals, dresses.DressCount, nil
}

func sumAmount(tx *gorm.DB, model interface{}, orderID uint) (int64, error) {
	var total int64
	err := tx.Model(model).
		Select("CAST(COALESCE(SUM(amount), 0) AS BIGINT)").
		Where("order_id = ?", orderID).
		Scan(&total).Error
	return total, err
}

// deriveStatus moves an order between created and active as dresses come and go.
// Every other status is only changed by SetStatus.
func deriveStatus(current models.OrderStatus, liveDresses int64) models.OrderStatus {
	switch {
	case current == models.OrderStatusCreated && liveDresses > 0:
		return models.OrderStatusActive
	case current == models.OrderStatusActive && liveDresses == 0:
		return models.OrderStatusCreated
	}
	return current
}
