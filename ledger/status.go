package ledger

import (
	"context"

	"github.com/tailorbook/tailorbook-api/models"
)

// SetStatus moves the order through its lifecycle. Cancelling also cancels every dress,
// which removes them from the dress total; delivering marks every live dress delivered.
// The order is always recalculated before the new status is returned.
func (t *OrderTx) SetStatus(next models.OrderStatus) (models.Order, error) {
	const op = "ledger.SetStatus"
	if t.deleted {
		return models.Order{}, notFoundError(op, ErrOrderNotFound, t.order.ID)
	}
	if !next.Valid() {
		return models.Order{}, validationError(op, "unknown order status %q", next)
	}
	current := t.order.Status
	if current == next {
		return t.order, nil
	}
	if !current.CanTransitionTo(next) {
		return models.Order{}, transitionError(op, "order %d cannot move from %s to %s", t.order.ID, current, next)
	}

	switch next {
	case models.OrderStatusCancelled:
		err := t.tx.Model(&models.Dress{}).
			Where("order_id = ? AND status <> ?", t.order.ID, models.DressStatusCancelled).
			Update("status", models.DressStatusCancelled).Error
		if err != nil {
			return models.Order{}, MapError(op, err)
		}
	case models.OrderStatusDelivered:
		err := t.tx.Model(&models.Dress{}).
			Where("order_id = ? AND status <> ?", t.order.ID, models.DressStatusCancelled).
			Update("status", models.DressStatusDelivered).Error
		if err != nil {
			return models.Order{}, MapError(op, err)
		}
	}

	err := t.tx.Model(&models.Order{}).Where("id = ?", t.order.ID).Update("status", next).Error
	if err != nil {
		return models.Order{}, MapError(op, err)
	}
	t.order.Status = next
	return t.Recalculate()
}

// Delete soft-deletes the order and everything it owns. Storage keys of its attachments
// are released after commit.
func (t *OrderTx) Delete() error {
	const op = "ledger.DeleteOrder"
	if t.deleted {
		return notFoundError(op, ErrOrderNotFound, t.order.ID)
	}

	var keys []string
	for _, model := range []interface{}{&models.DressImage{}, &models.Recording{}} {
		var k []string
		if err := t.tx.Model(model).Where("order_id = ?", t.order.ID).Pluck("storage_key", &k).Error; err != nil {
			return MapError(op, err)
		}
		keys = append(keys, k...)
	}

	owned := []interface{}{
		&models.Payment{},
		&models.Discount{},
		&models.Expense{},
		&models.Cloth{},
		&models.Measurement{},
		&models.DressImage{},
		&models.Recording{},
		&models.Dress{},
	}
	for _, model := range owned {
		if err := t.tx.Where("order_id = ?", t.order.ID).Delete(model).Error; err != nil {
			return MapError(op, err)
		}
	}
	if err := t.tx.Delete(&models.Order{}, t.order.ID).Error; err != nil {
		return MapError(op, err)
	}

	t.release(keys...)
	t.deleted = true
	t.dirty = false
	return nil
}

// DeleteOrder removes an order with all of its rows
func (l *Ledger) DeleteOrder(ctx context.Context, tailorID, orderID uint) error {
	_, err := WithOrderTransaction(ctx, l, tailorID, orderID, func(t *OrderTx) (struct{}, error) {
		return struct{}{}, t.Delete()
	})
	return err
}

// SetOrderStatus runs SetStatus in its own transaction
func (l *Ledger) SetOrderStatus(ctx context.Context, tailorID, orderID uint, next models.OrderStatus) (models.Order, error) {
	return WithOrderTransaction(ctx, l, tailorID, orderID, func(t *OrderTx) (models.Order, error) {
		return t.SetStatus(next)
	})
}
