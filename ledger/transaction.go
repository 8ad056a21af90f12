package ledger

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tailorbook/tailorbook-api/models"
)

// OrderTx is one locked order inside one database transaction.
// It is only valid inside the function passed to WithOrderTransaction or CreateOrderTransaction.
type OrderTx struct {
	ctx      context.Context
	tx       *gorm.DB
	ledger   *Ledger
	tailorID uint
	order    models.Order
	dirty    bool // a financial row changed since the last recalculation
	deleted  bool
	released []string
}

// Order returns the order as of the last recalculation inside this transaction
func (t *OrderTx) Order() models.Order {
	return t.order
}

// TailorID is the tailor on whose behalf the transaction runs
func (t *OrderTx) TailorID() uint {
	return t.tailorID
}

func (t *OrderTx) markDirty() {
	t.dirty = true
}

func (t *OrderTx) release(keys ...string) {
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			t.released = append(t.released, k)
		}
	}
}

// NewOrder describes an order to create
type NewOrder struct {
	CustomerID uint
	ShopID     uint
	Name       string
	Notes      *string
}

// WithOrderTransaction runs fn against the locked order and commits only if fn succeeds.
//
// The order row is held with SELECT ... FOR UPDATE until commit, so writers of the same
// order are serialized. If fn changed any financial row without recalculating afterwards,
// the order is recalculated before commit. Any error rolls back every write made in the
// scope; errors returned by fn reach the caller unchanged.
func WithOrderTransaction[T any](ctx context.Context, l *Ledger, tailorID, orderID uint, fn func(*OrderTx) (T, error)) (T, error) {
	const op = "ledger.WithOrderTransaction"
	return run(ctx, l, op, tailorID, func(tx *gorm.DB) (*models.Order, error) {
		return lockOrder(tx, op, tailorID, orderID)
	}, fn)
}

// CreateOrderTransaction inserts a new order and runs fn against it in the same transaction.
// A failure anywhere in fn leaves no trace of the order.
func CreateOrderTransaction[T any](ctx context.Context, l *Ledger, tailorID uint, in NewOrder, fn func(*OrderTx) (T, error)) (T, error) {
	const op = "ledger.CreateOrderTransaction"
	return run(ctx, l, op, tailorID, func(tx *gorm.DB) (*models.Order, error) {
		order, err := insertOrder(tx, op, tailorID, in)
		if err != nil {
			return nil, err
		}
		return lockOrder(tx, op, tailorID, order.ID)
	}, fn)
}

func run[T any](ctx context.Context, l *Ledger, op string, tailorID uint, open func(*gorm.DB) (*models.Order, error), fn func(*OrderTx) (T, error)) (T, error) {
	var zero T
	if fn == nil {
		return zero, validationError(op, "mutation function is required")
	}

	ctx, span := l.tracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(attribute.Int64("tailor.id", int64(tailorID)))

	var (
		result T
		otx    *OrderTx
		fnErr  error
	)
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := l.applyLockTimeout(tx); err != nil {
			return MapError(op, err)
		}
		order, err := open(tx)
		if err != nil {
			return err
		}
		otx = &OrderTx{ctx: ctx, tx: tx, ledger: l, tailorID: tailorID, order: *order}

		out, err := fn(otx)
		if err != nil {
			fnErr = err
			return err
		}
		if otx.dirty && !otx.deleted {
			if _, err := otx.Recalculate(); err != nil {
				return err
			}
		}
		result = out
		return nil
	})

	var orderID uint
	if otx != nil {
		orderID = otx.order.ID
	}
	span.SetAttributes(attribute.Int64("order.id", int64(orderID)))

	if err != nil {
		if err != fnErr {
			err = MapError(op, err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, string(CodeOf(err)))
		l.log.Warn("order transaction rolled back",
			"op", op,
			"order_id", orderID,
			"tailor_id", tailorID,
			"code", CodeOf(err),
			"error", err,
		)
		return zero, err
	}

	l.log.Debug("order transaction committed",
		"op", op,
		"order_id", orderID,
		"total_dress_amount", otx.order.TotalDressAmount,
		"total_expenses", otx.order.TotalExpenses,
		"total_discount", otx.order.TotalDiscount,
		"total_payment", otx.order.TotalPayment,
		"payment_status", otx.order.PaymentStatus,
	)
	if len(otx.released) > 0 && l.release != nil {
		l.release(ctx, otx.released)
	}
	return result, nil
}

func (l *Ledger) applyLockTimeout(tx *gorm.DB) error {
	if l.lockTimeout <= 0 || tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", l.lockTimeout.Milliseconds())).Error
}

func lockOrder(tx *gorm.DB, op string, tailorID, orderID uint) (*models.Order, error) {
	if orderID == 0 {
		return nil, notFoundError(op, ErrOrderNotFound, orderID)
	}
	var order models.Order
	res := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
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

func insertOrder(tx *gorm.DB, op string, tailorID uint, in NewOrder) (*models.Order, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationError(op, "order name is required")
	}

	var customer models.Customer
	res := tx.Where("id = ? AND tailor_id = ?", in.CustomerID, tailorID).Limit(1).Find(&customer)
	if res.Error != nil {
		return nil, MapError(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, notFoundError(op, ErrCustomerNotFound, in.CustomerID)
	}

	shopID := in.ShopID
	if shopID == 0 {
		shopID = customer.ShopID
	}
	order := &models.Order{
		CustomerID:    customer.ID,
		TailorID:      tailorID,
		ShopID:        shopID,
		Name:          name,
		Notes:         in.Notes,
		Status:        models.OrderStatusCreated,
		PaymentStatus: models.PaymentStatusUnpaid,
	}
	if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
		return nil, MapError(op, err)
	}
	return order, nil
}

// findOwned loads a live row of M that belongs to the transaction's order
func findOwned[M any](t *OrderTx, op string, id uint, sentinel error) (*M, error) {
	var row M
	res := t.tx.Where("id = ? AND order_id = ?", id, t.order.ID).Limit(1).Find(&row)
	if res.Error != nil {
		return nil, MapError(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, notFoundError(op, sentinel, id)
	}
	return &row, nil
}

// requireMutable rejects ledger changes on deleted or terminal orders
func (t *OrderTx) requireMutable(op string) error {
	if t.deleted {
		return notFoundError(op, ErrOrderNotFound, t.order.ID)
	}
	if t.order.Status.IsTerminal() {
		return transitionError(op, "order %d is %s", t.order.ID, t.order.Status)
	}
	return nil
}

// requirePayable allows settling delivered orders; only cancelled or deleted orders refuse payments
func (t *OrderTx) requirePayable(op string) error {
	if t.deleted {
		return notFoundError(op, ErrOrderNotFound, t.order.ID)
	}
	if t.order.Status == models.OrderStatusCancelled {
		return transitionError(op, "order %d is cancelled", t.order.ID)
	}
	return nil
}
