package ledger

import (
	"strings"
	"time"

	"github.com/tailorbook/tailorbook-api/models"
)

// ExpenseInput is a manual expense, optionally attached to a dress
type ExpenseInput struct {
	Title   string
	Amount  int64
	DressID *uint
}

// AddExpense records a manual expense
func (t *OrderTx) AddExpense(in ExpenseInput) (*models.Expense, error) {
	const op = "ledger.AddExpense"
	if err := t.requireMutable(op); err != nil {
		return nil, err
	}
	return t.addExpense(op, in)
}

func (t *OrderTx) addExpense(op string, in ExpenseInput) (*models.Expense, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, validationError(op, "expense title is required")
	}
	if in.Amount < 0 {
		return nil, validationError(op, "expense amount must not be negative")
	}
	if in.DressID != nil {
		if _, err := findOwned[models.Dress](t, op, *in.DressID, ErrDressNotFound); err != nil {
			return nil, err
		}
	}

	expense := &models.Expense{
		OrderID:  t.order.ID,
		DressID:  in.DressID,
		TailorID: t.tailorID,
		Title:    title,
		Amount:   in.Amount,
	}
	if err := t.tx.Create(expense).Error; err != nil {
		return nil, MapError(op, err)
	}
	t.markDirty()
	return expense, nil
}

// DeleteExpense removes a manual expense. Expenses generated by cloth follow their cloth.
func (t *OrderTx) DeleteExpense(expenseID uint) error {
	const op = "ledger.DeleteExpense"
	if err := t.requireMutable(op); err != nil {
		return err
	}
	expense, err := findOwned[models.Expense](t, op, expenseID, ErrExpenseNotFound)
	if err != nil {
		return err
	}
	if expense.ClothID != nil {
		return validationError(op, "expense %d is billed for cloth %d; update or delete the cloth instead", expense.ID, *expense.ClothID)
	}
	if err := t.tx.Delete(expense).Error; err != nil {
		return MapError(op, err)
	}
	t.markDirty()
	return nil
}

// DiscountInput is a reduction of what the customer owes
type DiscountInput struct {
	Title  string
	Amount int64
}

// AddDiscount records a discount on the order
func (t *OrderTx) AddDiscount(in DiscountInput) (*models.Discount, error) {
	const op = "ledger.AddDiscount"
	if err := t.requireMutable(op); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, validationError(op, "discount title is required")
	}
	if in.Amount <= 0 {
		return nil, validationError(op, "discount amount must be positive")
	}

	discount := &models.Discount{
		OrderID:  t.order.ID,
		TailorID: t.tailorID,
		Title:    title,
		Amount:   in.Amount,
	}
	if err := t.tx.Create(discount).Error; err != nil {
		return nil, MapError(op, err)
	}
	t.markDirty()
	return discount, nil
}

// DeleteDiscount removes a discount
func (t *OrderTx) DeleteDiscount(discountID uint) error {
	const op = "ledger.DeleteDiscount"
	if err := t.requireMutable(op); err != nil {
		return err
	}
	discount, err := findOwned[models.Discount](t, op, discountID, ErrDiscountNotFound)
	if err != nil {
		return err
	}
	if err := t.tx.Delete(discount).Error; err != nil {
		return MapError(op, err)
	}
	t.markDirty()
	return nil
}

// PaymentInput is money received for the order. Method defaults to cash, PaidAt to now.
type PaymentInput struct {
	Title  string
	Method models.PaymentMethod
	Amount int64
	PaidAt time.Time
}

// AddPayment records a payment from the order's customer
func (t *OrderTx) AddPayment(in PaymentInput) (*models.Payment, error) {
	const op = "ledger.AddPayment"
	if err := t.requirePayable(op); err != nil {
		return nil, err
	}
	if in.Amount <= 0 {
		return nil, validationError(op, "payment amount must be positive")
	}
	method := in.Method
	if method == "" {
		method = models.PaymentMethodCash
	}
	if !method.Valid() {
		return nil, validationError(op, "unknown payment method %q", in.Method)
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = "Payment"
	}
	paidAt := in.PaidAt
	if paidAt.IsZero() {
		paidAt = t.ledger.now()
	}

	payment := &models.Payment{
		OrderID:    t.order.ID,
		CustomerID: t.order.CustomerID,
		TailorID:   t.tailorID,
		Title:      title,
		Method:     method,
		Amount:     in.Amount,
		PaidAt:     paidAt,
	}
	if err := t.tx.Create(payment).Error; err != nil {
		return nil, MapError(op, err)
	}
	t.markDirty()
	return payment, nil
}

// DeletePayment removes a payment recorded in error
func (t *OrderTx) DeletePayment(paymentID uint) error {
	const op = "ledger.DeletePayment"
	if err := t.requirePayable(op); err != nil {
		return err
	}
	payment, err := findOwned[models.Payment](t, op, paymentID, ErrPaymentNotFound)
	if err != nil {
		return err
	}
	if err := t.tx.Delete(payment).Error; err != nil {
		return MapError(op, err)
	}
	t.markDirty()
	return nil
}
