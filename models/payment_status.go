package models

// PaymentStatus is derived from an order's totals; it is never set directly
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// Valid reports whether s is a known payment status
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPartial, PaymentStatusPaid:
		return true
	}
	return false
}

// Totals are an order's four running sums in minor currency units
type Totals struct {
	DressAmount int64 `json:"total_dress_amount"`
	Expenses    int64 `json:"total_expenses"`
	Discount    int64 `json:"total_discount"`
	Payment     int64 `json:"total_payment"`
}

// Owed is what the customer is charged: dresses plus expenses minus discounts
func (t Totals) Owed() int64 {
	return t.DressAmount + t.Expenses - t.Discount
}

// Balance is what remains to be paid; negative means overpaid
func (t Totals) Balance() int64 {
	return t.Owed() - t.Payment
}

// PaymentStatusRule derives the payment status from a set of totals.
// The shop's business rules may replace the default.
type PaymentStatusRule func(Totals) PaymentStatus

// DefaultPaymentStatusRule: unpaid when nothing was paid, paid once payments cover
// the amount owed, partial in between.
func DefaultPaymentStatusRule(t Totals) PaymentStatus {
	switch {
	case t.Payment <= 0:
		return PaymentStatusUnpaid
	case t.Payment >= t.Owed():
		return PaymentStatusPaid
	default:
		return PaymentStatusPartial
	}
}
