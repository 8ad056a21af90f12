package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrorCode classifies ledger failures for callers
type ErrorCode string

const (
	CodeValidation        ErrorCode = "validation"
	CodeNotFound          ErrorCode = "not_found"
	CodeRecalculation     ErrorCode = "recalculation"
	CodeConflict          ErrorCode = "concurrency_conflict"
	CodeInvalidTransition ErrorCode = "invalid_transition"
	CodeInternal          ErrorCode = "internal"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrRecalculation       = errors.New("order recalculation failed")
	ErrConcurrencyConflict = errors.New("concurrent order update")
	ErrInvalidTransition   = errors.New("invalid order transition")

	ErrOrderNotFound      = errors.New("order not found")
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrDressNotFound      = errors.New("dress not found")
	ErrClothNotFound      = errors.New("cloth not found")
	ErrExpenseNotFound    = errors.New("expense not found")
	ErrDiscountNotFound   = errors.New("discount not found")
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrAttachmentNotFound = errors.New("attachment not found")
)

var codeSentinels = map[ErrorCode]error{
	CodeValidation:        ErrValidation,
	CodeRecalculation:     ErrRecalculation,
	CodeConflict:          ErrConcurrencyConflict,
	CodeInvalidTransition: ErrInvalidTransition,
}

// Error is the ledger's typed failure
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch {
	case e.Op != "" && e.Message != "":
		return fmt.Sprintf("%s: %s (%s)", e.Op, e.Message, e.Code)
	case e.Op != "":
		return fmt.Sprintf("%s (%s)", e.Op, e.Code)
	case e.Message != "":
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is match the code's sentinel even when Cause is a storage error
func (e *Error) Is(target error) bool {
	sentinel, ok := codeSentinels[e.Code]
	return ok && target == sentinel
}

func newError(code ErrorCode, op, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

func validationError(op, format string, args ...interface{}) error {
	return newError(CodeValidation, op, fmt.Sprintf(format, args...), ErrValidation)
}

func notFoundError(op string, sentinel error, id uint) error {
	return newError(CodeNotFound, op, fmt.Sprintf("%s: %d", sentinel.Error(), id), sentinel)
}

func transitionError(op, format string, args ...interface{}) error {
	return newError(CodeInvalidTransition, op, fmt.Sprintf(format, args...), ErrInvalidTransition)
}

// CodeOf extracts the ledger error code, or "" for foreign errors
func CodeOf(err error) ErrorCode {
	var lerr *Error
	if !errors.As(err, &lerr) {
		return ""
	}
	return lerr.Code
}

// IsCode reports whether err carries the given ledger code
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// MapError translates storage failures into the ledger taxonomy.
// Errors that already are *Error pass through untouched.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var lerr *Error
	if errors.As(err, &lerr) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return newError(CodeNotFound, op, err.Error(), err)
	case errors.Is(err, context.DeadlineExceeded):
		return newError(CodeConflict, op, err.Error(), err)
	case errors.Is(err, context.Canceled):
		return newError(CodeInternal, op, err.Error(), err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "55P03", "40001", "40P01": // lock_not_available, serialization_failure, deadlock_detected
			return newError(CodeConflict, op, err.Error(), err)
		case "23503", "23514", "23502": // foreign_key, check, not_null violations
			return newError(CodeValidation, op, err.Error(), err)
		case "23505":
			return newError(CodeConflict, op, err.Error(), err)
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "database table is locked"),
		strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "lock timeout"):
		return newError(CodeConflict, op, err.Error(), err)
	case strings.Contains(msg, "unique constraint"), strings.Contains(msg, "duplicate key"):
		return newError(CodeConflict, op, err.Error(), err)
	case strings.Contains(msg, "constraint failed"):
		return newError(CodeValidation, op, err.Error(), err)
	default:
		return newError(CodeInternal, op, err.Error(), err)
	}
}
