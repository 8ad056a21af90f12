// Package ledger keeps an order's money consistent.
//
// Every mutation of a dress, cloth, expense, discount or payment runs inside
// WithOrderTransaction, which locks the order row, applies the change, recomputes
// the order's totals from the persisted child rows and commits, or rolls the whole
// unit back. Totals are never adjusted incrementally.
package ledger

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tailorbook/tailorbook-api/logger"
	"github.com/tailorbook/tailorbook-api/models"
)

const tracerName = "github.com/tailorbook/tailorbook-api/ledger"

// ReleaseFunc receives the storage keys of attachments deleted by a committed transaction
type ReleaseFunc func(ctx context.Context, keys []string)

// Ledger owns the transaction boundary for order-financial writes
type Ledger struct {
	db          *gorm.DB
	log         *logger.Logger
	rule        models.PaymentStatusRule
	lockTimeout time.Duration
	release     ReleaseFunc
	now         func() time.Time
	tracer      trace.Tracer
}

// Option configures a Ledger
type Option func(*Ledger)

// WithLogger sets the logger used for commit and rollback events
func WithLogger(log *logger.Logger) Option {
	return func(l *Ledger) {
		if log != nil {
			l.log = log
		}
	}
}

// WithPaymentStatusRule replaces the default unpaid/partial/paid derivation
func WithPaymentStatusRule(rule models.PaymentStatusRule) Option {
	return func(l *Ledger) {
		if rule != nil {
			l.rule = rule
		}
	}
}

// WithLockTimeout bounds how long a writer waits for the order row lock (Postgres only)
func WithLockTimeout(d time.Duration) Option {
	return func(l *Ledger) {
		l.lockTimeout = d
	}
}

// WithReleaseFunc registers the hook that frees storage of deleted attachments after commit
func WithReleaseFunc(fn ReleaseFunc) Option {
	return func(l *Ledger) {
		l.release = fn
	}
}

// WithClock overrides the time source (tests)
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// New creates a Ledger over db
func New(db *gorm.DB, opts ...Option) *Ledger {
	l := &Ledger{
		db:     db,
		log:    logger.Nop(),
		rule:   models.DefaultPaymentStatusRule,
		now:    time.Now,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.log = l.log.With("component", "ledger")
	return l
}
