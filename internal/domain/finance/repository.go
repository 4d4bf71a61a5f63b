package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/backend/internal/domain/shared"
)

// PaymentRepository defines the persistence interface for payments
type PaymentRepository interface {
	// FindByIDForTenant finds a payment by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Payment, error)
	// FindByInvoice finds every payment referencing the invoice
	FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]Payment, error)
	// FindByDateRange finds payments dated within [start, end]
	FindByDateRange(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]Payment, error)
	// FindAllForTenant finds payments for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Payment, error)
	// SumByInvoice sums every payment referencing the invoice
	SumByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (decimal.Decimal, error)
	// Create persists a new payment. Payments are never updated.
	Create(ctx context.Context, payment *Payment) error
}

// LedgerEntryRepository is the read-only source of bookkeeping records
type LedgerEntryRepository interface {
	// FindByDateRange finds entries dated within [start, end], lines included
	FindByDateRange(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]LedgerEntry, error)
	// SumCashMovementBefore returns the net signed movement (credit - debit)
	// of every line on a cash-like account, over all entries dated strictly
	// before the given date. Account names are matched against the given
	// lowercase substring patterns.
	SumCashMovementBefore(ctx context.Context, tenantID uuid.UUID, before time.Time, cashPatterns []string) (decimal.Decimal, error)
	// CountInRange counts entries dated within [start, end]
	CountInRange(ctx context.Context, tenantID uuid.UUID, start, end time.Time) (int64, error)
}
