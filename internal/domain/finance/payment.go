package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/backend/internal/domain/shared"
)

// Payment records money received from a customer. A payment may reference an
// invoice; unreferenced payments are kept for reporting only. Payments are
// immutable once recorded.
type Payment struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerID uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID  *uuid.UUID      `gorm:"type:uuid;index"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Date       time.Time       `gorm:"not null;index"`
	CreatedAt  time.Time
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a new payment
func NewPayment(tenantID, customerID uuid.UUID, invoiceID *uuid.UUID, amount decimal.Decimal, date time.Time) (*Payment, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	return &Payment{
		ID:         uuid.New(),
		TenantID:   tenantID,
		CustomerID: customerID,
		InvoiceID:  invoiceID,
		Amount:     amount,
		Date:       date,
		CreatedAt:  time.Now(),
	}, nil
}
