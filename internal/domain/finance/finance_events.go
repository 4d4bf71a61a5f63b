package finance

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerline/backend/internal/domain/shared"
)

// Event types for the finance context
const (
	EventTypePaymentRecorded = "finance.payment_recorded"
)

// PaymentRecordedEvent is emitted after a payment is persisted
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	Amount    decimal.Decimal `json:"amount"`
	InvoiceID string          `json:"invoice_id,omitempty"`
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(payment *Payment) *PaymentRecordedEvent {
	e := &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, "Payment", payment.ID, payment.TenantID),
		Amount:          payment.Amount,
	}
	if payment.InvoiceID != nil {
		e.InvoiceID = payment.InvoiceID.String()
	}
	return e
}
