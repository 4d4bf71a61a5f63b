package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/backend/internal/domain/finance"
)

// RecordPaymentRequest records money received from a customer. InvoiceID is
// optional; payments without one are kept for reporting only.
type RecordPaymentRequest struct {
	CustomerID uuid.UUID       `json:"customer_id" validate:"required"`
	InvoiceID  *uuid.UUID      `json:"invoice_id"`
	Amount     decimal.Decimal `json:"amount"`
	Date       time.Time       `json:"date" validate:"required"`
}

// PaymentResponse represents a recorded payment in responses
type PaymentResponse struct {
	ID         uuid.UUID       `json:"id"`
	CustomerID uuid.UUID       `json:"customer_id"`
	InvoiceID  *uuid.UUID      `json:"invoice_id,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Date       time.Time       `json:"date"`
	CreatedAt  time.Time       `json:"created_at"`
	// InvoiceSettled reports whether this payment flipped the referenced
	// invoice to PAID
	InvoiceSettled bool `json:"invoice_settled"`
}

// ToPaymentResponse converts a payment to a response DTO
func ToPaymentResponse(payment *finance.Payment, settled bool) *PaymentResponse {
	return &PaymentResponse{
		ID:             payment.ID,
		CustomerID:     payment.CustomerID,
		InvoiceID:      payment.InvoiceID,
		Amount:         payment.Amount,
		Date:           payment.Date,
		CreatedAt:      payment.CreatedAt,
		InvoiceSettled: settled,
	}
}

// CashFlowRequest asks for the cash-flow statement over [Start, End]
type CashFlowRequest struct {
	Start time.Time `json:"start" validate:"required"`
	End   time.Time `json:"end" validate:"required"`
}
