package invoicing

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerline/backend/internal/domain/shared"
)

// Event types for the invoicing context
const (
	EventTypeInvoiceSaved   = "invoicing.invoice_saved"
	EventTypeInvoiceDeleted = "invoicing.invoice_deleted"
	EventTypeInvoicePaid    = "invoicing.invoice_paid"
)

// InvoiceSavedEvent is emitted after an invoice create or edit is persisted
type InvoiceSavedEvent struct {
	shared.BaseDomainEvent
	Number string          `json:"number"`
	Total  decimal.Decimal `json:"total"`
	IsNew  bool            `json:"is_new"`
}

// NewInvoiceSavedEvent creates a new InvoiceSavedEvent
func NewInvoiceSavedEvent(invoice *Invoice, isNew bool) *InvoiceSavedEvent {
	return &InvoiceSavedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceSaved, "Invoice", invoice.ID, invoice.TenantID),
		Number:          invoice.Number,
		Total:           invoice.Total,
		IsNew:           isNew,
	}
}

// InvoiceDeletedEvent is emitted after an invoice is removed and its stock
// effect reversed
type InvoiceDeletedEvent struct {
	shared.BaseDomainEvent
	Number string `json:"number"`
}

// NewInvoiceDeletedEvent creates a new InvoiceDeletedEvent
func NewInvoiceDeletedEvent(invoice *Invoice) *InvoiceDeletedEvent {
	return &InvoiceDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceDeleted, "Invoice", invoice.ID, invoice.TenantID),
		Number:          invoice.Number,
	}
}

// InvoicePaidEvent is emitted when cumulative payments cover the total
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	Number string          `json:"number"`
	Total  decimal.Decimal `json:"total"`
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(invoice *Invoice) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaid, "Invoice", invoice.ID, invoice.TenantID),
		Number:          invoice.Number,
		Total:           invoice.Total,
	}
}
