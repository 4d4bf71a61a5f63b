package invoicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/backend/internal/domain/invoicing"
)

// InvoiceItemInput is one requested line item
type InvoiceItemInput struct {
	ProductID   *uuid.UUID      `json:"product_id"`
	ProductName string          `json:"product_name" validate:"required,max=255"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// SaveInvoiceRequest creates a new invoice when ID is nil and edits the
// referenced invoice otherwise
type SaveInvoiceRequest struct {
	ID           *uuid.UUID         `json:"id"`
	CustomerID   uuid.UUID          `json:"customer_id" validate:"required"`
	CustomerName string             `json:"customer_name" validate:"max=255"`
	IssueDate    time.Time          `json:"issue_date" validate:"required"`
	DueDate      time.Time          `json:"due_date"`
	Items        []InvoiceItemInput `json:"items" validate:"required,min=1,dive"`
}

// ListInvoicesRequest filters and pages the tenant's invoices
type ListInvoicesRequest struct {
	Status     string     `json:"status" validate:"omitempty,oneof=DUE PAID CANCELLED"`
	CustomerID *uuid.UUID `json:"customer_id"`
	Page       int        `json:"page" validate:"min=0"`
	PageSize   int        `json:"page_size" validate:"min=0,max=500"`
}

// InvoiceItemResponse is one line item in responses
type InvoiceItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// InvoiceResponse represents an invoice in responses
type InvoiceResponse struct {
	ID           uuid.UUID             `json:"id"`
	Number       string                `json:"number"`
	CustomerID   uuid.UUID             `json:"customer_id"`
	CustomerName string                `json:"customer_name"`
	IssueDate    time.Time             `json:"issue_date"`
	DueDate      time.Time             `json:"due_date"`
	Subtotal     decimal.Decimal       `json:"subtotal"`
	Total        decimal.Decimal       `json:"total"`
	Status       string                `json:"status"`
	Items        []InvoiceItemResponse `json:"items"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// ToInvoiceResponse converts an invoice aggregate to a response DTO
func ToInvoiceResponse(invoice *invoicing.Invoice) *InvoiceResponse {
	items := make([]InvoiceItemResponse, 0, len(invoice.Items))
	for _, item := range invoice.Items {
		items = append(items, InvoiceItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
		})
	}
	return &InvoiceResponse{
		ID:           invoice.ID,
		Number:       invoice.Number,
		CustomerID:   invoice.CustomerID,
		CustomerName: invoice.CustomerName,
		IssueDate:    invoice.IssueDate,
		DueDate:      invoice.DueDate,
		Subtotal:     invoice.Subtotal,
		Total:        invoice.Total,
		Status:       invoice.Status.String(),
		Items:        items,
		CreatedAt:    invoice.CreatedAt,
		UpdatedAt:    invoice.UpdatedAt,
	}
}
