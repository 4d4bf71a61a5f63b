package invoicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/backend/internal/domain/shared"
)

// InvoiceStatus represents the settlement status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDue       InvoiceStatus = "DUE"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDue, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// InvoiceItem represents a line item on an invoice. The product name and
// price are snapshots taken at save time; the catalog may change afterwards.
type InvoiceItem struct {
	ID          uuid.UUID
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   *uuid.UUID      `gorm:"type:uuid;index"`
	ProductName string          `gorm:"type:varchar(255);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (InvoiceItem) TableName() string {
	return "invoice_items"
}

// NewInvoiceItem creates a new invoice line item
func NewInvoiceItem(invoiceID uuid.UUID, productID *uuid.UUID, productName string, quantity, unitPrice decimal.Decimal) (*InvoiceItem, error) {
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	return &InvoiceItem{
		ID:          uuid.New(),
		InvoiceID:   invoiceID,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Amount:      quantity.Mul(unitPrice),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Invoice is the aggregate root for the invoice lifecycle. Status flips to
// PAID are performed by the payment reconciler; every other mutation goes
// through the invoice service.
type Invoice struct {
	shared.TenantAggregateRoot
	Number       string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_invoices_tenant_number,priority:2"`
	CustomerID   uuid.UUID `gorm:"type:uuid;not null;index"`
	CustomerName string    `gorm:"type:varchar(255)"`
	IssueDate    time.Time `gorm:"not null"`
	DueDate      time.Time
	Subtotal     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Total        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status       InvoiceStatus   `gorm:"type:varchar(16);not null;default:'DUE'"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates a new invoice in DUE status
func NewInvoice(tenantID uuid.UUID, number string, customerID uuid.UUID, customerName string, issueDate, dueDate time.Time) (*Invoice, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}

	return &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              number,
		CustomerID:          customerID,
		CustomerName:        customerName,
		IssueDate:           issueDate,
		DueDate:             dueDate,
		Subtotal:            decimal.Zero,
		Total:               decimal.Zero,
		Status:              InvoiceStatusDue,
		Items:               make([]InvoiceItem, 0),
	}, nil
}

// AddItem appends a line item and recalculates the totals
func (i *Invoice) AddItem(productID *uuid.UUID, productName string, quantity, unitPrice decimal.Decimal) (*InvoiceItem, error) {
	item, err := NewInvoiceItem(i.ID, productID, productName, quantity, unitPrice)
	if err != nil {
		return nil, err
	}
	i.Items = append(i.Items, *item)
	i.recalculateTotals()
	return &i.Items[len(i.Items)-1], nil
}

// ReplaceItems swaps the full item list in one edit and recalculates totals
func (i *Invoice) ReplaceItems(items []InvoiceItem) error {
	if len(items) == 0 {
		return shared.NewDomainError("EMPTY_ITEMS", "An invoice must have at least one item")
	}
	for idx := range items {
		items[idx].InvoiceID = i.ID
		items[idx].Amount = items[idx].Quantity.Mul(items[idx].UnitPrice)
	}
	i.Items = items
	i.recalculateTotals()
	i.UpdatedAt = time.Now()
	return nil
}

// UpdateDetails updates the customer reference and dates on an edit
func (i *Invoice) UpdateDetails(customerID uuid.UUID, customerName string, issueDate, dueDate time.Time) error {
	if customerID == uuid.Nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	i.CustomerID = customerID
	i.CustomerName = customerName
	i.IssueDate = issueDate
	i.DueDate = dueDate
	i.UpdatedAt = time.Now()
	return nil
}

// MarkPaid flips the status to PAID once cumulative payments cover the total
func (i *Invoice) MarkPaid() error {
	if i.Status != InvoiceStatusDue {
		return shared.NewDomainError("INVALID_STATE", "Only a due invoice can be marked paid")
	}
	i.Status = InvoiceStatusPaid
	i.UpdatedAt = time.Now()
	i.AddDomainEvent(NewInvoicePaidEvent(i))
	return nil
}

// Cancel flips the status to CANCELLED
func (i *Invoice) Cancel() error {
	if i.Status == InvoiceStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Invoice is already cancelled")
	}
	i.Status = InvoiceStatusCancelled
	i.UpdatedAt = time.Now()
	return nil
}

// HasItems reports whether the invoice carries at least one line item
func (i *Invoice) HasItems() bool {
	return len(i.Items) > 0
}

// recalculateTotals recomputes subtotal and total from the item list.
// Tax is not carried on invoices, so total always equals subtotal.
func (i *Invoice) recalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range i.Items {
		subtotal = subtotal.Add(item.Amount)
	}
	i.Subtotal = subtotal
	i.Total = subtotal
}
