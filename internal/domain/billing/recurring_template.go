package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/backend/internal/domain/shared"
)

// Frequency represents how often a recurring template generates an invoice
type Frequency string

const (
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
	FrequencyYearly  Frequency = "YEARLY"
)

// IsValid checks if the frequency is a valid Frequency
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// NextAfter returns the date exactly one frequency step after the given date.
// Monthly and yearly steps follow calendar arithmetic, so Jan 31 + 1 month
// normalizes the way time.AddDate does.
func (f Frequency) NextAfter(date time.Time) time.Time {
	switch f {
	case FrequencyWeekly:
		return date.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return date.AddDate(0, 1, 0)
	default:
		return date.AddDate(1, 0, 0)
	}
}

// TemplateItem is a line-item blueprint on a recurring template
type TemplateItem struct {
	ID          uuid.UUID
	TemplateID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   *uuid.UUID      `gorm:"type:uuid"`
	ProductName string          `gorm:"type:varchar(255);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (TemplateItem) TableName() string {
	return "recurring_template_items"
}

// RecurringTemplate is a reusable invoice blueprint with a schedule.
// NextDueDate is the only field the schedule engine mutates, and only after
// the corresponding invoice has been durably created.
type RecurringTemplate struct {
	shared.TenantAggregateRoot
	CustomerID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	CustomerName string     `gorm:"type:varchar(255)"`
	Frequency    Frequency  `gorm:"type:varchar(16);not null"`
	StartDate    time.Time  `gorm:"not null"`
	NextDueDate  time.Time  `gorm:"not null;index"`
	EndDate      *time.Time `gorm:"index"`

	Items []TemplateItem `gorm:"foreignKey:TemplateID;references:ID"`
}

// TableName returns the table name for GORM
func (RecurringTemplate) TableName() string {
	return "recurring_templates"
}

// NewRecurringTemplate creates a new recurring template due first on startDate
func NewRecurringTemplate(tenantID, customerID uuid.UUID, customerName string, frequency Frequency, startDate time.Time, endDate *time.Time) (*RecurringTemplate, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if !frequency.IsValid() {
		return nil, shared.NewDomainError("INVALID_FREQUENCY", "Unknown frequency")
	}
	if endDate != nil && endDate.Before(startDate) {
		return nil, shared.NewDomainError("INVALID_END_DATE", "End date cannot be before start date")
	}

	return &RecurringTemplate{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CustomerID:          customerID,
		CustomerName:        customerName,
		Frequency:           frequency,
		StartDate:           startDate,
		NextDueDate:         startDate,
		EndDate:             endDate,
		Items:               make([]TemplateItem, 0),
	}, nil
}

// AddItem appends a line-item blueprint
func (t *RecurringTemplate) AddItem(productID *uuid.UUID, productName string, quantity, unitPrice decimal.Decimal) (*TemplateItem, error) {
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
	item := TemplateItem{
		ID:          uuid.New(),
		TemplateID:  t.ID,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	t.Items = append(t.Items, item)
	return &t.Items[len(t.Items)-1], nil
}

// IsDue reports whether the template should generate an invoice as of the
// given date. A template is due when NextDueDate <= asOf and the schedule
// has not ended (EndDate unset or >= asOf).
func (t *RecurringTemplate) IsDue(asOf time.Time) bool {
	if t.NextDueDate.After(asOf) {
		return false
	}
	if t.EndDate != nil && t.EndDate.Before(asOf) {
		return false
	}
	return true
}

// Advance moves NextDueDate forward by exactly one frequency step. Callers
// needing full catch-up invoke the engine repeatedly until nothing is due.
func (t *RecurringTemplate) Advance() {
	t.NextDueDate = t.Frequency.NextAfter(t.NextDueDate)
	t.UpdatedAt = time.Now()
}
