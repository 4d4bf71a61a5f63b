package billing

import (
	"time"

	"github.com/google/uuid"
)

// GenerationRecord marks that a template has already generated its invoice
// for the period ending on PeriodEnd. The schedule engine checks it before
// creating an invoice, so a crash between invoice creation and template
// advancement cannot produce a duplicate on retry.
type GenerationRecord struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;index"`
	TemplateID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_generation_template_period,priority:1"`
	PeriodEnd  time.Time `gorm:"not null;uniqueIndex:idx_generation_template_period,priority:2"`
	InvoiceID  uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt  time.Time
}

// TableName returns the table name for GORM
func (GenerationRecord) TableName() string {
	return "generation_records"
}

// NewGenerationRecord creates a marker for the given template period
func NewGenerationRecord(tenantID, templateID, invoiceID uuid.UUID, periodEnd time.Time) *GenerationRecord {
	return &GenerationRecord{
		ID:         uuid.New(),
		TenantID:   tenantID,
		TemplateID: templateID,
		PeriodEnd:  periodEnd,
		InvoiceID:  invoiceID,
		CreatedAt:  time.Now(),
	}
}
