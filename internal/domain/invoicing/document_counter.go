package invoicing

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/backend/internal/domain/shared"
)

// DocumentType identifies a numbered document series
type DocumentType string

const (
	DocumentTypeInvoice DocumentType = "INVOICE"
	DocumentTypeQuote   DocumentType = "QUOTE"
)

// IsValid checks if the document type is known
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypeInvoice, DocumentTypeQuote:
		return true
	}
	return false
}

// Prefix returns the human-readable number prefix for the series
func (t DocumentType) Prefix() string {
	switch t {
	case DocumentTypeQuote:
		return "QT"
	default:
		return "INV"
	}
}

// DocumentCounter is the per-tenant singleton holding the last issued number
// of every document series. It is only ever mutated through a compare-and-set
// on its version, so two concurrent allocations can never mint the same number.
type DocumentCounter struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	LastInvoiceNumber int64     `gorm:"not null"`
	LastQuoteNumber   int64     `gorm:"not null"`
	Version           int       `gorm:"not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName returns the table name for GORM
func (DocumentCounter) TableName() string {
	return "document_counters"
}

// NewDocumentCounter creates a fresh counter for a tenant
func NewDocumentCounter(tenantID uuid.UUID) *DocumentCounter {
	now := time.Now()
	return &DocumentCounter{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Next advances the series for the given document type and returns the
// formatted number. The caller must persist the counter with a version
// check before handing the number out.
func (c *DocumentCounter) Next(docType DocumentType) (string, error) {
	if !docType.IsValid() {
		return "", shared.NewDomainError("INVALID_DOCUMENT_TYPE", "Unknown document type")
	}

	var n int64
	switch docType {
	case DocumentTypeQuote:
		c.LastQuoteNumber++
		n = c.LastQuoteNumber
	default:
		c.LastInvoiceNumber++
		n = c.LastInvoiceNumber
	}
	c.UpdatedAt = time.Now()

	return FormatNumber(docType, n), nil
}

// FormatNumber renders a document number as a zero-padded prefixed string,
// e.g. INV-0001 or QT-0042. The padding grows with the number.
func FormatNumber(docType DocumentType, n int64) string {
	return fmt.Sprintf("%s-%04d", docType.Prefix(), n)
}
