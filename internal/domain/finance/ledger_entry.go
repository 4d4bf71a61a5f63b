package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReferenceType tags a ledger entry with the business document it came from
type ReferenceType string

const (
	ReferenceTypeInvoice  ReferenceType = "INVOICE"
	ReferenceTypePayment  ReferenceType = "PAYMENT"
	ReferenceTypePurchase ReferenceType = "PURCHASE"
	ReferenceTypeAsset    ReferenceType = "ASSET"
	ReferenceTypeOwner    ReferenceType = "OWNER"
	ReferenceTypeLoan     ReferenceType = "LOAN"
)

// LedgerLine is one side of a balanced bookkeeping record. Exactly one of
// Debit/Credit is normally non-zero.
type LedgerLine struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	EntryID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountName string          `gorm:"type:varchar(255);not null"`
	Debit       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Credit      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (LedgerLine) TableName() string {
	return "ledger_lines"
}

// LedgerEntry is an append-only bookkeeping record produced by a bookkeeping
// subsystem outside this core. It is a read-only input to cash-flow reporting.
type LedgerEntry struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey"`
	TenantID      uuid.UUID     `gorm:"type:uuid;not null;index"`
	EntryDate     time.Time     `gorm:"not null;index"`
	ReferenceType ReferenceType `gorm:"type:varchar(32)"`
	Description   string        `gorm:"type:varchar(512)"`
	CreatedAt     time.Time

	Lines []LedgerLine `gorm:"foreignKey:EntryID;references:ID"`
}

// TableName returns the table name for GORM
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// SignedAmount returns the net movement of the line: credit is an inflow,
// debit an outflow.
func (l *LedgerLine) SignedAmount() decimal.Decimal {
	return l.Credit.Sub(l.Debit)
}
