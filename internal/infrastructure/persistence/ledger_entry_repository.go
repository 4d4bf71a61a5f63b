package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ledgerline/backend/internal/domain/finance"
)

// GormLedgerEntryRepository implements LedgerEntryRepository using GORM.
// Ledger entries are written by the bookkeeping subsystem; this repository
// only reads them.
type GormLedgerEntryRepository struct {
	db *gorm.DB
}

// NewGormLedgerEntryRepository creates a new GormLedgerEntryRepository
func NewGormLedgerEntryRepository(db *gorm.DB) *GormLedgerEntryRepository {
	return &GormLedgerEntryRepository{db: db}
}

// FindByDateRange finds entries dated within [start, end], lines included
func (r *GormLedgerEntryRepository) FindByDateRange(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]finance.LedgerEntry, error) {
	var entries []finance.LedgerEntry
	if err := r.db.WithContext(ctx).Preload("Lines").
		Where("tenant_id = ? AND entry_date >= ? AND entry_date <= ?", tenantID, start, end).
		Order("entry_date asc").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// SumCashMovementBefore returns the net signed movement (credit - debit) of
// every line on a cash-like account over all entries dated strictly before
// the given date
func (r *GormLedgerEntryRepository) SumCashMovementBefore(ctx context.Context, tenantID uuid.UUID, before time.Time, cashPatterns []string) (decimal.Decimal, error) {
	if len(cashPatterns) == 0 {
		return decimal.Zero, nil
	}

	query := r.db.WithContext(ctx).Model(&finance.LedgerLine{}).
		Joins("JOIN ledger_entries ON ledger_entries.id = ledger_lines.entry_id").
		Where("ledger_entries.tenant_id = ? AND ledger_entries.entry_date < ?", tenantID, before)

	pattern := r.db.Session(&gorm.Session{NewDB: true})
	for i, p := range cashPatterns {
		like := "%" + p + "%"
		if i == 0 {
			pattern = pattern.Where("LOWER(ledger_lines.account_name) LIKE ?", like)
		} else {
			pattern = pattern.Or("LOWER(ledger_lines.account_name) LIKE ?", like)
		}
	}
	query = query.Where(pattern)

	var sum decimal.NullDecimal
	if err := query.
		Select("COALESCE(SUM(ledger_lines.credit - ledger_lines.debit), 0)").
		Scan(&sum).Error; err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// CountInRange counts entries dated within [start, end]
func (r *GormLedgerEntryRepository) CountInRange(ctx context.Context, tenantID uuid.UUID, start, end time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&finance.LedgerEntry{}).
		Where("tenant_id = ? AND entry_date >= ? AND entry_date <= ?", tenantID, start, end).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormLedgerEntryRepository implements LedgerEntryRepository
var _ finance.LedgerEntryRepository = (*GormLedgerEntryRepository)(nil)
