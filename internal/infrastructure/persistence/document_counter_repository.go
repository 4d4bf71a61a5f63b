package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ledgerline/backend/internal/domain/invoicing"
	"github.com/ledgerline/backend/internal/domain/shared"
)

// GormDocumentCounterRepository implements DocumentCounterRepository using GORM
type GormDocumentCounterRepository struct {
	db *gorm.DB
}

// NewGormDocumentCounterRepository creates a new GormDocumentCounterRepository
func NewGormDocumentCounterRepository(db *gorm.DB) *GormDocumentCounterRepository {
	return &GormDocumentCounterRepository{db: db}
}

// GetOrCreate returns the tenant's counter, creating it on first use. The
// unique index on tenant_id makes concurrent first allocations safe: the
// loser of the insert race re-reads the winner's row.
func (r *GormDocumentCounterRepository) GetOrCreate(ctx context.Context, tenantID uuid.UUID) (*invoicing.DocumentCounter, error) {
	var counter invoicing.DocumentCounter
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&counter).Error
	if err == nil {
		return &counter, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := invoicing.NewDocumentCounter(tenantID)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}},
			DoNothing: true,
		}).
		Create(fresh).Error; err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&counter).Error; err != nil {
		return nil, err
	}
	return &counter, nil
}

// CompareAndSwap persists the counter only if the stored version still
// matches the version it was read at. Next already advanced the in-memory
// series, so the row is written with version+1 and the new last numbers.
func (r *GormDocumentCounterRepository) CompareAndSwap(ctx context.Context, counter *invoicing.DocumentCounter) error {
	newVersion := counter.Version + 1

	result := r.db.WithContext(ctx).Model(&invoicing.DocumentCounter{}).
		Where("id = ? AND version = ?", counter.ID, counter.Version).
		Updates(map[string]interface{}{
			"last_invoice_number": counter.LastInvoiceNumber,
			"last_quote_number":   counter.LastQuoteNumber,
			"version":             newVersion,
			"updated_at":          counter.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	counter.Version = newVersion
	return nil
}

// Ensure GormDocumentCounterRepository implements DocumentCounterRepository
var _ invoicing.DocumentCounterRepository = (*GormDocumentCounterRepository)(nil)
