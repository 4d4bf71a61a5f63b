package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ledgerline/backend/internal/domain/billing"
	"github.com/ledgerline/backend/internal/domain/shared"
)

// GormGenerationRecordRepository implements GenerationRecordRepository using GORM
type GormGenerationRecordRepository struct {
	db *gorm.DB
}

// NewGormGenerationRecordRepository creates a new GormGenerationRecordRepository
func NewGormGenerationRecordRepository(db *gorm.DB) *GormGenerationRecordRepository {
	return &GormGenerationRecordRepository{db: db}
}

// Exists reports whether a marker exists for the template period
func (r *GormGenerationRecordRepository) Exists(ctx context.Context, templateID uuid.UUID, periodEnd time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&billing.GenerationRecord{}).
		Where("template_id = ? AND period_end = ?", templateID, periodEnd).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create persists a marker. The unique index on (template_id, period_end)
// turns a concurrent duplicate into shared.ErrAlreadyExists.
func (r *GormGenerationRecordRepository) Create(ctx context.Context, record *billing.GenerationRecord) error {
	err := r.db.WithContext(ctx).Create(record).Error
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
		return shared.ErrAlreadyExists
	}
	return err
}

// isUniqueViolation detects unique-constraint errors from drivers that do
// not translate them into gorm.ErrDuplicatedKey
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

// Ensure GormGenerationRecordRepository implements GenerationRecordRepository
var _ billing.GenerationRecordRepository = (*GormGenerationRecordRepository)(nil)
