package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ledgerline/backend/internal/domain/billing"
	"github.com/ledgerline/backend/internal/domain/shared"
)

// GormRecurringTemplateRepository implements RecurringTemplateRepository using GORM
type GormRecurringTemplateRepository struct {
	db *gorm.DB
}

// NewGormRecurringTemplateRepository creates a new GormRecurringTemplateRepository
func NewGormRecurringTemplateRepository(db *gorm.DB) *GormRecurringTemplateRepository {
	return &GormRecurringTemplateRepository{db: db}
}

// FindByIDForTenant finds a template by ID within a tenant, items included
func (r *GormRecurringTemplateRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.RecurringTemplate, error) {
	var template billing.RecurringTemplate
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&template).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &template, nil
}

// FindDue finds templates whose NextDueDate is on or before asOf and whose
// schedule has not ended, items included
func (r *GormRecurringTemplateRepository) FindDue(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]billing.RecurringTemplate, error) {
	var templates []billing.RecurringTemplate
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("tenant_id = ? AND next_due_date <= ? AND (end_date IS NULL OR end_date >= ?)", tenantID, asOf, asOf).
		Order("next_due_date asc").
		Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

// FindAllForTenant finds templates for a tenant with filtering
func (r *GormRecurringTemplateRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]billing.RecurringTemplate, error) {
	var templates []billing.RecurringTemplate
	query := applyFilter(
		r.db.WithContext(ctx).Model(&billing.RecurringTemplate{}).Preload("Items").
			Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

// Save creates or updates a template together with its item list
func (r *GormRecurringTemplateRepository) Save(ctx context.Context, template *billing.RecurringTemplate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(template).Error; err != nil {
			return err
		}

		currentItemIDs := make([]uuid.UUID, len(template.Items))
		for i, item := range template.Items {
			currentItemIDs[i] = item.ID
		}

		if len(currentItemIDs) > 0 {
			if err := tx.Where("template_id = ? AND id NOT IN ?", template.ID, currentItemIDs).
				Delete(&billing.TemplateItem{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("template_id = ?", template.ID).
				Delete(&billing.TemplateItem{}).Error; err != nil {
				return err
			}
		}

		for i := range template.Items {
			template.Items[i].TemplateID = template.ID
			if err := tx.Save(&template.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a template and its items within a tenant
func (r *GormRecurringTemplateRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("tenant_id = ? AND id = ?", tenantID, id).
			Delete(&billing.RecurringTemplate{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return tx.Where("template_id = ?", id).
			Delete(&billing.TemplateItem{}).Error
	})
}

// DistinctTenantIDs returns every tenant that owns at least one template
func (r *GormRecurringTemplateRepository) DistinctTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&billing.RecurringTemplate{}).
		Distinct("tenant_id").
		Pluck("tenant_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Ensure GormRecurringTemplateRepository implements RecurringTemplateRepository
var _ billing.RecurringTemplateRepository = (*GormRecurringTemplateRepository)(nil)
