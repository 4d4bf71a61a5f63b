package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/backend/internal/domain/shared"
)

// RecurringTemplateRepository defines the persistence interface for
// recurring templates
type RecurringTemplateRepository interface {
	// FindByIDForTenant finds a template by ID within a tenant, items included
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*RecurringTemplate, error)
	// FindDue finds templates whose NextDueDate is on or before asOf and
	// whose schedule has not ended, items included
	FindDue(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]RecurringTemplate, error)
	// FindAllForTenant finds templates for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]RecurringTemplate, error)
	// Save creates or updates a template together with its item list
	Save(ctx context.Context, template *RecurringTemplate) error
	// Delete removes a template and its items within a tenant
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	// DistinctTenantIDs returns every tenant that owns at least one template
	DistinctTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// GenerationRecordRepository defines the persistence interface for
// generation markers
type GenerationRecordRepository interface {
	// Exists reports whether a marker exists for the template period
	Exists(ctx context.Context, templateID uuid.UUID, periodEnd time.Time) (bool, error)
	// Create persists a marker. Returns shared.ErrAlreadyExists when a
	// marker for the same template period was created concurrently.
	Create(ctx context.Context, record *GenerationRecord) error
}
