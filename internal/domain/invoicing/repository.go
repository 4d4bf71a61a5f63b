package invoicing

import (
	"context"

	"github.com/google/uuid"

	"github.com/ledgerline/backend/internal/domain/shared"
)

// InvoiceRepository defines the persistence interface for invoices
type InvoiceRepository interface {
	// FindByID finds an invoice by its ID, items included
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	// FindByIDForTenant finds an invoice by ID within a tenant, items included
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	// FindByNumber finds an invoice by document number within a tenant
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*Invoice, error)
	// FindAllForTenant finds invoices for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Invoice, error)
	// Save creates or updates an invoice together with its item list
	Save(ctx context.Context, invoice *Invoice) error
	// SaveWithLock updates invoice header fields with an optimistic version check
	SaveWithLock(ctx context.Context, invoice *Invoice) error
	// Delete removes an invoice and its items within a tenant
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	// CountForTenant counts invoices for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}

// DocumentCounterRepository defines the persistence interface for the
// per-tenant document counter
type DocumentCounterRepository interface {
	// GetOrCreate returns the tenant's counter, creating it on first use
	GetOrCreate(ctx context.Context, tenantID uuid.UUID) (*DocumentCounter, error)
	// CompareAndSwap persists the counter only if the stored version still
	// matches the version it was read at. Returns
	// shared.ErrConcurrencyConflict when another allocation won the race.
	CompareAndSwap(ctx context.Context, counter *DocumentCounter) error
}
