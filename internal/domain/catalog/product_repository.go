package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/ledgerline/backend/internal/domain/shared"
)

// ProductRepository defines the persistence interface for products
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	// FindByIDForTenant finds a product by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)
	// FindByIDs finds multiple products by their IDs within a tenant.
	// Missing IDs are silently omitted from the result.
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Product, error)
	// FindAllForTenant finds all products for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Product, error)
	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error
	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, product *Product) error
	// Delete deletes a product within a tenant
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
