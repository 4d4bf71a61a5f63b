package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ledgerline/backend/internal/domain/invoicing"
	"github.com/ledgerline/backend/internal/domain/shared"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID, items included
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	var invoice invoicing.Invoice
	if err := r.db.WithContext(ctx).Preload("Items").
		First(&invoice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByIDForTenant finds an invoice by ID within a tenant, items included
func (r *GormInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*invoicing.Invoice, error) {
	var invoice invoicing.Invoice
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByNumber finds an invoice by document number within a tenant
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*invoicing.Invoice, error) {
	var invoice invoicing.Invoice
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("tenant_id = ? AND number = ?", tenantID, number).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindAllForTenant finds invoices for a tenant with filtering
func (r *GormInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]invoicing.Invoice, error) {
	var invoices []invoicing.Invoice
	query := applyFilter(
		r.db.WithContext(ctx).Model(&invoicing.Invoice{}).Preload("Items").
			Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// Save creates or updates an invoice together with its item list. Items no
// longer on the invoice are deleted, remaining ones upserted.
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *invoicing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(invoice).Error; err != nil {
			return err
		}
		return saveItems(tx, invoice)
	})
}

// SaveWithLock saves with optimistic locking. The stored version must still
// match the version the invoice was read at; otherwise the write is
// rejected with shared.ErrConcurrencyConflict and nothing is modified.
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *invoicing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		newVersion := invoice.Version + 1
		invoice.UpdatedAt = time.Now()

		result := tx.Model(&invoicing.Invoice{}).
			Where("id = ? AND version = ?", invoice.ID, invoice.Version).
			Updates(map[string]interface{}{
				"customer_id":   invoice.CustomerID,
				"customer_name": invoice.CustomerName,
				"issue_date":    invoice.IssueDate,
				"due_date":      invoice.DueDate,
				"subtotal":      invoice.Subtotal,
				"total":         invoice.Total,
				"status":        invoice.Status,
				"version":       newVersion,
				"updated_at":    invoice.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		invoice.Version = newVersion

		return saveItems(tx, invoice)
	})
}

// Delete removes an invoice and its items within a tenant
func (r *GormInvoiceRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("tenant_id = ? AND id = ?", tenantID, id).
			Delete(&invoicing.Invoice{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return tx.Where("invoice_id = ?", id).
			Delete(&invoicing.InvoiceItem{}).Error
	})
}

// CountForTenant counts invoices for a tenant
func (r *GormInvoiceRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := applyFieldFilters(
		r.db.WithContext(ctx).Model(&invoicing.Invoice{}).
			Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// saveItems deletes removed items and upserts the current item list
func saveItems(tx *gorm.DB, invoice *invoicing.Invoice) error {
	currentItemIDs := make([]uuid.UUID, len(invoice.Items))
	for i, item := range invoice.Items {
		currentItemIDs[i] = item.ID
	}

	if len(currentItemIDs) > 0 {
		if err := tx.Where("invoice_id = ? AND id NOT IN ?", invoice.ID, currentItemIDs).
			Delete(&invoicing.InvoiceItem{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("invoice_id = ?", invoice.ID).
			Delete(&invoicing.InvoiceItem{}).Error; err != nil {
			return err
		}
	}

	for i := range invoice.Items {
		invoice.Items[i].InvoiceID = invoice.ID
		if err := tx.Save(&invoice.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ invoicing.InvoiceRepository = (*GormInvoiceRepository)(nil)
