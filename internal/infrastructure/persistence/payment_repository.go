package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ledgerline/backend/internal/domain/finance"
	"github.com/ledgerline/backend/internal/domain/shared"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByIDForTenant finds a payment by ID within a tenant
func (r *GormPaymentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Payment, error) {
	var payment finance.Payment
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// FindByInvoice finds every payment referencing the invoice
func (r *GormPaymentRepository) FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]finance.Payment, error) {
	var payments []finance.Payment
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND invoice_id = ?", tenantID, invoiceID).
		Order("date asc").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindByDateRange finds payments dated within [start, end]
func (r *GormPaymentRepository) FindByDateRange(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]finance.Payment, error) {
	var payments []finance.Payment
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND date >= ? AND date <= ?", tenantID, start, end).
		Order("date asc").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindAllForTenant finds payments for a tenant with filtering
func (r *GormPaymentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]finance.Payment, error) {
	var payments []finance.Payment
	query := applyFilter(
		r.db.WithContext(ctx).Model(&finance.Payment{}).
			Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// SumByInvoice sums every payment referencing the invoice
func (r *GormPaymentRepository) SumByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	if err := r.db.WithContext(ctx).Model(&finance.Payment{}).
		Where("tenant_id = ? AND invoice_id = ?", tenantID, invoiceID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error; err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// Create persists a new payment. Payments are never updated.
func (r *GormPaymentRepository) Create(ctx context.Context, payment *finance.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ finance.PaymentRepository = (*GormPaymentRepository)(nil)
