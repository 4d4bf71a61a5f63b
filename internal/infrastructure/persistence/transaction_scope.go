package persistence

import (
	"context"

	"gorm.io/gorm"

	inventoryapp "github.com/ledgerline/backend/internal/application/inventory"
	invoicingapp "github.com/ledgerline/backend/internal/application/invoicing"
	"github.com/ledgerline/backend/internal/domain/billing"
	"github.com/ledgerline/backend/internal/domain/catalog"
	"github.com/ledgerline/backend/internal/domain/finance"
	"github.com/ledgerline/backend/internal/domain/invoicing"
)

// GormTransactionScope implements the invoicing TransactionScope using GORM
// transactions. Every repository handed to the callback shares one
// transaction, so the invoice lifecycle's multi-aggregate units commit or
// roll back as a whole.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos invoicingapp.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// ProductRepo returns the product repository scoped to the current transaction
func (r *gormTransactionalRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// InvoiceRepo returns the invoice repository scoped to the current transaction
func (r *gormTransactionalRepositories) InvoiceRepo() invoicing.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

// PaymentRepo returns the payment repository scoped to the current transaction
func (r *gormTransactionalRepositories) PaymentRepo() finance.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

// TemplateRepo returns the recurring template repository scoped to the current transaction
func (r *gormTransactionalRepositories) TemplateRepo() billing.RecurringTemplateRepository {
	return NewGormRecurringTemplateRepository(r.tx)
}

// GenerationRecordRepo returns the generation marker repository scoped to the current transaction
func (r *gormTransactionalRepositories) GenerationRecordRepo() billing.GenerationRecordRepository {
	return NewGormGenerationRecordRepository(r.tx)
}

// GormInventoryScope implements the narrow stock-adjustment scope used by
// the stock adjuster when invoked outside the invoice lifecycle
type GormInventoryScope struct {
	db *gorm.DB
}

// NewGormInventoryScope creates a new GormInventoryScope
func NewGormInventoryScope(db *gorm.DB) *GormInventoryScope {
	return &GormInventoryScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormInventoryScope) Execute(ctx context.Context, fn func(products catalog.ProductRepository) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormProductRepository(tx))
	})
}

// Ensure the scopes implement their application interfaces
var (
	_ invoicingapp.TransactionScope          = (*GormTransactionScope)(nil)
	_ invoicingapp.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
	_ inventoryapp.TransactionScope          = (*GormInventoryScope)(nil)
)
