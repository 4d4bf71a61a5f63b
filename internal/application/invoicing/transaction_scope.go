package invoicing

import (
	"context"

	"github.com/ledgerline/backend/internal/domain/billing"
	"github.com/ledgerline/backend/internal/domain/catalog"
	"github.com/ledgerline/backend/internal/domain/finance"
	"github.com/ledgerline/backend/internal/domain/invoicing"
)

// TransactionScope provides transactional access to the repositories the
// invoice lifecycle touches. Everything executed within one Execute call is
// committed or rolled back atomically: in particular, reversing a stored
// invoice's stock effect and applying the new one are never visible apart.
type TransactionScope interface {
	// Execute runs fn within a database transaction. If fn returns an
	// error the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to repositories sharing one
// underlying database transaction.
type TransactionalRepositories interface {
	// ProductRepo returns the product repository scoped to the transaction
	ProductRepo() catalog.ProductRepository
	// InvoiceRepo returns the invoice repository scoped to the transaction
	InvoiceRepo() invoicing.InvoiceRepository
	// PaymentRepo returns the payment repository scoped to the transaction
	PaymentRepo() finance.PaymentRepository
	// TemplateRepo returns the recurring template repository scoped to the transaction
	TemplateRepo() billing.RecurringTemplateRepository
	// GenerationRecordRepo returns the generation marker repository scoped to the transaction
	GenerationRecordRepo() billing.GenerationRecordRepository
}
