package invoicing

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	inventoryapp "github.com/ledgerline/backend/internal/application/inventory"
	"github.com/ledgerline/backend/internal/domain/invoicing"
	"github.com/ledgerline/backend/internal/domain/shared"
)

const (
	// maxSaveAttempts bounds the optimistic-concurrency retry loop
	maxSaveAttempts = 3
	// saveRetryDelay is the base backoff between retry attempts
	saveRetryDelay = 25 * time.Millisecond
)

// InvoiceService coordinates the invoice lifecycle. Create and edit persist
// the invoice and its stock effect in one transaction; an edit first
// reverses the stored item set's effect and then applies the new one, so
// stock is never double-counted no matter how many times an invoice is
// edited.
type InvoiceService struct {
	scope          TransactionScope
	invoices       invoicing.InvoiceRepository
	numbers        *NumberService
	adjuster       *inventoryapp.StockAdjuster
	eventPublisher shared.EventPublisher
	validate       *validator.Validate
	logger         *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	scope TransactionScope,
	invoices invoicing.InvoiceRepository,
	numbers *NumberService,
	adjuster *inventoryapp.StockAdjuster,
	logger *zap.Logger,
) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		scope:    scope,
		invoices: invoices,
		numbers:  numbers,
		adjuster: adjuster,
		validate: validator.New(),
		logger:   logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *InvoiceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Save creates a new invoice (req.ID nil) or edits an existing one. The
// whole unit retries when a concurrent edit bumps a product or invoice
// version underneath it.
func (s *InvoiceService) Save(ctx context.Context, tenantID uuid.UUID, req SaveInvoiceRequest) (*InvoiceResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", err.Error())
	}

	var saved *invoicing.Invoice
	err := shared.RetryOnConflict(ctx, maxSaveAttempts, saveRetryDelay, func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			invoice, err := s.SaveInScope(ctx, repos, tenantID, req)
			if err != nil {
				return err
			}
			saved = invoice
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	isNew := req.ID == nil
	s.publishEvent(ctx, invoicing.NewInvoiceSavedEvent(saved, isNew))
	s.logger.Info("invoice saved",
		zap.String("tenant_id", tenantID.String()),
		zap.String("number", saved.Number),
		zap.Bool("is_new", isNew),
	)
	return ToInvoiceResponse(saved), nil
}

// SaveInScope runs the create-or-edit unit against the caller's transaction.
// The recurring billing engine uses this to write a generated invoice and
// its generation marker atomically.
func (s *InvoiceService) SaveInScope(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, req SaveInvoiceRequest) (*invoicing.Invoice, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("EMPTY_ITEMS", "An invoice must have at least one item")
	}
	if req.ID == nil {
		return s.createInScope(ctx, repos, tenantID, req)
	}
	return s.editInScope(ctx, repos, tenantID, *req.ID, req)
}

func (s *InvoiceService) createInScope(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, req SaveInvoiceRequest) (*invoicing.Invoice, error) {
	// Allocation commits outside the transaction. A rollback after this
	// point burns the number; the series stays monotonic either way.
	number, err := s.numbers.Allocate(ctx, tenantID, invoicing.DocumentTypeInvoice)
	if err != nil {
		return nil, err
	}

	invoice, err := invoicing.NewInvoice(tenantID, number, req.CustomerID, req.CustomerName, req.IssueDate, req.DueDate)
	if err != nil {
		return nil, err
	}
	for _, item := range req.Items {
		if _, err := invoice.AddItem(item.ProductID, item.ProductName, item.Quantity, item.UnitPrice); err != nil {
			return nil, err
		}
	}

	if err := repos.InvoiceRepo().Save(ctx, invoice); err != nil {
		return nil, err
	}
	if err := s.adjuster.ApplyWithRepo(ctx, repos.ProductRepo(), tenantID, stockLines(invoice.Items), inventoryapp.DirectionDecrease); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *InvoiceService) editInScope(ctx context.Context, repos TransactionalRepositories, tenantID, id uuid.UUID, req SaveInvoiceRequest) (*invoicing.Invoice, error) {
	invoice, err := repos.InvoiceRepo().FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	// Reverse the stored item set before applying the new one, so the net
	// effect of an edit is exactly the difference between the two sets.
	if err := s.adjuster.ApplyWithRepo(ctx, repos.ProductRepo(), tenantID, stockLines(invoice.Items), inventoryapp.DirectionIncrease); err != nil {
		return nil, err
	}

	if err := invoice.UpdateDetails(req.CustomerID, req.CustomerName, req.IssueDate, req.DueDate); err != nil {
		return nil, err
	}
	items := make([]invoicing.InvoiceItem, 0, len(req.Items))
	for _, input := range req.Items {
		item, err := invoicing.NewInvoiceItem(invoice.ID, input.ProductID, input.ProductName, input.Quantity, input.UnitPrice)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err := invoice.ReplaceItems(items); err != nil {
		return nil, err
	}

	// The version check catches a concurrent edit or status flip of the
	// same invoice; the whole unit then rolls back and retries.
	if err := repos.InvoiceRepo().SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}
	if err := s.adjuster.ApplyWithRepo(ctx, repos.ProductRepo(), tenantID, stockLines(invoice.Items), inventoryapp.DirectionDecrease); err != nil {
		return nil, err
	}
	return invoice, nil
}

// Delete removes an invoice and returns its items to stock in one
// transaction
func (s *InvoiceService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	var deleted *invoicing.Invoice
	err := shared.RetryOnConflict(ctx, maxSaveAttempts, saveRetryDelay, func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			invoice, err := repos.InvoiceRepo().FindByIDForTenant(ctx, tenantID, id)
			if err != nil {
				return err
			}
			if err := s.adjuster.ApplyWithRepo(ctx, repos.ProductRepo(), tenantID, stockLines(invoice.Items), inventoryapp.DirectionIncrease); err != nil {
				return err
			}
			if err := repos.InvoiceRepo().Delete(ctx, tenantID, id); err != nil {
				return err
			}
			deleted = invoice
			return nil
		})
	})
	if err != nil {
		return err
	}

	s.publishEvent(ctx, invoicing.NewInvoiceDeletedEvent(deleted))
	s.logger.Info("invoice deleted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("number", deleted.Number),
	)
	return nil
}

// GetByID retrieves an invoice by ID within a tenant
func (s *InvoiceService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoices.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return ToInvoiceResponse(invoice), nil
}

// List retrieves the tenant's invoices with filtering and paging
func (s *InvoiceService) List(ctx context.Context, tenantID uuid.UUID, req ListInvoicesRequest) ([]InvoiceResponse, int64, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, 0, shared.NewDomainError("VALIDATION_ERROR", err.Error())
	}

	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.Status != "" {
		filter.Filters["status"] = req.Status
	}
	if req.CustomerID != nil {
		filter.Filters["customer_id"] = *req.CustomerID
	}

	invoices, err := s.invoices.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.invoices.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		responses = append(responses, *ToInvoiceResponse(&invoices[i]))
	}
	return responses, total, nil
}

func (s *InvoiceService) publishEvent(ctx context.Context, event shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish domain event",
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	}
}

func stockLines(items []invoicing.InvoiceItem) []inventoryapp.StockLine {
	lines := make([]inventoryapp.StockLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, inventoryapp.StockLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return lines
}
