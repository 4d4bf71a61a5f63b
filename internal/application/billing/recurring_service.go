package billing

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	invoicingapp "github.com/ledgerline/backend/internal/application/invoicing"
	"github.com/ledgerline/backend/internal/domain/billing"
	"github.com/ledgerline/backend/internal/domain/invoicing"
	"github.com/ledgerline/backend/internal/domain/shared"
)

// RecurringService generates invoices from recurring templates. Each due
// template yields one invoice per period; the generated invoice and its
// generation marker commit in one transaction, and the template's schedule
// advances only after that commit, so neither a crash nor a concurrent run
// can bill a period twice.
type RecurringService struct {
	scope          invoicingapp.TransactionScope
	templates      billing.RecurringTemplateRepository
	generations    billing.GenerationRecordRepository
	invoiceService *invoicingapp.InvoiceService
	eventPublisher shared.EventPublisher
	validate       *validator.Validate
	logger         *zap.Logger
}

// NewRecurringService creates a new RecurringService
func NewRecurringService(
	scope invoicingapp.TransactionScope,
	templates billing.RecurringTemplateRepository,
	generations billing.GenerationRecordRepository,
	invoiceService *invoicingapp.InvoiceService,
	logger *zap.Logger,
) *RecurringService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecurringService{
		scope:          scope,
		templates:      templates,
		generations:    generations,
		invoiceService: invoiceService,
		validate:       validator.New(),
		logger:         logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *RecurringService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateTemplate creates a recurring template
func (s *RecurringService) CreateTemplate(ctx context.Context, tenantID uuid.UUID, req CreateTemplateRequest) (*TemplateResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", err.Error())
	}

	template, err := billing.NewRecurringTemplate(tenantID, req.CustomerID, req.CustomerName, billing.Frequency(req.Frequency), req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	for _, item := range req.Items {
		if _, err := template.AddItem(item.ProductID, item.ProductName, item.Quantity, item.UnitPrice); err != nil {
			return nil, err
		}
	}

	if err := s.templates.Save(ctx, template); err != nil {
		return nil, err
	}
	s.logger.Info("recurring template created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("template_id", template.ID.String()),
		zap.String("frequency", string(template.Frequency)),
	)
	return ToTemplateResponse(template), nil
}

// GetTemplate retrieves a template by ID within a tenant
func (s *RecurringService) GetTemplate(ctx context.Context, tenantID, id uuid.UUID) (*TemplateResponse, error) {
	template, err := s.templates.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return ToTemplateResponse(template), nil
}

// ListTemplates retrieves the tenant's templates
func (s *RecurringService) ListTemplates(ctx context.Context, tenantID uuid.UUID) ([]TemplateResponse, error) {
	templates, err := s.templates.FindAllForTenant(ctx, tenantID, shared.DefaultFilter())
	if err != nil {
		return nil, err
	}
	responses := make([]TemplateResponse, 0, len(templates))
	for i := range templates {
		responses = append(responses, *ToTemplateResponse(&templates[i]))
	}
	return responses, nil
}

// DeleteTemplate removes a template. Invoices it already generated are kept.
func (s *RecurringService) DeleteTemplate(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.templates.Delete(ctx, tenantID, id)
}

// GenerateDue runs one generation pass for the tenant as of the given date.
// Each due template is advanced by exactly one period; callers that need a
// full catch-up run it repeatedly until Generated and Skipped are both zero.
// A failing template is reported in the result and never stops the rest.
func (s *RecurringService) GenerateDue(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (*GenerationResult, error) {
	due, err := s.templates.FindDue(ctx, tenantID, asOf)
	if err != nil {
		return nil, err
	}

	result := &GenerationResult{Errors: make([]TemplateError, 0)}
	for i := range due {
		generated, err := s.generateOne(ctx, tenantID, &due[i])
		// A generated invoice is durable even when a later step failed, so
		// it counts regardless of the error.
		if generated {
			result.Generated++
		}
		if err != nil {
			s.logger.Error("template generation failed",
				zap.String("tenant_id", tenantID.String()),
				zap.String("template_id", due[i].ID.String()),
				zap.Error(err),
			)
			result.Errors = append(result.Errors, TemplateError{
				TemplateID: due[i].ID,
				Message:    err.Error(),
			})
			continue
		}
		if !generated {
			result.Skipped++
		}
	}
	return result, nil
}

// generateOne bills the template's current period. Returns false when the
// period's marker already exists, which happens after a crash between
// invoice creation and template advancement: the schedule is then repaired
// by advancing without billing again.
func (s *RecurringService) generateOne(ctx context.Context, tenantID uuid.UUID, template *billing.RecurringTemplate) (bool, error) {
	periodEnd := template.NextDueDate

	exists, err := s.generations.Exists(ctx, template.ID, periodEnd)
	if err != nil {
		return false, err
	}
	if exists {
		return false, s.advance(ctx, template)
	}

	var invoice *invoicing.Invoice
	err = s.scope.Execute(ctx, func(repos invoicingapp.TransactionalRepositories) error {
		created, err := s.invoiceService.SaveInScope(ctx, repos, tenantID, templateToInvoiceRequest(template, periodEnd))
		if err != nil {
			return err
		}
		record := billing.NewGenerationRecord(tenantID, template.ID, created.ID, periodEnd)
		if err := repos.GenerationRecordRepo().Create(ctx, record); err != nil {
			return err
		}
		invoice = created
		return nil
	})
	if err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			// A concurrent run billed this period first. The transaction
			// rolled back, so nothing was double-created.
			return false, s.advance(ctx, template)
		}
		return false, err
	}

	s.publishEvent(ctx, invoicing.NewInvoiceSavedEvent(invoice, true))
	s.logger.Info("recurring invoice generated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("template_id", template.ID.String()),
		zap.String("number", invoice.Number),
		zap.Time("period_end", periodEnd),
	)

	if err := s.advance(ctx, template); err != nil {
		// The invoice and marker are durable; the next run detects the
		// marker and repairs the schedule without billing again.
		return true, err
	}
	return true, nil
}

func (s *RecurringService) advance(ctx context.Context, template *billing.RecurringTemplate) error {
	template.Advance()
	return s.templates.Save(ctx, template)
}

func (s *RecurringService) publishEvent(ctx context.Context, event shared.DomainEvent) {
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

func templateToInvoiceRequest(template *billing.RecurringTemplate, periodEnd time.Time) invoicingapp.SaveInvoiceRequest {
	items := make([]invoicingapp.InvoiceItemInput, 0, len(template.Items))
	for _, item := range template.Items {
		items = append(items, invoicingapp.InvoiceItemInput{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return invoicingapp.SaveInvoiceRequest{
		CustomerID:   template.CustomerID,
		CustomerName: template.CustomerName,
		IssueDate:    periodEnd,
		DueDate:      template.Frequency.NextAfter(periodEnd),
		Items:        items,
	}
}
