package finance

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	invoicingapp "github.com/ledgerline/backend/internal/application/invoicing"
	"github.com/ledgerline/backend/internal/domain/finance"
	"github.com/ledgerline/backend/internal/domain/invoicing"
	"github.com/ledgerline/backend/internal/domain/shared"
)

const (
	// maxReconcileAttempts bounds the optimistic-concurrency retry loop
	maxReconcileAttempts = 3
	// reconcileRetryDelay is the base backoff between retry attempts
	reconcileRetryDelay = 25 * time.Millisecond
)

// PaymentService records payments and reconciles them against invoices.
// When a payment references an invoice, recording it and any resulting
// status flip commit in one transaction, so the invoice can never show PAID
// without the covering payments being visible.
type PaymentService struct {
	scope          invoicingapp.TransactionScope
	payments       finance.PaymentRepository
	eventPublisher shared.EventPublisher
	validate       *validator.Validate
	logger         *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(scope invoicingapp.TransactionScope, payments finance.PaymentRepository, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		scope:    scope,
		payments: payments,
		validate: validator.New(),
		logger:   logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// RecordPayment persists a payment and, when it references an invoice,
// flips the invoice to PAID once cumulative payments reach its total.
// Partial payments leave the invoice due; payments against a paid or
// cancelled invoice are recorded without touching the status.
func (s *PaymentService) RecordPayment(ctx context.Context, tenantID uuid.UUID, req RecordPaymentRequest) (*PaymentResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", err.Error())
	}

	payment, err := finance.NewPayment(tenantID, req.CustomerID, req.InvoiceID, req.Amount, req.Date)
	if err != nil {
		return nil, err
	}

	settled := false
	err = shared.RetryOnConflict(ctx, maxReconcileAttempts, reconcileRetryDelay, func() error {
		settled = false
		return s.scope.Execute(ctx, func(repos invoicingapp.TransactionalRepositories) error {
			if err := repos.PaymentRepo().Create(ctx, payment); err != nil {
				return err
			}
			if req.InvoiceID == nil {
				return nil
			}
			flipped, err := s.reconcile(ctx, repos, tenantID, *req.InvoiceID)
			if err != nil {
				return err
			}
			settled = flipped
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, finance.NewPaymentRecordedEvent(payment))
	s.logger.Info("payment recorded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("payment_id", payment.ID.String()),
		zap.String("amount", payment.Amount.String()),
		zap.Bool("invoice_settled", settled),
	)
	return ToPaymentResponse(payment, settled), nil
}

// reconcile compares cumulative payments against the invoice total and flips
// the status when covered. Returns true when the flip happened in this call.
func (s *PaymentService) reconcile(ctx context.Context, repos invoicingapp.TransactionalRepositories, tenantID, invoiceID uuid.UUID) (bool, error) {
	invoice, err := repos.InvoiceRepo().FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return false, err
	}
	if invoice.Status != invoicing.InvoiceStatusDue {
		return false, nil
	}

	paid, err := repos.PaymentRepo().SumByInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return false, err
	}
	if paid.LessThan(invoice.Total) {
		return false, nil
	}

	if paid.GreaterThan(invoice.Total) {
		s.logger.Warn("invoice overpaid",
			zap.String("tenant_id", tenantID.String()),
			zap.String("number", invoice.Number),
			zap.String("total", invoice.Total.String()),
			zap.String("paid", paid.String()),
		)
	}

	if err := invoice.MarkPaid(); err != nil {
		return false, err
	}
	if err := repos.InvoiceRepo().SaveWithLock(ctx, invoice); err != nil {
		return false, err
	}
	s.publishInvoiceEvents(ctx, invoice)
	return true, nil
}

// ListByInvoice returns every payment referencing the invoice
func (s *PaymentService) ListByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]PaymentResponse, error) {
	payments, err := s.payments.FindByInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	responses := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, *ToPaymentResponse(&payments[i], false))
	}
	return responses, nil
}

// GetByID retrieves a payment by ID within a tenant
func (s *PaymentService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.payments.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return ToPaymentResponse(payment, false), nil
}

func (s *PaymentService) publishInvoiceEvents(ctx context.Context, invoice *invoicing.Invoice) {
	if s.eventPublisher == nil {
		invoice.ClearDomainEvents()
		return
	}
	for _, event := range invoice.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err),
			)
		}
	}
	invoice.ClearDomainEvents()
}

func (s *PaymentService) publishEvent(ctx context.Context, event shared.DomainEvent) {
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
