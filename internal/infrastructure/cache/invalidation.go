package cache

import (
	"context"

	"go.uber.org/zap"

	appfinance "github.com/ledgerline/backend/internal/application/finance"
	"github.com/ledgerline/backend/internal/domain/finance"
	"github.com/ledgerline/backend/internal/domain/invoicing"
	"github.com/ledgerline/backend/internal/domain/shared"
)

// ReportInvalidationHandler drops a tenant's cached cash-flow reports when
// an event changes the numbers behind them
type ReportInvalidationHandler struct {
	cache  appfinance.ReportCache
	logger *zap.Logger
}

// NewReportInvalidationHandler creates a new ReportInvalidationHandler
func NewReportInvalidationHandler(cache appfinance.ReportCache, logger *zap.Logger) *ReportInvalidationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportInvalidationHandler{cache: cache, logger: logger}
}

// Handle invalidates the tenant's cached reports
func (h *ReportInvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.cache.InvalidateTenant(ctx, event.TenantID())
	h.logger.Debug("report cache invalidated",
		zap.String("tenant_id", event.TenantID().String()),
		zap.String("event_type", event.EventType()),
	)
	return nil
}

// EventTypes returns the events that change reported cash flows
func (h *ReportInvalidationHandler) EventTypes() []string {
	return []string{
		invoicing.EventTypeInvoiceSaved,
		invoicing.EventTypeInvoiceDeleted,
		invoicing.EventTypeInvoicePaid,
		finance.EventTypePaymentRecorded,
	}
}

// Ensure ReportInvalidationHandler implements EventHandler
var _ shared.EventHandler = (*ReportInvalidationHandler)(nil)
