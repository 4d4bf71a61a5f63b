package finance

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ledgerline/backend/internal/domain/finance"
	"github.com/ledgerline/backend/internal/domain/shared"
)

// ReportCache caches computed cash-flow reports per tenant. Implementations
// are free to evict at any time; the service recomputes on a miss.
type ReportCache interface {
	// Get returns the cached report for the key, if present
	Get(ctx context.Context, key string) (*finance.CashFlowReport, bool)
	// Set stores the report under the key
	Set(ctx context.Context, key string, report *finance.CashFlowReport)
	// InvalidateTenant drops every cached report for the tenant
	InvalidateTenant(ctx context.Context, tenantID uuid.UUID)
}

// CashFlowService derives the cash-flow statement from ledger entries. Every
// cash movement in the range lands in exactly one of the operating,
// investing or financing buckets, or is counted as unclassified.
type CashFlowService struct {
	ledger   finance.LedgerEntryRepository
	payments finance.PaymentRepository
	rules    *finance.RuleTable
	cache    ReportCache
	validate *validator.Validate
	logger   *zap.Logger
}

// NewCashFlowService creates a new CashFlowService. A nil rule table falls
// back to the default classification table.
func NewCashFlowService(
	ledger finance.LedgerEntryRepository,
	payments finance.PaymentRepository,
	rules *finance.RuleTable,
	cache ReportCache,
	logger *zap.Logger,
) *CashFlowService {
	if rules == nil {
		rules = finance.DefaultRuleTable()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CashFlowService{
		ledger:   ledger,
		payments: payments,
		rules:    rules,
		cache:    cache,
		validate: validator.New(),
		logger:   logger,
	}
}

// Report computes the cash-flow statement for [req.Start, req.End]. Opening
// cash is the net movement on cash-like accounts before the range start.
// When the tenant has no ledger entries in the range at all, raw payments
// stand in as operating inflows so young tenants still get a usable report.
func (s *CashFlowService) Report(ctx context.Context, tenantID uuid.UUID, req CashFlowRequest) (*finance.CashFlowReport, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", err.Error())
	}
	if req.End.Before(req.Start) {
		return nil, shared.NewDomainError("INVALID_RANGE", "Range end cannot precede range start")
	}

	key := reportCacheKey(tenantID, req)
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, key); ok {
			return cached, nil
		}
	}

	report := &finance.CashFlowReport{Start: req.Start, End: req.End}

	opening, err := s.ledger.SumCashMovementBefore(ctx, tenantID, req.Start, s.rules.CashPatterns())
	if err != nil {
		return nil, err
	}
	report.OpeningCash = opening

	count, err := s.ledger.CountInRange(ctx, tenantID, req.Start, req.End)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		if err := s.addPaymentFallback(ctx, tenantID, req, report); err != nil {
			return nil, err
		}
	} else {
		entries, err := s.ledger.FindByDateRange(ctx, tenantID, req.Start, req.End)
		if err != nil {
			return nil, err
		}
		for i := range entries {
			entry := &entries[i]
			// Every entry touching a cash-like account is classified, even
			// when its cash lines net to zero.
			if !s.rules.HasCashLine(entry) {
				continue
			}
			report.Add(s.rules.Classify(entry), s.rules.CashMovement(entry))
		}
	}

	report.Finalize()

	if report.UnclassifiedCount > 0 {
		s.logger.Debug("cash flow report has unclassified movements",
			zap.String("tenant_id", tenantID.String()),
			zap.Int("count", report.UnclassifiedCount),
		)
	}
	if s.cache != nil {
		s.cache.Set(ctx, key, report)
	}
	return report, nil
}

// addPaymentFallback folds raw payments into the operating bucket. Used only
// when the range holds no ledger entries.
func (s *CashFlowService) addPaymentFallback(ctx context.Context, tenantID uuid.UUID, req CashFlowRequest, report *finance.CashFlowReport) error {
	payments, err := s.payments.FindByDateRange(ctx, tenantID, req.Start, req.End)
	if err != nil {
		return err
	}
	for i := range payments {
		report.Add(finance.BucketOperating, payments[i].Amount)
	}
	return nil
}

func reportCacheKey(tenantID uuid.UUID, req CashFlowRequest) string {
	return fmt.Sprintf("cashflow:%s:%s:%s",
		tenantID.String(),
		req.Start.Format("2006-01-02"),
		req.End.Format("2006-01-02"),
	)
}
