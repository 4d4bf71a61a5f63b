package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	appbilling "github.com/ledgerline/backend/internal/application/billing"
	"github.com/ledgerline/backend/internal/domain/billing"
	"github.com/ledgerline/backend/internal/infrastructure/config"
)

// maxCatchUpPasses bounds how many one-period steps a single run takes per
// tenant, so a template with a far-behind schedule cannot stall the pass
const maxCatchUpPasses = 24

// RecurringBillingScheduler periodically runs the recurring generation pass
// for every tenant that owns templates. Each pass repeats the per-tenant run
// until nothing is due, so far-behind schedules catch up one period at a time.
type RecurringBillingScheduler struct {
	service   *appbilling.RecurringService
	templates billing.RecurringTemplateRepository
	cfg       config.SchedulerConfig
	logger    *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}
}

// NewRecurringBillingScheduler creates a new RecurringBillingScheduler
func NewRecurringBillingScheduler(
	service *appbilling.RecurringService,
	templates billing.RecurringTemplateRepository,
	cfg config.SchedulerConfig,
	logger *zap.Logger,
) *RecurringBillingScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecurringBillingScheduler{
		service:   service,
		templates: templates,
		cfg:       cfg,
		logger:    logger,
	}
}

// Start launches the scheduling loop. It returns immediately; the loop runs
// until Stop is called or the context is cancelled.
func (s *RecurringBillingScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.stopped = make(chan struct{})

	go s.loop(runCtx)
	s.logger.Info("recurring billing scheduler started",
		zap.Duration("interval", s.cfg.Interval),
	)
}

// Stop terminates the scheduling loop and waits for an in-flight pass to end
func (s *RecurringBillingScheduler) Stop() {
	s.mu.Lock()
	cancel, stopped := s.cancel, s.stopped
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-stopped
	s.logger.Info("recurring billing scheduler stopped")
}

func (s *RecurringBillingScheduler) loop(ctx context.Context) {
	defer close(s.stopped)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	// An immediate first pass catches schedules that came due while the
	// process was down.
	s.runPass(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runPass(ctx)
		}
	}
}

// runPass generates due invoices for every tenant with templates
func (s *RecurringBillingScheduler) runPass(ctx context.Context) {
	passCtx, cancel := context.WithTimeout(ctx, s.cfg.JobTimeout)
	defer cancel()

	tenantIDs, err := s.templates.DistinctTenantIDs(passCtx)
	if err != nil {
		s.logger.Error("failed to list tenants for billing pass", zap.Error(err))
		return
	}

	now := time.Now()
	for _, tenantID := range tenantIDs {
		if passCtx.Err() != nil {
			s.logger.Warn("billing pass timed out before finishing all tenants")
			return
		}

		generated, skipped := 0, 0
		for pass := 0; pass < maxCatchUpPasses; pass++ {
			result, err := s.service.GenerateDue(passCtx, tenantID, now)
			if err != nil {
				s.logger.Error("billing pass failed for tenant",
					zap.String("tenant_id", tenantID.String()),
					zap.Error(err),
				)
				break
			}
			generated += result.Generated
			skipped += result.Skipped
			for _, templateErr := range result.Errors {
				s.logger.Warn("template failed during billing pass",
					zap.String("tenant_id", tenantID.String()),
					zap.String("template_id", templateErr.TemplateID.String()),
					zap.String("message", templateErr.Message),
				)
			}
			if result.Generated == 0 && result.Skipped == 0 {
				break
			}
		}

		if generated > 0 || skipped > 0 {
			s.logger.Info("billing pass completed for tenant",
				zap.String("tenant_id", tenantID.String()),
				zap.Int("generated", generated),
				zap.Int("skipped", skipped),
			)
		}
	}
}
