package invoicing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ledgerline/backend/internal/domain/invoicing"
	"github.com/ledgerline/backend/internal/domain/shared"
)

const (
	// maxAllocateAttempts bounds the compare-and-set retry loop
	maxAllocateAttempts = 5
	// allocateRetryDelay is the base backoff between attempts
	allocateRetryDelay = 10 * time.Millisecond
)

// NumberService issues monotonically increasing, tenant-scoped document
// numbers. Allocation is a compare-and-set retry loop on the tenant's
// counter row, so two concurrent allocations can never return the same
// number; the loser of the race re-reads and takes the next value.
type NumberService struct {
	counters invoicing.DocumentCounterRepository
	logger   *zap.Logger
}

// NewNumberService creates a new NumberService
func NewNumberService(counters invoicing.DocumentCounterRepository, logger *zap.Logger) *NumberService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NumberService{counters: counters, logger: logger}
}

// Allocate returns the next formatted number in the tenant's series for the
// given document type, e.g. INV-0001 or QT-0001. A number is never handed
// out twice within a tenant; numbers allocated for operations that later
// fail are burned, not reused.
func (s *NumberService) Allocate(ctx context.Context, tenantID uuid.UUID, docType invoicing.DocumentType) (string, error) {
	if !docType.IsValid() {
		return "", shared.NewDomainError("INVALID_DOCUMENT_TYPE", "Unknown document type")
	}

	var number string
	err := shared.RetryOnConflict(ctx, maxAllocateAttempts, allocateRetryDelay, func() error {
		counter, err := s.counters.GetOrCreate(ctx, tenantID)
		if err != nil {
			return err
		}

		next, err := counter.Next(docType)
		if err != nil {
			return err
		}

		if err := s.counters.CompareAndSwap(ctx, counter); err != nil {
			s.logger.Debug("counter allocation lost race, retrying",
				zap.String("tenant_id", tenantID.String()),
				zap.String("doc_type", string(docType)),
			)
			return err
		}

		number = next
		return nil
	})
	if err != nil {
		return "", err
	}
	return number, nil
}
