package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ledgerline/backend/internal/domain/catalog"
	"github.com/ledgerline/backend/internal/domain/shared"
)

const (
	// maxAdjustAttempts bounds the optimistic-concurrency retry loop
	maxAdjustAttempts = 3
	// adjustRetryDelay is the base backoff between retry attempts
	adjustRetryDelay = 25 * time.Millisecond
)

// Direction indicates which way a stock adjustment moves
type Direction string

const (
	// DirectionDecrease records stock leaving through a sale
	DirectionDecrease Direction = "DECREASE"
	// DirectionIncrease reverses a previous decrease (edit or delete)
	DirectionIncrease Direction = "INCREASE"
)

// Delta converts a positive quantity into the signed stock movement for
// this direction
func (d Direction) Delta(quantity decimal.Decimal) decimal.Decimal {
	if d == DirectionDecrease {
		return quantity.Neg()
	}
	return quantity
}

// StockLine is one line of a stock adjustment. Lines without a product
// reference, or whose product no longer exists, are skipped.
type StockLine struct {
	ProductID *uuid.UUID
	Quantity  decimal.Decimal
}

// TransactionScope provides transactional access to the product repository.
// All adjustments made within one Execute call commit or roll back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction. If fn returns an
	// error the transaction is rolled back.
	Execute(ctx context.Context, fn func(products catalog.ProductRepository) error) error
}

// StockAdjuster applies signed stock deltas for a set of invoice line items
// against the product catalog. All lines of one call succeed or none do;
// concurrent modification of any product aborts and retries the whole set.
type StockAdjuster struct {
	scope  TransactionScope
	logger *zap.Logger
}

// NewStockAdjuster creates a new StockAdjuster
func NewStockAdjuster(scope TransactionScope, logger *zap.Logger) *StockAdjuster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockAdjuster{scope: scope, logger: logger}
}

// Adjust applies the full line set in one atomic transaction, retrying a
// bounded number of times when a product was modified concurrently.
func (a *StockAdjuster) Adjust(ctx context.Context, tenantID uuid.UUID, lines []StockLine, direction Direction) error {
	return shared.RetryOnConflict(ctx, maxAdjustAttempts, adjustRetryDelay, func() error {
		return a.scope.Execute(ctx, func(products catalog.ProductRepository) error {
			return a.ApplyWithRepo(ctx, products, tenantID, lines, direction)
		})
	})
}

// ApplyWithRepo applies the line set through the given repository. Callers
// that already hold a transaction (the invoice lifecycle) pass their
// transaction-scoped repository so the adjustment joins their atomic unit.
func (a *StockAdjuster) ApplyWithRepo(ctx context.Context, products catalog.ProductRepository, tenantID uuid.UUID, lines []StockLine, direction Direction) error {
	for _, line := range lines {
		if line.ProductID == nil {
			continue
		}

		product, err := products.FindByIDForTenant(ctx, tenantID, *line.ProductID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				// Dangling product reference: the product was deleted
				// after the invoice was written. Not fatal.
				a.logger.Debug("skipping stock adjustment for missing product",
					zap.String("product_id", line.ProductID.String()),
				)
				continue
			}
			return err
		}

		if negative := product.ApplyStockDelta(direction.Delta(line.Quantity)); negative {
			a.logger.Warn("product stock went negative",
				zap.String("product_id", product.ID.String()),
				zap.String("product", product.Name),
				zap.String("stock", product.StockQuantity.String()),
			)
		}

		if err := products.SaveWithLock(ctx, product); err != nil {
			return err
		}
	}
	return nil
}
