package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerline/backend/internal/domain/shared"
)

// Event types for the catalog context
const (
	EventTypeStockAdjusted = "catalog.stock_adjusted"
)

// StockAdjustedEvent is emitted when a product's stock quantity changes
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	ProductName string          `json:"product_name"`
	Delta       decimal.Decimal `json:"delta"`
	NewQuantity decimal.Decimal `json:"new_quantity"`
}

// NewStockAdjustedEvent creates a new StockAdjustedEvent
func NewStockAdjustedEvent(product *Product, delta decimal.Decimal) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdjusted, "Product", product.ID, product.TenantID),
		ProductName:     product.Name,
		Delta:           delta,
		NewQuantity:     product.StockQuantity,
	}
}
