package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/backend/internal/domain/shared"
)

// Product represents a sellable product in the tenant's catalog.
// It is the aggregate root for stock operations: StockQuantity is mutated
// exclusively through invoice lifecycle events, guarded by the version field.
type Product struct {
	shared.TenantAggregateRoot
	Name          string          `gorm:"type:varchar(255);not null"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	StockQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(tenantID uuid.UUID, name string, unitPrice, stockQuantity decimal.Decimal) (*Product, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	return &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		UnitPrice:           unitPrice,
		StockQuantity:       stockQuantity,
	}, nil
}

// ApplyStockDelta applies a signed stock movement. A negative delta records
// stock leaving through a sale, a positive delta records a reversal or return.
// The resulting quantity may go below zero; callers decide how to surface that.
// Returns true when the new quantity is negative.
func (p *Product) ApplyStockDelta(delta decimal.Decimal) bool {
	p.StockQuantity = p.StockQuantity.Add(delta)
	p.UpdatedAt = time.Now()

	p.AddDomainEvent(NewStockAdjustedEvent(p, delta))

	return p.StockQuantity.IsNegative()
}

// SetUnitPrice updates the catalog price
func (p *Product) SetUnitPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	p.UnitPrice = price
	p.UpdatedAt = time.Now()
	return nil
}

// Rename changes the product display name
func (p *Product) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	p.Name = name
	p.UpdatedAt = time.Now()
	return nil
}
