package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/backend/internal/domain/billing"
)

// TemplateItemInput is one line-item blueprint on a template
type TemplateItemInput struct {
	ProductID   *uuid.UUID      `json:"product_id"`
	ProductName string          `json:"product_name" validate:"required,max=255"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// CreateTemplateRequest creates a recurring template due first on StartDate
type CreateTemplateRequest struct {
	CustomerID   uuid.UUID           `json:"customer_id" validate:"required"`
	CustomerName string              `json:"customer_name" validate:"max=255"`
	Frequency    string              `json:"frequency" validate:"required,oneof=WEEKLY MONTHLY YEARLY"`
	StartDate    time.Time           `json:"start_date" validate:"required"`
	EndDate      *time.Time          `json:"end_date"`
	Items        []TemplateItemInput `json:"items" validate:"required,min=1,dive"`
}

// TemplateItemResponse is one line-item blueprint in responses
type TemplateItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// TemplateResponse represents a recurring template in responses
type TemplateResponse struct {
	ID           uuid.UUID              `json:"id"`
	CustomerID   uuid.UUID              `json:"customer_id"`
	CustomerName string                 `json:"customer_name"`
	Frequency    string                 `json:"frequency"`
	StartDate    time.Time              `json:"start_date"`
	NextDueDate  time.Time              `json:"next_due_date"`
	EndDate      *time.Time             `json:"end_date,omitempty"`
	Items        []TemplateItemResponse `json:"items"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// ToTemplateResponse converts a template aggregate to a response DTO
func ToTemplateResponse(template *billing.RecurringTemplate) *TemplateResponse {
	items := make([]TemplateItemResponse, 0, len(template.Items))
	for _, item := range template.Items {
		items = append(items, TemplateItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return &TemplateResponse{
		ID:           template.ID,
		CustomerID:   template.CustomerID,
		CustomerName: template.CustomerName,
		Frequency:    string(template.Frequency),
		StartDate:    template.StartDate,
		NextDueDate:  template.NextDueDate,
		EndDate:      template.EndDate,
		Items:        items,
		CreatedAt:    template.CreatedAt,
		UpdatedAt:    template.UpdatedAt,
	}
}

// TemplateError records a template whose generation failed during a run.
// One template failing never stops the rest of the run.
type TemplateError struct {
	TemplateID uuid.UUID `json:"template_id"`
	Message    string    `json:"message"`
}

// GenerationResult summarizes one GenerateDue run
type GenerationResult struct {
	Generated int             `json:"generated"`
	Skipped   int             `json:"skipped"`
	Errors    []TemplateError `json:"errors,omitempty"`
}
