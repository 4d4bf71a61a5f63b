package persistence

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/ledgerline/backend/internal/domain/shared"
)

// applyFilter applies pagination, ordering and field filters to a query
func applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applyFieldFilters(query, filter)

	if filter.OrderBy != "" {
		dir := "asc"
		if filter.OrderDir == "desc" {
			dir = "desc"
		}
		query = query.Order(fmt.Sprintf("%s %s", filter.OrderBy, dir))
	}

	if filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		if offset < 0 {
			offset = 0
		}
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	return query
}

// applyFieldFilters applies only the equality filters, for count queries
func applyFieldFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for field, value := range filter.Filters {
		query = query.Where(fmt.Sprintf("%s = ?", field), value)
	}
	return query
}
