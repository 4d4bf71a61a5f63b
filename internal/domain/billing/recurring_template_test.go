package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestTemplate(t *testing.T, frequency Frequency, start time.Time, end *time.Time) *RecurringTemplate {
	t.Helper()
	template, err := NewRecurringTemplate(uuid.New(), uuid.New(), "Acme Ltd", frequency, start, end)
	require.NoError(t, err)
	_, err = template.AddItem(nil, "Subscription", decimal.NewFromInt(1), decimal.NewFromInt(99))
	require.NoError(t, err)
	return template
}

func TestFrequency_NextAfter(t *testing.T) {
	assert.Equal(t, date(2025, 1, 8), FrequencyWeekly.NextAfter(date(2025, 1, 1)))
	assert.Equal(t, date(2025, 2, 1), FrequencyMonthly.NextAfter(date(2025, 1, 1)))
	assert.Equal(t, date(2026, 1, 1), FrequencyYearly.NextAfter(date(2025, 1, 1)))

	// Calendar arithmetic normalizes short months
	assert.Equal(t, date(2025, 3, 3), FrequencyMonthly.NextAfter(date(2025, 1, 31)))
}

func TestNewRecurringTemplate_FirstDueOnStartDate(t *testing.T) {
	start := date(2025, 6, 15)
	template := newTestTemplate(t, FrequencyMonthly, start, nil)
	assert.Equal(t, start, template.NextDueDate)
}

func TestNewRecurringTemplate_Validation(t *testing.T) {
	_, err := NewRecurringTemplate(uuid.New(), uuid.Nil, "", FrequencyMonthly, date(2025, 1, 1), nil)
	assert.Error(t, err)

	_, err = NewRecurringTemplate(uuid.New(), uuid.New(), "", Frequency("DAILY"), date(2025, 1, 1), nil)
	assert.Error(t, err)

	end := date(2024, 12, 1)
	_, err = NewRecurringTemplate(uuid.New(), uuid.New(), "", FrequencyMonthly, date(2025, 1, 1), &end)
	assert.Error(t, err)
}

func TestRecurringTemplate_IsDue_Boundaries(t *testing.T) {
	start := date(2025, 3, 10)
	template := newTestTemplate(t, FrequencyMonthly, start, nil)

	assert.False(t, template.IsDue(date(2025, 3, 9)), "not due the day before")
	assert.True(t, template.IsDue(start), "due exactly on the due date")
	assert.True(t, template.IsDue(date(2025, 4, 1)), "still due after the due date")
}

func TestRecurringTemplate_IsDue_EndDate(t *testing.T) {
	start := date(2025, 1, 1)
	end := date(2025, 3, 1)
	template := newTestTemplate(t, FrequencyMonthly, start, &end)

	assert.True(t, template.IsDue(end), "end date itself is inside the schedule")
	assert.False(t, template.IsDue(date(2025, 3, 2)), "past the end date")
}

func TestRecurringTemplate_Advance_SingleStep(t *testing.T) {
	start := date(2025, 1, 31)
	template := newTestTemplate(t, FrequencyMonthly, start, nil)

	template.Advance()
	assert.Equal(t, date(2025, 3, 3), template.NextDueDate)

	template.Advance()
	assert.Equal(t, date(2025, 4, 3), template.NextDueDate)
}
