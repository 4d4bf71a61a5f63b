package finance

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashFlowReport is the derived cash-flow statement for a date range.
// It is computed on demand and never persisted.
type CashFlowReport struct {
	Start             time.Time       `json:"start"`
	End               time.Time       `json:"end"`
	OpeningCash       decimal.Decimal `json:"opening_cash"`
	OperatingIn       decimal.Decimal `json:"operating_in"`
	OperatingOut      decimal.Decimal `json:"operating_out"`
	InvestingIn       decimal.Decimal `json:"investing_in"`
	InvestingOut      decimal.Decimal `json:"investing_out"`
	FinancingIn       decimal.Decimal `json:"financing_in"`
	FinancingOut      decimal.Decimal `json:"financing_out"`
	NetCashFlow       decimal.Decimal `json:"net_cash_flow"`
	ClosingCash       decimal.Decimal `json:"closing_cash"`
	UnclassifiedCount int             `json:"unclassified_count"`
}

// Add folds a signed cash movement into the given bucket. Positive amounts
// are inflows, negative amounts outflows. Unclassified movements are counted
// but excluded from the three buckets.
func (r *CashFlowReport) Add(bucket Bucket, amount decimal.Decimal) {
	switch bucket {
	case BucketOperating:
		if amount.IsNegative() {
			r.OperatingOut = r.OperatingOut.Add(amount.Neg())
		} else {
			r.OperatingIn = r.OperatingIn.Add(amount)
		}
	case BucketInvesting:
		if amount.IsNegative() {
			r.InvestingOut = r.InvestingOut.Add(amount.Neg())
		} else {
			r.InvestingIn = r.InvestingIn.Add(amount)
		}
	case BucketFinancing:
		if amount.IsNegative() {
			r.FinancingOut = r.FinancingOut.Add(amount.Neg())
		} else {
			r.FinancingIn = r.FinancingIn.Add(amount)
		}
	default:
		r.UnclassifiedCount++
	}
}

// Finalize computes the net flow and closing cash from the bucket totals
func (r *CashFlowReport) Finalize() {
	r.NetCashFlow = r.OperatingIn.Sub(r.OperatingOut).
		Add(r.InvestingIn).Sub(r.InvestingOut).
		Add(r.FinancingIn).Sub(r.FinancingOut)
	r.ClosingCash = r.OpeningCash.Add(r.NetCashFlow)
}
