package finance

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Bucket is one of the three cash-flow-statement categories
type Bucket string

const (
	BucketOperating    Bucket = "OPERATING"
	BucketInvesting    Bucket = "INVESTING"
	BucketFinancing    Bucket = "FINANCING"
	BucketUnclassified Bucket = "UNCLASSIFIED"
)

// ClassificationRule maps account-name patterns and reference types to a
// bucket. Patterns are lowercase substrings matched against the entry's
// non-cash account names and its description.
type ClassificationRule struct {
	Bucket          Bucket
	AccountPatterns []string
	ReferenceTypes  []ReferenceType
}

// RuleTable is an ordered classification table: the first matching rule
// wins. Tables are immutable after construction and safe for concurrent use,
// so a tenant-specific table can be swapped in at service construction.
type RuleTable struct {
	cashPatterns []string
	rules        []ClassificationRule
}

// NewRuleTable builds a rule table from cash-account patterns and an
// ordered rule list
func NewRuleTable(cashPatterns []string, rules []ClassificationRule) *RuleTable {
	return &RuleTable{
		cashPatterns: lowerAll(cashPatterns),
		rules:        rules,
	}
}

// DefaultRuleTable returns the standard classification table. Operating
// patterns take priority over investing and financing ones.
func DefaultRuleTable() *RuleTable {
	return NewRuleTable(
		[]string{"cash", "bank", "wallet"},
		[]ClassificationRule{
			{
				Bucket: BucketOperating,
				AccountPatterns: []string{
					"customer", "receivable", "sales", "revenue", "payment",
					"supplier", "payable", "purchase", "vendor",
				},
				ReferenceTypes: []ReferenceType{ReferenceTypeInvoice, ReferenceTypePayment, ReferenceTypePurchase},
			},
			{
				Bucket:          BucketInvesting,
				AccountPatterns: []string{"fixed asset", "equipment", "asset"},
				ReferenceTypes:  []ReferenceType{ReferenceTypeAsset},
			},
			{
				Bucket: BucketFinancing,
				AccountPatterns: []string{
					"owner", "capital", "equity", "contribution", "investment",
					"loan", "liability",
				},
				ReferenceTypes: []ReferenceType{ReferenceTypeOwner, ReferenceTypeLoan},
			},
		},
	)
}

// CashPatterns returns the patterns identifying cash-like accounts
func (t *RuleTable) CashPatterns() []string {
	out := make([]string, len(t.cashPatterns))
	copy(out, t.cashPatterns)
	return out
}

// IsCashAccount reports whether the account name identifies a cash-like
// account (cash, bank, wallet)
func (t *RuleTable) IsCashAccount(accountName string) bool {
	name := strings.ToLower(accountName)
	for _, p := range t.cashPatterns {
		if strings.Contains(name, p) {
			return true
		}
	}
	return false
}

// HasCashLine reports whether any of the entry's lines hits a cash-like
// account. Entries without a cash line never enter the cash-flow statement.
func (t *RuleTable) HasCashLine(entry *LedgerEntry) bool {
	for i := range entry.Lines {
		if t.IsCashAccount(entry.Lines[i].AccountName) {
			return true
		}
	}
	return false
}

// CashMovement sums the signed amounts of the entry's cash lines:
// credit is an inflow, debit an outflow.
func (t *RuleTable) CashMovement(entry *LedgerEntry) decimal.Decimal {
	total := decimal.Zero
	for i := range entry.Lines {
		if t.IsCashAccount(entry.Lines[i].AccountName) {
			total = total.Add(entry.Lines[i].SignedAmount())
		}
	}
	return total
}

// Classify assigns the entry to a bucket by inspecting the non-cash lines'
// account names, the reference type, and the description, in rule order.
// Entries matching no rule are unclassified.
func (t *RuleTable) Classify(entry *LedgerEntry) Bucket {
	for _, rule := range t.rules {
		if t.matches(entry, rule) {
			return rule.Bucket
		}
	}
	return BucketUnclassified
}

func (t *RuleTable) matches(entry *LedgerEntry, rule ClassificationRule) bool {
	for _, ref := range rule.ReferenceTypes {
		if entry.ReferenceType == ref {
			return true
		}
	}

	description := strings.ToLower(entry.Description)
	for _, pattern := range rule.AccountPatterns {
		if description != "" && strings.Contains(description, pattern) {
			return true
		}
		for i := range entry.Lines {
			if t.IsCashAccount(entry.Lines[i].AccountName) {
				continue
			}
			if strings.Contains(strings.ToLower(entry.Lines[i].AccountName), pattern) {
				return true
			}
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
