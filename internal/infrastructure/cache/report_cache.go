package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	appfinance "github.com/ledgerline/backend/internal/application/finance"
	"github.com/ledgerline/backend/internal/domain/finance"
)

// InMemoryReportCache caches cash-flow reports in process memory with a TTL.
// Entries are evicted lazily on read and on tenant invalidation.
type InMemoryReportCache struct {
	mu      sync.RWMutex
	entries map[string]reportEntry
	ttl     time.Duration
}

type reportEntry struct {
	report    finance.CashFlowReport
	expiresAt time.Time
}

// NewInMemoryReportCache creates a new in-memory report cache
func NewInMemoryReportCache(ttl time.Duration) *InMemoryReportCache {
	return &InMemoryReportCache{
		entries: make(map[string]reportEntry),
		ttl:     ttl,
	}
}

// Get returns the cached report for the key, if present and not expired
func (c *InMemoryReportCache) Get(_ context.Context, key string) (*finance.CashFlowReport, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	report := entry.report
	return &report, true
}

// Set stores a copy of the report under the key
func (c *InMemoryReportCache) Set(_ context.Context, key string, report *finance.CashFlowReport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = reportEntry{
		report:    *report,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// InvalidateTenant drops every cached report for the tenant. Report keys
// embed the tenant ID after the first separator.
func (c *InMemoryReportCache) InvalidateTenant(_ context.Context, tenantID uuid.UUID) {
	prefix := "cashflow:" + tenantID.String() + ":"
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

// Ensure InMemoryReportCache implements ReportCache
var _ appfinance.ReportCache = (*InMemoryReportCache)(nil)
