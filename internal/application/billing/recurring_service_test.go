package billing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inventoryapp "github.com/ledgerline/backend/internal/application/inventory"
	invoicingapp "github.com/ledgerline/backend/internal/application/invoicing"
	"github.com/ledgerline/backend/internal/domain/billing"
	"github.com/ledgerline/backend/internal/domain/catalog"
	"github.com/ledgerline/backend/internal/domain/finance"
	"github.com/ledgerline/backend/internal/domain/invoicing"
	"github.com/ledgerline/backend/internal/domain/shared"
)

type memProductRepository struct {
	mu       sync.Mutex
	products map[uuid.UUID]catalog.Product
}

func newMemProductRepository() *memProductRepository {
	return &memProductRepository{products: make(map[uuid.UUID]catalog.Product)}
}

func (m *memProductRepository) add(product *catalog.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[product.ID] = *product
}

func (m *memProductRepository) stock(id uuid.UUID) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].StockQuantity
}

func (m *memProductRepository) snapshot() map[uuid.UUID]catalog.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[uuid.UUID]catalog.Product, len(m.products))
	for id, product := range m.products {
		out[id] = product
	}
	return out
}

func (m *memProductRepository) restore(snap map[uuid.UUID]catalog.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = snap
}

func (m *memProductRepository) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := product
	return &clone, nil
}

func (m *memProductRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	product, err := m.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return product, nil
}

func (m *memProductRepository) FindByIDs(_ context.Context, _ uuid.UUID, _ []uuid.UUID) ([]catalog.Product, error) {
	return nil, nil
}

func (m *memProductRepository) FindAllForTenant(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]catalog.Product, error) {
	return nil, nil
}

func (m *memProductRepository) Save(_ context.Context, product *catalog.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[product.ID] = *product
	return nil
}

func (m *memProductRepository) SaveWithLock(_ context.Context, product *catalog.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.products[product.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != product.Version {
		return shared.ErrConcurrencyConflict
	}
	product.Version++
	m.products[product.ID] = *product
	return nil
}

func (m *memProductRepository) Delete(_ context.Context, _, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.products, id)
	return nil
}

type memInvoiceRepository struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]invoicing.Invoice
}

func newMemInvoiceRepository() *memInvoiceRepository {
	return &memInvoiceRepository{invoices: make(map[uuid.UUID]invoicing.Invoice)}
}

func (m *memInvoiceRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.invoices)
}

func (m *memInvoiceRepository) all() []invoicing.Invoice {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]invoicing.Invoice, 0, len(m.invoices))
	for _, invoice := range m.invoices {
		out = append(out, invoice)
	}
	return out
}

func (m *memInvoiceRepository) snapshot() map[uuid.UUID]invoicing.Invoice {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[uuid.UUID]invoicing.Invoice, len(m.invoices))
	for id, invoice := range m.invoices {
		out[id] = invoice
	}
	return out
}

func (m *memInvoiceRepository) restore(snap map[uuid.UUID]invoicing.Invoice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoices = snap
}

func (m *memInvoiceRepository) FindByID(_ context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	invoice, ok := m.invoices[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := invoice
	return &clone, nil
}

func (m *memInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*invoicing.Invoice, error) {
	invoice, err := m.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return invoice, nil
}

func (m *memInvoiceRepository) FindByNumber(_ context.Context, _ uuid.UUID, _ string) (*invoicing.Invoice, error) {
	return nil, shared.ErrNotFound
}

func (m *memInvoiceRepository) FindAllForTenant(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]invoicing.Invoice, error) {
	return nil, nil
}

func (m *memInvoiceRepository) Save(_ context.Context, invoice *invoicing.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoices[invoice.ID] = *invoice
	return nil
}

func (m *memInvoiceRepository) SaveWithLock(_ context.Context, invoice *invoicing.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.invoices[invoice.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != invoice.Version {
		return shared.ErrConcurrencyConflict
	}
	invoice.Version++
	m.invoices[invoice.ID] = *invoice
	return nil
}

func (m *memInvoiceRepository) Delete(_ context.Context, _, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.invoices, id)
	return nil
}

func (m *memInvoiceRepository) CountForTenant(_ context.Context, _ uuid.UUID, _ shared.Filter) (int64, error) {
	return 0, nil
}

type memCounterRepository struct {
	mu       sync.Mutex
	counters map[uuid.UUID]invoicing.DocumentCounter
}

func newMemCounterRepository() *memCounterRepository {
	return &memCounterRepository{counters: make(map[uuid.UUID]invoicing.DocumentCounter)}
}

func (m *memCounterRepository) GetOrCreate(_ context.Context, tenantID uuid.UUID) (*invoicing.DocumentCounter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counter, ok := m.counters[tenantID]
	if !ok {
		counter = *invoicing.NewDocumentCounter(tenantID)
		m.counters[tenantID] = counter
	}
	clone := counter
	return &clone, nil
}

func (m *memCounterRepository) CompareAndSwap(_ context.Context, counter *invoicing.DocumentCounter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.counters[counter.TenantID]
	if !ok || stored.Version != counter.Version {
		return shared.ErrConcurrencyConflict
	}
	counter.Version++
	m.counters[counter.TenantID] = *counter
	return nil
}

type memTemplateRepository struct {
	mu        sync.Mutex
	templates map[uuid.UUID]billing.RecurringTemplate
	// saveErr fails the next Save call with the given error
	saveErr error
}

func newMemTemplateRepository() *memTemplateRepository {
	return &memTemplateRepository{templates: make(map[uuid.UUID]billing.RecurringTemplate)}
}

func (m *memTemplateRepository) add(template *billing.RecurringTemplate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[template.ID] = *template
}

func (m *memTemplateRepository) nextDue(id uuid.UUID) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.templates[id].NextDueDate
}

func (m *memTemplateRepository) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*billing.RecurringTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	template, ok := m.templates[id]
	if !ok || template.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	clone := template
	return &clone, nil
}

func (m *memTemplateRepository) FindDue(_ context.Context, tenantID uuid.UUID, asOf time.Time) ([]billing.RecurringTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []billing.RecurringTemplate
	for _, template := range m.templates {
		if template.TenantID != tenantID {
			continue
		}
		if template.NextDueDate.After(asOf) {
			continue
		}
		if template.EndDate != nil && template.EndDate.Before(asOf) {
			continue
		}
		out = append(out, template)
	}
	return out, nil
}

func (m *memTemplateRepository) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]billing.RecurringTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []billing.RecurringTemplate
	for _, template := range m.templates {
		if template.TenantID == tenantID {
			out = append(out, template)
		}
	}
	return out, nil
}

func (m *memTemplateRepository) Save(_ context.Context, template *billing.RecurringTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		err := m.saveErr
		m.saveErr = nil
		return err
	}
	m.templates[template.ID] = *template
	return nil
}

func (m *memTemplateRepository) Delete(_ context.Context, _, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.templates[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.templates, id)
	return nil
}

func (m *memTemplateRepository) DistinctTenantIDs(_ context.Context) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, template := range m.templates {
		if !seen[template.TenantID] {
			seen[template.TenantID] = true
			out = append(out, template.TenantID)
		}
	}
	return out, nil
}

type generationKey struct {
	templateID uuid.UUID
	periodEnd  time.Time
}

type memGenerationRepository struct {
	mu      sync.Mutex
	records map[generationKey]billing.GenerationRecord
	// createErr fails the next Create call with the given error
	createErr error
}

func newMemGenerationRepository() *memGenerationRepository {
	return &memGenerationRepository{records: make(map[generationKey]billing.GenerationRecord)}
}

func (m *memGenerationRepository) add(record *billing.GenerationRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[generationKey{record.TemplateID, record.PeriodEnd}] = *record
}

func (m *memGenerationRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func (m *memGenerationRepository) snapshot() map[generationKey]billing.GenerationRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[generationKey]billing.GenerationRecord, len(m.records))
	for key, record := range m.records {
		out[key] = record
	}
	return out
}

func (m *memGenerationRepository) restore(snap map[generationKey]billing.GenerationRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = snap
}

func (m *memGenerationRepository) Exists(_ context.Context, templateID uuid.UUID, periodEnd time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.records[generationKey{templateID, periodEnd}]
	return ok, nil
}

func (m *memGenerationRepository) Create(_ context.Context, record *billing.GenerationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		err := m.createErr
		m.createErr = nil
		return err
	}
	key := generationKey{record.TemplateID, record.PeriodEnd}
	if _, ok := m.records[key]; ok {
		return shared.ErrAlreadyExists
	}
	m.records[key] = *record
	return nil
}

// memTxRepos and memScope emulate a transaction over the in-memory
// repositories: Execute snapshots their state and restores it when the
// callback fails
type memTxRepos struct {
	products    *memProductRepository
	invoices    *memInvoiceRepository
	templates   *memTemplateRepository
	generations *memGenerationRepository
}

func (r *memTxRepos) ProductRepo() catalog.ProductRepository                   { return r.products }
func (r *memTxRepos) InvoiceRepo() invoicing.InvoiceRepository                 { return r.invoices }
func (r *memTxRepos) PaymentRepo() finance.PaymentRepository                   { return nil }
func (r *memTxRepos) TemplateRepo() billing.RecurringTemplateRepository        { return r.templates }
func (r *memTxRepos) GenerationRecordRepo() billing.GenerationRecordRepository { return r.generations }

type memScope struct {
	repos *memTxRepos
}

func (s *memScope) Execute(_ context.Context, fn func(repos invoicingapp.TransactionalRepositories) error) error {
	productSnap := s.repos.products.snapshot()
	invoiceSnap := s.repos.invoices.snapshot()
	generationSnap := s.repos.generations.snapshot()
	if err := fn(s.repos); err != nil {
		s.repos.products.restore(productSnap)
		s.repos.invoices.restore(invoiceSnap)
		s.repos.generations.restore(generationSnap)
		return err
	}
	return nil
}

type inventoryScope struct {
	products *memProductRepository
}

func (s *inventoryScope) Execute(_ context.Context, fn func(products catalog.ProductRepository) error) error {
	return fn(s.products)
}

type recurringServiceFixture struct {
	service     *RecurringService
	products    *memProductRepository
	invoices    *memInvoiceRepository
	templates   *memTemplateRepository
	generations *memGenerationRepository
	tenantID    uuid.UUID
}

func newRecurringServiceFixture(t *testing.T) *recurringServiceFixture {
	t.Helper()
	products := newMemProductRepository()
	invoices := newMemInvoiceRepository()
	counters := newMemCounterRepository()
	templates := newMemTemplateRepository()
	generations := newMemGenerationRepository()

	scope := &memScope{repos: &memTxRepos{
		products:    products,
		invoices:    invoices,
		templates:   templates,
		generations: generations,
	}}

	numbers := invoicingapp.NewNumberService(counters, nil)
	adjuster := inventoryapp.NewStockAdjuster(&inventoryScope{products: products}, nil)
	invoiceService := invoicingapp.NewInvoiceService(scope, invoices, numbers, adjuster, nil)
	service := NewRecurringService(scope, templates, generations, invoiceService, nil)

	return &recurringServiceFixture{
		service:     service,
		products:    products,
		invoices:    invoices,
		templates:   templates,
		generations: generations,
		tenantID:    uuid.New(),
	}
}

func (f *recurringServiceFixture) addTemplate(t *testing.T, productID *uuid.UUID, start time.Time) *billing.RecurringTemplate {
	t.Helper()
	template, err := billing.NewRecurringTemplate(f.tenantID, uuid.New(), "Acme Ltd", billing.FrequencyMonthly, start, nil)
	require.NoError(t, err)
	_, err = template.AddItem(productID, "Subscription", decimal.NewFromInt(1), decimal.NewFromInt(99))
	require.NoError(t, err)
	f.templates.add(template)
	return template
}

func billingDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRecurringService_CreateTemplate(t *testing.T) {
	f := newRecurringServiceFixture(t)
	start := billingDate(2025, 4, 1)

	resp, err := f.service.CreateTemplate(context.Background(), f.tenantID, CreateTemplateRequest{
		CustomerID:   uuid.New(),
		CustomerName: "Acme Ltd",
		Frequency:    "MONTHLY",
		StartDate:    start,
		Items: []TemplateItemInput{
			{ProductName: "Subscription", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(99)},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, start, resp.NextDueDate, "first invoice is due on the start date itself")
	assert.Equal(t, "MONTHLY", resp.Frequency)
	require.Len(t, resp.Items, 1)
}

func TestRecurringService_CreateTemplate_RejectsUnknownFrequency(t *testing.T) {
	f := newRecurringServiceFixture(t)

	_, err := f.service.CreateTemplate(context.Background(), f.tenantID, CreateTemplateRequest{
		CustomerID: uuid.New(),
		Frequency:  "DAILY",
		StartDate:  billingDate(2025, 4, 1),
		Items: []TemplateItemInput{
			{ProductName: "Subscription", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(99)},
		},
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
}

func TestRecurringService_GenerateDue_CreatesInvoiceMarkerAndAdvances(t *testing.T) {
	f := newRecurringServiceFixture(t)
	product, err := catalog.NewProduct(f.tenantID, "Widget", decimal.NewFromInt(99), decimal.NewFromInt(10))
	require.NoError(t, err)
	f.products.add(product)

	start := billingDate(2025, 4, 1)
	template := f.addTemplate(t, &product.ID, start)

	result, err := f.service.GenerateDue(context.Background(), f.tenantID, start)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Generated)
	assert.Equal(t, 0, result.Skipped)
	assert.Empty(t, result.Errors)

	invoices := f.invoices.all()
	require.Len(t, invoices, 1)
	assert.Equal(t, "INV-0001", invoices[0].Number)
	assert.Equal(t, start, invoices[0].IssueDate)
	assert.Equal(t, billingDate(2025, 5, 1), invoices[0].DueDate, "due one period after the issue date")
	assert.True(t, invoices[0].Total.Equal(decimal.NewFromInt(99)))

	assert.Equal(t, 1, f.generations.count())
	assert.Equal(t, billingDate(2025, 5, 1), f.templates.nextDue(template.ID))
	assert.True(t, f.products.stock(product.ID).Equal(decimal.NewFromInt(9)), "generated invoices hit stock like manual ones")
}

func TestRecurringService_GenerateDue_NothingDue(t *testing.T) {
	f := newRecurringServiceFixture(t)
	f.addTemplate(t, nil, billingDate(2025, 6, 1))

	result, err := f.service.GenerateDue(context.Background(), f.tenantID, billingDate(2025, 5, 31))
	require.NoError(t, err)

	assert.Equal(t, 0, result.Generated)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 0, f.invoices.count())
}

func TestRecurringService_GenerateDue_CatchesUpOnePeriodPerPass(t *testing.T) {
	f := newRecurringServiceFixture(t)
	template := f.addTemplate(t, nil, billingDate(2025, 4, 1))
	asOf := billingDate(2025, 6, 2)

	// April, May and June are overdue; each pass bills exactly one period.
	for pass := 0; pass < 4; pass++ {
		result, err := f.service.GenerateDue(context.Background(), f.tenantID, asOf)
		require.NoError(t, err)
		if pass < 3 {
			assert.Equal(t, 1, result.Generated, "pass %d", pass)
		} else {
			assert.Equal(t, 0, result.Generated+result.Skipped, "final pass finds nothing due")
		}
	}

	assert.Equal(t, 3, f.invoices.count())
	assert.Equal(t, billingDate(2025, 7, 1), f.templates.nextDue(template.ID))
}

func TestRecurringService_GenerateDue_RepairsAfterCrash(t *testing.T) {
	f := newRecurringServiceFixture(t)
	start := billingDate(2025, 4, 1)
	template := f.addTemplate(t, nil, start)

	// Simulates a crash after the invoice and marker committed but before
	// the template advanced: the marker exists, the schedule does not.
	f.generations.add(billing.NewGenerationRecord(f.tenantID, template.ID, uuid.New(), start))

	result, err := f.service.GenerateDue(context.Background(), f.tenantID, start)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Generated)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, f.invoices.count(), "the period is never billed twice")
	assert.Equal(t, billingDate(2025, 5, 1), f.templates.nextDue(template.ID))
}

func TestRecurringService_GenerateDue_ConcurrentRunRollsBack(t *testing.T) {
	f := newRecurringServiceFixture(t)
	start := billingDate(2025, 4, 1)
	template := f.addTemplate(t, nil, start)

	// The unique-index race: another process created the marker between the
	// existence check and the insert.
	f.generations.createErr = shared.ErrAlreadyExists

	result, err := f.service.GenerateDue(context.Background(), f.tenantID, start)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Generated)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, f.invoices.count(), "the losing transaction left no invoice behind")
	assert.Equal(t, billingDate(2025, 5, 1), f.templates.nextDue(template.ID))
}

func TestRecurringService_GenerateDue_IsolatesFailingTemplates(t *testing.T) {
	f := newRecurringServiceFixture(t)
	start := billingDate(2025, 4, 1)
	f.addTemplate(t, nil, start)
	f.addTemplate(t, nil, start)

	f.generations.createErr = errors.New("connection reset")

	result, err := f.service.GenerateDue(context.Background(), f.tenantID, start)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Generated, "the healthy template still bills")
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Message, "connection reset")
	assert.Equal(t, 1, f.invoices.count())
}

func TestRecurringService_GenerateDue_AdvanceFailureStillCountsGenerated(t *testing.T) {
	f := newRecurringServiceFixture(t)
	start := billingDate(2025, 4, 1)
	template := f.addTemplate(t, nil, start)

	// The invoice and marker commit, then advancing the schedule fails.
	f.templates.saveErr = errors.New("connection reset")

	result, err := f.service.GenerateDue(context.Background(), f.tenantID, start)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Generated, "the durable invoice counts even though the schedule did not advance")
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Message, "connection reset")
	assert.Equal(t, 1, f.invoices.count())
	assert.Equal(t, 1, f.generations.count())
	assert.Equal(t, start, f.templates.nextDue(template.ID))

	// The next run finds the marker and repairs the schedule without
	// billing again.
	repaired, err := f.service.GenerateDue(context.Background(), f.tenantID, start)
	require.NoError(t, err)
	assert.Equal(t, 0, repaired.Generated)
	assert.Equal(t, 1, repaired.Skipped)
	assert.Equal(t, 1, f.invoices.count())
	assert.Equal(t, billingDate(2025, 5, 1), f.templates.nextDue(template.ID))
}

func TestRecurringService_GenerateDue_SameDayRerunIsIdempotent(t *testing.T) {
	f := newRecurringServiceFixture(t)
	start := billingDate(2025, 4, 1)
	f.addTemplate(t, nil, start)

	first, err := f.service.GenerateDue(context.Background(), f.tenantID, start)
	require.NoError(t, err)
	require.Equal(t, 1, first.Generated)

	second, err := f.service.GenerateDue(context.Background(), f.tenantID, start)
	require.NoError(t, err)

	assert.Equal(t, 0, second.Generated)
	assert.Equal(t, 0, second.Skipped, "the advanced template is simply no longer due")
	assert.Equal(t, 1, f.invoices.count())
}

func TestRecurringService_DeleteTemplate_KeepsGeneratedInvoices(t *testing.T) {
	f := newRecurringServiceFixture(t)
	start := billingDate(2025, 4, 1)
	template := f.addTemplate(t, nil, start)

	result, err := f.service.GenerateDue(context.Background(), f.tenantID, start)
	require.NoError(t, err)
	require.Equal(t, 1, result.Generated)

	require.NoError(t, f.service.DeleteTemplate(context.Background(), f.tenantID, template.ID))

	_, err = f.service.GetTemplate(context.Background(), f.tenantID, template.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, 1, f.invoices.count())
}
