package finance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	invoicingapp "github.com/ledgerline/backend/internal/application/invoicing"
	"github.com/ledgerline/backend/internal/domain/billing"
	"github.com/ledgerline/backend/internal/domain/catalog"
	"github.com/ledgerline/backend/internal/domain/finance"
	"github.com/ledgerline/backend/internal/domain/invoicing"
	"github.com/ledgerline/backend/internal/domain/shared"
)

type memPaymentRepository struct {
	mu       sync.Mutex
	payments []finance.Payment
}

func (m *memPaymentRepository) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*finance.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.payments {
		if m.payments[i].TenantID == tenantID && m.payments[i].ID == id {
			clone := m.payments[i]
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memPaymentRepository) FindByInvoice(_ context.Context, tenantID, invoiceID uuid.UUID) ([]finance.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []finance.Payment
	for i := range m.payments {
		if m.payments[i].TenantID == tenantID && m.payments[i].InvoiceID != nil && *m.payments[i].InvoiceID == invoiceID {
			out = append(out, m.payments[i])
		}
	}
	return out, nil
}

func (m *memPaymentRepository) FindByDateRange(_ context.Context, tenantID uuid.UUID, start, end time.Time) ([]finance.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []finance.Payment
	for i := range m.payments {
		p := m.payments[i]
		if p.TenantID == tenantID && !p.Date.Before(start) && !p.Date.After(end) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPaymentRepository) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]finance.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []finance.Payment
	for i := range m.payments {
		if m.payments[i].TenantID == tenantID {
			out = append(out, m.payments[i])
		}
	}
	return out, nil
}

func (m *memPaymentRepository) SumByInvoice(_ context.Context, tenantID, invoiceID uuid.UUID) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := decimal.Zero
	for i := range m.payments {
		if m.payments[i].TenantID == tenantID && m.payments[i].InvoiceID != nil && *m.payments[i].InvoiceID == invoiceID {
			sum = sum.Add(m.payments[i].Amount)
		}
	}
	return sum, nil
}

func (m *memPaymentRepository) Create(_ context.Context, payment *finance.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments = append(m.payments, *payment)
	return nil
}

type memInvoiceRepository struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]invoicing.Invoice
}

func newMemInvoiceRepository() *memInvoiceRepository {
	return &memInvoiceRepository{invoices: make(map[uuid.UUID]invoicing.Invoice)}
}

func (m *memInvoiceRepository) add(invoice *invoicing.Invoice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoices[invoice.ID] = *invoice
}

func (m *memInvoiceRepository) status(id uuid.UUID) invoicing.InvoiceStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.invoices[id].Status
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

type memTxRepos struct {
	payments *memPaymentRepository
	invoices *memInvoiceRepository
}

func (r *memTxRepos) ProductRepo() catalog.ProductRepository                   { return nil }
func (r *memTxRepos) InvoiceRepo() invoicing.InvoiceRepository                 { return r.invoices }
func (r *memTxRepos) PaymentRepo() finance.PaymentRepository                   { return r.payments }
func (r *memTxRepos) TemplateRepo() billing.RecurringTemplateRepository        { return nil }
func (r *memTxRepos) GenerationRecordRepo() billing.GenerationRecordRepository { return nil }

type memScope struct {
	repos *memTxRepos
}

func (s *memScope) Execute(_ context.Context, fn func(repos invoicingapp.TransactionalRepositories) error) error {
	return fn(s.repos)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, event := range p.events {
		out = append(out, event.EventType())
	}
	return out
}

type paymentServiceFixture struct {
	service   *PaymentService
	payments  *memPaymentRepository
	invoices  *memInvoiceRepository
	publisher *recordingPublisher
	tenantID  uuid.UUID
}

func newPaymentServiceFixture(t *testing.T) *paymentServiceFixture {
	t.Helper()
	payments := &memPaymentRepository{}
	invoices := newMemInvoiceRepository()
	publisher := &recordingPublisher{}

	scope := &memScope{repos: &memTxRepos{payments: payments, invoices: invoices}}
	service := NewPaymentService(scope, payments, nil)
	service.SetEventPublisher(publisher)

	return &paymentServiceFixture{
		service:   service,
		payments:  payments,
		invoices:  invoices,
		publisher: publisher,
		tenantID:  uuid.New(),
	}
}

// addInvoice stores a due invoice with the given total
func (f *paymentServiceFixture) addInvoice(t *testing.T, total int64) *invoicing.Invoice {
	t.Helper()
	invoice, err := invoicing.NewInvoice(f.tenantID, "INV-0001", uuid.New(), "Acme Ltd",
		time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = invoice.AddItem(nil, "Widget", decimal.NewFromInt(1), decimal.NewFromInt(total))
	require.NoError(t, err)
	f.invoices.add(invoice)
	return invoice
}

func paymentRequest(invoiceID *uuid.UUID, amount int64) RecordPaymentRequest {
	return RecordPaymentRequest{
		CustomerID: uuid.New(),
		InvoiceID:  invoiceID,
		Amount:     decimal.NewFromInt(amount),
		Date:       time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestPaymentService_RecordPayment_PartialLeavesInvoiceDue(t *testing.T) {
	f := newPaymentServiceFixture(t)
	invoice := f.addInvoice(t, 100)

	resp, err := f.service.RecordPayment(context.Background(), f.tenantID, paymentRequest(&invoice.ID, 40))
	require.NoError(t, err)

	assert.False(t, resp.InvoiceSettled)
	assert.Equal(t, invoicing.InvoiceStatusDue, f.invoices.status(invoice.ID))
	assert.Equal(t, []string{finance.EventTypePaymentRecorded}, f.publisher.types())
}

func TestPaymentService_RecordPayment_CumulativeCoverFlipsPaid(t *testing.T) {
	f := newPaymentServiceFixture(t)
	invoice := f.addInvoice(t, 100)

	_, err := f.service.RecordPayment(context.Background(), f.tenantID, paymentRequest(&invoice.ID, 40))
	require.NoError(t, err)
	resp, err := f.service.RecordPayment(context.Background(), f.tenantID, paymentRequest(&invoice.ID, 60))
	require.NoError(t, err)

	assert.True(t, resp.InvoiceSettled, "the payment that reaches the total flips the status")
	assert.Equal(t, invoicing.InvoiceStatusPaid, f.invoices.status(invoice.ID))
	assert.Contains(t, f.publisher.types(), invoicing.EventTypeInvoicePaid)
}

func TestPaymentService_RecordPayment_OverpaymentStillSettles(t *testing.T) {
	f := newPaymentServiceFixture(t)
	invoice := f.addInvoice(t, 100)

	resp, err := f.service.RecordPayment(context.Background(), f.tenantID, paymentRequest(&invoice.ID, 150))
	require.NoError(t, err)

	assert.True(t, resp.InvoiceSettled)
	assert.Equal(t, invoicing.InvoiceStatusPaid, f.invoices.status(invoice.ID))
}

func TestPaymentService_RecordPayment_PaidInvoiceIsLeftAlone(t *testing.T) {
	f := newPaymentServiceFixture(t)
	invoice := f.addInvoice(t, 100)

	_, err := f.service.RecordPayment(context.Background(), f.tenantID, paymentRequest(&invoice.ID, 100))
	require.NoError(t, err)

	// A late extra payment is recorded for the books but the status stays
	// where the reconciler put it.
	resp, err := f.service.RecordPayment(context.Background(), f.tenantID, paymentRequest(&invoice.ID, 25))
	require.NoError(t, err)

	assert.False(t, resp.InvoiceSettled)
	assert.Equal(t, invoicing.InvoiceStatusPaid, f.invoices.status(invoice.ID))
	assert.Len(t, f.payments.payments, 2)
}

func TestPaymentService_RecordPayment_CancelledInvoiceIsLeftAlone(t *testing.T) {
	f := newPaymentServiceFixture(t)
	invoice := f.addInvoice(t, 100)
	require.NoError(t, invoice.Cancel())
	f.invoices.add(invoice)

	resp, err := f.service.RecordPayment(context.Background(), f.tenantID, paymentRequest(&invoice.ID, 100))
	require.NoError(t, err)

	assert.False(t, resp.InvoiceSettled)
	assert.Equal(t, invoicing.InvoiceStatusCancelled, f.invoices.status(invoice.ID))
}

func TestPaymentService_RecordPayment_WithoutInvoiceReference(t *testing.T) {
	f := newPaymentServiceFixture(t)

	resp, err := f.service.RecordPayment(context.Background(), f.tenantID, paymentRequest(nil, 75))
	require.NoError(t, err)

	assert.False(t, resp.InvoiceSettled)
	assert.Nil(t, resp.InvoiceID)
	assert.Len(t, f.payments.payments, 1)
}

func TestPaymentService_RecordPayment_RejectsNonPositiveAmount(t *testing.T) {
	f := newPaymentServiceFixture(t)

	_, err := f.service.RecordPayment(context.Background(), f.tenantID, paymentRequest(nil, 0))
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_AMOUNT", domainErr.Code)
	assert.Empty(t, f.payments.payments)
}

func TestPaymentService_RecordPayment_MissingInvoiceFails(t *testing.T) {
	f := newPaymentServiceFixture(t)
	missing := uuid.New()

	_, err := f.service.RecordPayment(context.Background(), f.tenantID, paymentRequest(&missing, 50))
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPaymentService_ListByInvoice(t *testing.T) {
	f := newPaymentServiceFixture(t)
	invoice := f.addInvoice(t, 200)

	_, err := f.service.RecordPayment(context.Background(), f.tenantID, paymentRequest(&invoice.ID, 50))
	require.NoError(t, err)
	_, err = f.service.RecordPayment(context.Background(), f.tenantID, paymentRequest(nil, 999))
	require.NoError(t, err)

	responses, err := f.service.ListByInvoice(context.Background(), f.tenantID, invoice.ID)
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.True(t, responses[0].Amount.Equal(decimal.NewFromInt(50)))
}
