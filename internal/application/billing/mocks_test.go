package billing

import (
	"context"
	"time"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/settings"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories
// =============================================================================

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter billing.ListFilter) ([]billing.Invoice, int64, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).([]billing.Invoice), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceRepository) Create(ctx context.Context, inv *billing.Invoice) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, inv *billing.Invoice) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *MockInvoiceRepository) DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func (m *MockInvoiceRepository) FindStale(ctx context.Context, now time.Time, limit int) ([]billing.Invoice, error) {
	args := m.Called(ctx, now, limit)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Stats(ctx context.Context, ownerID uuid.UUID) (*billing.InvoiceStats, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.InvoiceStats), args.Error(1)
}

func (m *MockInvoiceRepository) SumTotalByClient(ctx context.Context, ownerID, clientID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, ownerID, clientID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockQuoteRepository struct {
	mock.Mock
}

func (m *MockQuoteRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*billing.Quote, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Quote), args.Error(1)
}

func (m *MockQuoteRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter billing.ListFilter) ([]billing.Quote, int64, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).([]billing.Quote), args.Get(1).(int64), args.Error(2)
}

func (m *MockQuoteRepository) Create(ctx context.Context, q *billing.Quote) error {
	return m.Called(ctx, q).Error(0)
}

func (m *MockQuoteRepository) SaveWithLock(ctx context.Context, q *billing.Quote) error {
	return m.Called(ctx, q).Error(0)
}

func (m *MockQuoteRepository) DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func (m *MockQuoteRepository) FindStale(ctx context.Context, now time.Time, limit int) ([]billing.Quote, error) {
	args := m.Called(ctx, now, limit)
	return args.Get(0).([]billing.Quote), args.Error(1)
}

func (m *MockQuoteRepository) Stats(ctx context.Context, ownerID uuid.UUID) (*billing.QuoteStats, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.QuoteStats), args.Error(1)
}

func (m *MockQuoteRepository) Convert(ctx context.Context, q *billing.Quote, inv *billing.Invoice) error {
	return m.Called(ctx, q, inv).Error(0)
}

type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*partner.Client, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Client), args.Error(1)
}

func (m *MockClientRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter partner.ClientFilter) ([]partner.Client, int64, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).([]partner.Client), args.Get(1).(int64), args.Error(2)
}

func (m *MockClientRepository) ExistsByEmail(ctx context.Context, ownerID uuid.UUID, email string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, ownerID, email, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockClientRepository) Save(ctx context.Context, client *partner.Client) error {
	return m.Called(ctx, client).Error(0)
}

func (m *MockClientRepository) SaveWithLock(ctx context.Context, client *partner.Client) error {
	return m.Called(ctx, client).Error(0)
}

func (m *MockClientRepository) DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func (m *MockClientRepository) Stats(ctx context.Context, ownerID uuid.UUID) (*partner.ClientStats, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.ClientStats), args.Error(1)
}

// =============================================================================
// Mock collaborators
// =============================================================================

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// recordingPublisher keeps every published event type in order
type recordingPublisher struct {
	types []string
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	for _, e := range events {
		p.types = append(p.types, e.EventType())
	}
	return nil
}

type MockStatsCache struct {
	mock.Mock
}

func (m *MockStatsCache) Get(ctx context.Context, ownerID uuid.UUID, name string, dest any) (bool, error) {
	args := m.Called(ctx, ownerID, name, dest)
	return args.Bool(0), args.Error(1)
}

func (m *MockStatsCache) Set(ctx context.Context, ownerID uuid.UUID, name string, value any) error {
	return m.Called(ctx, ownerID, name, value).Error(0)
}

func (m *MockStatsCache) Invalidate(ctx context.Context, ownerID uuid.UUID, names ...string) error {
	return m.Called(ctx, ownerID, names).Error(0)
}

type MockDefaultsSource struct {
	mock.Mock
}

func (m *MockDefaultsSource) BillingDefaults(ctx context.Context, ownerID uuid.UUID) (settings.BillingDefaults, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(settings.BillingDefaults), args.Error(1)
}
