package partner

import (
	"context"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

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

type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*partner.Company, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter, status string) ([]partner.Company, int64, error) {
	args := m.Called(ctx, ownerID, filter, status)
	return args.Get(0).([]partner.Company), args.Get(1).(int64), args.Error(2)
}

func (m *MockCompanyRepository) ExistsByName(ctx context.Context, ownerID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, ownerID, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCompanyRepository) Save(ctx context.Context, company *partner.Company) error {
	return m.Called(ctx, company).Error(0)
}

func (m *MockCompanyRepository) SaveWithLock(ctx context.Context, company *partner.Company) error {
	return m.Called(ctx, company).Error(0)
}

func (m *MockCompanyRepository) DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func (m *MockCompanyRepository) Stats(ctx context.Context, ownerID uuid.UUID) (*partner.CompanyStats, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.CompanyStats), args.Error(1)
}

type MockInvoiceTotals struct {
	mock.Mock
}

func (m *MockInvoiceTotals) SumTotalByClient(ctx context.Context, ownerID, clientID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, ownerID, clientID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockInvoiceTotals) Stats(ctx context.Context, ownerID uuid.UUID) (*billing.InvoiceStats, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.InvoiceStats), args.Error(1)
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
