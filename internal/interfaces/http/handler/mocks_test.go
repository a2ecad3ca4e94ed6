package handler

import (
	"context"

	billingapp "github.com/crm/backend/internal/application/billing"
	"github.com/crm/backend/internal/application/identity"
	partnerapp "github.com/crm/backend/internal/application/partner"
	settingsapp "github.com/crm/backend/internal/application/settings"
	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/partner"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) Create(ctx context.Context, userID uuid.UUID, req billingapp.CreateInvoiceRequest) (*billingapp.InvoiceResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingapp.InvoiceResponse), args.Error(1)
}

func (m *MockInvoiceService) GetByID(ctx context.Context, userID, id uuid.UUID) (*billingapp.InvoiceResponse, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingapp.InvoiceResponse), args.Error(1)
}

func (m *MockInvoiceService) List(ctx context.Context, userID uuid.UUID, filter billingapp.DocumentListFilter) ([]billingapp.InvoiceResponse, int64, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]billingapp.InvoiceResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceService) Update(ctx context.Context, userID, id uuid.UUID, req billingapp.UpdateInvoiceRequest) (*billingapp.InvoiceResponse, error) {
	args := m.Called(ctx, userID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingapp.InvoiceResponse), args.Error(1)
}

func (m *MockInvoiceService) Send(ctx context.Context, userID, id uuid.UUID) (*billingapp.InvoiceResponse, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingapp.InvoiceResponse), args.Error(1)
}

func (m *MockInvoiceService) Cancel(ctx context.Context, userID, id uuid.UUID) (*billingapp.InvoiceResponse, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingapp.InvoiceResponse), args.Error(1)
}

func (m *MockInvoiceService) MarkPaid(ctx context.Context, userID, id uuid.UUID, req billingapp.MarkPaidRequest) (*billingapp.InvoiceResponse, error) {
	args := m.Called(ctx, userID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingapp.InvoiceResponse), args.Error(1)
}

func (m *MockInvoiceService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockInvoiceService) Stats(ctx context.Context, userID uuid.UUID) *billing.InvoiceStats {
	return m.Called(ctx, userID).Get(0).(*billing.InvoiceStats)
}

type MockQuoteService struct {
	mock.Mock
}

func (m *MockQuoteService) quote(args mock.Arguments) (*billingapp.QuoteResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingapp.QuoteResponse), args.Error(1)
}

func (m *MockQuoteService) Create(ctx context.Context, userID uuid.UUID, req billingapp.CreateQuoteRequest) (*billingapp.QuoteResponse, error) {
	return m.quote(m.Called(ctx, userID, req))
}

func (m *MockQuoteService) GetByID(ctx context.Context, userID, id uuid.UUID) (*billingapp.QuoteResponse, error) {
	return m.quote(m.Called(ctx, userID, id))
}

func (m *MockQuoteService) List(ctx context.Context, userID uuid.UUID, filter billingapp.DocumentListFilter) ([]billingapp.QuoteResponse, int64, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]billingapp.QuoteResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockQuoteService) Update(ctx context.Context, userID, id uuid.UUID, req billingapp.UpdateQuoteRequest) (*billingapp.QuoteResponse, error) {
	return m.quote(m.Called(ctx, userID, id, req))
}

func (m *MockQuoteService) Send(ctx context.Context, userID, id uuid.UUID) (*billingapp.QuoteResponse, error) {
	return m.quote(m.Called(ctx, userID, id))
}

func (m *MockQuoteService) Accept(ctx context.Context, userID, id uuid.UUID) (*billingapp.QuoteResponse, error) {
	return m.quote(m.Called(ctx, userID, id))
}

func (m *MockQuoteService) Reject(ctx context.Context, userID, id uuid.UUID, req billingapp.RejectQuoteRequest) (*billingapp.QuoteResponse, error) {
	return m.quote(m.Called(ctx, userID, id, req))
}

func (m *MockQuoteService) ConvertToInvoice(ctx context.Context, userID, id uuid.UUID, req billingapp.ConvertQuoteRequest) (*billingapp.ConversionResponse, error) {
	args := m.Called(ctx, userID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingapp.ConversionResponse), args.Error(1)
}

func (m *MockQuoteService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockQuoteService) Stats(ctx context.Context, userID uuid.UUID) *billing.QuoteStats {
	return m.Called(ctx, userID).Get(0).(*billing.QuoteStats)
}

type MockClientService struct {
	mock.Mock
}

func (m *MockClientService) client(args mock.Arguments) (*partnerapp.ClientResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partnerapp.ClientResponse), args.Error(1)
}

func (m *MockClientService) Create(ctx context.Context, userID uuid.UUID, req partnerapp.CreateClientRequest) (*partnerapp.ClientResponse, error) {
	return m.client(m.Called(ctx, userID, req))
}

func (m *MockClientService) GetByID(ctx context.Context, userID, clientID uuid.UUID) (*partnerapp.ClientResponse, error) {
	return m.client(m.Called(ctx, userID, clientID))
}

func (m *MockClientService) List(ctx context.Context, userID uuid.UUID, filter partnerapp.ClientListFilter) ([]partnerapp.ClientResponse, int64, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]partnerapp.ClientResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockClientService) Update(ctx context.Context, userID, clientID uuid.UUID, req partnerapp.UpdateClientRequest) (*partnerapp.ClientResponse, error) {
	return m.client(m.Called(ctx, userID, clientID, req))
}

func (m *MockClientService) Delete(ctx context.Context, userID, clientID uuid.UUID) error {
	return m.Called(ctx, userID, clientID).Error(0)
}

func (m *MockClientService) Stats(ctx context.Context, userID uuid.UUID) *partnerapp.ClientStatsResponse {
	return m.Called(ctx, userID).Get(0).(*partnerapp.ClientStatsResponse)
}

type MockCompanyService struct {
	mock.Mock
}

func (m *MockCompanyService) company(args mock.Arguments) (*partnerapp.CompanyResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partnerapp.CompanyResponse), args.Error(1)
}

func (m *MockCompanyService) Create(ctx context.Context, userID uuid.UUID, req partnerapp.CreateCompanyRequest) (*partnerapp.CompanyResponse, error) {
	return m.company(m.Called(ctx, userID, req))
}

func (m *MockCompanyService) GetByID(ctx context.Context, userID, companyID uuid.UUID) (*partnerapp.CompanyResponse, error) {
	return m.company(m.Called(ctx, userID, companyID))
}

func (m *MockCompanyService) List(ctx context.Context, userID uuid.UUID, filter partnerapp.CompanyListFilter) ([]partnerapp.CompanyResponse, int64, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]partnerapp.CompanyResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockCompanyService) Update(ctx context.Context, userID, companyID uuid.UUID, req partnerapp.UpdateCompanyRequest) (*partnerapp.CompanyResponse, error) {
	return m.company(m.Called(ctx, userID, companyID, req))
}

func (m *MockCompanyService) Delete(ctx context.Context, userID, companyID uuid.UUID) error {
	return m.Called(ctx, userID, companyID).Error(0)
}

func (m *MockCompanyService) Clients(ctx context.Context, userID, companyID uuid.UUID, page, pageSize int) ([]partnerapp.ClientResponse, int64, error) {
	args := m.Called(ctx, userID, companyID, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]partnerapp.ClientResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockCompanyService) Stats(ctx context.Context, userID uuid.UUID) *partner.CompanyStats {
	return m.Called(ctx, userID).Get(0).(*partner.CompanyStats)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, req identity.LoginRequest) (*identity.LoginResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.LoginResponse), args.Error(1)
}

func (m *MockAuthService) Refresh(ctx context.Context, req identity.RefreshTokenRequest) (*identity.LoginResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.LoginResponse), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, session identity.SessionToken, req identity.LogoutRequest) error {
	return m.Called(ctx, session, req).Error(0)
}

func (m *MockAuthService) Me(ctx context.Context, userID uuid.UUID) (*identity.UserResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.UserResponse), args.Error(1)
}

func (m *MockAuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req identity.UpdateProfileRequest) (*identity.UserResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.UserResponse), args.Error(1)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req identity.ChangePasswordRequest) error {
	return m.Called(ctx, userID, req).Error(0)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Create(ctx context.Context, req identity.CreateUserRequest) (*identity.UserResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.UserResponse), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*identity.UserResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.UserResponse), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context, filter identity.UserListFilter) ([]identity.UserResponse, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]identity.UserResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserService) Update(ctx context.Context, actorID, id uuid.UUID, req identity.UpdateUserRequest) (*identity.UserResponse, error) {
	args := m.Called(ctx, actorID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.UserResponse), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	return m.Called(ctx, actorID, id).Error(0)
}

type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) GetCompany(ctx context.Context, userID uuid.UUID) (*settingsapp.CompanyInfoResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settingsapp.CompanyInfoResponse), args.Error(1)
}

func (m *MockSettingsService) UpdateCompany(ctx context.Context, userID uuid.UUID, req settingsapp.UpdateCompanyInfoRequest) (*settingsapp.CompanyInfoResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settingsapp.CompanyInfoResponse), args.Error(1)
}
