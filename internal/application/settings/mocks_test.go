package settings

import (
	"context"

	"github.com/crm/backend/internal/domain/settings"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockCompanyInfoRepository struct {
	mock.Mock
}

func (m *MockCompanyInfoRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*settings.CompanyInfo, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settings.CompanyInfo), args.Error(1)
}

func (m *MockCompanyInfoRepository) Create(ctx context.Context, info *settings.CompanyInfo) error {
	return m.Called(ctx, info).Error(0)
}

func (m *MockCompanyInfoRepository) SaveWithLock(ctx context.Context, info *settings.CompanyInfo) error {
	return m.Called(ctx, info).Error(0)
}
