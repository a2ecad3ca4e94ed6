// Package settings holds the company profile use cases
package settings

import (
	"context"
	"errors"

	"github.com/crm/backend/internal/domain/settings"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service reads and edits the acting user's company profile
type Service struct {
	repo   settings.CompanyInfoRepository
	logger *zap.Logger
}

// NewService creates a new Service
func NewService(repo settings.CompanyInfoRepository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		logger: log.Named("settings_service"),
	}
}

// GetCompany returns the user's profile, creating the default one on first read
func (s *Service) GetCompany(ctx context.Context, userID uuid.UUID) (*CompanyInfoResponse, error) {
	info, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToCompanyInfoResponse(info)
	return &resp, nil
}

// UpdateCompany merges req into the user's profile, creating it first if needed
func (s *Service) UpdateCompany(ctx context.Context, userID uuid.UUID, req UpdateCompanyInfoRequest) (*CompanyInfoResponse, error) {
	info, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := info.Update(userID, req.mergeInto(info.Params())); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, info); err != nil {
		return nil, err
	}

	logger.With(ctx, s.logger).Info("Company settings updated",
		zap.String("settings_id", info.ID.String()),
		zap.String("currency", info.Currency),
	)
	resp := ToCompanyInfoResponse(info)
	return &resp, nil
}

// BillingDefaults returns the defaults new documents of ownerID inherit.
// An owner without a stored profile gets the built-in defaults and no
// profile is created.
func (s *Service) BillingDefaults(ctx context.Context, ownerID uuid.UUID) (settings.BillingDefaults, error) {
	info, err := s.repo.FindByOwner(ctx, ownerID)
	if errors.Is(err, shared.ErrNotFound) {
		return settings.NewDefaultCompanyInfo(ownerID).BillingDefaults(), nil
	}
	if err != nil {
		return settings.BillingDefaults{}, err
	}
	return info.BillingDefaults(), nil
}

// loadOrCreate finds the profile or stores the default one. A concurrent
// first read that wins the insert is picked up by reading again.
func (s *Service) loadOrCreate(ctx context.Context, userID uuid.UUID) (*settings.CompanyInfo, error) {
	info, err := s.repo.FindByOwner(ctx, userID)
	if err == nil {
		return info, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	info = settings.NewDefaultCompanyInfo(userID)
	if err := s.repo.Create(ctx, info); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return s.repo.FindByOwner(ctx, userID)
		}
		return nil, err
	}
	logger.With(ctx, s.logger).Info("Default company settings created",
		zap.String("settings_id", info.ID.String()),
	)
	return info, nil
}
