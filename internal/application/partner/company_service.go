package partner

import (
	"context"
	"fmt"
	"strings"

	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/cache"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CompanyService handles company-related business operations
type CompanyService struct {
	companyRepo partner.CompanyRepository
	clientRepo  partner.ClientRepository
	stats       cache.StatsCache
	logger      *zap.Logger
}

// NewCompanyService creates a new CompanyService
func NewCompanyService(
	companyRepo partner.CompanyRepository,
	clientRepo partner.ClientRepository,
	stats cache.StatsCache,
	log *zap.Logger,
) *CompanyService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CompanyService{
		companyRepo: companyRepo,
		clientRepo:  clientRepo,
		stats:       stats,
		logger:      log.Named("company_service"),
	}
}

// Create creates a new company
func (s *CompanyService) Create(ctx context.Context, userID uuid.UUID, req CreateCompanyRequest) (*CompanyResponse, error) {
	if err := s.checkName(ctx, userID, req.Name, nil); err != nil {
		return nil, err
	}

	company, err := partner.NewCompany(userID, req.toParams())
	if err != nil {
		return nil, err
	}
	if err := s.companyRepo.Save(ctx, company); err != nil {
		return nil, err
	}

	logger.With(ctx, s.logger).Info("Company created",
		zap.String("company_id", company.ID.String()),
		zap.String("name", company.Name),
	)
	s.invalidateStats(ctx, userID)

	response := ToCompanyResponse(company)
	return &response, nil
}

// GetByID retrieves a company
func (s *CompanyService) GetByID(ctx context.Context, userID, companyID uuid.UUID) (*CompanyResponse, error) {
	company, err := s.companyRepo.FindByIDForOwner(ctx, userID, companyID)
	if err != nil {
		return nil, err
	}
	response := ToCompanyResponse(company)
	return &response, nil
}

// List retrieves a page of companies
func (s *CompanyService) List(ctx context.Context, userID uuid.UUID, filter CompanyListFilter) ([]CompanyResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	companies, total, err := s.companyRepo.FindAllForOwner(ctx, userID, shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   strings.TrimSpace(filter.Search),
	}, filter.Status)
	if err != nil {
		return nil, 0, err
	}
	return ToCompanyResponses(companies), total, nil
}

// Update replaces the company's editable fields
func (s *CompanyService) Update(ctx context.Context, userID, companyID uuid.UUID, req UpdateCompanyRequest) (*CompanyResponse, error) {
	company, err := s.companyRepo.FindByIDForOwner(ctx, userID, companyID)
	if err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, userID, req.Name, &company.ID); err != nil {
		return nil, err
	}

	if err := company.Update(userID, CreateCompanyRequest(req).toParams()); err != nil {
		return nil, err
	}
	if err := s.companyRepo.SaveWithLock(ctx, company); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, userID)

	response := ToCompanyResponse(company)
	return &response, nil
}

// Delete removes a company that no client references
func (s *CompanyService) Delete(ctx context.Context, userID, companyID uuid.UUID) error {
	if _, err := s.companyRepo.FindByIDForOwner(ctx, userID, companyID); err != nil {
		return err
	}

	_, linked, err := s.clientRepo.FindAllForOwner(ctx, userID, partner.ClientFilter{
		Filter:    shared.Filter{Page: 1, PageSize: 1, OrderBy: "created_at", OrderDir: "desc"},
		CompanyID: &companyID,
	})
	if err != nil {
		return err
	}
	if linked > 0 {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot delete company: %d client(s) still reference it", linked))
	}

	if err := s.companyRepo.DeleteForOwner(ctx, userID, companyID); err != nil {
		return err
	}
	logger.With(ctx, s.logger).Info("Company deleted", zap.String("company_id", companyID.String()))
	s.invalidateStats(ctx, userID)
	return nil
}

// Clients lists the clients of a company
func (s *CompanyService) Clients(ctx context.Context, userID, companyID uuid.UUID, page, pageSize int) ([]ClientResponse, int64, error) {
	if _, err := s.companyRepo.FindByIDForOwner(ctx, userID, companyID); err != nil {
		return nil, 0, err
	}
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 100
	}

	clients, total, err := s.clientRepo.FindAllForOwner(ctx, userID, partner.ClientFilter{
		Filter:    shared.Filter{Page: page, PageSize: pageSize, OrderBy: "last_name", OrderDir: "asc"},
		CompanyID: &companyID,
	})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ClientResponse, len(clients))
	for i := range clients {
		responses[i] = ToClientResponse(&clients[i], decimal.Zero)
	}
	return responses, total, nil
}

// Stats returns the company summary grouped by status, industry and size
func (s *CompanyService) Stats(ctx context.Context, userID uuid.UUID) *partner.CompanyStats {
	log := logger.With(ctx, s.logger)

	var cached partner.CompanyStats
	if s.stats != nil {
		hit, err := s.stats.Get(ctx, userID, cache.StatsCompanies, &cached)
		if err != nil {
			log.Warn("Stats cache read failed", zap.Error(err))
		} else if hit {
			return &cached
		}
	}

	stats, err := s.companyRepo.Stats(ctx, userID)
	if err != nil {
		log.Error("Company stats aggregation failed", zap.Error(err))
		return &partner.CompanyStats{
			StatusStats:   []partner.GroupCount{},
			IndustryStats: []partner.GroupCount{},
			SizeStats:     []partner.GroupCount{},
		}
	}
	if s.stats != nil {
		if err := s.stats.Set(ctx, userID, cache.StatsCompanies, stats); err != nil {
			log.Warn("Stats cache write failed", zap.Error(err))
		}
	}
	return stats
}

func (s *CompanyService) checkName(ctx context.Context, userID uuid.UUID, name string, excludeID *uuid.UUID) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	exists, err := s.companyRepo.ExistsByName(ctx, userID, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "Company with this name already exists")
	}
	return nil
}

func (s *CompanyService) invalidateStats(ctx context.Context, userID uuid.UUID) {
	if s.stats == nil {
		return
	}
	if err := s.stats.Invalidate(ctx, userID, cache.StatsCompanies); err != nil {
		logger.With(ctx, s.logger).Warn("Stats cache invalidation failed", zap.Error(err))
	}
}
