// Package partner holds the client and company use cases.
package partner

import (
	"context"
	"errors"
	"strings"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/cache"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceTotals reads the invoice sums behind the client value figures
type InvoiceTotals interface {
	SumTotalByClient(ctx context.Context, ownerID, clientID uuid.UUID) (decimal.Decimal, error)
	Stats(ctx context.Context, ownerID uuid.UUID) (*billing.InvoiceStats, error)
}

// ClientService handles client-related business operations
type ClientService struct {
	clientRepo  partner.ClientRepository
	companyRepo partner.CompanyRepository
	invoices    InvoiceTotals
	stats       cache.StatsCache
	logger      *zap.Logger
}

// NewClientService creates a new ClientService
func NewClientService(
	clientRepo partner.ClientRepository,
	companyRepo partner.CompanyRepository,
	invoices InvoiceTotals,
	stats cache.StatsCache,
	log *zap.Logger,
) *ClientService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ClientService{
		clientRepo:  clientRepo,
		companyRepo: companyRepo,
		invoices:    invoices,
		stats:       stats,
		logger:      log.Named("client_service"),
	}
}

// Create creates a new client
func (s *ClientService) Create(ctx context.Context, userID uuid.UUID, req CreateClientRequest) (*ClientResponse, error) {
	if err := s.checkEmail(ctx, userID, req.Email, nil); err != nil {
		return nil, err
	}
	if err := s.checkCompany(ctx, userID, req.CompanyID); err != nil {
		return nil, err
	}

	client, err := partner.NewClient(userID, req.toParams())
	if err != nil {
		return nil, err
	}
	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}

	logger.With(ctx, s.logger).Info("Client created",
		zap.String("client_id", client.ID.String()),
		zap.String("email", client.Email),
	)
	s.invalidateStats(ctx, userID)

	response := ToClientResponse(client, decimal.Zero)
	return &response, nil
}

// GetByID retrieves a client with its invoice total
func (s *ClientService) GetByID(ctx context.Context, userID, clientID uuid.UUID) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByIDForOwner(ctx, userID, clientID)
	if err != nil {
		return nil, err
	}
	response := ToClientResponse(client, s.totalValue(ctx, userID, client.ID))
	return &response, nil
}

// List retrieves a page of clients with filtering
func (s *ClientService) List(ctx context.Context, userID uuid.UUID, filter ClientListFilter) ([]ClientResponse, int64, error) {
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

	domainFilter := partner.ClientFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   strings.TrimSpace(filter.Search),
		},
		Status: filter.Status,
	}
	if filter.CompanyID != "" {
		id, err := uuid.Parse(filter.CompanyID)
		if err != nil {
			return nil, 0, shared.NewDomainError("VALIDATION_ERROR", "company_id must be a UUID")
		}
		domainFilter.CompanyID = &id
	}

	clients, total, err := s.clientRepo.FindAllForOwner(ctx, userID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ClientResponse, len(clients))
	for i := range clients {
		responses[i] = ToClientResponse(&clients[i], s.totalValue(ctx, userID, clients[i].ID))
	}
	return responses, total, nil
}

// Update replaces the client's editable fields
func (s *ClientService) Update(ctx context.Context, userID, clientID uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByIDForOwner(ctx, userID, clientID)
	if err != nil {
		return nil, err
	}
	if err := s.checkEmail(ctx, userID, req.Email, &client.ID); err != nil {
		return nil, err
	}
	if err := s.checkCompany(ctx, userID, req.CompanyID); err != nil {
		return nil, err
	}

	if err := client.Update(userID, CreateClientRequest(req).toParams()); err != nil {
		return nil, err
	}
	if err := s.clientRepo.SaveWithLock(ctx, client); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, userID)

	response := ToClientResponse(client, s.totalValue(ctx, userID, client.ID))
	return &response, nil
}

// Delete removes a client. Invoices and quotes keep their client reference.
func (s *ClientService) Delete(ctx context.Context, userID, clientID uuid.UUID) error {
	if err := s.clientRepo.DeleteForOwner(ctx, userID, clientID); err != nil {
		return err
	}
	logger.With(ctx, s.logger).Info("Client deleted", zap.String("client_id", clientID.String()))
	s.invalidateStats(ctx, userID)
	return nil
}

// Stats returns the client summary. Like the billing summaries it is
// cached and degrades to zeros when the aggregation fails.
func (s *ClientService) Stats(ctx context.Context, userID uuid.UUID) *ClientStatsResponse {
	log := logger.With(ctx, s.logger)

	var cached ClientStatsResponse
	if s.stats != nil {
		hit, err := s.stats.Get(ctx, userID, cache.StatsClients, &cached)
		if err != nil {
			log.Warn("Stats cache read failed", zap.Error(err))
		} else if hit {
			return &cached
		}
	}

	result := &ClientStatsResponse{TotalValue: decimal.Zero}
	counts, err := s.clientRepo.Stats(ctx, userID)
	if err != nil {
		log.Error("Client stats aggregation failed", zap.Error(err))
		return result
	}
	result.ClientStats = *counts

	if s.invoices != nil {
		invoiceStats, err := s.invoices.Stats(ctx, userID)
		if err != nil {
			log.Warn("Client total value unavailable", zap.Error(err))
			return result
		}
		result.TotalValue = invoiceStats.TotalAmount
	}

	if s.stats != nil {
		if err := s.stats.Set(ctx, userID, cache.StatsClients, result); err != nil {
			log.Warn("Stats cache write failed", zap.Error(err))
		}
	}
	return result
}

func (s *ClientService) checkEmail(ctx context.Context, userID uuid.UUID, email string, excludeID *uuid.UUID) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	exists, err := s.clientRepo.ExistsByEmail(ctx, userID, email, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "Client with this email already exists")
	}
	return nil
}

func (s *ClientService) checkCompany(ctx context.Context, userID uuid.UUID, companyID *uuid.UUID) error {
	if companyID == nil || s.companyRepo == nil {
		return nil
	}
	if _, err := s.companyRepo.FindByIDForOwner(ctx, userID, *companyID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("NOT_FOUND", "Company not found")
		}
		return err
	}
	return nil
}

// totalValue sums the client's invoices; failures read as zero
func (s *ClientService) totalValue(ctx context.Context, userID, clientID uuid.UUID) decimal.Decimal {
	if s.invoices == nil {
		return decimal.Zero
	}
	total, err := s.invoices.SumTotalByClient(ctx, userID, clientID)
	if err != nil {
		logger.With(ctx, s.logger).Warn("Client total value unavailable",
			zap.String("client_id", clientID.String()),
			zap.Error(err),
		)
		return decimal.Zero
	}
	return total
}

func (s *ClientService) invalidateStats(ctx context.Context, userID uuid.UUID) {
	if s.stats == nil {
		return
	}
	if err := s.stats.Invalidate(ctx, userID, cache.StatsClients); err != nil {
		logger.With(ctx, s.logger).Warn("Stats cache invalidation failed", zap.Error(err))
	}
}
