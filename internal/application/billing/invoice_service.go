package billing

import (
	"context"
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/cache"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/crm/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceService handles invoice use cases. Every operation is scoped to
// the acting user, who is both the owner filter and the recorded editor.
type InvoiceService struct {
	invoiceRepo    billing.InvoiceRepository
	clients        clientLookup
	stats          cache.StatsCache
	eventPublisher shared.EventPublisher
	defaults       DefaultsSource
	config         ServiceConfig
	logger         *zap.Logger
	now            func() time.Time
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	clientRepo partner.ClientRepository,
	stats cache.StatsCache,
	config ServiceConfig,
	log *zap.Logger,
) *InvoiceService {
	if log == nil {
		log = zap.NewNop()
	}
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		clients:     clientLookup{clients: clientRepo},
		stats:       stats,
		config:      config.normalized(),
		logger:      log.Named("invoice_service"),
		now:         time.Now,
	}
}

// SetEventPublisher sets the publisher that receives committed invoice events
func (s *InvoiceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetDefaultsSource sets where per-owner currency and terms defaults come from
func (s *InvoiceService) SetDefaultsSource(src DefaultsSource) {
	s.defaults = src
}

// Create validates the request, copies the client's company, allocates the
// invoice number and persists the invoice
func (s *InvoiceService) Create(ctx context.Context, userID uuid.UUID, req CreateInvoiceRequest) (_ *InvoiceResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "InvoiceService", "Create",
		telemetry.WithAttribute(telemetry.AttrOwnerID, userID),
		telemetry.WithAttribute(telemetry.AttrClientID, req.ClientID),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	now := s.now()
	params, err := s.buildParams(ctx, userID, req, now)
	if err != nil {
		return nil, err
	}

	inv, err := billing.NewInvoice(userID, params, now)
	if err != nil {
		return nil, err
	}

	if err := withNumberRetry(ctx, s.logger, s.config, func() error {
		return s.invoiceRepo.Create(ctx, inv)
	}); err != nil {
		return nil, err
	}
	telemetry.SetAttribute(span, telemetry.AttrDocumentNumber, inv.Number)

	logger.With(ctx, s.logger).Info("Invoice created",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("number", inv.Number),
		zap.String("total", inv.TotalAmount.String()),
	)
	publishEvents(ctx, s.eventPublisher, s.logger, inv)

	resp := ToInvoiceResponse(inv, now)
	return &resp, nil
}

func (s *InvoiceService) buildParams(ctx context.Context, userID uuid.UUID, req CreateInvoiceRequest, now time.Time) (billing.InvoiceParams, error) {
	client, err := s.clients.resolve(ctx, userID, req.ClientID)
	if err != nil {
		return billing.InvoiceParams{}, err
	}
	items, err := toLineItems(req.Items)
	if err != nil {
		return billing.InvoiceParams{}, err
	}

	defaults := documentDefaults(ctx, s.defaults, s.logger, s.config, userID)
	currency := req.Currency
	if currency == "" {
		currency = defaults.Currency
	}
	paymentTerms := req.PaymentTerms
	if strings.TrimSpace(paymentTerms) == "" {
		paymentTerms = defaults.PaymentTerms
	}
	issue := dateOr(req.IssueDate, now)

	return billing.InvoiceParams{
		DocumentParams: billing.DocumentParams{
			ClientID:  client.ID,
			CompanyID: client.CompanyID,
			IssueDate: issue,
			Currency:  currency,
			Items:     items,
			TaxRate:   req.TaxRate,
			Notes:     req.Notes,
			Terms:     req.Terms,
		},
		DueDate:       dateOr(req.DueDate, issue.AddDate(0, 0, s.config.DefaultDueDays)),
		PaymentTerms:  paymentTerms,
		PaymentMethod: billing.PaymentMethod(req.PaymentMethod),
	}, nil
}

// GetByID returns an invoice owned by userID
func (s *InvoiceService) GetByID(ctx context.Context, userID, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByIDForOwner(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv, s.now())
	return &resp, nil
}

// List returns a page of the user's invoices and the total match count
func (s *InvoiceService) List(ctx context.Context, userID uuid.UUID, filter DocumentListFilter) ([]InvoiceResponse, int64, error) {
	lf, err := toListFilter(filter)
	if err != nil {
		return nil, 0, err
	}
	invoices, total, err := s.invoiceRepo.FindAllForOwner(ctx, userID, lf)
	if err != nil {
		return nil, 0, err
	}
	return ToInvoiceResponses(invoices, s.now()), total, nil
}

// Update replaces the invoice content and recalculates its totals
func (s *InvoiceService) Update(ctx context.Context, userID, id uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByIDForOwner(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	params, err := s.buildParams(ctx, userID, CreateInvoiceRequest(req), now)
	if err != nil {
		return nil, err
	}
	if req.IssueDate == nil {
		params.IssueDate = inv.IssueDate
		if req.DueDate == nil {
			params.DueDate = inv.DueDate
		}
	}

	if err := inv.Update(userID, params, now); err != nil {
		return nil, err
	}
	return s.save(ctx, inv, now)
}

// Send moves a draft invoice to sent
func (s *InvoiceService) Send(ctx context.Context, userID, id uuid.UUID) (*InvoiceResponse, error) {
	return s.transition(ctx, userID, id, func(inv *billing.Invoice, now time.Time) error {
		return inv.Send(userID, now)
	})
}

// Cancel cancels an unpaid invoice
func (s *InvoiceService) Cancel(ctx context.Context, userID, id uuid.UUID) (*InvoiceResponse, error) {
	return s.transition(ctx, userID, id, func(inv *billing.Invoice, _ time.Time) error {
		return inv.Cancel(userID)
	})
}

// MarkPaid records a payment and moves the invoice to paid
func (s *InvoiceService) MarkPaid(ctx context.Context, userID, id uuid.UUID, req MarkPaidRequest) (*InvoiceResponse, error) {
	return s.transition(ctx, userID, id, func(inv *billing.Invoice, now time.Time) error {
		return inv.MarkPaid(userID, billing.Payment{
			Amount: req.PaidAmount,
			Method: billing.PaymentMethod(req.PaymentMethod),
			Date:   req.PaidDate,
		}, now)
	})
}

func (s *InvoiceService) transition(ctx context.Context, userID, id uuid.UUID, apply func(*billing.Invoice, time.Time) error) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByIDForOwner(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := apply(inv, now); err != nil {
		return nil, err
	}
	return s.save(ctx, inv, now)
}

func (s *InvoiceService) save(ctx context.Context, inv *billing.Invoice, now time.Time) (*InvoiceResponse, error) {
	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	publishEvents(ctx, s.eventPublisher, s.logger, inv)

	resp := ToInvoiceResponse(inv, now)
	return &resp, nil
}

// Delete removes an invoice owned by userID
func (s *InvoiceService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	inv, err := s.invoiceRepo.FindByIDForOwner(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.invoiceRepo.DeleteForOwner(ctx, userID, id); err != nil {
		return err
	}

	logger.With(ctx, s.logger).Info("Invoice deleted",
		zap.String("invoice_id", id.String()),
		zap.String("number", inv.Number),
	)
	if s.eventPublisher != nil {
		evt := billing.NewDocumentDeletedEvent(billing.KindInvoice, inv.ID, inv.OwnerID, inv.Number)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			logger.With(ctx, s.logger).Error("Failed to publish domain events", zap.Error(err))
		}
	}
	return nil
}

// Stats returns the user's invoice summary. It is served from the stats
// cache when possible; a failing aggregation degrades to an empty summary.
func (s *InvoiceService) Stats(ctx context.Context, userID uuid.UUID) *billing.InvoiceStats {
	log := logger.With(ctx, s.logger)

	var cached billing.InvoiceStats
	if s.stats != nil {
		hit, err := s.stats.Get(ctx, userID, cache.StatsInvoices, &cached)
		if err != nil {
			log.Warn("Stats cache read failed", zap.Error(err))
		} else if hit {
			return &cached
		}
	}

	stats, err := s.invoiceRepo.Stats(ctx, userID)
	if err != nil {
		log.Error("Invoice stats aggregation failed", zap.Error(err))
		return emptyInvoiceStats()
	}
	if s.stats != nil {
		if err := s.stats.Set(ctx, userID, cache.StatsInvoices, stats); err != nil {
			log.Warn("Stats cache write failed", zap.Error(err))
		}
	}
	return stats
}

func emptyInvoiceStats() *billing.InvoiceStats {
	return &billing.InvoiceStats{
		StatusStats: []billing.StatusCount{},
		TotalAmount: decimal.Zero,
		PaidAmount:  decimal.Zero,
	}
}
