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

// QuoteService handles quote use cases including conversion to an invoice
type QuoteService struct {
	quoteRepo      billing.QuoteRepository
	clients        clientLookup
	stats          cache.StatsCache
	eventPublisher shared.EventPublisher
	defaults       DefaultsSource
	config         ServiceConfig
	logger         *zap.Logger
	now            func() time.Time
}

// NewQuoteService creates a new QuoteService
func NewQuoteService(
	quoteRepo billing.QuoteRepository,
	clientRepo partner.ClientRepository,
	stats cache.StatsCache,
	config ServiceConfig,
	log *zap.Logger,
) *QuoteService {
	if log == nil {
		log = zap.NewNop()
	}
	return &QuoteService{
		quoteRepo: quoteRepo,
		clients:   clientLookup{clients: clientRepo},
		stats:     stats,
		config:    config.normalized(),
		logger:    log.Named("quote_service"),
		now:       time.Now,
	}
}

// SetEventPublisher sets the publisher that receives committed quote events
func (s *QuoteService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetDefaultsSource sets where per-owner currency and terms defaults come from
func (s *QuoteService) SetDefaultsSource(src DefaultsSource) {
	s.defaults = src
}

// Create validates the request, copies the client's company, allocates the
// quote number and persists the quote
func (s *QuoteService) Create(ctx context.Context, userID uuid.UUID, req CreateQuoteRequest) (_ *QuoteResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "QuoteService", "Create",
		telemetry.WithAttribute(telemetry.AttrOwnerID, userID),
		telemetry.WithAttribute(telemetry.AttrClientID, req.ClientID),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	now := s.now()
	params, err := s.buildParams(ctx, userID, req, now)
	if err != nil {
		return nil, err
	}

	q, err := billing.NewQuote(userID, params, now)
	if err != nil {
		return nil, err
	}

	if err := withNumberRetry(ctx, s.logger, s.config, func() error {
		return s.quoteRepo.Create(ctx, q)
	}); err != nil {
		return nil, err
	}
	telemetry.SetAttribute(span, telemetry.AttrDocumentNumber, q.Number)

	logger.With(ctx, s.logger).Info("Quote created",
		zap.String("quote_id", q.ID.String()),
		zap.String("number", q.Number),
		zap.String("total", q.TotalAmount.String()),
	)
	publishEvents(ctx, s.eventPublisher, s.logger, q)

	resp := ToQuoteResponse(q, now)
	return &resp, nil
}

func (s *QuoteService) buildParams(ctx context.Context, userID uuid.UUID, req CreateQuoteRequest, now time.Time) (billing.QuoteParams, error) {
	client, err := s.clients.resolve(ctx, userID, req.ClientID)
	if err != nil {
		return billing.QuoteParams{}, err
	}
	items, err := toLineItems(req.Items)
	if err != nil {
		return billing.QuoteParams{}, err
	}

	defaults := documentDefaults(ctx, s.defaults, s.logger, s.config, userID)
	currency := req.Currency
	if currency == "" {
		currency = defaults.Currency
	}
	terms := req.Terms
	if strings.TrimSpace(terms) == "" {
		terms = defaults.QuoteTerms
	}
	issue := dateOr(req.IssueDate, now)

	var discount *billing.Discount
	if req.Discount != nil {
		discount = &billing.Discount{
			Value: req.Discount.Value,
			Type:  billing.DiscountType(req.Discount.Type),
		}
		if discount.Type == "" {
			discount.Type = billing.DiscountTypePercentage
		}
	}

	return billing.QuoteParams{
		DocumentParams: billing.DocumentParams{
			ClientID:  client.ID,
			CompanyID: client.CompanyID,
			IssueDate: issue,
			Currency:  currency,
			Items:     items,
			TaxRate:   req.TaxRate,
			Notes:     req.Notes,
			Terms:     terms,
		},
		ValidUntil: dateOr(req.ValidUntil, issue.AddDate(0, 0, s.config.DefaultDueDays)),
		Discount:   discount,
	}, nil
}

// GetByID returns a quote owned by userID
func (s *QuoteService) GetByID(ctx context.Context, userID, id uuid.UUID) (*QuoteResponse, error) {
	q, err := s.quoteRepo.FindByIDForOwner(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	resp := ToQuoteResponse(q, s.now())
	return &resp, nil
}

// List returns a page of the user's quotes and the total match count
func (s *QuoteService) List(ctx context.Context, userID uuid.UUID, filter DocumentListFilter) ([]QuoteResponse, int64, error) {
	lf, err := toListFilter(filter)
	if err != nil {
		return nil, 0, err
	}
	quotes, total, err := s.quoteRepo.FindAllForOwner(ctx, userID, lf)
	if err != nil {
		return nil, 0, err
	}
	return ToQuoteResponses(quotes, s.now()), total, nil
}

// Update replaces the quote content and recalculates its totals
func (s *QuoteService) Update(ctx context.Context, userID, id uuid.UUID, req UpdateQuoteRequest) (*QuoteResponse, error) {
	q, err := s.quoteRepo.FindByIDForOwner(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	params, err := s.buildParams(ctx, userID, CreateQuoteRequest(req), now)
	if err != nil {
		return nil, err
	}
	if req.IssueDate == nil {
		params.IssueDate = q.IssueDate
		if req.ValidUntil == nil {
			params.ValidUntil = q.ValidUntil
		}
	}

	if err := q.Update(userID, params, now); err != nil {
		return nil, err
	}
	return s.save(ctx, q, now)
}

// Send moves a draft quote to sent
func (s *QuoteService) Send(ctx context.Context, userID, id uuid.UUID) (*QuoteResponse, error) {
	return s.transition(ctx, userID, id, func(q *billing.Quote, now time.Time) error {
		return q.Send(userID, now)
	})
}

// Accept records the client's acceptance
func (s *QuoteService) Accept(ctx context.Context, userID, id uuid.UUID) (*QuoteResponse, error) {
	return s.transition(ctx, userID, id, func(q *billing.Quote, now time.Time) error {
		return q.Accept(userID, now)
	})
}

// Reject records the client's rejection and its reason
func (s *QuoteService) Reject(ctx context.Context, userID, id uuid.UUID, req RejectQuoteRequest) (*QuoteResponse, error) {
	return s.transition(ctx, userID, id, func(q *billing.Quote, now time.Time) error {
		return q.Reject(userID, req.Reason, now)
	})
}

func (s *QuoteService) transition(ctx context.Context, userID, id uuid.UUID, apply func(*billing.Quote, time.Time) error) (*QuoteResponse, error) {
	q, err := s.quoteRepo.FindByIDForOwner(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := apply(q, now); err != nil {
		return nil, err
	}
	return s.save(ctx, q, now)
}

func (s *QuoteService) save(ctx context.Context, q *billing.Quote, now time.Time) (*QuoteResponse, error) {
	if err := s.quoteRepo.SaveWithLock(ctx, q); err != nil {
		return nil, err
	}
	publishEvents(ctx, s.eventPublisher, s.logger, q)

	resp := ToQuoteResponse(q, now)
	return &resp, nil
}

// ConvertToInvoice turns the quote into a draft invoice. The invoice insert
// and the quote update are committed together; a quote can be converted
// only once.
func (s *QuoteService) ConvertToInvoice(ctx context.Context, userID, id uuid.UUID, req ConvertQuoteRequest) (_ *ConversionResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "QuoteService", "ConvertToInvoice",
		telemetry.WithAttribute(telemetry.AttrOwnerID, userID),
		telemetry.WithAttribute(telemetry.AttrDocumentID, id),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	q, err := s.quoteRepo.FindByIDForOwner(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	paymentTerms := req.PaymentTerms
	if strings.TrimSpace(paymentTerms) == "" {
		paymentTerms = documentDefaults(ctx, s.defaults, s.logger, s.config, userID).PaymentTerms
	}

	now := s.now()
	inv, err := q.ConvertToInvoice(userID, billing.ConversionOptions{
		DueDate:      req.DueDate,
		PaymentTerms: paymentTerms,
	}, now)
	if err != nil {
		return nil, err
	}

	if err := withNumberRetry(ctx, s.logger, s.config, func() error {
		return s.quoteRepo.Convert(ctx, q, inv)
	}); err != nil {
		return nil, err
	}

	logger.With(ctx, s.logger).Info("Quote converted to invoice",
		zap.String("quote_id", q.ID.String()),
		zap.String("quote_number", q.Number),
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_number", inv.Number),
	)
	publishEvents(ctx, s.eventPublisher, s.logger, inv, q)

	return &ConversionResponse{
		Quote:   ToQuoteResponse(q, now),
		Invoice: ToInvoiceResponse(inv, now),
	}, nil
}

// Delete removes a quote owned by userID
func (s *QuoteService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	q, err := s.quoteRepo.FindByIDForOwner(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.quoteRepo.DeleteForOwner(ctx, userID, id); err != nil {
		return err
	}

	logger.With(ctx, s.logger).Info("Quote deleted",
		zap.String("quote_id", id.String()),
		zap.String("number", q.Number),
	)
	if s.eventPublisher != nil {
		evt := billing.NewDocumentDeletedEvent(billing.KindQuote, q.ID, q.OwnerID, q.Number)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			logger.With(ctx, s.logger).Error("Failed to publish domain events", zap.Error(err))
		}
	}
	return nil
}

// Stats returns the user's quote summary, cached like the invoice summary
func (s *QuoteService) Stats(ctx context.Context, userID uuid.UUID) *billing.QuoteStats {
	log := logger.With(ctx, s.logger)

	var cached billing.QuoteStats
	if s.stats != nil {
		hit, err := s.stats.Get(ctx, userID, cache.StatsQuotes, &cached)
		if err != nil {
			log.Warn("Stats cache read failed", zap.Error(err))
		} else if hit {
			return &cached
		}
	}

	stats, err := s.quoteRepo.Stats(ctx, userID)
	if err != nil {
		log.Error("Quote stats aggregation failed", zap.Error(err))
		return &billing.QuoteStats{
			StatusStats:    []billing.StatusCount{},
			TotalAmount:    decimal.Zero,
			AcceptedAmount: decimal.Zero,
		}
	}
	if s.stats != nil {
		if err := s.stats.Set(ctx, userID, cache.StatsQuotes, stats); err != nil {
			log.Warn("Stats cache write failed", zap.Error(err))
		}
	}
	return stats
}
