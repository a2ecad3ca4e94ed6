package billing

import (
	"context"
	"errors"
	"time"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/crm/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// StatusSweepService persists overdue and expired transitions for documents
// whose stored status went stale because nobody saved them after their date
// passed. Responses already show the effective status; the sweep makes
// listings filtered by status and the stats summaries agree with it.
type StatusSweepService struct {
	invoiceRepo    billing.InvoiceRepository
	quoteRepo      billing.QuoteRepository
	eventPublisher shared.EventPublisher
	batchSize      int
	logger         *zap.Logger
}

// NewStatusSweepService creates a sweep service handling up to batchSize
// documents of each kind per run
func NewStatusSweepService(
	invoiceRepo billing.InvoiceRepository,
	quoteRepo billing.QuoteRepository,
	batchSize int,
	log *zap.Logger,
) *StatusSweepService {
	if batchSize <= 0 {
		batchSize = 500
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &StatusSweepService{
		invoiceRepo: invoiceRepo,
		quoteRepo:   quoteRepo,
		batchSize:   batchSize,
		logger:      log.Named("status_sweep"),
	}
}

// SetEventPublisher sets the publisher for InvoiceOverdue and QuoteExpired events
func (s *StatusSweepService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SweepStale derives the status of every stale document as of now and saves
// the ones that changed. A document modified concurrently is skipped; the
// next run picks it up again if it is still stale.
func (s *StatusSweepService) SweepStale(ctx context.Context, now time.Time) (changed int, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "StatusSweepService", "SweepStale")
	defer func() {
		telemetry.SetAttribute(span, telemetry.AttrSweepChanged, changed)
		telemetry.EndSpan(span, err)
	}()

	invoices, err := s.sweepInvoices(ctx, now)
	changed += invoices
	if err != nil {
		return changed, err
	}
	quotes, err := s.sweepQuotes(ctx, now)
	changed += quotes
	return changed, err
}

func (s *StatusSweepService) sweepInvoices(ctx context.Context, now time.Time) (int, error) {
	stale, err := s.invoiceRepo.FindStale(ctx, now, s.batchSize)
	if err != nil {
		return 0, err
	}

	changed := 0
	for i := range stale {
		inv := &stale[i]
		if !inv.DeriveStatus(now) {
			continue
		}
		if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
			if s.skippable(ctx, err, "invoice", inv.Number) {
				continue
			}
			return changed, err
		}
		changed++
		publishEvents(ctx, s.eventPublisher, s.logger, inv)
	}
	return changed, nil
}

func (s *StatusSweepService) sweepQuotes(ctx context.Context, now time.Time) (int, error) {
	stale, err := s.quoteRepo.FindStale(ctx, now, s.batchSize)
	if err != nil {
		return 0, err
	}

	changed := 0
	for i := range stale {
		q := &stale[i]
		if !q.DeriveStatus(now) {
			continue
		}
		if err := s.quoteRepo.SaveWithLock(ctx, q); err != nil {
			if s.skippable(ctx, err, "quote", q.Number) {
				continue
			}
			return changed, err
		}
		changed++
		publishEvents(ctx, s.eventPublisher, s.logger, q)
	}
	return changed, nil
}

// skippable reports whether a save error only affects one document
func (s *StatusSweepService) skippable(ctx context.Context, err error, kind, number string) bool {
	if !errors.Is(err, shared.ErrConcurrencyConflict) && !errors.Is(err, shared.ErrNotFound) {
		return false
	}
	logger.With(ctx, s.logger).Debug("Skipping document changed during sweep",
		zap.String("kind", kind),
		zap.String("number", number),
		zap.Error(err),
	)
	return true
}
