// Package billing holds the invoice and quote use cases: creation with
// number allocation, edits, lifecycle transitions, conversion and the
// background status sweep.
package billing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/settings"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ServiceConfig holds billing defaults
type ServiceConfig struct {
	DefaultCurrency string
	DefaultDueDays  int
	// NumberRetries bounds how often a create is retried after a
	// document number collision
	NumberRetries int
	// RetryBaseDelay is the first backoff between retries; it doubles
	// per attempt up to maxRetryDelay
	RetryBaseDelay time.Duration
}

const maxRetryDelay = time.Second

// DefaultServiceConfig returns USD, 30 days and 3 retries 20ms apart
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		DefaultCurrency: billing.DefaultCurrency,
		DefaultDueDays:  billing.DefaultValidityDays,
		NumberRetries:   3,
		RetryBaseDelay:  20 * time.Millisecond,
	}
}

func (c ServiceConfig) normalized() ServiceConfig {
	if c.DefaultCurrency == "" {
		c.DefaultCurrency = billing.DefaultCurrency
	}
	if c.DefaultDueDays <= 0 {
		c.DefaultDueDays = billing.DefaultValidityDays
	}
	if c.NumberRetries <= 0 {
		c.NumberRetries = 1
	}
	if c.RetryBaseDelay < 0 {
		c.RetryBaseDelay = 0
	}
	return c
}

// DefaultsSource supplies the owner's document defaults from the company settings
type DefaultsSource interface {
	BillingDefaults(ctx context.Context, ownerID uuid.UUID) (settings.BillingDefaults, error)
}

// documentDefaults asks src for the owner's defaults. Without a source, or
// when the lookup fails, the configured currency and built-in terms apply.
func documentDefaults(ctx context.Context, src DefaultsSource, log *zap.Logger, cfg ServiceConfig, ownerID uuid.UUID) settings.BillingDefaults {
	fallback := settings.BillingDefaults{
		Currency:     cfg.DefaultCurrency,
		PaymentTerms: billing.DefaultPaymentTerms,
		QuoteTerms:   billing.DefaultQuoteTerms,
	}
	if src == nil {
		return fallback
	}
	d, err := src.BillingDefaults(ctx, ownerID)
	if err != nil {
		logger.With(ctx, log).Warn("Company settings unavailable, using built-in defaults", zap.Error(err))
		return fallback
	}
	if d.Currency == "" {
		d.Currency = fallback.Currency
	}
	if d.PaymentTerms == "" {
		d.PaymentTerms = fallback.PaymentTerms
	}
	if d.QuoteTerms == "" {
		d.QuoteTerms = fallback.QuoteTerms
	}
	return d
}

// eventSource is implemented by the billing aggregates
type eventSource interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}

// publishEvents hands the pending events of each aggregate to publisher and
// clears them. It runs after the write has committed, so a publish failure
// is logged and never reported to the caller.
func publishEvents(ctx context.Context, publisher shared.EventPublisher, log *zap.Logger, sources ...eventSource) {
	for _, src := range sources {
		events := src.GetDomainEvents()
		if publisher != nil && len(events) > 0 {
			if err := publisher.Publish(ctx, events...); err != nil {
				logger.With(ctx, log).Error("Failed to publish domain events", zap.Error(err))
			}
		}
		src.ClearDomainEvents()
	}
}

// withNumberRetry calls create until it succeeds, fails with a
// non-retryable error, attempts run out or ctx is done. Attempts are spaced
// by an exponential backoff.
func withNumberRetry(ctx context.Context, log *zap.Logger, cfg ServiceConfig, create func() error) error {
	var err error
	for attempt := 1; attempt <= cfg.NumberRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err = create(); err == nil || !errors.Is(err, shared.ErrDuplicateNumber) {
			return err
		}
		if attempt == cfg.NumberRetries {
			break
		}

		delay := retryBackoff(cfg.RetryBaseDelay, attempt)
		logger.With(ctx, log).Warn("Document number collision, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", cfg.NumberRetries),
			zap.Duration("backoff", delay),
		)
		if delay <= 0 {
			continue
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}

// retryBackoff is base * 2^(attempt-1), capped at maxRetryDelay
func retryBackoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	if attempt > 10 {
		return maxRetryDelay
	}
	delay := base * time.Duration(1<<uint(attempt-1))
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

// clientLookup loads the client a document is billed to. A client owned by
// someone else is reported as not found.
type clientLookup struct {
	clients partner.ClientRepository
}

func (l clientLookup) resolve(ctx context.Context, ownerID, clientID uuid.UUID) (*partner.Client, error) {
	client, err := l.clients.FindByIDForOwner(ctx, ownerID, clientID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Client not found")
		}
		return nil, err
	}
	return client, nil
}

func toListFilter(f DocumentListFilter) (billing.ListFilter, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 20
	}
	if f.OrderBy == "" {
		f.OrderBy = "created_at"
	}
	if f.OrderDir == "" {
		f.OrderDir = "desc"
	}

	lf := billing.ListFilter{
		Filter: shared.Filter{
			Page:     f.Page,
			PageSize: f.PageSize,
			OrderBy:  f.OrderBy,
			OrderDir: f.OrderDir,
			Search:   strings.TrimSpace(f.Search),
		},
		Status: strings.ToLower(strings.TrimSpace(f.Status)),
	}
	if f.ClientID != "" {
		id, err := uuid.Parse(f.ClientID)
		if err != nil {
			return billing.ListFilter{}, shared.NewDomainError("VALIDATION_ERROR", "client_id must be a UUID")
		}
		lf.ClientID = &id
	}
	return lf, nil
}

func dateOr(t *time.Time, fallback time.Time) time.Time {
	if t == nil || t.IsZero() {
		return fallback
	}
	return *t
}
