package cache

import (
	"context"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/shared"
)

// StatsInvalidator drops cached summaries when billing documents change.
// Invoice changes also touch the client summary, whose total value is the
// sum of the owner's invoices.
type StatsInvalidator struct {
	cache StatsCache
}

// NewStatsInvalidator creates the event handler
func NewStatsInvalidator(cache StatsCache) *StatsInvalidator {
	return &StatsInvalidator{cache: cache}
}

// EventTypes implements shared.EventHandler
func (h *StatsInvalidator) EventTypes() []string {
	return billing.AllEventTypes()
}

// Handle implements shared.EventHandler
func (h *StatsInvalidator) Handle(ctx context.Context, evt shared.DomainEvent) error {
	switch evt.AggregateType() {
	case billing.AggregateTypeInvoice:
		return h.cache.Invalidate(ctx, evt.OwnerID(), StatsInvoices, StatsClients)
	case billing.AggregateTypeQuote:
		return h.cache.Invalidate(ctx, evt.OwnerID(), StatsQuotes)
	}
	return nil
}

var _ shared.EventHandler = (*StatsInvalidator)(nil)
