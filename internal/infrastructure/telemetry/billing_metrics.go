package telemetry

import (
	"context"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	attrKind   = attribute.Key("document_kind")
	attrEvent  = attribute.Key("event_type")
	attrStatus = attribute.Key("status")
	attrMethod = attribute.Key("payment_method")
)

// BillingMetrics turns billing domain events into OTel counters. It is
// subscribed to the event bus like any other handler.
type BillingMetrics struct {
	events      *Counter
	created     *Counter
	transitions *Counter
	converted   *Counter
	paidAmount  *Histogram
}

// NewBillingMetrics registers the billing instruments on meter
func NewBillingMetrics(meter metric.Meter) (*BillingMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &BillingMetrics{}
	var err error
	if m.events, err = NewCounter(meter, "crm_billing_events_total",
		"Billing domain events by type", "{events}"); err != nil {
		return nil, err
	}
	if m.created, err = NewCounter(meter, "crm_documents_created_total",
		"Invoices and quotes created", "{documents}"); err != nil {
		return nil, err
	}
	if m.transitions, err = NewCounter(meter, "crm_document_status_transitions_total",
		"Document status changes by target status", "{transitions}"); err != nil {
		return nil, err
	}
	if m.converted, err = NewCounter(meter, "crm_quotes_converted_total",
		"Quotes converted to invoices", "{quotes}"); err != nil {
		return nil, err
	}
	if m.paidAmount, err = NewHistogram(meter, HistogramOpts{
		Name:        "crm_invoice_paid_amount",
		Description: "Amount recorded when an invoice is paid",
		Unit:        "{currency_unit}",
		Boundaries:  []float64{10, 50, 100, 500, 1000, 5000, 10000, 50000},
	}); err != nil {
		return nil, err
	}
	return m, nil
}

// EventTypes implements shared.EventHandler
func (m *BillingMetrics) EventTypes() []string {
	return billing.AllEventTypes()
}

// Handle implements shared.EventHandler
func (m *BillingMetrics) Handle(ctx context.Context, evt shared.DomainEvent) error {
	m.events.Inc(ctx, attrEvent.String(evt.EventType()))

	switch e := evt.(type) {
	case *billing.InvoiceCreatedEvent:
		m.created.Inc(ctx, attrKind.String(string(billing.KindInvoice)))
	case *billing.QuoteCreatedEvent:
		m.created.Inc(ctx, attrKind.String(string(billing.KindQuote)))
	case *billing.InvoiceStatusChangedEvent:
		m.transitions.Inc(ctx, attrKind.String(string(billing.KindInvoice)), attrStatus.String(string(e.To)))
	case *billing.QuoteStatusChangedEvent:
		m.transitions.Inc(ctx, attrKind.String(string(billing.KindQuote)), attrStatus.String(string(e.To)))
	case *billing.QuoteConvertedEvent:
		m.converted.Inc(ctx)
		m.transitions.Inc(ctx, attrKind.String(string(billing.KindQuote)), attrStatus.String(string(billing.QuoteStatusConverted)))
	case *billing.InvoicePaidEvent:
		m.transitions.Inc(ctx, attrKind.String(string(billing.KindInvoice)), attrStatus.String(string(billing.InvoiceStatusPaid)))
		amount, _ := e.PaidAmount.Float64()
		m.paidAmount.Record(ctx, amount, attrMethod.String(string(e.Method)))
	}
	return nil
}

var _ shared.EventHandler = (*BillingMetrics)(nil)
