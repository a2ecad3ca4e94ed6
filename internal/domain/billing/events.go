package billing

import (
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeInvoice = "Invoice"
	AggregateTypeQuote   = "Quote"
)

// Event type constants
const (
	EventTypeInvoiceCreated   = "InvoiceCreated"
	EventTypeInvoiceUpdated   = "InvoiceUpdated"
	EventTypeInvoiceSent      = "InvoiceSent"
	EventTypeInvoicePaid      = "InvoicePaid"
	EventTypeInvoiceOverdue   = "InvoiceOverdue"
	EventTypeInvoiceCancelled = "InvoiceCancelled"
	EventTypeInvoiceDeleted   = "InvoiceDeleted"

	EventTypeQuoteCreated   = "QuoteCreated"
	EventTypeQuoteUpdated   = "QuoteUpdated"
	EventTypeQuoteSent      = "QuoteSent"
	EventTypeQuoteAccepted  = "QuoteAccepted"
	EventTypeQuoteRejected  = "QuoteRejected"
	EventTypeQuoteExpired   = "QuoteExpired"
	EventTypeQuoteConverted = "QuoteConverted"
	EventTypeQuoteDeleted   = "QuoteDeleted"
)

// AllEventTypes lists every event type raised by this package
func AllEventTypes() []string {
	return []string{
		EventTypeInvoiceCreated, EventTypeInvoiceUpdated, EventTypeInvoiceSent, EventTypeInvoicePaid,
		EventTypeInvoiceOverdue, EventTypeInvoiceCancelled, EventTypeInvoiceDeleted,
		EventTypeQuoteCreated, EventTypeQuoteUpdated, EventTypeQuoteSent, EventTypeQuoteAccepted,
		EventTypeQuoteRejected, EventTypeQuoteExpired, EventTypeQuoteConverted, EventTypeQuoteDeleted,
	}
}

// InvoiceCreatedEvent is raised when a new invoice is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	ClientID      uuid.UUID       `json:"client_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Currency      string          `json:"currency"`
	SourceQuoteID *uuid.UUID      `json:"source_quote_id,omitempty"`
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, AggregateTypeInvoice, inv.ID, inv.OwnerID),
		InvoiceID:       inv.ID,
		ClientID:        inv.ClientID,
		TotalAmount:     inv.TotalAmount,
		Currency:        inv.Currency,
		SourceQuoteID:   inv.SourceQuoteID,
	}
}

// InvoiceUpdatedEvent is raised when invoice content changes
type InvoiceUpdatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// NewInvoiceUpdatedEvent creates a new InvoiceUpdatedEvent
func NewInvoiceUpdatedEvent(inv *Invoice) *InvoiceUpdatedEvent {
	return &InvoiceUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceUpdated, AggregateTypeInvoice, inv.ID, inv.OwnerID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.Number,
		TotalAmount:     inv.TotalAmount,
	}
}

// InvoiceStatusChangedEvent covers sent, overdue and cancelled transitions
type InvoiceStatusChangedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID     `json:"invoice_id"`
	InvoiceNumber string        `json:"invoice_number"`
	From          InvoiceStatus `json:"from"`
	To            InvoiceStatus `json:"to"`
}

// NewInvoiceStatusChangedEvent creates an event of the given type for a transition
func NewInvoiceStatusChangedEvent(inv *Invoice, from InvoiceStatus, eventType string) *InvoiceStatusChangedEvent {
	return &InvoiceStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeInvoice, inv.ID, inv.OwnerID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.Number,
		From:            from,
		To:              inv.Status,
	}
}

// InvoicePaidEvent is raised when an invoice is marked paid
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	Method        PaymentMethod   `json:"method"`
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(inv *Invoice) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaid, AggregateTypeInvoice, inv.ID, inv.OwnerID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.Number,
		PaidAmount:      inv.PaidAmount,
		Method:          inv.PaymentMethod,
	}
}

// DocumentDeletedEvent is raised when an invoice or quote is removed
type DocumentDeletedEvent struct {
	shared.BaseDomainEvent
	Number string `json:"number"`
}

// NewDocumentDeletedEvent creates a deletion event for either kind
func NewDocumentDeletedEvent(kind DocumentKind, id, ownerID uuid.UUID, number string) *DocumentDeletedEvent {
	eventType, aggType := EventTypeInvoiceDeleted, AggregateTypeInvoice
	if kind == KindQuote {
		eventType, aggType = EventTypeQuoteDeleted, AggregateTypeQuote
	}
	return &DocumentDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, aggType, id, ownerID),
		Number:          number,
	}
}

// QuoteCreatedEvent is raised when a new quote is created
type QuoteCreatedEvent struct {
	shared.BaseDomainEvent
	QuoteID     uuid.UUID       `json:"quote_id"`
	ClientID    uuid.UUID       `json:"client_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewQuoteCreatedEvent creates a new QuoteCreatedEvent
func NewQuoteCreatedEvent(q *Quote) *QuoteCreatedEvent {
	return &QuoteCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteCreated, AggregateTypeQuote, q.ID, q.OwnerID),
		QuoteID:         q.ID,
		ClientID:        q.ClientID,
		TotalAmount:     q.TotalAmount,
	}
}

// QuoteUpdatedEvent is raised when quote content changes
type QuoteUpdatedEvent struct {
	shared.BaseDomainEvent
	QuoteID     uuid.UUID       `json:"quote_id"`
	QuoteNumber string          `json:"quote_number"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewQuoteUpdatedEvent creates a new QuoteUpdatedEvent
func NewQuoteUpdatedEvent(q *Quote) *QuoteUpdatedEvent {
	return &QuoteUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteUpdated, AggregateTypeQuote, q.ID, q.OwnerID),
		QuoteID:         q.ID,
		QuoteNumber:     q.Number,
		TotalAmount:     q.TotalAmount,
	}
}

// QuoteStatusChangedEvent covers sent, accepted, rejected and expired transitions
type QuoteStatusChangedEvent struct {
	shared.BaseDomainEvent
	QuoteID     uuid.UUID   `json:"quote_id"`
	QuoteNumber string      `json:"quote_number"`
	From        QuoteStatus `json:"from"`
	To          QuoteStatus `json:"to"`
}

// NewQuoteStatusChangedEvent creates an event of the given type for a transition
func NewQuoteStatusChangedEvent(q *Quote, from QuoteStatus, eventType string) *QuoteStatusChangedEvent {
	return &QuoteStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeQuote, q.ID, q.OwnerID),
		QuoteID:         q.ID,
		QuoteNumber:     q.Number,
		From:            from,
		To:              q.Status,
	}
}

// QuoteConvertedEvent is raised when a quote becomes an invoice
type QuoteConvertedEvent struct {
	shared.BaseDomainEvent
	QuoteID     uuid.UUID   `json:"quote_id"`
	QuoteNumber string      `json:"quote_number"`
	InvoiceID   uuid.UUID   `json:"invoice_id"`
	From        QuoteStatus `json:"from"`
}

// NewQuoteConvertedEvent creates a new QuoteConvertedEvent
func NewQuoteConvertedEvent(q *Quote, from QuoteStatus) *QuoteConvertedEvent {
	var invoiceID uuid.UUID
	if q.ConvertedInvoiceID != nil {
		invoiceID = *q.ConvertedInvoiceID
	}
	return &QuoteConvertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteConverted, AggregateTypeQuote, q.ID, q.OwnerID),
		QuoteID:         q.ID,
		QuoteNumber:     q.Number,
		InvoiceID:       invoiceID,
		From:            from,
	}
}
