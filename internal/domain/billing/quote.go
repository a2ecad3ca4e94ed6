package billing

import (
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Quote defaults
const (
	DefaultQuoteTerms      = "This quote is valid for 30 days from the issue date."
	DefaultRejectionReason = "No reason provided"
)

// Quote is the aggregate root for a price proposal
type Quote struct {
	shared.OwnedAggregateRoot
	Document
	ValidUntil         time.Time
	Status             QuoteStatus
	Discount           Discount
	DiscountAmount     decimal.Decimal
	ConvertedInvoiceID *uuid.UUID
	ConversionDate     *time.Time
	AcceptanceDate     *time.Time
	RejectionReason    string
}

// QuoteParams carries the fields for creating or replacing quote content
type QuoteParams struct {
	DocumentParams
	ValidUntil time.Time
	Discount   *Discount
}

// NewQuote creates a draft quote with totals and status derived
func NewQuote(ownerID uuid.UUID, p QuoteParams, now time.Time) (*Quote, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner is required")
	}
	doc, err := newDocument(p.DocumentParams, now)
	if err != nil {
		return nil, err
	}

	q := &Quote{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		Document:           doc,
		Status:             QuoteStatusDraft,
	}
	if err := q.applyQuoteFields(p); err != nil {
		return nil, err
	}
	if _, err := q.Recalculate(); err != nil {
		return nil, err
	}
	q.DeriveStatus(now)
	q.AddDomainEvent(NewQuoteCreatedEvent(q))

	return q, nil
}

func (q *Quote) applyQuoteFields(p QuoteParams) error {
	valid := p.ValidUntil
	if valid.IsZero() {
		valid = defaultSecondDate(q.IssueDate)
	}
	if err := validateDateRange(q.IssueDate, valid, "Valid until date"); err != nil {
		return err
	}

	discount := NoDiscount()
	if p.Discount != nil {
		discount = *p.Discount
		if discount.Type == "" {
			discount.Type = DiscountTypePercentage
		}
	}

	if q.Terms == "" {
		q.Terms = DefaultQuoteTerms
	}
	q.ValidUntil = valid
	q.Discount = discount
	return nil
}

// Recalculate refreshes line totals, discount, tax and total.
// It fails if the discount is not applicable to the new subtotal.
func (q *Quote) Recalculate() (Totals, error) {
	t := CalculateTotals(q.Items, q.TaxRate, &q.Discount)
	if err := q.Discount.Validate(t.Subtotal); err != nil {
		return Totals{}, err
	}
	q.applyTotals(t)
	q.DiscountAmount = t.DiscountAmount
	return t, nil
}

// EffectiveStatus is the status as of now, without mutating the quote
func (q *Quote) EffectiveStatus(now time.Time) QuoteStatus {
	return DeriveQuoteStatus(q.Status, q.ValidUntil, now)
}

// DeriveStatus persists the expiry transition on the aggregate.
// It reports whether the status changed.
func (q *Quote) DeriveStatus(now time.Time) bool {
	next := q.EffectiveStatus(now)
	if next == q.Status {
		return false
	}
	prev := q.Status
	q.Status = next
	q.AddDomainEvent(NewQuoteStatusChangedEvent(q, prev, EventTypeQuoteExpired))
	return true
}

// Update replaces the editable content of the quote
func (q *Quote) Update(editorID uuid.UUID, p QuoteParams, now time.Time) error {
	if q.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot modify a "+q.Status.String()+" quote")
	}
	if p.ClientID == uuid.Nil {
		p.ClientID = q.ClientID
		p.CompanyID = q.CompanyID
	}
	if p.IssueDate.IsZero() {
		p.IssueDate = q.IssueDate
	}
	if p.Currency == "" {
		p.Currency = q.Currency
	}
	if p.Discount == nil {
		d := q.Discount
		p.Discount = &d
	}
	doc, err := newDocument(p.DocumentParams, now)
	if err != nil {
		return err
	}
	doc.Number = q.Number

	prev := *q
	q.Document = doc
	if err := q.applyQuoteFields(p); err != nil {
		*q = prev
		return err
	}
	if _, err := q.Recalculate(); err != nil {
		*q = prev
		return err
	}

	q.MarkEdited(editorID)
	q.DeriveStatus(now)
	q.AddDomainEvent(NewQuoteUpdatedEvent(q))
	return nil
}

// Send moves a draft quote to sent
func (q *Quote) Send(editorID uuid.UUID, now time.Time) error {
	if q.Status != QuoteStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft quotes can be sent")
	}
	q.Status = QuoteStatusSent
	q.MarkEdited(editorID)
	q.AddDomainEvent(NewQuoteStatusChangedEvent(q, QuoteStatusDraft, EventTypeQuoteSent))
	q.DeriveStatus(now)
	return nil
}

// Accept records the client's acceptance
func (q *Quote) Accept(editorID uuid.UUID, now time.Time) error {
	current := q.EffectiveStatus(now)
	if !current.CanTransitionTo(QuoteStatusAccepted) {
		return shared.NewDomainError("INVALID_STATE", "Cannot accept a "+current.String()+" quote")
	}
	q.Status = QuoteStatusAccepted
	q.AcceptanceDate = &now
	q.MarkEdited(editorID)
	q.AddDomainEvent(NewQuoteStatusChangedEvent(q, current, EventTypeQuoteAccepted))
	return nil
}

// Reject records the client's rejection with an optional reason
func (q *Quote) Reject(editorID uuid.UUID, reason string, now time.Time) error {
	current := q.EffectiveStatus(now)
	if !current.CanTransitionTo(QuoteStatusRejected) {
		return shared.NewDomainError("INVALID_STATE", "Cannot reject a "+current.String()+" quote")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultRejectionReason
	}
	q.Status = QuoteStatusRejected
	q.RejectionReason = reason
	q.MarkEdited(editorID)
	q.AddDomainEvent(NewQuoteStatusChangedEvent(q, current, EventTypeQuoteRejected))
	return nil
}

// ConversionOptions tunes the invoice produced by ConvertToInvoice
type ConversionOptions struct {
	DueDate      *time.Time
	PaymentTerms string
}

// ConvertToInvoice builds the invoice for this quote and marks the quote
// converted. Client, company, items and the computed totals are copied as-is.
// The invoice subtotal is the quote's discounted base and the discount amount
// moves with it so later edits keep it. Both aggregates must be persisted
// together.
func (q *Quote) ConvertToInvoice(editorID uuid.UUID, opts ConversionOptions, now time.Time) (*Invoice, error) {
	if q.ConvertedInvoiceID != nil || q.Status == QuoteStatusConverted {
		return nil, shared.NewDomainError("INVALID_STATE", "Quote has already been converted to an invoice")
	}
	current := q.EffectiveStatus(now)
	if !current.CanTransitionTo(QuoteStatusConverted) {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot convert a "+current.String()+" quote")
	}
	if !q.HasNumber() {
		return nil, shared.NewDomainError("INVALID_STATE", "Quote has not been persisted yet")
	}

	due := now.AddDate(0, 0, DefaultValidityDays)
	if opts.DueDate != nil && !opts.DueDate.IsZero() {
		due = *opts.DueDate
	}
	if err := validateDateRange(now, due, "Due date"); err != nil {
		return nil, err
	}
	terms := strings.TrimSpace(opts.PaymentTerms)
	if terms == "" {
		terms = DefaultPaymentTerms
	}

	sourceID := q.ID
	inv := &Invoice{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(q.OwnerID),
		Document: Document{
			ClientID:    q.ClientID,
			CompanyID:   q.CompanyID,
			IssueDate:   now,
			Currency:    q.Currency,
			Items:       cloneItems(q.Items),
			TaxRate:     q.TaxRate,
			Subtotal:    q.Subtotal.Sub(q.DiscountAmount),
			TaxAmount:   q.TaxAmount,
			TotalAmount: q.TotalAmount,
			Notes:       "Converted from quote " + q.Number,
		},
		DueDate:        due,
		Status:         InvoiceStatusDraft,
		PaymentTerms:   terms,
		PaymentMethod:  PaymentMethodBankTransfer,
		PaidAmount:     decimal.Zero,
		SourceQuoteID:  &sourceID,
		DiscountAmount: q.DiscountAmount,
	}
	inv.UpdatedBy = &editorID
	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	q.Status = QuoteStatusConverted
	q.ConvertedInvoiceID = &inv.ID
	q.ConversionDate = &now
	q.MarkEdited(editorID)
	q.AddDomainEvent(NewQuoteConvertedEvent(q, current))

	return inv, nil
}

// DaysUntilExpiry is the number of days left before ValidUntil, rounded up.
// It is negative once the quote has lapsed.
func (q *Quote) DaysUntilExpiry(now time.Time) int {
	return ceilDays(q.ValidUntil.Sub(now))
}
