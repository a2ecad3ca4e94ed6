package billing

import (
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how an invoice was settled
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCheck        PaymentMethod = "check"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodPaypal       PaymentMethod = "paypal"
	PaymentMethodOther        PaymentMethod = "other"
)

// DefaultPaymentTerms is applied when an invoice is created without terms
const DefaultPaymentTerms = "Net 30"

// IsValid checks if the payment method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCheck, PaymentMethodBankTransfer,
		PaymentMethodCreditCard, PaymentMethodPaypal, PaymentMethodOther:
		return true
	}
	return false
}

// Invoice is the aggregate root for a billed document
type Invoice struct {
	shared.OwnedAggregateRoot
	Document
	DueDate       time.Time
	Status        InvoiceStatus
	PaymentTerms  string
	PaymentMethod PaymentMethod
	PaidDate      *time.Time
	PaidAmount    decimal.Decimal
	SourceQuoteID *uuid.UUID

	// DiscountAmount is the quote discount carried over on conversion. It is
	// taken off the line items before tax on every recalculation.
	DiscountAmount decimal.Decimal
}

// InvoiceParams carries the fields for creating or replacing invoice content
type InvoiceParams struct {
	DocumentParams
	DueDate       time.Time
	PaymentTerms  string
	PaymentMethod PaymentMethod
}

// NewInvoice creates a draft invoice with totals and status derived.
// The number is assigned later by the persistence layer.
func NewInvoice(ownerID uuid.UUID, p InvoiceParams, now time.Time) (*Invoice, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner is required")
	}
	doc, err := newDocument(p.DocumentParams, now)
	if err != nil {
		return nil, err
	}

	inv := &Invoice{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		Document:           doc,
		Status:             InvoiceStatusDraft,
		PaidAmount:         decimal.Zero,
	}
	if err := inv.applyInvoiceFields(p); err != nil {
		return nil, err
	}

	inv.Recalculate()
	inv.DeriveStatus(now)
	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

func (i *Invoice) applyInvoiceFields(p InvoiceParams) error {
	due := p.DueDate
	if due.IsZero() {
		due = defaultSecondDate(i.IssueDate)
	}
	if err := validateDateRange(i.IssueDate, due, "Due date"); err != nil {
		return err
	}

	method := p.PaymentMethod
	if method == "" {
		method = PaymentMethodBankTransfer
	}
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
	}

	terms := strings.TrimSpace(p.PaymentTerms)
	if terms == "" {
		terms = DefaultPaymentTerms
	}

	i.DueDate = due
	i.PaymentMethod = method
	i.PaymentTerms = terms
	return nil
}

// Recalculate refreshes line totals, subtotal, tax and total. The subtotal
// is net of any carried discount, so total = subtotal + tax always holds.
func (i *Invoice) Recalculate() Totals {
	var discount *Discount
	if i.DiscountAmount.IsPositive() {
		discount = &Discount{Value: i.DiscountAmount, Type: DiscountTypeFixed}
	}
	t := CalculateTotals(i.Items, i.TaxRate, discount)
	i.applyTotals(t)
	i.Subtotal = t.TaxableBase
	return t
}

// EffectiveStatus is the status as of now, without mutating the invoice
func (i *Invoice) EffectiveStatus(now time.Time) InvoiceStatus {
	return DeriveInvoiceStatus(i.Status, i.DueDate, now)
}

// DeriveStatus persists the overdue transition on the aggregate.
// It reports whether the status changed.
func (i *Invoice) DeriveStatus(now time.Time) bool {
	next := i.EffectiveStatus(now)
	if next == i.Status {
		return false
	}
	prev := i.Status
	i.Status = next
	i.AddDomainEvent(NewInvoiceStatusChangedEvent(i, prev, EventTypeInvoiceOverdue))
	return true
}

// Update replaces the editable content of the invoice
func (i *Invoice) Update(editorID uuid.UUID, p InvoiceParams, now time.Time) error {
	if i.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot modify a "+i.Status.String()+" invoice")
	}
	if p.ClientID == uuid.Nil {
		p.ClientID = i.ClientID
		p.CompanyID = i.CompanyID
	}
	if p.IssueDate.IsZero() {
		p.IssueDate = i.IssueDate
	}
	if p.Currency == "" {
		p.Currency = i.Currency
	}
	doc, err := newDocument(p.DocumentParams, now)
	if err != nil {
		return err
	}
	doc.Number = i.Number

	prev := *i
	i.Document = doc
	if err := i.applyInvoiceFields(p); err != nil {
		*i = prev
		return err
	}

	if t := i.Recalculate(); t.TaxableBase.IsNegative() {
		*i = prev
		return shared.NewDomainError("INVALID_DISCOUNT", "Line items no longer cover the discount carried over from the quote")
	}
	i.MarkEdited(editorID)
	i.DeriveStatus(now)
	i.AddDomainEvent(NewInvoiceUpdatedEvent(i))
	return nil
}

// Send moves a draft invoice to sent
func (i *Invoice) Send(editorID uuid.UUID, now time.Time) error {
	if i.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft invoices can be sent")
	}
	i.Status = InvoiceStatusSent
	i.MarkEdited(editorID)
	i.AddDomainEvent(NewInvoiceStatusChangedEvent(i, InvoiceStatusDraft, EventTypeInvoiceSent))
	i.DeriveStatus(now)
	return nil
}

// Cancel cancels an unpaid invoice
func (i *Invoice) Cancel(editorID uuid.UUID) error {
	if !i.Status.CanTransitionTo(InvoiceStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", "Cannot cancel a "+i.Status.String()+" invoice")
	}
	prev := i.Status
	i.Status = InvoiceStatusCancelled
	i.MarkEdited(editorID)
	i.AddDomainEvent(NewInvoiceStatusChangedEvent(i, prev, EventTypeInvoiceCancelled))
	return nil
}

// Payment describes a settlement. Zero values fall back to defaults:
// the invoice total, bank transfer and the current time.
type Payment struct {
	Amount *decimal.Decimal
	Method PaymentMethod
	Date   *time.Time
}

// MarkPaid records a payment and moves the invoice to paid
func (i *Invoice) MarkPaid(editorID uuid.UUID, p Payment, now time.Time) error {
	if !i.Status.CanTransitionTo(InvoiceStatusPaid) {
		return shared.NewDomainError("INVALID_STATE", "Cannot mark a "+i.Status.String()+" invoice as paid")
	}

	amount := i.TotalAmount
	if p.Amount != nil {
		amount = *p.Amount
	}
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_PAID_AMOUNT", "Paid amount cannot be negative")
	}

	method := p.Method
	if method == "" {
		method = PaymentMethodBankTransfer
	}
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
	}

	paidDate := now
	if p.Date != nil && !p.Date.IsZero() {
		paidDate = *p.Date
	}

	i.Status = InvoiceStatusPaid
	i.PaidAmount = amount
	i.PaymentMethod = method
	i.PaidDate = &paidDate
	i.MarkEdited(editorID)
	i.AddDomainEvent(NewInvoicePaidEvent(i))
	return nil
}

// DaysOverdue is the number of days past due, counted only while overdue
func (i *Invoice) DaysOverdue(now time.Time) int {
	if i.EffectiveStatus(now) != InvoiceStatusOverdue {
		return 0
	}
	return ceilDays(now.Sub(i.DueDate))
}

// PaymentStatus returns the display label for the payment state
func (i *Invoice) PaymentStatus(now time.Time) string {
	switch {
	case i.IsPaid():
		return PaymentStatusPaid
	case i.EffectiveStatus(now) == InvoiceStatusOverdue:
		return PaymentStatusOverdue
	case i.PaidAmount.IsPositive():
		return PaymentStatusPartiallyPaid
	}
	return PaymentStatusUnpaid
}

// IsPaid returns true if the invoice is paid
func (i *Invoice) IsPaid() bool {
	return i.Status == InvoiceStatusPaid
}
