package billing

import (
	"math"
	"time"
)

// InvoiceStatus represents the lifecycle status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal reports whether automatic derivation no longer applies
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	switch s {
	case InvoiceStatusDraft:
		return target == InvoiceStatusSent || target == InvoiceStatusPaid ||
			target == InvoiceStatusOverdue || target == InvoiceStatusCancelled
	case InvoiceStatusSent:
		return target == InvoiceStatusPaid || target == InvoiceStatusOverdue || target == InvoiceStatusCancelled
	case InvoiceStatusOverdue:
		return target == InvoiceStatusPaid || target == InvoiceStatusCancelled
	}
	return false
}

// QuoteStatus represents the lifecycle status of a quote
type QuoteStatus string

const (
	QuoteStatusDraft     QuoteStatus = "draft"
	QuoteStatusSent      QuoteStatus = "sent"
	QuoteStatusAccepted  QuoteStatus = "accepted"
	QuoteStatusRejected  QuoteStatus = "rejected"
	QuoteStatusExpired   QuoteStatus = "expired"
	QuoteStatusConverted QuoteStatus = "converted"
)

// IsValid checks if the status is a valid QuoteStatus
func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusAccepted, QuoteStatusRejected,
		QuoteStatusExpired, QuoteStatusConverted:
		return true
	}
	return false
}

// String returns the string representation of QuoteStatus
func (s QuoteStatus) String() string {
	return string(s)
}

// IsTerminal reports whether automatic expiry no longer applies.
// Accepted quotes are terminal for expiry but can still be converted.
func (s QuoteStatus) IsTerminal() bool {
	return s == QuoteStatusAccepted || s == QuoteStatusRejected || s == QuoteStatusConverted
}

// CanTransitionTo checks if the status can transition to the target status
func (s QuoteStatus) CanTransitionTo(target QuoteStatus) bool {
	switch s {
	case QuoteStatusDraft:
		return target == QuoteStatusSent || target == QuoteStatusAccepted || target == QuoteStatusRejected ||
			target == QuoteStatusExpired || target == QuoteStatusConverted
	case QuoteStatusSent:
		return target == QuoteStatusAccepted || target == QuoteStatusRejected ||
			target == QuoteStatusExpired || target == QuoteStatusConverted
	case QuoteStatusExpired:
		return target == QuoteStatusAccepted || target == QuoteStatusRejected || target == QuoteStatusConverted
	case QuoteStatusAccepted:
		return target == QuoteStatusConverted
	}
	return false
}

// DeriveInvoiceStatus returns the status an invoice should have at now.
// Non-terminal invoices past their due date become overdue; nothing reverts.
func DeriveInvoiceStatus(status InvoiceStatus, dueDate, now time.Time) InvoiceStatus {
	if status.IsTerminal() || status == InvoiceStatusOverdue || dueDate.IsZero() {
		return status
	}
	if now.After(dueDate) {
		return InvoiceStatusOverdue
	}
	return status
}

// DeriveQuoteStatus returns the status a quote should have at now.
// Non-terminal quotes past their validity date become expired; nothing reverts.
func DeriveQuoteStatus(status QuoteStatus, validUntil, now time.Time) QuoteStatus {
	if status.IsTerminal() || status == QuoteStatusExpired || validUntil.IsZero() {
		return status
	}
	if now.After(validUntil) {
		return QuoteStatusExpired
	}
	return status
}

// ceilDays returns the number of days in d rounded up
func ceilDays(d time.Duration) int {
	return int(math.Ceil(d.Hours() / 24))
}

// Payment status labels shown alongside invoices
const (
	PaymentStatusPaid          = "Paid"
	PaymentStatusOverdue       = "Overdue"
	PaymentStatusPartiallyPaid = "Partially Paid"
	PaymentStatusUnpaid        = "Unpaid"
)
