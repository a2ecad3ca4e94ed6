package billing

import (
	"regexp"
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when a document is created without one
const DefaultCurrency = "USD"

// DefaultValidityDays is the default span for due and valid-until dates
const DefaultValidityDays = 30

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Document is the shape shared by invoices and quotes
type Document struct {
	Number      string
	ClientID    uuid.UUID
	CompanyID   *uuid.UUID
	IssueDate   time.Time
	Currency    string
	Items       []LineItem
	TaxRate     decimal.Decimal
	Subtotal    decimal.Decimal
	TaxAmount   decimal.Decimal
	TotalAmount decimal.Decimal
	Notes       string
	Terms       string
}

// DocumentParams carries the caller-supplied fields common to both kinds
type DocumentParams struct {
	ClientID  uuid.UUID
	CompanyID *uuid.UUID
	IssueDate time.Time
	Currency  string
	Items     []LineItem
	TaxRate   decimal.Decimal
	Notes     string
	Terms     string
}

func newDocument(p DocumentParams, now time.Time) (Document, error) {
	if p.ClientID == uuid.Nil {
		return Document{}, shared.NewDomainError("INVALID_CLIENT", "Client is required")
	}
	issue := p.IssueDate
	if issue.IsZero() {
		issue = now
	}
	currency := normalizeCurrency(p.Currency)
	if err := validateCurrency(currency); err != nil {
		return Document{}, err
	}
	if err := validateLineItems(p.Items); err != nil {
		return Document{}, err
	}
	if err := ValidateTaxRate(p.TaxRate); err != nil {
		return Document{}, err
	}
	return Document{
		ClientID:  p.ClientID,
		CompanyID: p.CompanyID,
		IssueDate: issue,
		Currency:  currency,
		Items:     cloneItems(p.Items),
		TaxRate:   p.TaxRate,
		Notes:     strings.TrimSpace(p.Notes),
		Terms:     strings.TrimSpace(p.Terms),
	}, nil
}

// HasNumber reports whether a sequence number was assigned
func (d *Document) HasNumber() bool {
	return d.Number != ""
}

// AssignNumber sets the sequence number. A number is assigned exactly once.
func (d *Document) AssignNumber(number string) error {
	if d.Number != "" {
		return shared.NewDomainError("NUMBER_ALREADY_ASSIGNED", "Document number cannot be changed once assigned")
	}
	if number == "" {
		return shared.NewDomainError("INVALID_NUMBER", "Document number cannot be empty")
	}
	d.Number = number
	return nil
}

func (d *Document) applyTotals(t Totals) {
	d.Subtotal = t.Subtotal
	d.TaxAmount = t.TaxAmount
	d.TotalAmount = t.TotalAmount
}

func normalizeCurrency(c string) string {
	c = strings.ToUpper(strings.TrimSpace(c))
	if c == "" {
		return DefaultCurrency
	}
	return c
}

func validateCurrency(c string) error {
	if !currencyPattern.MatchString(c) {
		return shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter ISO 4217 code")
	}
	return nil
}

func validateDateRange(issue, second time.Time, field string) error {
	if second.Before(issue) {
		return shared.NewDomainError("INVALID_DATE_RANGE", field+" cannot be before the issue date")
	}
	return nil
}

func defaultSecondDate(issue time.Time) time.Time {
	return issue.AddDate(0, 0, DefaultValidityDays)
}
