// Package settings holds the per-user company profile printed on billing
// documents and the defaults it supplies to new invoices and quotes.
package settings

import (
	"regexp"
	"strings"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const defaultCompanyName = "Your Company"

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
)

// CompanyInfo is the issuing business of a user. There is at most one per owner.
type CompanyInfo struct {
	shared.OwnedAggregateRoot
	Name               string
	Address            partner.Address
	Phone              string
	Email              string
	Website            string
	TaxID              string
	RegistrationNumber string
	Logo               string
	Currency           string
	PaymentTerms       string
	QuoteTerms         string
	FooterNote         string
}

// CompanyInfoParams carries the editable profile fields
type CompanyInfoParams struct {
	Name               string
	Address            partner.Address
	Phone              string
	Email              string
	Website            string
	TaxID              string
	RegistrationNumber string
	Logo               string
	Currency           string
	PaymentTerms       string
	QuoteTerms         string
	FooterNote         string
}

// BillingDefaults are applied to documents created without their own values
type BillingDefaults struct {
	Currency     string
	PaymentTerms string
	QuoteTerms   string
}

// NewDefaultCompanyInfo returns the placeholder profile a user starts with
func NewDefaultCompanyInfo(ownerID uuid.UUID) *CompanyInfo {
	return &CompanyInfo{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		Name:               defaultCompanyName,
		Address: partner.Address{
			Street:  "123 Business Street",
			City:    "Business City",
			State:   "BC",
			ZipCode: "12345",
			Country: "USA",
		},
		Phone:        "(555) 123-4567",
		Email:        "info@yourcompany.com",
		Currency:     billing.DefaultCurrency,
		PaymentTerms: billing.DefaultPaymentTerms,
		QuoteTerms:   billing.DefaultQuoteTerms,
	}
}

// NewCompanyInfo creates a profile owned by ownerID from p
func NewCompanyInfo(ownerID uuid.UUID, p CompanyInfoParams) (*CompanyInfo, error) {
	c := &CompanyInfo{OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID)}
	if err := c.apply(p); err != nil {
		return nil, err
	}
	return c, nil
}

// Params returns the current editable fields
func (c *CompanyInfo) Params() CompanyInfoParams {
	return CompanyInfoParams{
		Name:               c.Name,
		Address:            c.Address,
		Phone:              c.Phone,
		Email:              c.Email,
		Website:            c.Website,
		TaxID:              c.TaxID,
		RegistrationNumber: c.RegistrationNumber,
		Logo:               c.Logo,
		Currency:           c.Currency,
		PaymentTerms:       c.PaymentTerms,
		QuoteTerms:         c.QuoteTerms,
		FooterNote:         c.FooterNote,
	}
}

// Update replaces the editable fields. The profile is unchanged on error.
func (c *CompanyInfo) Update(editorID uuid.UUID, p CompanyInfoParams) error {
	if err := c.apply(p); err != nil {
		return err
	}
	c.MarkEdited(editorID)
	return nil
}

// BillingDefaults returns the values new documents inherit
func (c *CompanyInfo) BillingDefaults() BillingDefaults {
	return BillingDefaults{
		Currency:     c.Currency,
		PaymentTerms: c.PaymentTerms,
		QuoteTerms:   c.QuoteTerms,
	}
}

func (c *CompanyInfo) apply(p CompanyInfoParams) error {
	name := strings.TrimSpace(p.Name)
	email := strings.ToLower(strings.TrimSpace(p.Email))
	currency := strings.ToUpper(strings.TrimSpace(p.Currency))
	addr := p.Address.Normalize()

	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Company name is required")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Company name cannot exceed 100 characters")
	}
	if email != "" && (len(email) > 100 || !emailPattern.MatchString(email)) {
		return shared.NewDomainError("INVALID_EMAIL", "Please enter a valid email")
	}
	if err := addr.Validate(); err != nil {
		return err
	}
	if currency == "" {
		currency = billing.DefaultCurrency
	}
	if !currencyPattern.MatchString(currency) {
		return shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter ISO 4217 code")
	}

	p.Phone = strings.TrimSpace(p.Phone)
	p.PaymentTerms = strings.TrimSpace(p.PaymentTerms)
	p.QuoteTerms = strings.TrimSpace(p.QuoteTerms)
	for _, f := range []struct {
		value string
		max   int
		label string
	}{
		{p.Phone, 20, "Phone number"},
		{strings.TrimSpace(p.Website), 200, "Website"},
		{strings.TrimSpace(p.TaxID), 50, "Tax ID"},
		{strings.TrimSpace(p.RegistrationNumber), 50, "Registration number"},
		{p.PaymentTerms, 100, "Payment terms"},
		{p.QuoteTerms, 1000, "Quote terms"},
		{strings.TrimSpace(p.FooterNote), 500, "Footer note"},
	} {
		if len(f.value) > f.max {
			return shared.NewDomainError("VALIDATION_ERROR", f.label+" is too long")
		}
	}
	if p.PaymentTerms == "" {
		p.PaymentTerms = billing.DefaultPaymentTerms
	}
	if p.QuoteTerms == "" {
		p.QuoteTerms = billing.DefaultQuoteTerms
	}

	c.Name = name
	c.Address = addr
	c.Phone = p.Phone
	c.Email = email
	c.Website = strings.TrimSpace(p.Website)
	c.TaxID = strings.TrimSpace(p.TaxID)
	c.RegistrationNumber = strings.TrimSpace(p.RegistrationNumber)
	c.Logo = strings.TrimSpace(p.Logo)
	c.Currency = currency
	c.PaymentTerms = p.PaymentTerms
	c.QuoteTerms = p.QuoteTerms
	c.FooterNote = strings.TrimSpace(p.FooterNote)
	return nil
}
