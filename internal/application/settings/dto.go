package settings

import (
	"time"

	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/settings"
	"github.com/google/uuid"
)

// AddressInput is the postal address of the company profile
type AddressInput struct {
	Street  string `json:"street" binding:"max=200"`
	City    string `json:"city" binding:"max=100"`
	State   string `json:"state" binding:"max=100"`
	ZipCode string `json:"zip_code" binding:"max=20"`
	Country string `json:"country" binding:"max=100"`
}

// UpdateCompanyInfoRequest merges into the stored profile. Omitted fields
// keep their value; an address, when sent, replaces the whole address.
type UpdateCompanyInfoRequest struct {
	Name               *string       `json:"name" binding:"omitempty,max=100"`
	Address            *AddressInput `json:"address"`
	Phone              *string       `json:"phone" binding:"omitempty,max=20"`
	Email              *string       `json:"email" binding:"omitempty,max=100"`
	Website            *string       `json:"website" binding:"omitempty,max=200"`
	TaxID              *string       `json:"tax_id" binding:"omitempty,max=50"`
	RegistrationNumber *string       `json:"registration_number" binding:"omitempty,max=50"`
	Logo               *string       `json:"logo"`
	Currency           *string       `json:"currency" binding:"omitempty,max=3"`
	PaymentTerms       *string       `json:"default_payment_terms" binding:"omitempty,max=100"`
	QuoteTerms         *string       `json:"default_quote_terms" binding:"omitempty,max=1000"`
	FooterNote         *string       `json:"footer_note" binding:"omitempty,max=500"`
}

func (r UpdateCompanyInfoRequest) mergeInto(p settings.CompanyInfoParams) settings.CompanyInfoParams {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.Name, r.Name)
	set(&p.Phone, r.Phone)
	set(&p.Email, r.Email)
	set(&p.Website, r.Website)
	set(&p.TaxID, r.TaxID)
	set(&p.RegistrationNumber, r.RegistrationNumber)
	set(&p.Logo, r.Logo)
	set(&p.Currency, r.Currency)
	set(&p.PaymentTerms, r.PaymentTerms)
	set(&p.QuoteTerms, r.QuoteTerms)
	set(&p.FooterNote, r.FooterNote)
	if r.Address != nil {
		p.Address = partner.Address{
			Street:  r.Address.Street,
			City:    r.Address.City,
			State:   r.Address.State,
			ZipCode: r.Address.ZipCode,
			Country: r.Address.Country,
		}
	}
	return p
}

// AddressResponse represents the profile address in API responses
type AddressResponse struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

// CompanyInfoResponse represents the company profile in API responses
type CompanyInfoResponse struct {
	ID                 uuid.UUID       `json:"id"`
	Name               string          `json:"name"`
	Address            AddressResponse `json:"address"`
	FullAddress        string          `json:"full_address"`
	Phone              string          `json:"phone"`
	Email              string          `json:"email"`
	Website            string          `json:"website"`
	TaxID              string          `json:"tax_id"`
	RegistrationNumber string          `json:"registration_number"`
	Logo               string          `json:"logo"`
	Currency           string          `json:"currency"`
	PaymentTerms       string          `json:"default_payment_terms"`
	QuoteTerms         string          `json:"default_quote_terms"`
	FooterNote         string          `json:"footer_note"`
	OwnerID            uuid.UUID       `json:"created_by"`
	UpdatedBy          *uuid.UUID      `json:"updated_by,omitempty"`
	Version            int             `json:"version"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// ToCompanyInfoResponse converts a domain CompanyInfo to its response
func ToCompanyInfoResponse(c *settings.CompanyInfo) CompanyInfoResponse {
	return CompanyInfoResponse{
		ID:   c.ID,
		Name: c.Name,
		Address: AddressResponse{
			Street:  c.Address.Street,
			City:    c.Address.City,
			State:   c.Address.State,
			ZipCode: c.Address.ZipCode,
			Country: c.Address.Country,
		},
		FullAddress:        c.Address.FullAddress(),
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
		OwnerID:            c.OwnerID,
		UpdatedBy:          c.UpdatedBy,
		Version:            c.Version,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}
