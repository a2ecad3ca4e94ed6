package partner

import (
	"time"

	"github.com/crm/backend/internal/domain/partner"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddressInput is the postal address accepted by client and company requests
type AddressInput struct {
	Street  string `json:"street" binding:"max=500"`
	City    string `json:"city" binding:"max=100"`
	State   string `json:"state" binding:"max=100"`
	ZipCode string `json:"zip_code" binding:"max=20"`
	Country string `json:"country" binding:"max=100"`
}

func (a AddressInput) toDomain() partner.Address {
	return partner.Address{
		Street:  a.Street,
		City:    a.City,
		State:   a.State,
		ZipCode: a.ZipCode,
		Country: a.Country,
	}
}

// AddressResponse represents an address in API responses
type AddressResponse struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

func toAddressResponse(a partner.Address) AddressResponse {
	return AddressResponse{
		Street:  a.Street,
		City:    a.City,
		State:   a.State,
		ZipCode: a.ZipCode,
		Country: a.Country,
	}
}

// =============================================================================
// Client DTOs
// =============================================================================

// CreateClientRequest represents a request to create a new client
type CreateClientRequest struct {
	FirstName string       `json:"first_name" binding:"required,max=100"`
	LastName  string       `json:"last_name" binding:"required,max=100"`
	Email     string       `json:"email" binding:"required,email,max=200"`
	Phone     string       `json:"phone" binding:"max=50"`
	CompanyID *uuid.UUID   `json:"company_id"`
	Position  string       `json:"position" binding:"max=100"`
	Industry  string       `json:"industry" binding:"max=100"`
	Address   AddressInput `json:"address"`
	Status    string       `json:"status" binding:"omitempty,oneof=Active Inactive Prospect Lead"`
	Source    string       `json:"source" binding:"omitempty,max=50"`
	Notes     string       `json:"notes"`
	Tags      []string     `json:"tags" binding:"max=50,dive,max=50"`
}

// UpdateClientRequest replaces the editable client fields
type UpdateClientRequest CreateClientRequest

func (r CreateClientRequest) toParams() partner.ClientParams {
	return partner.ClientParams{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
		CompanyID: r.CompanyID,
		Position:  r.Position,
		Industry:  r.Industry,
		Address:   r.Address.toDomain(),
		Status:    partner.ClientStatus(r.Status),
		Source:    partner.ClientSource(r.Source),
		Notes:     r.Notes,
		Tags:      r.Tags,
	}
}

// ClientListFilter represents filter options for the client list
type ClientListFilter struct {
	Search    string `form:"search"`
	Status    string `form:"status" binding:"omitempty,oneof=Active Inactive Prospect Lead"`
	CompanyID string `form:"company_id" binding:"omitempty,uuid"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string `form:"order_by"`
	OrderDir  string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ClientResponse represents a client in API responses. TotalValue is the sum
// of the client's invoice totals.
type ClientResponse struct {
	ID         uuid.UUID       `json:"id"`
	OwnerID    uuid.UUID       `json:"owner_id"`
	FirstName  string          `json:"first_name"`
	LastName   string          `json:"last_name"`
	FullName   string          `json:"full_name"`
	Email      string          `json:"email"`
	Phone      string          `json:"phone"`
	CompanyID  *uuid.UUID      `json:"company_id,omitempty"`
	Position   string          `json:"position"`
	Industry   string          `json:"industry"`
	Address    AddressResponse `json:"address"`
	Status     string          `json:"status"`
	Source     string          `json:"source"`
	Notes      string          `json:"notes"`
	Tags       []string        `json:"tags"`
	IsActive   bool            `json:"is_active"`
	TotalValue decimal.Decimal `json:"total_value"`
	UpdatedBy  *uuid.UUID      `json:"updated_by,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Version    int             `json:"version"`
}

// ToClientResponse converts a domain Client to ClientResponse
func ToClientResponse(c *partner.Client, totalValue decimal.Decimal) ClientResponse {
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	return ClientResponse{
		ID:         c.ID,
		OwnerID:    c.OwnerID,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		FullName:   c.FullName(),
		Email:      c.Email,
		Phone:      c.Phone,
		CompanyID:  c.CompanyID,
		Position:   c.Position,
		Industry:   c.Industry,
		Address:    toAddressResponse(c.Address),
		Status:     string(c.Status),
		Source:     string(c.Source),
		Notes:      c.Notes,
		Tags:       tags,
		IsActive:   c.IsActive,
		TotalValue: totalValue,
		UpdatedBy:  c.UpdatedBy,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
		Version:    c.Version,
	}
}

// ClientStatsResponse is the client summary shown on the dashboard
type ClientStatsResponse struct {
	partner.ClientStats
	TotalValue decimal.Decimal `json:"total_value"`
}

// =============================================================================
// Company DTOs
// =============================================================================

// CreateCompanyRequest represents a request to create a new company
type CreateCompanyRequest struct {
	Name     string       `json:"name" binding:"required,max=200"`
	Email    string       `json:"email" binding:"required,email,max=200"`
	Phone    string       `json:"phone" binding:"max=50"`
	Website  string       `json:"website" binding:"omitempty,url,max=200"`
	Industry string       `json:"industry" binding:"required,max=100"`
	Size     string       `json:"size" binding:"omitempty,oneof=startup small medium large enterprise"`
	Address  AddressInput `json:"address"`
	Status   string       `json:"status" binding:"omitempty,oneof=active inactive prospect lead"`
	Notes    string       `json:"notes"`
	Tags     []string     `json:"tags" binding:"max=50,dive,max=50"`
}

// UpdateCompanyRequest replaces the editable company fields
type UpdateCompanyRequest CreateCompanyRequest

func (r CreateCompanyRequest) toParams() partner.CompanyParams {
	return partner.CompanyParams{
		Name:     r.Name,
		Email:    r.Email,
		Phone:    r.Phone,
		Website:  r.Website,
		Industry: r.Industry,
		Size:     partner.CompanySize(r.Size),
		Address:  r.Address.toDomain(),
		Status:   partner.CompanyStatus(r.Status),
		Notes:    r.Notes,
		Tags:     r.Tags,
	}
}

// CompanyListFilter represents filter options for the company list
type CompanyListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive prospect lead"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CompanyResponse represents a company in API responses
type CompanyResponse struct {
	ID        uuid.UUID       `json:"id"`
	OwnerID   uuid.UUID       `json:"owner_id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Phone     string          `json:"phone"`
	Website   string          `json:"website"`
	Industry  string          `json:"industry"`
	Size      string          `json:"size"`
	Address   AddressResponse `json:"address"`
	Status    string          `json:"status"`
	Notes     string          `json:"notes"`
	Tags      []string        `json:"tags"`
	UpdatedBy *uuid.UUID      `json:"updated_by,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Version   int             `json:"version"`
}

// ToCompanyResponse converts a domain Company to CompanyResponse
func ToCompanyResponse(c *partner.Company) CompanyResponse {
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	return CompanyResponse{
		ID:        c.ID,
		OwnerID:   c.OwnerID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Website:   c.Website,
		Industry:  c.Industry,
		Size:      string(c.Size),
		Address:   toAddressResponse(c.Address),
		Status:    string(c.Status),
		Notes:     c.Notes,
		Tags:      tags,
		UpdatedBy: c.UpdatedBy,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Version:   c.Version,
	}
}

// ToCompanyResponses converts a slice of companies
func ToCompanyResponses(companies []partner.Company) []CompanyResponse {
	out := make([]CompanyResponse, len(companies))
	for i := range companies {
		out[i] = ToCompanyResponse(&companies[i])
	}
	return out
}
