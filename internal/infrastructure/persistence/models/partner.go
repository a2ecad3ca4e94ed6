package models

import (
	"github.com/crm/backend/internal/domain/partner"
	"github.com/google/uuid"
)

func addressFromDomain(a partner.Address) AddressColumns {
	return AddressColumns{
		Street:  a.Street,
		City:    a.City,
		State:   a.State,
		ZipCode: a.ZipCode,
		Country: a.Country,
	}
}

func (a AddressColumns) toDomain() partner.Address {
	return partner.Address{
		Street:  a.Street,
		City:    a.City,
		State:   a.State,
		ZipCode: a.ZipCode,
		Country: a.Country,
	}
}

// ClientModel is the persistence model for the Client aggregate
type ClientModel struct {
	AggregateModel
	OwnerID   uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_client_owner_email,priority:1"`
	UpdatedBy *uuid.UUID           `gorm:"type:uuid"`
	FirstName string               `gorm:"type:varchar(100);not null"`
	LastName  string               `gorm:"type:varchar(100);not null"`
	Email     string               `gorm:"type:varchar(200);not null;uniqueIndex:idx_client_owner_email,priority:2"`
	Phone     string               `gorm:"type:varchar(50)"`
	CompanyID *uuid.UUID           `gorm:"type:uuid;index"`
	Position  string               `gorm:"type:varchar(100)"`
	Industry  string               `gorm:"type:varchar(100)"`
	Address   AddressColumns       `gorm:"embedded;embeddedPrefix:address_"`
	Status    partner.ClientStatus `gorm:"type:varchar(20);not null;default:'Prospect';index"`
	Source    partner.ClientSource `gorm:"type:varchar(20);not null;default:'Other'"`
	Notes     string               `gorm:"type:text"`
	Tags      []string             `gorm:"type:jsonb;serializer:json"`
	IsActive  bool                 `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the persistence model to a domain Client
func (m *ClientModel) ToDomain() *partner.Client {
	return &partner.Client{
		OwnedAggregateRoot: ownedRoot(&m.AggregateModel, m.OwnerID, m.UpdatedBy),
		FirstName:          m.FirstName,
		LastName:           m.LastName,
		Email:              m.Email,
		Phone:              m.Phone,
		CompanyID:          m.CompanyID,
		Position:           m.Position,
		Industry:           m.Industry,
		Address:            m.Address.toDomain(),
		Status:             m.Status,
		Source:             m.Source,
		Notes:              m.Notes,
		Tags:               m.Tags,
		IsActive:           m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Client
func (m *ClientModel) FromDomain(c *partner.Client) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.OwnerID = c.OwnerID
	m.UpdatedBy = c.UpdatedBy
	m.FirstName = c.FirstName
	m.LastName = c.LastName
	m.Email = c.Email
	m.Phone = c.Phone
	m.CompanyID = c.CompanyID
	m.Position = c.Position
	m.Industry = c.Industry
	m.Address = addressFromDomain(c.Address)
	m.Status = c.Status
	m.Source = c.Source
	m.Notes = c.Notes
	m.Tags = c.Tags
	m.IsActive = c.IsActive
}

// ClientModelFromDomain creates a persistence model from a domain Client
func ClientModelFromDomain(c *partner.Client) *ClientModel {
	m := &ClientModel{}
	m.FromDomain(c)
	return m
}

// CompanyModel is the persistence model for the Company aggregate
type CompanyModel struct {
	AggregateModel
	OwnerID   uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_company_owner_name,priority:1;uniqueIndex:idx_company_owner_email,priority:1"`
	UpdatedBy *uuid.UUID            `gorm:"type:uuid"`
	Name      string                `gorm:"type:varchar(200);not null;uniqueIndex:idx_company_owner_name,priority:2"`
	Email     string                `gorm:"type:varchar(200);not null;uniqueIndex:idx_company_owner_email,priority:2"`
	Phone     string                `gorm:"type:varchar(50)"`
	Website   string                `gorm:"type:varchar(500)"`
	Industry  string                `gorm:"type:varchar(100);not null;index"`
	Size      partner.CompanySize   `gorm:"type:varchar(20);not null;default:'small'"`
	Address   AddressColumns        `gorm:"embedded;embeddedPrefix:address_"`
	Status    partner.CompanyStatus `gorm:"type:varchar(20);not null;default:'prospect';index"`
	Notes     string                `gorm:"type:text"`
	Tags      []string              `gorm:"type:jsonb;serializer:json"`
}

// TableName returns the table name for GORM
func (CompanyModel) TableName() string {
	return "companies"
}

// ToDomain converts the persistence model to a domain Company
func (m *CompanyModel) ToDomain() *partner.Company {
	return &partner.Company{
		OwnedAggregateRoot: ownedRoot(&m.AggregateModel, m.OwnerID, m.UpdatedBy),
		Name:               m.Name,
		Email:              m.Email,
		Phone:              m.Phone,
		Website:            m.Website,
		Industry:           m.Industry,
		Size:               m.Size,
		Address:            m.Address.toDomain(),
		Status:             m.Status,
		Notes:              m.Notes,
		Tags:               m.Tags,
	}
}

// FromDomain populates the persistence model from a domain Company
func (m *CompanyModel) FromDomain(c *partner.Company) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.OwnerID = c.OwnerID
	m.UpdatedBy = c.UpdatedBy
	m.Name = c.Name
	m.Email = c.Email
	m.Phone = c.Phone
	m.Website = c.Website
	m.Industry = c.Industry
	m.Size = c.Size
	m.Address = addressFromDomain(c.Address)
	m.Status = c.Status
	m.Notes = c.Notes
	m.Tags = c.Tags
}

// CompanyModelFromDomain creates a persistence model from a domain Company
func CompanyModelFromDomain(c *partner.Company) *CompanyModel {
	m := &CompanyModel{}
	m.FromDomain(c)
	return m
}
