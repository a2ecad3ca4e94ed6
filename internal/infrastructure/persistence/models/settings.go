package models

import (
	"github.com/crm/backend/internal/domain/settings"
	"github.com/google/uuid"
)

// CompanyInfoModel is the persistence model for the CompanyInfo aggregate
type CompanyInfoModel struct {
	AggregateModel
	OwnerID            uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_company_settings_owner"`
	UpdatedBy          *uuid.UUID     `gorm:"type:uuid"`
	Name               string         `gorm:"type:varchar(100);not null"`
	Address            AddressColumns `gorm:"embedded;embeddedPrefix:address_"`
	Phone              string         `gorm:"type:varchar(20)"`
	Email              string         `gorm:"type:varchar(100)"`
	Website            string         `gorm:"type:varchar(200)"`
	TaxID              string         `gorm:"type:varchar(50)"`
	RegistrationNumber string         `gorm:"type:varchar(50)"`
	Logo               string         `gorm:"type:text"`
	Currency           string         `gorm:"type:varchar(3);not null;default:'USD'"`
	PaymentTerms       string         `gorm:"type:varchar(100);not null"`
	QuoteTerms         string         `gorm:"type:varchar(1000);not null"`
	FooterNote         string         `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (CompanyInfoModel) TableName() string {
	return "company_settings"
}

// ToDomain converts the persistence model to a domain CompanyInfo
func (m *CompanyInfoModel) ToDomain() *settings.CompanyInfo {
	return &settings.CompanyInfo{
		OwnedAggregateRoot: ownedRoot(&m.AggregateModel, m.OwnerID, m.UpdatedBy),
		Name:               m.Name,
		Address:            m.Address.toDomain(),
		Phone:              m.Phone,
		Email:              m.Email,
		Website:            m.Website,
		TaxID:              m.TaxID,
		RegistrationNumber: m.RegistrationNumber,
		Logo:               m.Logo,
		Currency:           m.Currency,
		PaymentTerms:       m.PaymentTerms,
		QuoteTerms:         m.QuoteTerms,
		FooterNote:         m.FooterNote,
	}
}

// CompanyInfoModelFromDomain creates a persistence model from a domain CompanyInfo
func CompanyInfoModelFromDomain(c *settings.CompanyInfo) *CompanyInfoModel {
	m := &CompanyInfoModel{
		OwnerID:            c.OwnerID,
		UpdatedBy:          c.UpdatedBy,
		Name:               c.Name,
		Address:            addressFromDomain(c.Address),
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
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}
