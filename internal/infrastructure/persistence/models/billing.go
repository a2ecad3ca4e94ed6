package models

import (
	"time"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItemRecord is the stored form of a line item inside the items column
type LineItemRecord struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

func lineItemsFromDomain(items []billing.LineItem) []LineItemRecord {
	out := make([]LineItemRecord, len(items))
	for i, it := range items {
		out[i] = LineItemRecord{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Total,
		}
	}
	return out
}

func lineItemsToDomain(records []LineItemRecord) []billing.LineItem {
	out := make([]billing.LineItem, len(records))
	for i, r := range records {
		out[i] = billing.LineItem{
			Description: r.Description,
			Quantity:    r.Quantity,
			UnitPrice:   r.UnitPrice,
			Total:       r.Total,
		}
	}
	return out
}

// DocumentColumns are the columns shared by invoices and quotes
type DocumentColumns struct {
	Number      string           `gorm:"type:varchar(20);not null;uniqueIndex"`
	ClientID    uuid.UUID        `gorm:"type:uuid;not null;index"`
	CompanyID   *uuid.UUID       `gorm:"type:uuid;index"`
	IssueDate   time.Time        `gorm:"not null"`
	Currency    string           `gorm:"type:varchar(3);not null;default:'USD'"`
	Items       []LineItemRecord `gorm:"type:jsonb;serializer:json;not null"`
	TaxRate     decimal.Decimal  `gorm:"type:decimal(5,2);not null;default:0"`
	Subtotal    decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount   decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	Notes       string           `gorm:"type:text"`
	Terms       string           `gorm:"type:text"`
}

func (c *DocumentColumns) fromDomain(d billing.Document) {
	c.Number = d.Number
	c.ClientID = d.ClientID
	c.CompanyID = d.CompanyID
	c.IssueDate = d.IssueDate
	c.Currency = d.Currency
	c.Items = lineItemsFromDomain(d.Items)
	c.TaxRate = d.TaxRate
	c.Subtotal = d.Subtotal
	c.TaxAmount = d.TaxAmount
	c.TotalAmount = d.TotalAmount
	c.Notes = d.Notes
	c.Terms = d.Terms
}

func (c *DocumentColumns) toDomain() billing.Document {
	return billing.Document{
		Number:      c.Number,
		ClientID:    c.ClientID,
		CompanyID:   c.CompanyID,
		IssueDate:   c.IssueDate,
		Currency:    c.Currency,
		Items:       lineItemsToDomain(c.Items),
		TaxRate:     c.TaxRate,
		Subtotal:    c.Subtotal,
		TaxAmount:   c.TaxAmount,
		TotalAmount: c.TotalAmount,
		Notes:       c.Notes,
		Terms:       c.Terms,
	}
}

// InvoiceModel is the persistence model for the Invoice aggregate
type InvoiceModel struct {
	OwnedAggregateModel
	DocumentColumns
	DueDate        time.Time             `gorm:"not null;index"`
	Status         billing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	PaymentTerms   string                `gorm:"type:varchar(100)"`
	PaymentMethod  billing.PaymentMethod `gorm:"type:varchar(30);not null;default:'bank_transfer'"`
	PaidDate       *time.Time
	PaidAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SourceQuoteID  *uuid.UUID      `gorm:"type:uuid;index"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	return &billing.Invoice{
		OwnedAggregateRoot: m.ToDomainOwnedAggregateRoot(),
		Document:           m.DocumentColumns.toDomain(),
		DueDate:            m.DueDate,
		Status:             m.Status,
		PaymentTerms:       m.PaymentTerms,
		PaymentMethod:      m.PaymentMethod,
		PaidDate:           m.PaidDate,
		PaidAmount:         m.PaidAmount,
		SourceQuoteID:      m.SourceQuoteID,
		DiscountAmount:     m.DiscountAmount,
	}
}

// FromDomain populates the persistence model from a domain Invoice
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainOwnedAggregateRoot(inv.OwnedAggregateRoot)
	m.DocumentColumns.fromDomain(inv.Document)
	m.DueDate = inv.DueDate
	m.Status = inv.Status
	m.PaymentTerms = inv.PaymentTerms
	m.PaymentMethod = inv.PaymentMethod
	m.PaidDate = inv.PaidDate
	m.PaidAmount = inv.PaidAmount
	m.SourceQuoteID = inv.SourceQuoteID
	m.DiscountAmount = inv.DiscountAmount
}

// InvoiceModelFromDomain creates a persistence model from a domain Invoice
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// QuoteModel is the persistence model for the Quote aggregate
type QuoteModel struct {
	OwnedAggregateModel
	DocumentColumns
	ValidUntil         time.Time            `gorm:"not null;index"`
	Status             billing.QuoteStatus  `gorm:"type:varchar(20);not null;default:'draft';index"`
	DiscountValue      decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountType       billing.DiscountType `gorm:"type:varchar(20);not null;default:'percentage'"`
	DiscountAmount     decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	ConvertedInvoiceID *uuid.UUID           `gorm:"type:uuid"`
	ConversionDate     *time.Time
	AcceptanceDate     *time.Time
	RejectionReason    string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (QuoteModel) TableName() string {
	return "quotes"
}

// ToDomain converts the persistence model to a domain Quote
func (m *QuoteModel) ToDomain() *billing.Quote {
	return &billing.Quote{
		OwnedAggregateRoot: m.ToDomainOwnedAggregateRoot(),
		Document:           m.DocumentColumns.toDomain(),
		ValidUntil:         m.ValidUntil,
		Status:             m.Status,
		Discount:           billing.Discount{Value: m.DiscountValue, Type: m.DiscountType},
		DiscountAmount:     m.DiscountAmount,
		ConvertedInvoiceID: m.ConvertedInvoiceID,
		ConversionDate:     m.ConversionDate,
		AcceptanceDate:     m.AcceptanceDate,
		RejectionReason:    m.RejectionReason,
	}
}

// FromDomain populates the persistence model from a domain Quote
func (m *QuoteModel) FromDomain(q *billing.Quote) {
	m.FromDomainOwnedAggregateRoot(q.OwnedAggregateRoot)
	m.DocumentColumns.fromDomain(q.Document)
	m.ValidUntil = q.ValidUntil
	m.Status = q.Status
	m.DiscountValue = q.Discount.Value
	m.DiscountType = q.Discount.Type
	m.DiscountAmount = q.DiscountAmount
	m.ConvertedInvoiceID = q.ConvertedInvoiceID
	m.ConversionDate = q.ConversionDate
	m.AcceptanceDate = q.AcceptanceDate
	m.RejectionReason = q.RejectionReason
}

// QuoteModelFromDomain creates a persistence model from a domain Quote
func QuoteModelFromDomain(q *billing.Quote) *QuoteModel {
	m := &QuoteModel{}
	m.FromDomain(q)
	return m
}

// DocumentSequenceModel is the per-kind counter behind document numbers
type DocumentSequenceModel struct {
	Kind      string `gorm:"type:varchar(20);primary_key"`
	Value     int64  `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (DocumentSequenceModel) TableName() string {
	return "document_sequences"
}
