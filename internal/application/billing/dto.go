package billing

import (
	"time"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Shared DTOs
// =============================================================================

// LineItemInput is one submitted line item. Any total sent by the client is
// ignored; it is always recomputed.
type LineItemInput struct {
	Description string          `json:"description" binding:"required,max=500"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// LineItemResponse is a line item as returned by the API
type LineItemResponse struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

// DocumentListFilter holds list query parameters for invoices and quotes
type DocumentListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,doc_status"`
	ClientID string `form:"client_id" binding:"omitempty,uuid"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// =============================================================================
// Invoice DTOs
// =============================================================================

// CreateInvoiceRequest represents a request to create an invoice
type CreateInvoiceRequest struct {
	ClientID      uuid.UUID       `json:"client_id" binding:"required"`
	IssueDate     *time.Time      `json:"issue_date"`
	DueDate       *time.Time      `json:"due_date"`
	Currency      string          `json:"currency" binding:"omitempty,currency"`
	Items         []LineItemInput `json:"items" binding:"required,min=1,dive"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	Notes         string          `json:"notes" binding:"max=2000"`
	Terms         string          `json:"terms" binding:"max=2000"`
	PaymentTerms  string          `json:"payment_terms" binding:"max=100"`
	PaymentMethod string          `json:"payment_method" binding:"omitempty,oneof=cash check bank_transfer credit_card paypal other"`
}

// UpdateInvoiceRequest replaces the editable content of an invoice
type UpdateInvoiceRequest CreateInvoiceRequest

// MarkPaidRequest records a payment. Omitted fields fall back to the
// invoice total, bank transfer and the current time.
type MarkPaidRequest struct {
	PaidAmount    *decimal.Decimal `json:"paid_amount"`
	PaymentMethod string           `json:"payment_method" binding:"omitempty,oneof=cash check bank_transfer credit_card paypal other"`
	PaidDate      *time.Time       `json:"paid_date"`
}

// InvoiceResponse represents an invoice in API responses. Status is the
// effective status at response time.
type InvoiceResponse struct {
	ID            uuid.UUID          `json:"id"`
	Number        string             `json:"number"`
	OwnerID       uuid.UUID          `json:"owner_id"`
	ClientID      uuid.UUID          `json:"client_id"`
	CompanyID     *uuid.UUID         `json:"company_id,omitempty"`
	IssueDate     time.Time          `json:"issue_date"`
	DueDate       time.Time          `json:"due_date"`
	Status        string             `json:"status"`
	Currency      string             `json:"currency"`
	Items         []LineItemResponse `json:"items"`
	TaxRate       decimal.Decimal    `json:"tax_rate"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Discount      decimal.Decimal    `json:"discount_amount"`
	TaxAmount     decimal.Decimal    `json:"tax_amount"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	Notes         string             `json:"notes"`
	Terms         string             `json:"terms"`
	PaymentTerms  string             `json:"payment_terms"`
	PaymentMethod string             `json:"payment_method"`
	PaidDate      *time.Time         `json:"paid_date,omitempty"`
	PaidAmount    decimal.Decimal    `json:"paid_amount"`
	SourceQuoteID *uuid.UUID         `json:"source_quote_id,omitempty"`
	DaysOverdue   int                `json:"days_overdue"`
	PaymentStatus string             `json:"payment_status"`
	UpdatedBy     *uuid.UUID         `json:"updated_by,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	Version       int                `json:"version"`
}

// ToInvoiceResponse converts a domain Invoice to InvoiceResponse as seen at now
func ToInvoiceResponse(inv *billing.Invoice, now time.Time) InvoiceResponse {
	return InvoiceResponse{
		ID:            inv.ID,
		Number:        inv.Number,
		OwnerID:       inv.OwnerID,
		ClientID:      inv.ClientID,
		CompanyID:     inv.CompanyID,
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		Status:        string(inv.EffectiveStatus(now)),
		Currency:      inv.Currency,
		Items:         toLineItemResponses(inv.Items),
		TaxRate:       inv.TaxRate,
		Subtotal:      inv.Subtotal,
		Discount:      inv.DiscountAmount,
		TaxAmount:     inv.TaxAmount,
		TotalAmount:   inv.TotalAmount,
		Notes:         inv.Notes,
		Terms:         inv.Terms,
		PaymentTerms:  inv.PaymentTerms,
		PaymentMethod: string(inv.PaymentMethod),
		PaidDate:      inv.PaidDate,
		PaidAmount:    inv.PaidAmount,
		SourceQuoteID: inv.SourceQuoteID,
		DaysOverdue:   inv.DaysOverdue(now),
		PaymentStatus: inv.PaymentStatus(now),
		UpdatedBy:     inv.UpdatedBy,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
		Version:       inv.Version,
	}
}

// ToInvoiceResponses converts a slice of invoices
func ToInvoiceResponses(invoices []billing.Invoice, now time.Time) []InvoiceResponse {
	out := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		out[i] = ToInvoiceResponse(&invoices[i], now)
	}
	return out
}

// =============================================================================
// Quote DTOs
// =============================================================================

// DiscountInput is a quote-level discount
type DiscountInput struct {
	Value decimal.Decimal `json:"value"`
	Type  string          `json:"type" binding:"omitempty,oneof=percentage fixed"`
}

// CreateQuoteRequest represents a request to create a quote
type CreateQuoteRequest struct {
	ClientID   uuid.UUID       `json:"client_id" binding:"required"`
	IssueDate  *time.Time      `json:"issue_date"`
	ValidUntil *time.Time      `json:"valid_until"`
	Currency   string          `json:"currency" binding:"omitempty,currency"`
	Items      []LineItemInput `json:"items" binding:"required,min=1,dive"`
	TaxRate    decimal.Decimal `json:"tax_rate"`
	Discount   *DiscountInput  `json:"discount"`
	Notes      string          `json:"notes" binding:"max=2000"`
	Terms      string          `json:"terms" binding:"max=2000"`
}

// UpdateQuoteRequest replaces the editable content of a quote
type UpdateQuoteRequest CreateQuoteRequest

// RejectQuoteRequest carries the optional rejection reason
type RejectQuoteRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
}

// ConvertQuoteRequest tunes the invoice produced from a quote
type ConvertQuoteRequest struct {
	DueDate      *time.Time `json:"due_date"`
	PaymentTerms string     `json:"payment_terms" binding:"max=100"`
}

// DiscountResponse is the discount applied to a quote
type DiscountResponse struct {
	Value decimal.Decimal `json:"value"`
	Type  string          `json:"type"`
}

// QuoteResponse represents a quote in API responses
type QuoteResponse struct {
	ID                 uuid.UUID          `json:"id"`
	Number             string             `json:"number"`
	OwnerID            uuid.UUID          `json:"owner_id"`
	ClientID           uuid.UUID          `json:"client_id"`
	CompanyID          *uuid.UUID         `json:"company_id,omitempty"`
	IssueDate          time.Time          `json:"issue_date"`
	ValidUntil         time.Time          `json:"valid_until"`
	Status             string             `json:"status"`
	Currency           string             `json:"currency"`
	Items              []LineItemResponse `json:"items"`
	TaxRate            decimal.Decimal    `json:"tax_rate"`
	Subtotal           decimal.Decimal    `json:"subtotal"`
	Discount           DiscountResponse   `json:"discount"`
	DiscountAmount     decimal.Decimal    `json:"discount_amount"`
	TaxAmount          decimal.Decimal    `json:"tax_amount"`
	TotalAmount        decimal.Decimal    `json:"total_amount"`
	Notes              string             `json:"notes"`
	Terms              string             `json:"terms"`
	ConvertedInvoiceID *uuid.UUID         `json:"converted_invoice_id,omitempty"`
	ConversionDate     *time.Time         `json:"conversion_date,omitempty"`
	AcceptanceDate     *time.Time         `json:"acceptance_date,omitempty"`
	RejectionReason    string             `json:"rejection_reason,omitempty"`
	DaysUntilExpiry    int                `json:"days_until_expiry"`
	UpdatedBy          *uuid.UUID         `json:"updated_by,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
	Version            int                `json:"version"`
}

// ToQuoteResponse converts a domain Quote to QuoteResponse as seen at now
func ToQuoteResponse(q *billing.Quote, now time.Time) QuoteResponse {
	return QuoteResponse{
		ID:                 q.ID,
		Number:             q.Number,
		OwnerID:            q.OwnerID,
		ClientID:           q.ClientID,
		CompanyID:          q.CompanyID,
		IssueDate:          q.IssueDate,
		ValidUntil:         q.ValidUntil,
		Status:             string(q.EffectiveStatus(now)),
		Currency:           q.Currency,
		Items:              toLineItemResponses(q.Items),
		TaxRate:            q.TaxRate,
		Subtotal:           q.Subtotal,
		Discount:           DiscountResponse{Value: q.Discount.Value, Type: string(q.Discount.Type)},
		DiscountAmount:     q.DiscountAmount,
		TaxAmount:          q.TaxAmount,
		TotalAmount:        q.TotalAmount,
		Notes:              q.Notes,
		Terms:              q.Terms,
		ConvertedInvoiceID: q.ConvertedInvoiceID,
		ConversionDate:     q.ConversionDate,
		AcceptanceDate:     q.AcceptanceDate,
		RejectionReason:    q.RejectionReason,
		DaysUntilExpiry:    q.DaysUntilExpiry(now),
		UpdatedBy:          q.UpdatedBy,
		CreatedAt:          q.CreatedAt,
		UpdatedAt:          q.UpdatedAt,
		Version:            q.Version,
	}
}

// ToQuoteResponses converts a slice of quotes
func ToQuoteResponses(quotes []billing.Quote, now time.Time) []QuoteResponse {
	out := make([]QuoteResponse, len(quotes))
	for i := range quotes {
		out[i] = ToQuoteResponse(&quotes[i], now)
	}
	return out
}

// ConversionResponse is returned by a successful quote conversion
type ConversionResponse struct {
	Quote   QuoteResponse   `json:"quote"`
	Invoice InvoiceResponse `json:"invoice"`
}

func toLineItemResponses(items []billing.LineItem) []LineItemResponse {
	out := make([]LineItemResponse, len(items))
	for i, item := range items {
		out[i] = LineItemResponse{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
		}
	}
	return out
}

func toLineItems(in []LineItemInput) ([]billing.LineItem, error) {
	items := make([]billing.LineItem, 0, len(in))
	for _, li := range in {
		item, err := billing.NewLineItem(li.Description, li.Quantity, li.UnitPrice)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
