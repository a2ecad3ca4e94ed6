package billing

import (
	"context"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListFilter narrows owner-scoped document listings
type ListFilter struct {
	shared.Filter
	Status   string
	ClientID *uuid.UUID
}

// StatusCount is one row of a group-by-status aggregation
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// InvoiceStats is the owner-scoped invoice summary
type InvoiceStats struct {
	TotalInvoices   int64           `json:"total_invoices"`
	StatusStats     []StatusCount   `json:"status_stats"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	OverdueInvoices int64           `json:"overdue_invoices"`
}

// QuoteStats is the owner-scoped quote summary
type QuoteStats struct {
	TotalQuotes     int64           `json:"total_quotes"`
	StatusStats     []StatusCount   `json:"status_stats"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	AcceptedAmount  decimal.Decimal `json:"accepted_amount"`
	ExpiredQuotes   int64           `json:"expired_quotes"`
	ConvertedQuotes int64           `json:"converted_quotes"`
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByIDForOwner finds an invoice owned by ownerID
	FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*Invoice, error)

	// FindAllForOwner lists invoices with filtering and pagination
	FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]Invoice, int64, error)

	// Create allocates the invoice number and inserts the invoice in one transaction
	Create(ctx context.Context, inv *Invoice) error

	// SaveWithLock updates an existing invoice with an optimistic version check
	SaveWithLock(ctx context.Context, inv *Invoice) error

	// DeleteForOwner removes an invoice owned by ownerID
	DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) error

	// FindStale returns non-terminal invoices whose due date is before now
	// but whose stored status has not been moved to overdue yet
	FindStale(ctx context.Context, now time.Time, limit int) ([]Invoice, error)

	// Stats aggregates the owner's invoices
	Stats(ctx context.Context, ownerID uuid.UUID) (*InvoiceStats, error)

	// SumTotalByClient returns the sum of invoice totals for a client
	SumTotalByClient(ctx context.Context, ownerID, clientID uuid.UUID) (decimal.Decimal, error)
}

// QuoteRepository defines the interface for quote persistence
type QuoteRepository interface {
	FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*Quote, error)
	FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]Quote, int64, error)

	// Create allocates the quote number and inserts the quote in one transaction
	Create(ctx context.Context, q *Quote) error

	SaveWithLock(ctx context.Context, q *Quote) error
	DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) error
	FindStale(ctx context.Context, now time.Time, limit int) ([]Quote, error)
	Stats(ctx context.Context, ownerID uuid.UUID) (*QuoteStats, error)

	// Convert inserts the invoice (allocating its number) and saves the
	// converted quote with a version check, atomically
	Convert(ctx context.Context, q *Quote, inv *Invoice) error
}
