package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// invoiceUpdateColumns are written by SaveWithLock. Number, owner and
// creation time are immutable once the invoice exists.
var invoiceUpdateColumns = []string{
	"client_id", "company_id", "issue_date", "currency", "items",
	"tax_rate", "subtotal", "discount_amount", "tax_amount", "total_amount", "notes", "terms",
	"due_date", "status", "payment_terms", "payment_method", "paid_date", "paid_amount",
	"updated_by", "updated_at", "version",
}

// GormInvoiceRepository implements billing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db        *gorm.DB
	allocator *SequenceAllocator
	now       func() time.Time
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB, allocator *SequenceAllocator) *GormInvoiceRepository {
	if allocator == nil {
		allocator = NewSequenceAllocator()
	}
	return &GormInvoiceRepository{db: db, allocator: allocator, now: time.Now}
}

// FindByIDForOwner finds an invoice by ID within an owner's documents
func (r *GormInvoiceRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForOwner lists invoices with filtering and pagination
func (r *GormInvoiceRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter billing.ListFilter) ([]billing.Invoice, int64, error) {
	scope := documentScope(ownerID, filter)

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Scopes(scope).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.InvoiceModel
	query := paginate(r.db.WithContext(ctx).Model(&models.InvoiceModel{}).Scopes(scope), filter.Filter, DocumentSortFields)
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	invoices := make([]billing.Invoice, len(rows))
	for i := range rows {
		invoices[i] = *rows[i].ToDomain()
	}
	return invoices, total, nil
}

// Create allocates the next invoice number and inserts the invoice in one
// transaction. The number is only assigned to inv once the insert succeeds.
func (r *GormInvoiceRepository) Create(ctx context.Context, inv *billing.Invoice) error {
	var number string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		number, err = insertInvoice(tx, r.allocator, inv)
		return err
	})
	if err != nil {
		return err
	}
	if !inv.HasNumber() {
		return inv.AssignNumber(number)
	}
	return nil
}

// insertInvoice writes inv inside tx, allocating a number when it has none
func insertInvoice(tx *gorm.DB, allocator *SequenceAllocator, inv *billing.Invoice) (string, error) {
	model := models.InvoiceModelFromDomain(inv)
	if !inv.HasNumber() {
		number, err := allocator.Next(tx, billing.KindInvoice)
		if err != nil {
			return "", err
		}
		model.Number = number
	}
	if err := tx.Create(model).Error; err != nil {
		return "", translateError(err, shared.ErrDuplicateNumber)
	}
	return model.Number, nil
}

// SaveWithLock updates an invoice, failing with ErrConcurrencyConflict when
// the stored version no longer matches inv.Version
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, inv *billing.Invoice) error {
	expected := inv.Version
	model := models.InvoiceModelFromDomain(inv)
	model.Version = expected + 1

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return updateWithVersion(tx, model.TableName(), model, inv.ID, expected, invoiceUpdateColumns)
	})
	if err != nil {
		return err
	}
	inv.Version = model.Version
	return nil
}

// DeleteForOwner deletes an invoice owned by ownerID
func (r *GormInvoiceRepository) DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Delete(&models.InvoiceModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindStale returns draft or sent invoices whose due date has passed
func (r *GormInvoiceRepository) FindStale(ctx context.Context, now time.Time, limit int) ([]billing.Invoice, error) {
	var rows []models.InvoiceModel
	query := r.db.WithContext(ctx).
		Where("status IN ?", []billing.InvoiceStatus{billing.InvoiceStatusDraft, billing.InvoiceStatusSent}).
		Where("due_date < ?", now.UTC()).
		Order("due_date ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	invoices := make([]billing.Invoice, len(rows))
	for i := range rows {
		invoices[i] = *rows[i].ToDomain()
	}
	return invoices, nil
}

// Stats aggregates the owner's invoices by effective status, so open invoices
// past their due date count as overdue before the sweeper persists it
func (r *GormInvoiceRepository) Stats(ctx context.Context, ownerID uuid.UUID) (*billing.InvoiceStats, error) {
	db := r.db.WithContext(ctx)
	table := models.InvoiceModel{}.TableName()
	stats := &billing.InvoiceStats{}

	counts, err := statusCounts(db, table, ownerID, invoiceLapse, r.now())
	if err != nil {
		return nil, fmt.Errorf("count invoices by status: %w", err)
	}
	stats.StatusStats = counts
	for _, c := range counts {
		stats.TotalInvoices += c.Count
		if c.Status == billing.InvoiceStatusOverdue.String() {
			stats.OverdueInvoices = c.Count
		}
	}

	var sums struct {
		TotalAmount decimal.Decimal
		PaidAmount  decimal.Decimal
	}
	if err := db.Table(table).
		Select("COALESCE(SUM(total_amount), 0) AS total_amount, "+
			"COALESCE(SUM(CASE WHEN status = ? THEN paid_amount ELSE 0 END), 0) AS paid_amount",
			billing.InvoiceStatusPaid).
		Where("owner_id = ?", ownerID).
		Scan(&sums).Error; err != nil {
		return nil, fmt.Errorf("sum invoice amounts: %w", err)
	}
	stats.TotalAmount = sums.TotalAmount
	stats.PaidAmount = sums.PaidAmount
	return stats, nil
}

// SumTotalByClient returns the sum of invoice totals billed to a client
func (r *GormInvoiceRepository) SumTotalByClient(ctx context.Context, ownerID, clientID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Select("COALESCE(SUM(total_amount), 0) AS total").
		Where("owner_id = ? AND client_id = ?", ownerID, clientID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
