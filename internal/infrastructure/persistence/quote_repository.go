package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var quoteUpdateColumns = []string{
	"client_id", "company_id", "issue_date", "currency", "items",
	"tax_rate", "subtotal", "tax_amount", "total_amount", "notes", "terms",
	"valid_until", "status", "discount_value", "discount_type", "discount_amount",
	"converted_invoice_id", "conversion_date", "acceptance_date", "rejection_reason",
	"updated_by", "updated_at", "version",
}

// GormQuoteRepository implements billing.QuoteRepository using GORM
type GormQuoteRepository struct {
	db        *gorm.DB
	allocator *SequenceAllocator
	logger    *zap.Logger
	now       func() time.Time
}

// NewGormQuoteRepository creates a new GormQuoteRepository
func NewGormQuoteRepository(db *gorm.DB, allocator *SequenceAllocator, logger *zap.Logger) *GormQuoteRepository {
	if allocator == nil {
		allocator = NewSequenceAllocator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormQuoteRepository{db: db, allocator: allocator, logger: logger, now: time.Now}
}

// FindByIDForOwner finds a quote by ID within an owner's documents
func (r *GormQuoteRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*billing.Quote, error) {
	var model models.QuoteModel
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

// FindAllForOwner lists quotes with filtering and pagination
func (r *GormQuoteRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter billing.ListFilter) ([]billing.Quote, int64, error) {
	scope := documentScope(ownerID, filter)

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.QuoteModel{}).
		Scopes(scope).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.QuoteModel
	query := paginate(r.db.WithContext(ctx).Model(&models.QuoteModel{}).Scopes(scope), filter.Filter, DocumentSortFields)
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	quotes := make([]billing.Quote, len(rows))
	for i := range rows {
		quotes[i] = *rows[i].ToDomain()
	}
	return quotes, total, nil
}

// Create allocates the next quote number and inserts the quote in one transaction
func (r *GormQuoteRepository) Create(ctx context.Context, q *billing.Quote) error {
	model := models.QuoteModelFromDomain(q)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !q.HasNumber() {
			number, err := r.allocator.Next(tx, billing.KindQuote)
			if err != nil {
				return err
			}
			model.Number = number
		}
		return translateError(tx.Create(model).Error, shared.ErrDuplicateNumber)
	})
	if err != nil {
		return err
	}
	if !q.HasNumber() {
		return q.AssignNumber(model.Number)
	}
	return nil
}

// SaveWithLock updates a quote with an optimistic version check
func (r *GormQuoteRepository) SaveWithLock(ctx context.Context, q *billing.Quote) error {
	expected := q.Version
	model := models.QuoteModelFromDomain(q)
	model.Version = expected + 1

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return updateWithVersion(tx, model.TableName(), model, q.ID, expected, quoteUpdateColumns)
	})
	if err != nil {
		return err
	}
	q.Version = model.Version
	return nil
}

// Convert inserts the invoice produced from q and saves q in one
// transaction. Either both rows are written or neither is.
func (r *GormQuoteRepository) Convert(ctx context.Context, q *billing.Quote, inv *billing.Invoice) error {
	expected := q.Version
	model := models.QuoteModelFromDomain(q)
	model.Version = expected + 1

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin conversion: %w", tx.Error)
	}

	number, err := insertInvoice(tx, r.allocator, inv)
	if err == nil {
		err = updateWithVersion(tx, model.TableName(), model, q.ID, expected, quoteUpdateColumns)
	}
	if err != nil {
		return r.rollback(tx, q, err)
	}
	if err := tx.Commit().Error; err != nil {
		return r.rollback(tx, q, fmt.Errorf("commit conversion: %w", err))
	}

	q.Version = model.Version
	if !inv.HasNumber() {
		return inv.AssignNumber(number)
	}
	return nil
}

// rollback aborts a conversion. A rollback that fails leaves the outcome
// unknown, which is reported as ErrConversionInconsistent.
func (r *GormQuoteRepository) rollback(tx *gorm.DB, q *billing.Quote, cause error) error {
	rbErr := tx.Rollback().Error
	if rbErr == nil || errors.Is(rbErr, sql.ErrTxDone) {
		return cause
	}
	r.logger.Error("quote conversion rollback failed",
		zap.String("quote_id", q.ID.String()),
		zap.String("quote_number", q.Number),
		zap.NamedError("cause", cause),
		zap.Error(rbErr),
	)
	return fmt.Errorf("%w: %v", shared.ErrConversionInconsistent, rbErr)
}

// DeleteForOwner deletes a quote owned by ownerID
func (r *GormQuoteRepository) DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Delete(&models.QuoteModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindStale returns draft or sent quotes whose validity has lapsed
func (r *GormQuoteRepository) FindStale(ctx context.Context, now time.Time, limit int) ([]billing.Quote, error) {
	var rows []models.QuoteModel
	query := r.db.WithContext(ctx).
		Where("status IN ?", []billing.QuoteStatus{billing.QuoteStatusDraft, billing.QuoteStatusSent}).
		Where("valid_until < ?", now.UTC()).
		Order("valid_until ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	quotes := make([]billing.Quote, len(rows))
	for i := range rows {
		quotes[i] = *rows[i].ToDomain()
	}
	return quotes, nil
}

// Stats aggregates the owner's quotes by effective status, so open quotes
// past their validity count as expired before the sweeper persists it
func (r *GormQuoteRepository) Stats(ctx context.Context, ownerID uuid.UUID) (*billing.QuoteStats, error) {
	db := r.db.WithContext(ctx)
	table := models.QuoteModel{}.TableName()
	stats := &billing.QuoteStats{}

	counts, err := statusCounts(db, table, ownerID, quoteLapse, r.now())
	if err != nil {
		return nil, fmt.Errorf("count quotes by status: %w", err)
	}
	stats.StatusStats = counts
	for _, c := range counts {
		stats.TotalQuotes += c.Count
		switch billing.QuoteStatus(c.Status) {
		case billing.QuoteStatusExpired:
			stats.ExpiredQuotes = c.Count
		case billing.QuoteStatusConverted:
			stats.ConvertedQuotes = c.Count
		}
	}

	var sums struct {
		TotalAmount    decimal.Decimal
		AcceptedAmount decimal.Decimal
	}
	if err := db.Table(table).
		Select("COALESCE(SUM(total_amount), 0) AS total_amount, "+
			"COALESCE(SUM(CASE WHEN status = ? THEN total_amount ELSE 0 END), 0) AS accepted_amount",
			billing.QuoteStatusAccepted).
		Where("owner_id = ?", ownerID).
		Scan(&sums).Error; err != nil {
		return nil, fmt.Errorf("sum quote amounts: %w", err)
	}
	stats.TotalAmount = sums.TotalAmount
	stats.AcceptedAmount = sums.AcceptedAmount
	return stats, nil
}

var _ billing.QuoteRepository = (*GormQuoteRepository)(nil)
