package persistence

import (
	"fmt"
	"time"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SequenceAllocator hands out document numbers from one counter row per
// document kind. Next must run inside the transaction that inserts the
// document so a failed insert also releases the number.
type SequenceAllocator struct{}

// NewSequenceAllocator creates a SequenceAllocator
func NewSequenceAllocator() *SequenceAllocator {
	return &SequenceAllocator{}
}

// Next increments the counter for kind and returns the formatted number.
// When that number is already stored, because the counter lags behind rows
// written without it, the counter jumps past the highest stored number.
func (a *SequenceAllocator) Next(tx *gorm.DB, kind billing.DocumentKind) (string, error) {
	if !kind.IsValid() {
		return "", fmt.Errorf("unknown document kind %q", kind)
	}
	if err := a.ensureCounter(tx, kind); err != nil {
		return "", err
	}

	// The row lock taken by this update serializes concurrent allocators
	// until the surrounding transaction ends.
	if err := tx.Model(&models.DocumentSequenceModel{}).
		Where("kind = ?", kind.String()).
		Updates(map[string]interface{}{
			"value":      gorm.Expr("value + 1"),
			"updated_at": time.Now().UTC(),
		}).Error; err != nil {
		return "", fmt.Errorf("increment %s sequence: %w", kind, err)
	}

	value, err := a.Current(tx, kind)
	if err != nil {
		return "", fmt.Errorf("read %s sequence: %w", kind, err)
	}
	number, err := billing.FormatNumber(kind, value)
	if err != nil {
		return "", err
	}

	taken, err := numberTaken(tx, kind, number)
	if err != nil {
		return "", err
	}
	if !taken {
		return number, nil
	}
	return a.skipPastStored(tx, kind, value)
}

// Current returns the last number handed out for kind, or 0
func (a *SequenceAllocator) Current(tx *gorm.DB, kind billing.DocumentKind) (int64, error) {
	var value int64
	err := tx.Model(&models.DocumentSequenceModel{}).
		Where("kind = ?", kind.String()).
		Select("value").
		Scan(&value).Error
	return value, err
}

// ensureCounter creates the counter row on first use, seeded with the
// highest number already stored so pre-existing documents are never reused.
func (a *SequenceAllocator) ensureCounter(tx *gorm.DB, kind billing.DocumentKind) error {
	var count int64
	if err := tx.Model(&models.DocumentSequenceModel{}).
		Where("kind = ?", kind.String()).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check %s sequence: %w", kind, err)
	}
	if count > 0 {
		return nil
	}

	highest, err := highestStored(tx, kind)
	if err != nil {
		return err
	}

	seed := &models.DocumentSequenceModel{
		Kind:      kind.String(),
		Value:     highest,
		UpdatedAt: time.Now().UTC(),
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(seed).Error; err != nil {
		return fmt.Errorf("create %s sequence: %w", kind, err)
	}
	return nil
}

// skipPastStored moves the counter to one above the highest stored number
func (a *SequenceAllocator) skipPastStored(tx *gorm.DB, kind billing.DocumentKind, current int64) (string, error) {
	highest, err := highestStored(tx, kind)
	if err != nil {
		return "", err
	}
	next := highest + 1
	if next <= current {
		next = current + 1
	}
	number, err := billing.FormatNumber(kind, next)
	if err != nil {
		return "", err
	}
	if err := tx.Model(&models.DocumentSequenceModel{}).
		Where("kind = ?", kind.String()).
		Updates(map[string]interface{}{
			"value":      next,
			"updated_at": time.Now().UTC(),
		}).Error; err != nil {
		return "", fmt.Errorf("advance %s sequence: %w", kind, err)
	}
	return number, nil
}

func numberTaken(tx *gorm.DB, kind billing.DocumentKind, number string) (bool, error) {
	var count int64
	if err := tx.Table(documentTable(kind)).Where("number = ?", number).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check %s number: %w", kind, err)
	}
	return count > 0, nil
}

func highestStored(tx *gorm.DB, kind billing.DocumentKind) (int64, error) {
	var numbers []string
	if err := tx.Table(documentTable(kind)).Pluck("number", &numbers).Error; err != nil {
		return 0, fmt.Errorf("scan %s numbers: %w", kind, err)
	}
	return billing.HighestSequence(kind, numbers), nil
}

func documentTable(kind billing.DocumentKind) string {
	if kind == billing.KindQuote {
		return models.QuoteModel{}.TableName()
	}
	return models.InvoiceModel{}.TableName()
}
