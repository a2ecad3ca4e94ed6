package persistence

import (
	"errors"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// updateWithVersion writes columns of model (a pointer whose Version is
// already expected+1) when the stored row is still at expected.
func updateWithVersion(tx *gorm.DB, table string, model interface{}, id uuid.UUID, expected int, columns []string) error {
	var current int
	res := tx.Table(table).Where("id = ?", id).Select("version").Scan(&current)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	if current != expected {
		return shared.ErrConcurrencyConflict
	}

	res = tx.Model(model).
		Where("version = ?", expected).
		Select(columns).
		Updates(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// translateError maps driver errors onto domain errors
func translateError(err error, duplicate *shared.DomainError) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return duplicate
	}
	return err
}
