package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var clientUpdateColumns = []string{
	"first_name", "last_name", "email", "phone", "company_id", "position", "industry",
	"address_street", "address_city", "address_state", "address_zip_code", "address_country",
	"status", "source", "notes", "tags", "is_active",
	"updated_by", "updated_at", "version",
}

// ErrClientEmailTaken is returned when the owner already has a client with the email
var ErrClientEmailTaken = shared.NewDomainError("ALREADY_EXISTS", "A client with this email already exists")

// GormClientRepository implements partner.ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByIDForOwner finds a client by ID within an owner's contacts
func (r *GormClientRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*partner.Client, error) {
	var model models.ClientModel
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

// FindAllForOwner lists clients with filtering and pagination
func (r *GormClientRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter partner.ClientFilter) ([]partner.Client, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Where("owner_id = ?", ownerID)
		if filter.Status != "" {
			db = db.Where("status = ?", filter.Status)
		}
		if filter.CompanyID != nil {
			db = db.Where("company_id = ?", *filter.CompanyID)
		}
		if filter.Search != "" {
			pattern := likePattern(filter.Search)
			db = db.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?",
				pattern, pattern, pattern)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.ClientModel{}).
		Scopes(scope).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ClientModel
	query := paginate(r.db.WithContext(ctx).Model(&models.ClientModel{}).Scopes(scope), filter.Filter, ClientSortFields)
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	clients := make([]partner.Client, len(rows))
	for i := range rows {
		clients[i] = *rows[i].ToDomain()
	}
	return clients, total, nil
}

// ExistsByEmail checks whether the owner already has a client with email
func (r *GormClientRepository) ExistsByEmail(ctx context.Context, ownerID uuid.UUID, email string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.ClientModel{}).
		Where("owner_id = ? AND email = ?", ownerID, strings.ToLower(strings.TrimSpace(email)))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save inserts or overwrites a client
func (r *GormClientRepository) Save(ctx context.Context, client *partner.Client) error {
	model := models.ClientModelFromDomain(client)
	return translateError(r.db.WithContext(ctx).Save(model).Error, ErrClientEmailTaken)
}

// SaveWithLock updates a client with an optimistic version check
func (r *GormClientRepository) SaveWithLock(ctx context.Context, client *partner.Client) error {
	expected := client.Version
	model := models.ClientModelFromDomain(client)
	model.Version = expected + 1

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return updateWithVersion(tx, model.TableName(), model, client.ID, expected, clientUpdateColumns)
	})
	if err != nil {
		return translateError(err, ErrClientEmailTaken)
	}
	client.Version = model.Version
	return nil
}

// DeleteForOwner deletes a client owned by ownerID
func (r *GormClientRepository) DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Delete(&models.ClientModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Stats counts the owner's clients
func (r *GormClientRepository) Stats(ctx context.Context, ownerID uuid.UUID) (*partner.ClientStats, error) {
	var stats partner.ClientStats
	err := r.db.WithContext(ctx).Model(&models.ClientModel{}).
		Select("COUNT(*) AS total_clients, "+
			"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS active_clients, "+
			"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS prospect_clients",
			partner.ClientStatusActive, partner.ClientStatusProspect).
		Where("owner_id = ?", ownerID).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

var _ partner.ClientRepository = (*GormClientRepository)(nil)
