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

var companyUpdateColumns = []string{
	"name", "email", "phone", "website", "industry", "size",
	"address_street", "address_city", "address_state", "address_zip_code", "address_country",
	"status", "notes", "tags",
	"updated_by", "updated_at", "version",
}

// topIndustries caps the industry breakdown in company stats
const topIndustries = 5

// ErrCompanyExists is returned when the owner already has a company with the name or email
var ErrCompanyExists = shared.NewDomainError("ALREADY_EXISTS", "A company with this name or email already exists")

// GormCompanyRepository implements partner.CompanyRepository using GORM
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GormCompanyRepository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// FindByIDForOwner finds a company by ID within an owner's records
func (r *GormCompanyRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*partner.Company, error) {
	var model models.CompanyModel
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

// FindAllForOwner lists companies with optional status filter and search
func (r *GormCompanyRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter, status string) ([]partner.Company, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Where("owner_id = ?", ownerID)
		if status != "" {
			db = db.Where("status = ?", status)
		}
		if filter.Search != "" {
			pattern := likePattern(filter.Search)
			db = db.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(industry) LIKE ?",
				pattern, pattern, pattern)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.CompanyModel{}).
		Scopes(scope).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.CompanyModel
	query := paginate(r.db.WithContext(ctx).Model(&models.CompanyModel{}).Scopes(scope), filter, CompanySortFields)
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	companies := make([]partner.Company, len(rows))
	for i := range rows {
		companies[i] = *rows[i].ToDomain()
	}
	return companies, total, nil
}

// ExistsByName checks whether the owner already has a company named name
func (r *GormCompanyRepository) ExistsByName(ctx context.Context, ownerID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.CompanyModel{}).
		Where("owner_id = ? AND LOWER(name) = ?", ownerID, strings.ToLower(strings.TrimSpace(name)))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save inserts or overwrites a company
func (r *GormCompanyRepository) Save(ctx context.Context, company *partner.Company) error {
	model := models.CompanyModelFromDomain(company)
	return translateError(r.db.WithContext(ctx).Save(model).Error, ErrCompanyExists)
}

// SaveWithLock updates a company with an optimistic version check
func (r *GormCompanyRepository) SaveWithLock(ctx context.Context, company *partner.Company) error {
	expected := company.Version
	model := models.CompanyModelFromDomain(company)
	model.Version = expected + 1

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return updateWithVersion(tx, model.TableName(), model, company.ID, expected, companyUpdateColumns)
	})
	if err != nil {
		return translateError(err, ErrCompanyExists)
	}
	company.Version = model.Version
	return nil
}

// DeleteForOwner deletes a company owned by ownerID. Clients keep their
// company reference.
func (r *GormCompanyRepository) DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Delete(&models.CompanyModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Stats groups the owner's companies by status, industry and size
func (r *GormCompanyRepository) Stats(ctx context.Context, ownerID uuid.UUID) (*partner.CompanyStats, error) {
	db := r.db.WithContext(ctx)
	stats := &partner.CompanyStats{}

	if err := db.Model(&models.CompanyModel{}).
		Where("owner_id = ?", ownerID).
		Count(&stats.TotalCompanies).Error; err != nil {
		return nil, err
	}

	var err error
	if stats.StatusStats, err = r.groupBy(db, ownerID, "status", 0); err != nil {
		return nil, err
	}
	if stats.IndustryStats, err = r.groupBy(db, ownerID, "industry", topIndustries); err != nil {
		return nil, err
	}
	if stats.SizeStats, err = r.groupBy(db, ownerID, "size", 0); err != nil {
		return nil, err
	}
	return stats, nil
}

// groupBy counts the owner's companies per value of column, largest first
func (r *GormCompanyRepository) groupBy(db *gorm.DB, ownerID uuid.UUID, column string, limit int) ([]partner.GroupCount, error) {
	groups := make([]partner.GroupCount, 0)
	query := db.Model(&models.CompanyModel{}).
		Select(column+" AS key, COUNT(*) AS count").
		Where("owner_id = ?", ownerID).
		Group(column).
		Order("count DESC").
		Order(column)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

var _ partner.CompanyRepository = (*GormCompanyRepository)(nil)
