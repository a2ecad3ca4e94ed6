package persistence

import (
	"context"
	"errors"

	"github.com/crm/backend/internal/domain/settings"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var companyInfoUpdateColumns = []string{
	"name",
	"address_street", "address_city", "address_state", "address_zip_code", "address_country",
	"phone", "email", "website", "tax_id", "registration_number", "logo",
	"currency", "payment_terms", "quote_terms", "footer_note",
	"updated_by", "updated_at", "version",
}

// GormCompanyInfoRepository implements settings.CompanyInfoRepository using GORM
type GormCompanyInfoRepository struct {
	db *gorm.DB
}

// NewGormCompanyInfoRepository creates a new GormCompanyInfoRepository
func NewGormCompanyInfoRepository(db *gorm.DB) *GormCompanyInfoRepository {
	return &GormCompanyInfoRepository{db: db}
}

// FindByOwner loads the owner's company profile
func (r *GormCompanyInfoRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*settings.CompanyInfo, error) {
	var model models.CompanyInfoModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts a profile. The unique owner index rejects a second one.
func (r *GormCompanyInfoRepository) Create(ctx context.Context, info *settings.CompanyInfo) error {
	model := models.CompanyInfoModelFromDomain(info)
	return translateError(r.db.WithContext(ctx).Create(model).Error, shared.ErrAlreadyExists)
}

// SaveWithLock updates a profile with an optimistic version check
func (r *GormCompanyInfoRepository) SaveWithLock(ctx context.Context, info *settings.CompanyInfo) error {
	expected := info.Version
	model := models.CompanyInfoModelFromDomain(info)
	model.Version = expected + 1

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return updateWithVersion(tx, model.TableName(), model, info.ID, expected, companyInfoUpdateColumns)
	})
	if err != nil {
		return translateError(err, shared.ErrAlreadyExists)
	}
	info.Version = model.Version
	return nil
}

var _ settings.CompanyInfoRepository = (*GormCompanyInfoRepository)(nil)
