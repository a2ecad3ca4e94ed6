package settings

import (
	"context"

	"github.com/google/uuid"
)

// CompanyInfoRepository defines the interface for company profile persistence
type CompanyInfoRepository interface {
	// FindByOwner returns shared.ErrNotFound when the owner has no profile yet
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*CompanyInfo, error)

	// Create inserts a new profile; a second profile for the same owner
	// fails with shared.ErrAlreadyExists
	Create(ctx context.Context, info *CompanyInfo) error
	SaveWithLock(ctx context.Context, info *CompanyInfo) error
}
