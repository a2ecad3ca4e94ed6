package partner

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientFilter narrows client listings
type ClientFilter struct {
	shared.Filter
	Status    string
	CompanyID *uuid.UUID
}

// ClientStats is the owner-scoped client summary
type ClientStats struct {
	TotalClients    int64 `json:"total_clients"`
	ActiveClients   int64 `json:"active_clients"`
	ProspectClients int64 `json:"prospect_clients"`
}

// GroupCount is one row of a group-by aggregation
type GroupCount struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// CompanyStats is the owner-scoped company summary
type CompanyStats struct {
	TotalCompanies int64        `json:"total_companies"`
	StatusStats    []GroupCount `json:"status_stats"`
	IndustryStats  []GroupCount `json:"industry_stats"`
	SizeStats      []GroupCount `json:"size_stats"`
}

// ClientRepository defines the interface for client persistence
type ClientRepository interface {
	FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*Client, error)
	FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter ClientFilter) ([]Client, int64, error)

	// ExistsByEmail checks whether the owner already has a client with this email
	ExistsByEmail(ctx context.Context, ownerID uuid.UUID, email string, excludeID *uuid.UUID) (bool, error)

	Save(ctx context.Context, client *Client) error
	SaveWithLock(ctx context.Context, client *Client) error
	DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) error
	Stats(ctx context.Context, ownerID uuid.UUID) (*ClientStats, error)
}

// CompanyRepository defines the interface for company persistence
type CompanyRepository interface {
	FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*Company, error)
	FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter, status string) ([]Company, int64, error)
	ExistsByName(ctx context.Context, ownerID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, company *Company) error
	SaveWithLock(ctx context.Context, company *Company) error
	DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) error
	Stats(ctx context.Context, ownerID uuid.UUID) (*CompanyStats, error)
}
