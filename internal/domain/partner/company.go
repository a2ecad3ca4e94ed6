package partner

import (
	"strings"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CompanyStatus represents the relationship stage of a company
type CompanyStatus string

const (
	CompanyStatusActive   CompanyStatus = "active"
	CompanyStatusInactive CompanyStatus = "inactive"
	CompanyStatusProspect CompanyStatus = "prospect"
	CompanyStatusLead     CompanyStatus = "lead"
)

// IsValid checks if the status is known
func (s CompanyStatus) IsValid() bool {
	switch s {
	case CompanyStatusActive, CompanyStatusInactive, CompanyStatusProspect, CompanyStatusLead:
		return true
	}
	return false
}

// CompanySize is a coarse headcount bucket
type CompanySize string

const (
	CompanySizeStartup    CompanySize = "startup"
	CompanySizeSmall      CompanySize = "small"
	CompanySizeMedium     CompanySize = "medium"
	CompanySizeLarge      CompanySize = "large"
	CompanySizeEnterprise CompanySize = "enterprise"
)

// IsValid checks if the size is known
func (s CompanySize) IsValid() bool {
	switch s {
	case CompanySizeStartup, CompanySizeSmall, CompanySizeMedium, CompanySizeLarge, CompanySizeEnterprise:
		return true
	}
	return false
}

// Company is an organisation clients belong to
type Company struct {
	shared.OwnedAggregateRoot
	Name     string
	Email    string
	Phone    string
	Website  string
	Industry string
	Size     CompanySize
	Address  Address
	Status   CompanyStatus
	Notes    string
	Tags     []string
}

// CompanyParams carries the editable company fields
type CompanyParams struct {
	Name     string
	Email    string
	Phone    string
	Website  string
	Industry string
	Size     CompanySize
	Address  Address
	Status   CompanyStatus
	Notes    string
	Tags     []string
}

// NewCompany creates a company owned by ownerID
func NewCompany(ownerID uuid.UUID, p CompanyParams) (*Company, error) {
	c := &Company{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		Size:               CompanySizeSmall,
		Status:             CompanyStatusProspect,
	}
	if err := c.apply(p); err != nil {
		return nil, err
	}
	return c, nil
}

// Update replaces the editable fields
func (c *Company) Update(editorID uuid.UUID, p CompanyParams) error {
	if err := c.apply(p); err != nil {
		return err
	}
	c.MarkEdited(editorID)
	return nil
}

func (c *Company) apply(p CompanyParams) error {
	name := strings.TrimSpace(p.Name)
	email := strings.ToLower(strings.TrimSpace(p.Email))
	industry := strings.TrimSpace(p.Industry)
	phone := strings.TrimSpace(p.Phone)
	addr := p.Address.Normalize()

	if err := validateRequired(name, "INVALID_NAME", "Company name", 200); err != nil {
		return err
	}
	if err := validateEmail(email); err != nil {
		return err
	}
	if err := validateRequired(industry, "INVALID_INDUSTRY", "Industry", 100); err != nil {
		return err
	}
	if err := validatePhone(phone); err != nil {
		return err
	}
	if err := addr.Validate(); err != nil {
		return err
	}

	size := p.Size
	if size == "" {
		size = c.Size
	}
	if !size.IsValid() {
		return shared.NewDomainError("INVALID_SIZE", "Unknown company size")
	}
	status := p.Status
	if status == "" {
		status = c.Status
	}
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Company status must be active, inactive, prospect or lead")
	}

	c.Name = name
	c.Email = email
	c.Phone = phone
	c.Website = strings.TrimSpace(p.Website)
	c.Industry = industry
	c.Size = size
	c.Address = addr
	c.Status = status
	c.Notes = strings.TrimSpace(p.Notes)
	c.Tags = normalizeTags(p.Tags)
	return nil
}
