package partner

import (
	"strings"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientStatus represents the relationship stage of a client
type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "Active"
	ClientStatusInactive ClientStatus = "Inactive"
	ClientStatusProspect ClientStatus = "Prospect"
	ClientStatusLead     ClientStatus = "Lead"
)

// IsValid checks if the status is known
func (s ClientStatus) IsValid() bool {
	switch s {
	case ClientStatusActive, ClientStatusInactive, ClientStatusProspect, ClientStatusLead:
		return true
	}
	return false
}

// ClientSource records how the client was acquired
type ClientSource string

const (
	ClientSourceWebsite     ClientSource = "Website"
	ClientSourceReferral    ClientSource = "Referral"
	ClientSourceSocialMedia ClientSource = "Social Media"
	ClientSourceColdCall    ClientSource = "Cold Call"
	ClientSourceEmail       ClientSource = "Email"
	ClientSourceOther       ClientSource = "Other"
)

// IsValid checks if the source is known
func (s ClientSource) IsValid() bool {
	switch s {
	case ClientSourceWebsite, ClientSourceReferral, ClientSourceSocialMedia,
		ClientSourceColdCall, ClientSourceEmail, ClientSourceOther:
		return true
	}
	return false
}

// Client is a contact person billed through invoices and quotes.
// CompanyID is a weak reference; deleting the company does not cascade.
type Client struct {
	shared.OwnedAggregateRoot
	FirstName string
	LastName  string
	Email     string
	Phone     string
	CompanyID *uuid.UUID
	Position  string
	Industry  string
	Address   Address
	Status    ClientStatus
	Source    ClientSource
	Notes     string
	Tags      []string
	IsActive  bool
}

// ClientParams carries the editable client fields
type ClientParams struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	CompanyID *uuid.UUID
	Position  string
	Industry  string
	Address   Address
	Status    ClientStatus
	Source    ClientSource
	Notes     string
	Tags      []string
}

// NewClient creates a client owned by ownerID
func NewClient(ownerID uuid.UUID, p ClientParams) (*Client, error) {
	c := &Client{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		Status:             ClientStatusProspect,
		Source:             ClientSourceOther,
		IsActive:           true,
	}
	if err := c.apply(p); err != nil {
		return nil, err
	}
	return c, nil
}

// Update replaces the editable fields
func (c *Client) Update(editorID uuid.UUID, p ClientParams) error {
	if p.Status == "" {
		p.Status = c.Status
	}
	if p.Source == "" {
		p.Source = c.Source
	}
	if err := c.apply(p); err != nil {
		return err
	}
	c.MarkEdited(editorID)
	return nil
}

func (c *Client) apply(p ClientParams) error {
	first := strings.TrimSpace(p.FirstName)
	last := strings.TrimSpace(p.LastName)
	email := strings.ToLower(strings.TrimSpace(p.Email))
	phone := strings.TrimSpace(p.Phone)
	addr := p.Address.Normalize()

	if err := validateRequired(first, "INVALID_NAME", "First name", 100); err != nil {
		return err
	}
	if err := validateRequired(last, "INVALID_NAME", "Last name", 100); err != nil {
		return err
	}
	if err := validateEmail(email); err != nil {
		return err
	}
	if err := validatePhone(phone); err != nil {
		return err
	}
	if err := addr.Validate(); err != nil {
		return err
	}

	status := p.Status
	if status == "" {
		status = c.Status
	}
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Client status must be Active, Inactive, Prospect or Lead")
	}
	source := p.Source
	if source == "" {
		source = c.Source
	}
	if !source.IsValid() {
		return shared.NewDomainError("INVALID_SOURCE", "Unknown client source")
	}

	c.FirstName = first
	c.LastName = last
	c.Email = email
	c.Phone = phone
	c.CompanyID = p.CompanyID
	c.Position = strings.TrimSpace(p.Position)
	c.Industry = strings.TrimSpace(p.Industry)
	c.Address = addr
	c.Status = status
	c.Source = source
	c.Notes = strings.TrimSpace(p.Notes)
	c.Tags = normalizeTags(p.Tags)
	c.IsActive = status != ClientStatusInactive
	return nil
}

// FullName returns "First Last"
func (c *Client) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
