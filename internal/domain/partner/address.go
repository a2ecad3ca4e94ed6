package partner

import (
	"strings"

	"github.com/crm/backend/internal/domain/shared"
)

// Address is a postal address value
type Address struct {
	Street  string
	City    string
	State   string
	ZipCode string
	Country string
}

// Normalize trims every field
func (a Address) Normalize() Address {
	return Address{
		Street:  strings.TrimSpace(a.Street),
		City:    strings.TrimSpace(a.City),
		State:   strings.TrimSpace(a.State),
		ZipCode: strings.TrimSpace(a.ZipCode),
		Country: strings.TrimSpace(a.Country),
	}
}

// Validate checks the field lengths
func (a Address) Validate() error {
	if len(a.Street) > 500 {
		return shared.NewDomainError("INVALID_ADDRESS", "Street cannot exceed 500 characters")
	}
	for _, f := range []string{a.City, a.State, a.Country} {
		if len(f) > 100 {
			return shared.NewDomainError("INVALID_ADDRESS", "Address fields cannot exceed 100 characters")
		}
	}
	if len(a.ZipCode) > 20 {
		return shared.NewDomainError("INVALID_ADDRESS", "Zip code cannot exceed 20 characters")
	}
	return nil
}

// FullAddress joins the non-empty parts
func (a Address) FullAddress() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.Street, a.City, a.State, a.ZipCode, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
