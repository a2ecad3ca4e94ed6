package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "DESC"},
		{"ASC", "ASC"},
		{"  asc  ", "ASC"},
		{"desc", "DESC"},
		{"ASC; DROP TABLE invoices;--", "DESC"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty returns default", "", "created_at"},
		{"whitelisted field", "total_amount", "total_amount"},
		{"trimmed field", "  number ", "number"},
		{"unknown field", "owner_id", "created_at"},
		{"case sensitive", "NUMBER", "created_at"},
		{"injection", "number; DROP TABLE invoices;--", "created_at"},
		{"subquery", "number, (SELECT password_hash FROM users)", "created_at"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, DocumentSortFields, "created_at"))
		})
	}
}

func TestSortFieldWhitelists(t *testing.T) {
	for name, whitelist := range map[string]map[string]bool{
		"documents": DocumentSortFields,
		"clients":   ClientSortFields,
		"companies": CompanySortFields,
		"users":     UserSortFields,
	} {
		t.Run(name, func(t *testing.T) {
			assert.True(t, whitelist["created_at"], "%s must allow created_at", name)
		})
	}
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%acme%", likePattern("  ACME "))
}
