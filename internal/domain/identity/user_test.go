package identity

import (
	"testing"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	u, err := NewUser(" Admin@CRM.com ", "admin123", "Admin", "User", "")
	require.NoError(t, err)

	assert.Equal(t, "admin@crm.com", u.Email)
	assert.Equal(t, RoleUser, u.Role)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "admin123", u.PasswordHash)
	assert.True(t, u.VerifyPassword("admin123"))
	assert.False(t, u.VerifyPassword("admin124"))

	events := u.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeUserCreated, events[0].EventType())
}

func TestNewUser_Validation(t *testing.T) {
	tests := []struct {
		name, email, password, first string
		role                         Role
		code                         string
	}{
		{"bad email", "admin", "admin123", "A", RoleAdmin, "INVALID_EMAIL"},
		{"short password", "a@b.io", "a1", "A", RoleAdmin, "INVALID_PASSWORD"},
		{"password without digit", "a@b.io", "abcdefghij", "A", RoleAdmin, "INVALID_PASSWORD"},
		{"missing name", "a@b.io", "admin123", " ", RoleAdmin, "INVALID_NAME"},
		{"bad role", "a@b.io", "admin123", "A", "root", "INVALID_ROLE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(tt.email, tt.password, tt.first, "B", tt.role)
			require.Error(t, err)
			de, ok := shared.AsDomainError(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, de.Code)
		})
	}
}

func TestUser_ChangePassword(t *testing.T) {
	u, err := NewUser("a@b.io", "admin123", "A", "B", RoleAdmin)
	require.NoError(t, err)

	assert.Error(t, u.ChangePassword("wrong123", "secret456"))
	require.NoError(t, u.ChangePassword("admin123", "secret456"))
	assert.True(t, u.VerifyPassword("secret456"))
}

func TestUser_RecordLogin(t *testing.T) {
	u, err := NewUser("a@b.io", "admin123", "A", "B", RoleAdmin)
	require.NoError(t, err)
	at := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	u.RecordLogin(at)
	require.NotNil(t, u.LastLoginAt)
	assert.Equal(t, at, *u.LastLoginAt)
	assert.True(t, u.IsAdmin())
}
