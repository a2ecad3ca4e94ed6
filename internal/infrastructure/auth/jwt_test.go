package auth

import (
	"testing"
	"time"

	"github.com/crm/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                 "access-secret-at-least-32-characters",
		RefreshSecret:          "refresh-secret-at-least-32-characters",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "crm-test",
	})
}

func testSubject() TokenSubject {
	return TokenSubject{UserID: uuid.New(), Email: "ada@example.com", Role: "admin"}
}

func TestNewJWTService_RefreshSecretFallback(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "only-secret"})
	assert.Equal(t, []byte("only-secret"), svc.refreshSecret)
}

func TestGenerateTokenPair_RoundTrip(t *testing.T) {
	svc := newTestJWTService()
	sub := testSubject()

	pair, err := svc.GenerateTokenPair(sub)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))

	access, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, sub.UserID.String(), access.UserID)
	assert.Equal(t, sub.Email, access.Email)
	assert.Equal(t, sub.Role, access.Role)
	assert.NotEmpty(t, access.ID)

	id, err := access.UserUUID()
	require.NoError(t, err)
	assert.Equal(t, sub.UserID, id)

	refresh, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, sub.UserID.String(), refresh.UserID)
	assert.Empty(t, refresh.Role)
	assert.NotEqual(t, access.ID, refresh.ID)
}

func TestValidate_RejectsWrongTokenType(t *testing.T) {
	svc := newTestJWTService()
	pair, err := svc.GenerateTokenPair(testSubject())
	require.NoError(t, err)

	// different secrets make the swapped token fail signature checks
	_, err = svc.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	shared := NewJWTService(config.JWTConfig{
		Secret:                 "same-secret",
		AccessTokenExpiration:  time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "crm-test",
	})
	pair, err = shared.GenerateTokenPair(testSubject())
	require.NoError(t, err)
	_, err = shared.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}

func TestValidate_Expired(t *testing.T) {
	svc := newTestJWTService()
	issued := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return issued }
	pair, err := svc.GenerateTokenPair(testSubject())
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidate_RejectsForeignIssuerAndGarbage(t *testing.T) {
	svc := newTestJWTService()

	other := newTestJWTService()
	other.issuer = "someone-else"
	pair, err := other.GenerateTokenPair(testSubject())
	require.NoError(t, err)
	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_RejectsNoneAlgorithm(t *testing.T) {
	svc := newTestJWTService()
	claims := svc.claims(testSubject(), TokenTypeAccess, time.Now(), time.Now().Add(time.Minute))
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestClaims_RemainingTTL(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	c := &Claims{}
	assert.Zero(t, c.RemainingTTL(now))

	c.ExpiresAt = jwt.NewNumericDate(now.Add(10 * time.Minute))
	assert.Equal(t, 10*time.Minute, c.RemainingTTL(now))
	assert.Zero(t, c.RemainingTTL(now.Add(time.Hour)))
}
