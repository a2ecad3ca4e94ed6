package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/crm/backend/internal/infrastructure/auth"
	"github.com/crm/backend/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(accessTTL time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  accessTTL,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "crm-test",
	})
}

func issueToken(t *testing.T, svc *auth.JWTService, role string) (*auth.TokenPair, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	pair, err := svc.GenerateTokenPair(auth.TokenSubject{UserID: userID, Email: "ada@example.com", Role: role})
	require.NoError(t, err)
	return pair, userID
}

func bearer(token string) map[string]string {
	return map[string]string{AuthHeaderKey: BearerPrefix + token}
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.False(t, resp.Success)
	return resp.Error.Code
}

func protectedRouter(cfg JWTMiddlewareConfig, extra ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(JWTAuthMiddlewareWithConfig(cfg))
	handlers := append(extra, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetJWTUserID(c), "role": GetJWTRole(c)})
	})
	router.GET("/api/v1/invoices", handlers...)
	router.GET("/api/v1/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	pair, userID := issueToken(t, svc, "user")

	w := serve(protectedRouter(DefaultJWTConfig(svc)), http.MethodGet, "/api/v1/invoices", bearer(pair.AccessToken))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, userID.String(), body["user_id"])
	assert.Equal(t, "user", body["role"])
}

func TestJWTAuthMiddleware_Rejections(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	pair, _ := issueToken(t, svc, "user")
	expired, _ := issueToken(t, newTestJWTService(-time.Minute), "user")

	tests := []struct {
		name    string
		headers map[string]string
		code    string
	}{
		{"missing header", nil, "UNAUTHORIZED"},
		{"wrong scheme", map[string]string{AuthHeaderKey: "Basic abc"}, "TOKEN_INVALID"},
		{"garbage token", bearer("not-a-jwt"), "TOKEN_INVALID"},
		{"refresh token used as access", bearer(pair.RefreshToken), "TOKEN_INVALID"},
		{"expired", bearer(expired.AccessToken), "TOKEN_EXPIRED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(protectedRouter(DefaultJWTConfig(svc)), http.MethodGet, "/api/v1/invoices", tt.headers)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w.Body.Bytes()))
		})
	}
}

func TestJWTAuthMiddleware_Revoked(t *testing.T) {
	ctx := context.Background()
	svc := newTestJWTService(15 * time.Minute)

	t.Run("single token", func(t *testing.T) {
		blacklist := auth.NewInMemoryTokenBlacklist()
		pair, _ := issueToken(t, svc, "user")
		claims, err := svc.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		require.NoError(t, blacklist.Revoke(ctx, claims.ID, time.Minute))

		cfg := DefaultJWTConfig(svc)
		cfg.TokenBlacklist = blacklist
		w := serve(protectedRouter(cfg), http.MethodGet, "/api/v1/invoices", bearer(pair.AccessToken))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "TOKEN_REVOKED", errorCode(t, w.Body.Bytes()))
	})

	t.Run("all tokens of a user", func(t *testing.T) {
		blacklist := auth.NewInMemoryTokenBlacklist()
		pair, userID := issueToken(t, svc, "user")
		// user revocation compares whole seconds
		time.Sleep(1100 * time.Millisecond)
		require.NoError(t, blacklist.RevokeUser(ctx, userID.String(), time.Minute))

		cfg := DefaultJWTConfig(svc)
		cfg.TokenBlacklist = blacklist
		w := serve(protectedRouter(cfg), http.MethodGet, "/api/v1/invoices", bearer(pair.AccessToken))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "TOKEN_REVOKED", errorCode(t, w.Body.Bytes()))
	})
}

func TestJWTAuthMiddleware_SkipPaths(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	w := serve(protectedRouter(DefaultJWTConfig(svc)), http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	svc := newTestJWTService(15 * time.Minute)
	userPair, _ := issueToken(t, svc, "user")
	adminPair, _ := issueToken(t, svc, "admin")
	router := protectedRouter(DefaultJWTConfig(svc), RequireAdmin())

	w := serve(router, http.MethodGet, "/api/v1/invoices", bearer(userPair.AccessToken))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, w.Body.Bytes()))

	w = serve(router, http.MethodGet, "/api/v1/invoices", bearer(adminPair.AccessToken))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole_WithoutClaims(t *testing.T) {
	router := gin.New()
	router.GET("/x", RequireRole("admin"), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(router, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
