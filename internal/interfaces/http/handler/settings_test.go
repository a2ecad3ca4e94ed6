package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	settingsapp "github.com/crm/backend/internal/application/settings"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func settingsRouter(userID uuid.UUID, svc SettingsService) *gin.Engine {
	h := NewSettingsHandler(svc)
	r := newEngine(userID)
	g := r.Group("/settings")
	g.GET("/company", h.GetCompany)
	g.PUT("/company", h.UpdateCompany)
	return r
}

func TestSettingsHandler_GetCompany(t *testing.T) {
	userID := uuid.New()

	t.Run("returns the profile", func(t *testing.T) {
		svc := new(MockSettingsService)
		svc.On("GetCompany", mock.Anything, userID).
			Return(&settingsapp.CompanyInfoResponse{Name: "Your Company", Currency: "USD"}, nil)

		w, env := do(t, settingsRouter(userID, svc), http.MethodGet, "/settings/company", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var got settingsapp.CompanyInfoResponse
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, "Your Company", got.Name)
		assert.Equal(t, "USD", got.Currency)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		svc := new(MockSettingsService)
		w, _ := do(t, settingsRouter(uuid.Nil, svc), http.MethodGet, "/settings/company", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		svc.AssertNotCalled(t, "GetCompany", mock.Anything, mock.Anything)
	})
}

func TestSettingsHandler_UpdateCompany(t *testing.T) {
	userID := uuid.New()

	t.Run("passes only the sent fields", func(t *testing.T) {
		svc := new(MockSettingsService)
		svc.On("UpdateCompany", mock.Anything, userID, mock.MatchedBy(func(req settingsapp.UpdateCompanyInfoRequest) bool {
			return req.Currency != nil && *req.Currency == "EUR" && req.Name == nil && req.Address == nil
		})).Return(&settingsapp.CompanyInfoResponse{Currency: "EUR"}, nil)

		w, _ := do(t, settingsRouter(userID, svc), http.MethodPut, "/settings/company", map[string]any{
			"currency": "EUR",
		})
		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("field too long", func(t *testing.T) {
		svc := new(MockSettingsService)
		w, _ := do(t, settingsRouter(userID, svc), http.MethodPut, "/settings/company", map[string]any{
			"phone": "012345678901234567890123",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "UpdateCompany", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("domain validation error", func(t *testing.T) {
		svc := new(MockSettingsService)
		svc.On("UpdateCompany", mock.Anything, userID, mock.Anything).
			Return(nil, shared.NewDomainError("INVALID_EMAIL", "Please enter a valid email"))

		w, env := do(t, settingsRouter(userID, svc), http.MethodPut, "/settings/company", map[string]any{
			"email": "nope",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "INVALID_EMAIL", env.Error.Code)
	})
}
