package handler

import (
	"context"

	settingsapp "github.com/crm/backend/internal/application/settings"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SettingsService is the set of company settings use cases the handler drives
type SettingsService interface {
	GetCompany(ctx context.Context, userID uuid.UUID) (*settingsapp.CompanyInfoResponse, error)
	UpdateCompany(ctx context.Context, userID uuid.UUID, req settingsapp.UpdateCompanyInfoRequest) (*settingsapp.CompanyInfoResponse, error)
}

// SettingsHandler handles the company settings endpoints
type SettingsHandler struct {
	BaseHandler
	settings SettingsService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settings SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// GetCompany handles GET /settings/company
func (h *SettingsHandler) GetCompany(c *gin.Context) {
	userID, ok := h.actor(c)
	if !ok {
		return
	}
	resp, err := h.settings.GetCompany(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateCompany handles PUT /settings/company
func (h *SettingsHandler) UpdateCompany(c *gin.Context) {
	userID, ok := h.actor(c)
	if !ok {
		return
	}
	var req settingsapp.UpdateCompanyInfoRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.settings.UpdateCompany(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
