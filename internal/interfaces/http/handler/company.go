package handler

import (
	"context"

	partnerapp "github.com/crm/backend/internal/application/partner"
	"github.com/crm/backend/internal/domain/partner"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CompanyService is the set of company use cases the handler drives
type CompanyService interface {
	Create(ctx context.Context, userID uuid.UUID, req partnerapp.CreateCompanyRequest) (*partnerapp.CompanyResponse, error)
	GetByID(ctx context.Context, userID, companyID uuid.UUID) (*partnerapp.CompanyResponse, error)
	List(ctx context.Context, userID uuid.UUID, filter partnerapp.CompanyListFilter) ([]partnerapp.CompanyResponse, int64, error)
	Update(ctx context.Context, userID, companyID uuid.UUID, req partnerapp.UpdateCompanyRequest) (*partnerapp.CompanyResponse, error)
	Delete(ctx context.Context, userID, companyID uuid.UUID) error
	Clients(ctx context.Context, userID, companyID uuid.UUID, page, pageSize int) ([]partnerapp.ClientResponse, int64, error)
	Stats(ctx context.Context, userID uuid.UUID) *partner.CompanyStats
}

// CompanyHandler handles company endpoints
type CompanyHandler struct {
	BaseHandler
	companies CompanyService
}

// NewCompanyHandler creates a new CompanyHandler
func NewCompanyHandler(companies CompanyService) *CompanyHandler {
	return &CompanyHandler{companies: companies}
}

type pageQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// List handles GET /companies
func (h *CompanyHandler) List(c *gin.Context) {
	userID, ok := h.actor(c)
	if !ok {
		return
	}
	var filter partnerapp.CompanyListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	items, total, err := h.companies.List(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// GetByID handles GET /companies/:id
func (h *CompanyHandler) GetByID(c *gin.Context) {
	userID, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	resp, err := h.companies.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Clients handles GET /companies/:id/clients
func (h *CompanyHandler) Clients(c *gin.Context) {
	userID, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	var q pageQuery
	if !h.bindQuery(c, &q) {
		return
	}

	items, total, err := h.companies.Clients(c.Request.Context(), userID, id, q.Page, q.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := q.Page, q.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		// company member lists default to a larger page
		pageSize = 100
	}
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// Create handles POST /companies
func (h *CompanyHandler) Create(c *gin.Context) {
	userID, ok := h.actor(c)
	if !ok {
		return
	}
	var req partnerapp.CreateCompanyRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.companies.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Update handles PUT /companies/:id
func (h *CompanyHandler) Update(c *gin.Context) {
	userID, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	var req partnerapp.UpdateCompanyRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.companies.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete handles DELETE /companies/:id
func (h *CompanyHandler) Delete(c *gin.Context) {
	userID, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	if err := h.companies.Delete(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Stats handles GET /companies/stats/summary
func (h *CompanyHandler) Stats(c *gin.Context) {
	userID, ok := h.actor(c)
	if !ok {
		return
	}
	h.Success(c, h.companies.Stats(c.Request.Context(), userID))
}
