package handler

import (
	"context"

	partnerapp "github.com/crm/backend/internal/application/partner"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ClientService is the set of client use cases the handler drives
type ClientService interface {
	Create(ctx context.Context, userID uuid.UUID, req partnerapp.CreateClientRequest) (*partnerapp.ClientResponse, error)
	GetByID(ctx context.Context, userID, clientID uuid.UUID) (*partnerapp.ClientResponse, error)
	List(ctx context.Context, userID uuid.UUID, filter partnerapp.ClientListFilter) ([]partnerapp.ClientResponse, int64, error)
	Update(ctx context.Context, userID, clientID uuid.UUID, req partnerapp.UpdateClientRequest) (*partnerapp.ClientResponse, error)
	Delete(ctx context.Context, userID, clientID uuid.UUID) error
	Stats(ctx context.Context, userID uuid.UUID) *partnerapp.ClientStatsResponse
}

// ClientHandler handles client endpoints
type ClientHandler struct {
	BaseHandler
	clients ClientService
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clients ClientService) *ClientHandler {
	return &ClientHandler{clients: clients}
}

// List handles GET /clients
func (h *ClientHandler) List(c *gin.Context) {
	userID, ok := h.actor(c)
	if !ok {
		return
	}
	var filter partnerapp.ClientListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	items, total, err := h.clients.List(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// GetByID handles GET /clients/:id
func (h *ClientHandler) GetByID(c *gin.Context) {
	userID, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	resp, err := h.clients.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Create handles POST /clients
func (h *ClientHandler) Create(c *gin.Context) {
	userID, ok := h.actor(c)
	if !ok {
		return
	}
	var req partnerapp.CreateClientRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.clients.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Update handles PUT /clients/:id
func (h *ClientHandler) Update(c *gin.Context) {
	userID, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	var req partnerapp.UpdateClientRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.clients.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete handles DELETE /clients/:id
func (h *ClientHandler) Delete(c *gin.Context) {
	userID, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	if err := h.clients.Delete(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Stats handles GET /clients/stats/summary
func (h *ClientHandler) Stats(c *gin.Context) {
	userID, ok := h.actor(c)
	if !ok {
		return
	}
	h.Success(c, h.clients.Stats(c.Request.Context(), userID))
}
