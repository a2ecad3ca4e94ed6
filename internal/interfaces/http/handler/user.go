package handler

import (
	"context"

	"github.com/crm/backend/internal/application/identity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserService is the set of account administration use cases
type UserService interface {
	Create(ctx context.Context, req identity.CreateUserRequest) (*identity.UserResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*identity.UserResponse, error)
	List(ctx context.Context, filter identity.UserListFilter) ([]identity.UserResponse, int64, error)
	Update(ctx context.Context, actorID, id uuid.UUID, req identity.UpdateUserRequest) (*identity.UserResponse, error)
	Delete(ctx context.Context, actorID, id uuid.UUID) error
}

// UserHandler handles the admin-only user endpoints
type UserHandler struct {
	BaseHandler
	users UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List handles GET /auth/users
func (h *UserHandler) List(c *gin.Context) {
	var filter identity.UserListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	items, total, err := h.users.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// GetByID handles GET /auth/users/:id
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	resp, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Create handles POST /auth/users
func (h *UserHandler) Create(c *gin.Context) {
	var req identity.CreateUserRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.users.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Update handles PUT /auth/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	actorID, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	var req identity.UpdateUserRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.users.Update(c.Request.Context(), actorID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete handles DELETE /auth/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	actorID, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	if err := h.users.Delete(c.Request.Context(), actorID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
