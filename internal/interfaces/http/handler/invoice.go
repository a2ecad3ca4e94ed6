package handler

import (
	"context"

	billingapp "github.com/crm/backend/internal/application/billing"
	"github.com/crm/backend/internal/domain/billing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InvoiceService is the set of invoice use cases the handler drives
type InvoiceService interface {
	Create(ctx context.Context, userID uuid.UUID, req billingapp.CreateInvoiceRequest) (*billingapp.InvoiceResponse, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*billingapp.InvoiceResponse, error)
	List(ctx context.Context, userID uuid.UUID, filter billingapp.DocumentListFilter) ([]billingapp.InvoiceResponse, int64, error)
	Update(ctx context.Context, userID, id uuid.UUID, req billingapp.UpdateInvoiceRequest) (*billingapp.InvoiceResponse, error)
	Send(ctx context.Context, userID, id uuid.UUID) (*billingapp.InvoiceResponse, error)
	Cancel(ctx context.Context, userID, id uuid.UUID) (*billingapp.InvoiceResponse, error)
	MarkPaid(ctx context.Context, userID, id uuid.UUID, req billingapp.MarkPaidRequest) (*billingapp.InvoiceResponse, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Stats(ctx context.Context, userID uuid.UUID) *billing.InvoiceStats
}

// InvoiceHandler handles invoice endpoints
type InvoiceHandler struct {
	BaseHandler
	invoices InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoices InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// List handles GET /invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	userID, ok := h.actor(c)
	if !ok {
		return
	}
	var filter billingapp.DocumentListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	items, total, err := h.invoices.List(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// GetByID handles GET /invoices/:id
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	userID, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	resp, err := h.invoices.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Create handles POST /invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	userID, ok := h.actor(c)
	if !ok {
		return
	}
	var req billingapp.CreateInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.invoices.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Update handles PUT /invoices/:id
func (h *InvoiceHandler) Update(c *gin.Context) {
	userID, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	var req billingapp.UpdateInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.invoices.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Send handles PUT /invoices/:id/send
func (h *InvoiceHandler) Send(c *gin.Context) {
	h.transition(c, h.invoices.Send)
}

// Cancel handles PUT /invoices/:id/cancel
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	h.transition(c, h.invoices.Cancel)
}

func (h *InvoiceHandler) transition(c *gin.Context, apply func(context.Context, uuid.UUID, uuid.UUID) (*billingapp.InvoiceResponse, error)) {
	userID, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	resp, err := apply(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// MarkPaid handles PUT /invoices/:id/mark-paid. The body is optional.
func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	userID, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	var req billingapp.MarkPaidRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	resp, err := h.invoices.MarkPaid(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete handles DELETE /invoices/:id
func (h *InvoiceHandler) Delete(c *gin.Context) {
	userID, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	if err := h.invoices.Delete(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Stats handles GET /invoices/stats/summary
func (h *InvoiceHandler) Stats(c *gin.Context) {
	userID, ok := h.actor(c)
	if !ok {
		return
	}
	h.Success(c, h.invoices.Stats(c.Request.Context(), userID))
}
