package handler

import (
	"context"

	billingapp "github.com/crm/backend/internal/application/billing"
	"github.com/crm/backend/internal/domain/billing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// QuoteService is the set of quote use cases the handler drives
type QuoteService interface {
	Create(ctx context.Context, userID uuid.UUID, req billingapp.CreateQuoteRequest) (*billingapp.QuoteResponse, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*billingapp.QuoteResponse, error)
	List(ctx context.Context, userID uuid.UUID, filter billingapp.DocumentListFilter) ([]billingapp.QuoteResponse, int64, error)
	Update(ctx context.Context, userID, id uuid.UUID, req billingapp.UpdateQuoteRequest) (*billingapp.QuoteResponse, error)
	Send(ctx context.Context, userID, id uuid.UUID) (*billingapp.QuoteResponse, error)
	Accept(ctx context.Context, userID, id uuid.UUID) (*billingapp.QuoteResponse, error)
	Reject(ctx context.Context, userID, id uuid.UUID, req billingapp.RejectQuoteRequest) (*billingapp.QuoteResponse, error)
	ConvertToInvoice(ctx context.Context, userID, id uuid.UUID, req billingapp.ConvertQuoteRequest) (*billingapp.ConversionResponse, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Stats(ctx context.Context, userID uuid.UUID) *billing.QuoteStats
}

// QuoteHandler handles quote endpoints
type QuoteHandler struct {
	BaseHandler
	quotes QuoteService
}

// NewQuoteHandler creates a new QuoteHandler
func NewQuoteHandler(quotes QuoteService) *QuoteHandler {
	return &QuoteHandler{quotes: quotes}
}

// List handles GET /quotes
func (h *QuoteHandler) List(c *gin.Context) {
	userID, ok := h.actor(c)
	if !ok {
		return
	}
	var filter billingapp.DocumentListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	items, total, err := h.quotes.List(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// GetByID handles GET /quotes/:id
func (h *QuoteHandler) GetByID(c *gin.Context) {
	userID, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	resp, err := h.quotes.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Create handles POST /quotes
func (h *QuoteHandler) Create(c *gin.Context) {
	userID, ok := h.actor(c)
	if !ok {
		return
	}
	var req billingapp.CreateQuoteRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.quotes.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Update handles PUT /quotes/:id
func (h *QuoteHandler) Update(c *gin.Context) {
	userID, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	var req billingapp.UpdateQuoteRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.quotes.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Send handles PUT /quotes/:id/send
func (h *QuoteHandler) Send(c *gin.Context) {
	h.transition(c, h.quotes.Send)
}

// Accept handles PUT /quotes/:id/accept
func (h *QuoteHandler) Accept(c *gin.Context) {
	h.transition(c, h.quotes.Accept)
}

// Reject handles PUT /quotes/:id/reject with an optional reason
func (h *QuoteHandler) Reject(c *gin.Context) {
	var req billingapp.RejectQuoteRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}
	h.transition(c, func(ctx context.Context, userID, id uuid.UUID) (*billingapp.QuoteResponse, error) {
		return h.quotes.Reject(ctx, userID, id, req)
	})
}

func (h *QuoteHandler) transition(c *gin.Context, apply func(context.Context, uuid.UUID, uuid.UUID) (*billingapp.QuoteResponse, error)) {
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

// ConvertToInvoice handles POST /quotes/:id/convert-to-invoice
func (h *QuoteHandler) ConvertToInvoice(c *gin.Context) {
	userID, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	var req billingapp.ConvertQuoteRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	resp, err := h.quotes.ConvertToInvoice(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Delete handles DELETE /quotes/:id
func (h *QuoteHandler) Delete(c *gin.Context) {
	userID, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	if err := h.quotes.Delete(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Stats handles GET /quotes/stats/summary
func (h *QuoteHandler) Stats(c *gin.Context) {
	userID, ok := h.actor(c)
	if !ok {
		return
	}
	h.Success(c, h.quotes.Stats(c.Request.Context(), userID))
}
