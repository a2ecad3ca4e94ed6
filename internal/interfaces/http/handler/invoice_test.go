package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	billingapp "github.com/crm/backend/internal/application/billing"
	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func invoiceRouter(userID uuid.UUID, svc InvoiceService) *gin.Engine {
	h := NewInvoiceHandler(svc)
	r := newEngine(userID)
	g := r.Group("/invoices")
	g.GET("", h.List)
	g.GET("/stats/summary", h.Stats)
	g.GET("/:id", h.GetByID)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.PUT("/:id/send", h.Send)
	g.PUT("/:id/cancel", h.Cancel)
	g.PUT("/:id/mark-paid", h.MarkPaid)
	g.DELETE("/:id", h.Delete)
	return r
}

func TestInvoiceHandler_Create(t *testing.T) {
	userID := uuid.New()
	clientID := uuid.New()

	t.Run("created", func(t *testing.T) {
		svc := new(MockInvoiceService)
		svc.On("Create", mock.Anything, userID, mock.MatchedBy(func(req billingapp.CreateInvoiceRequest) bool {
			return req.ClientID == clientID && len(req.Items) == 1 && req.Items[0].Quantity.Equal(decimal.NewFromInt(2))
		})).Return(&billingapp.InvoiceResponse{Number: "INV-2026-0001", Status: "draft"}, nil)

		w, env := do(t, invoiceRouter(userID, svc), http.MethodPost, "/invoices", map[string]any{
			"client_id": clientID,
			"tax_rate":  "10",
			"items": []map[string]any{
				{"description": "Consulting", "quantity": "2", "unit_price": "150.00"},
			},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var resp billingapp.InvoiceResponse
		require.NoError(t, json.Unmarshal(env.Data, &resp))
		assert.Equal(t, "INV-2026-0001", resp.Number)
		svc.AssertExpectations(t)
	})

	t.Run("no items is a validation error", func(t *testing.T) {
		svc := new(MockInvoiceService)
		w, env := do(t, invoiceRouter(userID, svc), http.MethodPost, "/invoices", map[string]any{
			"client_id": clientID,
			"items":     []any{},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("bad currency", func(t *testing.T) {
		svc := new(MockInvoiceService)
		w, _ := do(t, invoiceRouter(userID, svc), http.MethodPost, "/invoices", map[string]any{
			"client_id": clientID,
			"currency":  "dollars",
			"items":     []map[string]any{{"description": "x", "quantity": "1", "unit_price": "1"}},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("domain validation maps to 400", func(t *testing.T) {
		svc := new(MockInvoiceService)
		svc.On("Create", mock.Anything, userID, mock.Anything).
			Return(nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be greater than zero"))

		w, env := do(t, invoiceRouter(userID, svc), http.MethodPost, "/invoices", map[string]any{
			"client_id": clientID,
			"items":     []map[string]any{{"description": "x", "quantity": "0", "unit_price": "1"}},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_QUANTITY", env.Error.Code)
	})
}

func TestInvoiceHandler_List(t *testing.T) {
	userID := uuid.New()
	svc := new(MockInvoiceService)
	svc.On("List", mock.Anything, userID, billingapp.DocumentListFilter{Status: "overdue", Page: 2}).
		Return([]billingapp.InvoiceResponse{{Number: "INV-2026-0021"}}, int64(21), nil)

	w, env := do(t, invoiceRouter(userID, svc), http.MethodGet, "/invoices?status=overdue&page=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(21), env.Meta.Total)
	assert.Equal(t, 2, env.Meta.Page)
	assert.Equal(t, 20, env.Meta.PageSize)
	assert.Equal(t, 2, env.Meta.TotalPages)

	w, _ = do(t, invoiceRouter(userID, svc), http.MethodGet, "/invoices?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvoiceHandler_GetByID(t *testing.T) {
	userID := uuid.New()
	id := uuid.New()
	svc := new(MockInvoiceService)
	svc.On("GetByID", mock.Anything, userID, id).Return(nil, shared.ErrNotFound)

	w, env := do(t, invoiceRouter(userID, svc), http.MethodGet, "/invoices/"+id.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestInvoiceHandler_MarkPaid(t *testing.T) {
	userID := uuid.New()
	id := uuid.New()

	t.Run("empty body", func(t *testing.T) {
		svc := new(MockInvoiceService)
		svc.On("MarkPaid", mock.Anything, userID, id, billingapp.MarkPaidRequest{}).
			Return(&billingapp.InvoiceResponse{Status: "paid"}, nil)

		w, _ := do(t, invoiceRouter(userID, svc), http.MethodPut, "/invoices/"+id.String()+"/mark-paid", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("cancelled invoice", func(t *testing.T) {
		svc := new(MockInvoiceService)
		svc.On("MarkPaid", mock.Anything, userID, id, mock.Anything).Return(nil, shared.ErrInvalidState)

		w, env := do(t, invoiceRouter(userID, svc), http.MethodPut, "/invoices/"+id.String()+"/mark-paid",
			map[string]any{"paid_amount": "100", "payment_method": "cash"})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "INVALID_STATE", env.Error.Code)
	})

	t.Run("unknown payment method", func(t *testing.T) {
		svc := new(MockInvoiceService)
		w, _ := do(t, invoiceRouter(userID, svc), http.MethodPut, "/invoices/"+id.String()+"/mark-paid",
			map[string]any{"payment_method": "barter"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestInvoiceHandler_Transitions(t *testing.T) {
	userID := uuid.New()
	id := uuid.New()
	svc := new(MockInvoiceService)
	svc.On("Send", mock.Anything, userID, id).Return(&billingapp.InvoiceResponse{Status: "sent"}, nil)
	svc.On("Cancel", mock.Anything, userID, id).Return(nil, shared.ErrInvalidState)
	svc.On("Delete", mock.Anything, userID, id).Return(nil)
	r := invoiceRouter(userID, svc)

	w, _ := do(t, r, http.MethodPut, "/invoices/"+id.String()+"/send", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = do(t, r, http.MethodPut, "/invoices/"+id.String()+"/cancel", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	w, _ = do(t, r, http.MethodDelete, "/invoices/"+id.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestInvoiceHandler_Stats(t *testing.T) {
	userID := uuid.New()
	svc := new(MockInvoiceService)
	svc.On("Stats", mock.Anything, userID).Return(&billing.InvoiceStats{
		TotalInvoices:   3,
		TotalAmount:     decimal.NewFromInt(300),
		OverdueInvoices: 1,
	})

	w, env := do(t, invoiceRouter(userID, svc), http.MethodGet, "/invoices/stats/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats billing.InvoiceStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, int64(3), stats.TotalInvoices)
	assert.Equal(t, int64(1), stats.OverdueInvoices)
}
