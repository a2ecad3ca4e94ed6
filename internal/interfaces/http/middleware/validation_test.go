package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/crm/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validationProbe struct {
	Email    string   `json:"email" binding:"required,email"`
	Currency string   `json:"currency" binding:"omitempty,currency"`
	Status   string   `json:"status" binding:"omitempty,doc_status"`
	Items    []string `json:"items" binding:"required,min=1"`
}

func newValidationRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req validationProbe
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(req))
	})
	return router
}

func postJSON(r *gin.Engine, body string) (*httptest.ResponseRecorder, dto.Response) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var resp dto.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestValidation_CustomTags(t *testing.T) {
	router := newValidationRouter()

	t.Run("valid payload", func(t *testing.T) {
		w, _ := postJSON(router, `{"email":"a@b.co","currency":"eur","status":"Overdue","items":["x"]}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("fields named by json tag", func(t *testing.T) {
		w, resp := postJSON(router, `{"email":"nope","currency":"EURO","status":"lost","items":[]}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)

		fields := map[string]string{}
		for _, d := range resp.Error.Details {
			fields[d.Field] = d.Message
		}
		assert.Equal(t, "Invalid email format", fields["email"])
		assert.Equal(t, "Must be a 3-letter currency code", fields["currency"])
		assert.Equal(t, "Unknown document status", fields["status"])
		assert.Equal(t, "Must contain at least 1 item(s)", fields["items"])
	})

	t.Run("malformed json", func(t *testing.T) {
		w, resp := postJSON(router, `{"email":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
		assert.Empty(t, resp.Error.Details)
	})
}
