package lead

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func setupRouter(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc, _ := setupTestService(t)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1/leads"))
	return r, svc
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestWhatsAppInquiryHandler(t *testing.T) {
	r, _ := setupRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/api/v1/leads/whatsapp-inquiry", gin.H{"whatsapp_number": "+852 5555 0000"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Equal(t, "required", env.Error.Details["Message"])

	body := gin.H{"whatsapp_number": "+852 5555 0000", "message": "hi"}
	w, env = doJSON(t, r, http.MethodPost, "/api/v1/leads/whatsapp-inquiry", body)
	require.Equal(t, http.StatusOK, w.Code)
	var first InquiryResult
	require.NoError(t, json.Unmarshal(env.Data, &first))
	assert.True(t, first.IsNewLead)

	_, env = doJSON(t, r, http.MethodPost, "/api/v1/leads/whatsapp-inquiry", body)
	var second InquiryResult
	require.NoError(t, json.Unmarshal(env.Data, &second))
	assert.False(t, second.IsNewLead)
	assert.Equal(t, first.Lead.ID, second.Lead.ID)
}

func TestInquiryHandlerRejectsBlankSender(t *testing.T) {
	r, _ := setupRouter(t)

	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/leads/whatsapp-inquiry", gin.H{"whatsapp_number": "+852 5555 0000", "message": "hi"})
	require.Equal(t, http.StatusOK, w.Code)

	w, env := doJSON(t, r, http.MethodPost, "/api/v1/leads/instagram-inquiry", gin.H{"instagram_handle": "   ", "message": "hi"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestLeadRoutes(t *testing.T) {
	r, _ := setupRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/api/v1/leads", gin.H{"name": "Ann", "email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	w, env = doJSON(t, r, http.MethodPost, "/api/v1/leads", gin.H{"name": "Ann", "priority": "urgent"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)

	w, env = doJSON(t, r, http.MethodGet, "/api/v1/leads/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats StatsResponse
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, int64(1), stats.Total)
	assert.Equal(t, int64(1), stats.Unassigned)

	w, env = doJSON(t, r, http.MethodGet, "/api/v1/leads?per_page=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"total_pages":1`)

	w, env = doJSON(t, r, http.MethodGet, "/api/v1/leads/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", env.Error.Code)

	w, env = doJSON(t, r, http.MethodGet, "/api/v1/leads/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "LEAD_NOT_FOUND", env.Error.Code)

	w, env = doJSON(t, r, http.MethodPut, "/api/v1/leads/1", gin.H{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}
