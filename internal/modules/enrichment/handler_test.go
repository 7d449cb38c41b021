package enrichment

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code string `json:"code"`
	} `json:"error"`
}

func post(t *testing.T, r *gin.Engine, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func contentPath(id int64) string {
	return "/api/v1/properties/" + strconv.FormatInt(id, 10) + "/generate-content"
}

func TestGenerateContentHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded"))
	svc, _, p := setup(t, gen)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1/properties"))

	w, env := post(t, r, contentPath(p.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var c Content
	require.NoError(t, json.Unmarshal(env.Data, &c))
	assert.Equal(t, StyleEngaging, c.Style)
	assert.True(t, c.Fallback)
	assert.NotEmpty(t, c.Caption)

	w, env = post(t, r, contentPath(p.ID), gin.H{"style": "Professional"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &c))
	assert.Equal(t, StyleProfessional, c.Style)
}

func TestGenerateContentHandlerErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _, p := setup(t, nil)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1/properties"))

	w, env := post(t, r, contentPath(p.ID), gin.H{"style": "poetic"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_STYLE", env.Error.Code)

	w, env = post(t, r, contentPath(999), gin.H{"style": "casual"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "PROPERTY_NOT_FOUND", env.Error.Code)

	w, env = post(t, r, "/api/v1/properties/abc/generate-content", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", env.Error.Code)

	w, env = post(t, r, contentPath(p.ID), gin.H{"style": 7})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}
