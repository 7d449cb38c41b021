package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"propertycrm/internal/config"
	"propertycrm/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:            "test",
		HTTPAddr:          ":0",
		DatabaseURL:       ":memory:",
		LogLevel:          "info",
		LogFormat:         "console",
		ChatbotSessionTTL: 30 * time.Minute,
	}
}

func newTestApp(t *testing.T, withRedis bool) *App {
	t.Helper()
	var rdb *redis.Client
	if withRedis {
		mr := miniredis.RunT(t)
		rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	}
	a := Build(testConfig(), zap.NewNop(), testutil.NewDB(t), rdb, nil)
	if rdb != nil {
		t.Cleanup(func() { _ = rdb.Close() })
	}
	return a
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
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
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestHealth(t *testing.T) {
	r := newTestApp(t, true).Router()

	w, env := do(t, r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"database":"ok","redis":"ok"}`, string(env.Data))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestApp(t, false).Router()

	do(t, r, http.MethodGet, "/api/v1/leads", nil)
	w, _ := do(t, r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "crm_lead_score")
}

func TestChatbotRequiresRedis(t *testing.T) {
	w, _ := do(t, newTestApp(t, false).Router(), http.MethodGet, "/api/v1/chatbot/health", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env := do(t, newTestApp(t, true).Router(), http.MethodPost, "/api/v1/chatbot/message", gin.H{"message": "hello"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"intent":"greeting"`)
}

func TestInquiryIsAutoAssigned(t *testing.T) {
	a := newTestApp(t, false)
	r := a.Router()

	w, _ := do(t, r, http.MethodPost, "/api/v1/agents", gin.H{"name": "Amy", "email": "amy@example.com"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := do(t, r, http.MethodPost, "/api/v1/leads/whatsapp-inquiry", gin.H{
		"whatsapp_number": "+85291234567",
		"name":            "Chan",
		"message":         "Is the flat still available?",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Lead struct {
			AssignedAgentID *int64 `json:"assigned_agent_id"`
		} `json:"lead"`
		IsNewLead bool `json:"is_new_lead"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.True(t, body.IsNewLead)
	require.NotNil(t, body.Lead.AssignedAgentID)
}

func TestAnalyticsMounted(t *testing.T) {
	r := newTestApp(t, false).Router()

	w, env := do(t, r, http.MethodGet, "/api/v1/analytics/funnel?days=7", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(env.Data), `"total_leads":0`)
}
