package chatbot

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupRouter(t *testing.T) (*gin.Engine, *Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc, _ := setupService(t, time.Minute)
	hub := NewHub()
	t.Cleanup(hub.Close)
	r := gin.New()
	NewHandler(svc, hub, zap.NewNop()).RegisterRoutes(r.Group("/api/v1/chatbot"))
	return r, hub
}

func TestMessageAndHealthHandlers(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chatbot/message", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body, _ := json.Marshal(gin.H{"message": "hello", "user_id": "u1"})
	req = httptest.NewRequest(http.MethodPost, "/api/v1/chatbot/message", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"intent":"greeting"`)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/chatbot/health", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"active_users":1`)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/chatbot/reset", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebSocketRepliesPerMessage(t *testing.T) {
	r, hub := setupRouter(t)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/chatbot/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(gin.H{"user_id": "ws1", "message": "3 bedrooms"}))
	var reply wsReply
	require.NoError(t, conn.ReadJSON(&reply))
	assert.True(t, reply.Success)
	require.NotNil(t, reply.Response)
	assert.Equal(t, IntentBedrooms, reply.Response.Intent)
	assert.Equal(t, 1, hub.Count())

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	reply = wsReply{}
	require.NoError(t, conn.ReadJSON(&reply))
	assert.False(t, reply.Success)
	assert.Equal(t, "message is required", reply.Error)
}
