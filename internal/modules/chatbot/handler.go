package chatbot

import (
	"encoding/json"
	"net/http"
	"time"

	"propertycrm/internal/pkg/response"
	"propertycrm/internal/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	writeWait  = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Handler struct {
	service *Service
	hub     *Hub
	log     *zap.Logger
}

func NewHandler(service *Service, hub *Hub, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{service: service, hub: hub, log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/message", h.Message)
	rg.POST("/reset", h.Reset)
	rg.GET("/health", h.Health)
	rg.GET("/ws", h.WebSocket)
}

type MessageRequest struct {
	Message string `json:"message" binding:"required"`
	UserID  string `json:"user_id"`
}

type ResetRequest struct {
	UserID string `json:"user_id"`
}

func (h *Handler) Message(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Message is required", validator.Details(err))
		return
	}
	reply, err := h.service.HandleMessage(c.Request.Context(), req.UserID, req.Message)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Chatbot is unavailable")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"response":  reply,
		"timestamp": time.Now().UTC(),
	})
}

// Reset accepts an empty body and then resets the default user.
func (h *Handler) Reset(c *gin.Context) {
	var req ResetRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", validator.Details(err))
			return
		}
	}
	if err := h.service.Reset(c.Request.Context(), req.UserID); err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to reset chat")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Chat context reset successfully"})
}

func (h *Handler) Health(c *gin.Context) {
	n, err := h.service.ActiveSessions(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusServiceUnavailable, "SESSION_STORE_UNAVAILABLE", "Session store is unreachable")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"message":        "Chatbot service is running",
		"active_users":   n,
		"ws_connections": h.hub.Count(),
	})
}

type wsReply struct {
	Success  bool   `json:"success"`
	Response *Reply `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// WebSocket answers every JSON message {"user_id", "message"} with one JSON
// reply on the same connection.
func (h *Handler) WebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	id := uuid.NewString()
	h.hub.Register(id, conn)
	defer h.hub.Unregister(id)

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go pingLoop(conn, done)

	ctx := c.Request.Context()
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("websocket read failed", zap.String("conn_id", id), zap.Error(err))
			}
			return
		}

		var msg MessageRequest
		if err := json.Unmarshal(raw, &msg); err != nil || msg.Message == "" {
			if werr := writeJSON(conn, wsReply{Error: "message is required"}); werr != nil {
				return
			}
			continue
		}

		reply, err := h.service.HandleMessage(ctx, msg.UserID, msg.Message)
		out := wsReply{Success: err == nil, Response: reply}
		if err != nil {
			h.log.Error("chatbot reply failed", zap.String("conn_id", id), zap.Error(err))
			out.Error = "chatbot is unavailable"
		}
		if err := writeJSON(conn, out); err != nil {
			return
		}
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}

func pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
