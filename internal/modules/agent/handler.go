package agent

import (
	"errors"
	"net/http"
	"strconv"

	"propertycrm/internal/pkg/response"
	"propertycrm/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.GET("/:id/leads", h.Leads)
	rg.GET("/:id/workload", h.Workload)
	rg.GET("/:id/performance", h.Performance)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid agent ID")
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrAgentNotFound):
		response.Error(c, http.StatusNotFound, "AGENT_NOT_FOUND", "Agent not found")
	case errors.Is(err, ErrAgentEmailExists):
		response.Error(c, http.StatusConflict, "EMAIL_EXISTS", "An agent with this email already exists")
	case errors.Is(err, ErrInvalidStatus):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}

func (h *Handler) List(c *gin.Context) {
	var q ListAgentsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters", validator.Details(err))
		return
	}
	agents, err := h.service.List(c.Request.Context(), q.ActiveOnly)
	if err != nil {
		writeError(c, err, "Failed to list agents")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"agents": agents, "total": len(agents)})
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Name and email are required", validator.Details(err))
		return
	}
	a, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err, "Failed to create agent")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"agent": a})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	a, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Failed to load agent")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"agent": a})
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid agent", validator.Details(err))
		return
	}
	a, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err, "Failed to update agent")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"agent": a})
}

func (h *Handler) Leads(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var q AgentLeadsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters", validator.Details(err))
		return
	}
	leads, p, err := h.service.Leads(c.Request.Context(), id, q)
	if err != nil {
		writeError(c, err, "Failed to list agent leads")
		return
	}
	response.Paginated(c, http.StatusOK, leads, p)
}

func (h *Handler) Workload(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	w, err := h.service.Workload(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Failed to load workload")
		return
	}
	response.Success(c, http.StatusOK, w)
}

func (h *Handler) Performance(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(defaultPeriodDays)))
	if err != nil || days <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "days must be a positive integer")
		return
	}
	p, err := h.service.Performance(c.Request.Context(), id, days)
	if err != nil {
		writeError(c, err, "Failed to load performance")
		return
	}
	response.Success(c, http.StatusOK, p)
}
