package analytics

import (
	"errors"
	"net/http"
	"strconv"

	"propertycrm/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard", h.Dashboard)
	rg.GET("/leads-trend", h.LeadsTrend)
	rg.GET("/source-performance", h.SourcePerformance)
	rg.GET("/agent-comparison", h.AgentComparison)
	rg.GET("/property-performance", h.PropertyPerformance)
	rg.GET("/funnel", h.Funnel)
	rg.GET("/lead-scoring", h.LeadScoring)
}

func parseDays(c *gin.Context) (int, bool) {
	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(defaultPeriodDays)))
	if err != nil || days <= 0 || days > maxPeriodDays {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", ErrInvalidPeriod.Error())
		return 0, false
	}
	return days, true
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidPeriod):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}

func (h *Handler) Dashboard(c *gin.Context) {
	days, ok := parseDays(c)
	if !ok {
		return
	}
	d, err := h.service.Dashboard(c.Request.Context(), days)
	if err != nil {
		writeError(c, err, "Failed to load dashboard")
		return
	}
	response.Success(c, http.StatusOK, d)
}

func (h *Handler) LeadsTrend(c *gin.Context) {
	days, ok := parseDays(c)
	if !ok {
		return
	}
	t, err := h.service.LeadsTrend(c.Request.Context(), days)
	if err != nil {
		writeError(c, err, "Failed to load leads trend")
		return
	}
	response.Success(c, http.StatusOK, t)
}

func (h *Handler) SourcePerformance(c *gin.Context) {
	days, ok := parseDays(c)
	if !ok {
		return
	}
	sources, err := h.service.SourcePerformance(c.Request.Context(), days)
	if err != nil {
		writeError(c, err, "Failed to load source performance")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"period_days": days, "sources": sources})
}

func (h *Handler) AgentComparison(c *gin.Context) {
	days, ok := parseDays(c)
	if !ok {
		return
	}
	agents, err := h.service.AgentComparison(c.Request.Context(), days)
	if err != nil {
		writeError(c, err, "Failed to compare agents")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"period_days": days, "agents": agents})
}

func (h *Handler) PropertyPerformance(c *gin.Context) {
	days, ok := parseDays(c)
	if !ok {
		return
	}
	properties, err := h.service.PropertyPerformance(c.Request.Context(), days)
	if err != nil {
		writeError(c, err, "Failed to load property performance")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"period_days": days, "properties": properties})
}

func (h *Handler) Funnel(c *gin.Context) {
	days, ok := parseDays(c)
	if !ok {
		return
	}
	f, err := h.service.Funnel(c.Request.Context(), days)
	if err != nil {
		writeError(c, err, "Failed to load funnel")
		return
	}
	response.Success(c, http.StatusOK, f)
}

func (h *Handler) LeadScoring(c *gin.Context) {
	s, err := h.service.LeadScoring(c.Request.Context())
	if err != nil {
		writeError(c, err, "Failed to load lead scoring")
		return
	}
	response.Success(c, http.StatusOK, s)
}
