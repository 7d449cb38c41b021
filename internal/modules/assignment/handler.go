package assignment

import (
	"errors"
	"fmt"
	"net/http"

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

// RegisterRoutes mounts under the /agents group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/assign-lead", h.AssignLead)
	rg.POST("/auto-assign", h.AutoAssign)
}

type AssignLeadRequest struct {
	LeadID  int64 `json:"lead_id" binding:"required,gt=0"`
	AgentID int64 `json:"agent_id" binding:"required,gt=0"`
}

func (h *Handler) AssignLead(c *gin.Context) {
	var req AssignLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Lead ID and Agent ID are required", validator.Details(err))
		return
	}

	lead, agent, err := h.service.AssignManually(c.Request.Context(), req.LeadID, req.AgentID)
	if err != nil {
		switch {
		case errors.Is(err, ErrLeadNotFound):
			response.Error(c, http.StatusNotFound, "LEAD_NOT_FOUND", "Lead not found")
		case errors.Is(err, ErrAgentNotFound):
			response.Error(c, http.StatusNotFound, "AGENT_NOT_FOUND", "Agent not found")
		case errors.Is(err, ErrAgentInactive):
			response.Error(c, http.StatusConflict, "AGENT_INACTIVE", "Agent is not active")
		case errors.Is(err, ErrAgentAtCapacity):
			response.Error(c, http.StatusConflict, "AGENT_AT_CAPACITY", "Agent has reached maximum lead capacity")
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to assign lead")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"lead":    lead,
		"message": fmt.Sprintf("Lead assigned to %s", agent.Name),
	})
}

func (h *Handler) AutoAssign(c *gin.Context) {
	res, err := h.service.Sweep(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Auto-assignment failed")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"result":  res,
		"message": fmt.Sprintf("Successfully assigned %d leads", res.Assigned),
	})
}
