package lead

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

// RegisterRoutes mounts under /leads. Static paths go before /:id.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/stats", h.Stats)
	rg.POST("/instagram-inquiry", h.InstagramInquiry)
	rg.POST("/whatsapp-inquiry", h.WhatsAppInquiry)

	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.GET("/:id/interactions", h.ListInteractions)
	rg.POST("/:id/interactions", h.AddInteraction)
	rg.POST("/:id/rescore", h.Rescore)
	rg.GET("/:id/agent-suggestions", h.AgentSuggestions)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid lead ID")
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrLeadNotFound):
		response.Error(c, http.StatusNotFound, "LEAD_NOT_FOUND", "Lead not found")
	case errors.Is(err, ErrAgentNotFound):
		response.Error(c, http.StatusNotFound, "AGENT_NOT_FOUND", "Agent not found")
	case errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidPriority),
		errors.Is(err, ErrInvalidBudget),
		errors.Is(err, ErrInvalidType),
		errors.Is(err, ErrMissingContact):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}

func (h *Handler) List(c *gin.Context) {
	var q ListLeadsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters", validator.Details(err))
		return
	}
	leads, p, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		writeError(c, err, "Failed to list leads")
		return
	}
	response.Paginated(c, http.StatusOK, leads, p)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid lead", validator.Details(err))
		return
	}
	l, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err, "Failed to create lead")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"lead": l})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	l, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Failed to load lead")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"lead": l})
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid lead", validator.Details(err))
		return
	}
	l, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err, "Failed to update lead")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"lead": l})
}

func (h *Handler) ListInteractions(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	items, err := h.service.ListInteractions(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Failed to load interactions")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"interactions": items, "total": len(items)})
}

func (h *Handler) AddInteraction(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req CreateInteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid interaction", validator.Details(err))
		return
	}
	in, err := h.service.AddInteraction(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err, "Failed to record interaction")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"interaction": in})
}

func (h *Handler) Rescore(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	res, err := h.service.Rescore(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Failed to rescore lead")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"lead":      res.Lead,
		"score":     res.Lead.Score,
		"breakdown": res.Breakdown,
	})
}

func (h *Handler) AgentSuggestions(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	ranked, err := h.service.AgentSuggestions(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Failed to rank agents")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"suggestions": ranked})
}

func (h *Handler) Stats(c *gin.Context) {
	st, err := h.service.Stats(c.Request.Context())
	if err != nil {
		writeError(c, err, "Failed to load lead stats")
		return
	}
	response.Success(c, http.StatusOK, st)
}

func (h *Handler) InstagramInquiry(c *gin.Context) {
	var req InstagramInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Instagram handle and message are required", validator.Details(err))
		return
	}
	res, err := h.service.InstagramInquiry(c.Request.Context(), req)
	if err != nil {
		writeError(c, err, "Failed to process inquiry")
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) WhatsAppInquiry(c *gin.Context) {
	var req WhatsAppInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "WhatsApp number and message are required", validator.Details(err))
		return
	}
	res, err := h.service.WhatsAppInquiry(c.Request.Context(), req)
	if err != nil {
		writeError(c, err, "Failed to process inquiry")
		return
	}
	response.Success(c, http.StatusOK, res)
}
