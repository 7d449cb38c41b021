package enrichment

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

// RegisterRoutes mounts under the /properties group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/:id/generate-content", h.GenerateContent)
}

type GenerateContentRequest struct {
	Style string `json:"style"`
}

func (h *Handler) GenerateContent(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid property ID")
		return
	}
	var req GenerateContentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", validator.Details(err))
			return
		}
	}

	content, err := h.service.GenerateContent(c.Request.Context(), id, req.Style)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidStyle):
			response.Error(c, http.StatusBadRequest, "INVALID_STYLE", err.Error())
		case errors.Is(err, ErrPropertyNotFound):
			response.Error(c, http.StatusNotFound, "PROPERTY_NOT_FOUND", "Property not found")
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate content")
		}
		return
	}
	response.Success(c, http.StatusOK, content)
}
