package property

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
	rg.GET("/stats", h.Stats)
	rg.POST("/import", h.Import)
	rg.GET("/:id", h.Get)
}

func (h *Handler) List(c *gin.Context) {
	var q ListPropertiesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters", validator.Details(err))
		return
	}
	items, p, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list properties")
		return
	}
	response.Paginated(c, http.StatusOK, items, p)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid property ID")
		return
	}
	v, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrPropertyNotFound) {
			response.Error(c, http.StatusNotFound, "PROPERTY_NOT_FOUND", "Property not found")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load property")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"property": v})
}

func (h *Handler) Import(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid listings", validator.Details(err))
		return
	}
	res, err := h.service.Import(c.Request.Context(), req.Listings)
	if err != nil {
		if errors.Is(err, ErrInvalidSource) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to import listings")
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) Stats(c *gin.Context) {
	st, err := h.service.Stats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load property stats")
		return
	}
	response.Success(c, http.StatusOK, st)
}
