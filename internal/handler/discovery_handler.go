package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nearby-app/marketplace-api/internal/application"
	"github.com/nearby-app/marketplace-api/pkg/response"
)

// DiscoveryHandler handles the public HTTP surface: categories, provider
// search and availability browsing. No authentication required.
type DiscoveryHandler struct {
	service *application.DiscoveryService
}

// NewDiscoveryHandler creates a new DiscoveryHandler.
func NewDiscoveryHandler(service *application.DiscoveryService) *DiscoveryHandler {
	return &DiscoveryHandler{service: service}
}

// RegisterRoutes registers all discovery routes on the given router group.
func (h *DiscoveryHandler) RegisterRoutes(r *gin.RouterGroup) {
	v1 := r.Group("/api/v1")
	{
		v1.GET("/categories", h.ListCategories)
		v1.GET("/providers", h.SearchProviders)
		v1.GET("/providers/:id", h.GetProviderDetail)
		v1.GET("/services/:id/slots", h.GetServiceSlots)
	}
}

// ListCategories handles GET /api/v1/categories.
func (h *DiscoveryHandler) ListCategories(c *gin.Context) {
	result, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// SearchProviders handles GET /api/v1/providers.
func (h *DiscoveryHandler) SearchProviders(c *gin.Context) {
	var req application.SearchProvidersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SearchProviders(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetProviderDetail handles GET /api/v1/providers/:id.
func (h *DiscoveryHandler) GetProviderDetail(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid provider ID")
		return
	}

	result, err := h.service.GetProviderDetail(c.Request.Context(), providerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetServiceSlots handles GET /api/v1/services/:id/slots.
func (h *DiscoveryHandler) GetServiceSlots(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid service ID")
		return
	}

	result, err := h.service.GetServiceSlots(c.Request.Context(), serviceID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
