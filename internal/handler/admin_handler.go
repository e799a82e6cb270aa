package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nearby-app/marketplace-api/internal/application"
	"github.com/nearby-app/marketplace-api/pkg/auth"
	"github.com/nearby-app/marketplace-api/pkg/middleware"
	"github.com/nearby-app/marketplace-api/pkg/response"
)

// AdminHandler handles the admin HTTP surface. All routes require the ADMIN
// role.
type AdminHandler struct {
	admin    *application.AdminService
	bookings *application.BookingService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(admin *application.AdminService, bookings *application.BookingService) *AdminHandler {
	return &AdminHandler{admin: admin, bookings: bookings}
}

// RegisterRoutes registers all admin routes on the given router group.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, middleware.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/categories", h.ListCategories)
		admin.POST("/categories", h.CreateCategory)
		admin.POST("/categories/:id/toggle", h.ToggleCategory)

		admin.GET("/providers", h.ListProviders)
		admin.POST("/providers/:id/verify", h.VerifyProvider)

		admin.POST("/users/:id/block", h.BlockUser)

		admin.GET("/reviews", h.ListReviews)
		admin.POST("/reviews/:id/hide", h.HideReview)

		admin.GET("/bookings", h.ListBookings)
		admin.GET("/stats", h.GetStats)
		admin.GET("/audit", h.ListAuditEntries)
	}
}

// ListCategories handles GET /api/v1/admin/categories.
func (h *AdminHandler) ListCategories(c *gin.Context) {
	result, err := h.admin.ListCategories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CreateCategory handles POST /api/v1/admin/categories.
func (h *AdminHandler) CreateCategory(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.admin.CreateCategory(c.Request.Context(), actorID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ToggleCategory handles POST /api/v1/admin/categories/:id/toggle.
func (h *AdminHandler) ToggleCategory(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid category ID")
		return
	}

	actorID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.admin.ToggleCategory(c.Request.Context(), actorID, categoryID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListProviders handles GET /api/v1/admin/providers.
func (h *AdminHandler) ListProviders(c *gin.Context) {
	var verified *bool
	if raw := c.Query("verified"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(c, "invalid verified filter")
			return
		}
		verified = &v
	}

	result, err := h.admin.ListProviders(c.Request.Context(), verified)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// VerifyProvider handles POST /api/v1/admin/providers/:id/verify.
func (h *AdminHandler) VerifyProvider(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid provider ID")
		return
	}

	actorID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.admin.VerifyProvider(c.Request.Context(), actorID, providerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// BlockUser handles POST /api/v1/admin/users/:id/block.
func (h *AdminHandler) BlockUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user ID")
		return
	}

	actorID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.admin.BlockUser(c.Request.Context(), actorID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListReviews handles GET /api/v1/admin/reviews.
func (h *AdminHandler) ListReviews(c *gin.Context) {
	result, err := h.admin.ListReviews(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// HideReview handles POST /api/v1/admin/reviews/:id/hide.
func (h *AdminHandler) HideReview(c *gin.Context) {
	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid review ID")
		return
	}

	actorID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.admin.HideReview(c.Request.Context(), actorID, reviewID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListBookings handles GET /api/v1/admin/bookings.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.bookings.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetStats handles GET /api/v1/admin/stats.
func (h *AdminHandler) GetStats(c *gin.Context) {
	result, err := h.admin.GetPlatformStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListAuditEntries handles GET /api/v1/admin/audit.
func (h *AdminHandler) ListAuditEntries(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	result, err := h.admin.ListAuditEntries(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
