package analytics

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/udhago/udhago-backend/pkg/common"
	"github.com/udhago/udhago-backend/pkg/middleware"
)

// Handler handles HTTP requests for analytics
type Handler struct {
	service *Service
}

// NewHandler creates a new analytics handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetTopRoutes handles the most-searched-routes report
func (h *Handler) GetTopRoutes(c *gin.Context) {
	days, limit := parseWindow(c)

	items, err := h.service.GetTopRoutes(c.Request.Context(), days, limit)
	if err != nil {
		common.HandleServiceError(c, err, "failed to load top routes")
		return
	}

	common.SuccessResponse(c, items)
}

// GetUnderservedRoutes handles the demand-vs-supply gap report
func (h *Handler) GetUnderservedRoutes(c *gin.Context) {
	days, limit := parseWindow(c)

	items, err := h.service.GetUnderservedRoutes(c.Request.Context(), days, limit)
	if err != nil {
		common.HandleServiceError(c, err, "failed to load underserved routes")
		return
	}

	common.SuccessResponse(c, items)
}

func parseWindow(c *gin.Context) (int, int) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	return days, limit
}

// RegisterRoutes registers analytics routes
func (h *Handler) RegisterRoutes(r *gin.Engine, jwtSecret string) {
	routes := r.Group("/api/v1/analytics/routes")
	routes.Use(middleware.Auth(jwtSecret))
	{
		routes.GET("/top", h.GetTopRoutes)
		routes.GET("/underserved", h.GetUnderservedRoutes)
	}
}
