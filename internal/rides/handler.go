package rides

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/udhago/udhago-backend/pkg/common"
	"github.com/udhago/udhago-backend/pkg/middleware"
	"github.com/udhago/udhago-backend/pkg/models"
	"github.com/udhago/udhago-backend/pkg/pagination"
)

// Handler handles HTTP requests for rides
type Handler struct {
	service *Service
}

// NewHandler creates a new rides handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateRide handles ride creation
func (h *Handler) CreateRide(c *gin.Context) {
	driverID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	ride, err := h.service.CreateRide(c.Request.Context(), driverID, &req)
	if err != nil {
		common.HandleServiceError(c, err, "failed to create ride")
		return
	}

	common.CreatedResponse(c, ride)
}

// GetRide handles fetching a single ride
func (h *Handler) GetRide(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid ride id")
		return
	}

	ride, err := h.service.GetRide(c.Request.Context(), id)
	if err != nil {
		common.HandleServiceError(c, err, "failed to load ride")
		return
	}

	common.SuccessResponse(c, ride)
}

// UpdateRide handles partial ride updates by the owning driver
func (h *Handler) UpdateRide(c *gin.Context) {
	driverID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid ride id")
		return
	}

	var req models.UpdateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	ride, err := h.service.UpdateRide(c.Request.Context(), id, driverID, &req)
	if err != nil {
		common.HandleServiceError(c, err, "failed to update ride")
		return
	}

	common.SuccessResponse(c, ride)
}

// CancelRide handles ride cancellation by the owning driver
func (h *Handler) CancelRide(c *gin.Context) {
	driverID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid ride id")
		return
	}

	if err := h.service.CancelRide(c.Request.Context(), id, driverID); err != nil {
		common.HandleServiceError(c, err, "failed to cancel ride")
		return
	}

	common.SuccessResponse(c, gin.H{"cancelled": true})
}

// GetMyRides handles listing the authenticated driver's rides
func (h *Handler) GetMyRides(c *gin.Context) {
	driverID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	includeCompleted := c.Query("include_completed") == "true"

	items, err := h.service.GetDriverRides(c.Request.Context(), driverID, includeCompleted)
	if err != nil {
		common.HandleServiceError(c, err, "failed to list rides")
		return
	}

	common.SuccessResponse(c, items)
}

// SearchRides handles the public ride search
func (h *Handler) SearchRides(c *gin.Context) {
	pageParams := pagination.ParseParams(c)

	params := models.SearchRidesParams{
		Origin:      c.Query("origin"),
		Destination: c.Query("destination"),
		Page:        pageParams.Page,
		Limit:       pageParams.Limit,
	}

	if dateStr := c.Query("date"); dateStr != "" {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		params.Date = &date
	}

	// Attribute the search when a valid token was presented
	var userID *uuid.UUID
	if id, err := middleware.GetUserID(c); err == nil {
		userID = &id
	}

	items, total, err := h.service.SearchRides(c.Request.Context(), params, userID)
	if err != nil {
		common.HandleServiceError(c, err, "failed to search rides")
		return
	}

	common.SuccessResponseWithMeta(c, items, pagination.BuildMeta(pageParams, total))
}

// RegisterRoutes registers ride routes
func (h *Handler) RegisterRoutes(r *gin.Engine, jwtSecret string) {
	ridesGroup := r.Group("/api/v1/rides")
	{
		ridesGroup.GET("/search", middleware.OptionalAuth(jwtSecret), h.SearchRides)
		ridesGroup.GET("/:id", h.GetRide)

		protected := ridesGroup.Group("")
		protected.Use(middleware.Auth(jwtSecret))
		{
			protected.POST("", h.CreateRide)
			protected.GET("/mine", h.GetMyRides)
			protected.PUT("/:id", h.UpdateRide)
			protected.DELETE("/:id", h.CancelRide)
		}
	}
}
