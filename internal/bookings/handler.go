package bookings

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/udhago/udhago-backend/pkg/common"
	"github.com/udhago/udhago-backend/pkg/middleware"
	"github.com/udhago/udhago-backend/pkg/models"
)

// Handler handles HTTP requests for bookings
type Handler struct {
	service *Service
}

// NewHandler creates a new bookings handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateBooking handles booking requests from riders
func (h *Handler) CreateBooking(c *gin.Context) {
	riderID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	booking, err := h.service.CreateBooking(c.Request.Context(), riderID, &req)
	if err != nil {
		common.HandleServiceError(c, err, "failed to create booking")
		return
	}

	common.CreatedResponse(c, booking)
}

// AcceptBooking handles a driver accepting a pending booking
func (h *Handler) AcceptBooking(c *gin.Context) {
	h.transition(c, h.service.AcceptBooking, "failed to accept booking")
}

// DeclineBooking handles a driver declining a pending booking
func (h *Handler) DeclineBooking(c *gin.Context) {
	h.transition(c, h.service.DeclineBooking, "failed to decline booking")
}

// CancelBooking handles a rider withdrawing a pending booking
func (h *Handler) CancelBooking(c *gin.Context) {
	h.transition(c, h.service.CancelBooking, "failed to cancel booking")
}

// transition runs a status-transition operation keyed by booking id and the
// authenticated actor.
func (h *Handler) transition(c *gin.Context, op func(context.Context, uuid.UUID, uuid.UUID) (*models.BookingWithDetails, error), fallback string) {
	actorID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid booking id")
		return
	}

	booking, err := op(c.Request.Context(), bookingID, actorID)
	if err != nil {
		common.HandleServiceError(c, err, fallback)
		return
	}

	common.SuccessResponse(c, booking)
}

// GetMyBookings handles listing the authenticated rider's bookings
func (h *Handler) GetMyBookings(c *gin.Context) {
	riderID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	items, err := h.service.GetBookingsForRider(c.Request.Context(), riderID)
	if err != nil {
		common.HandleServiceError(c, err, "failed to list bookings")
		return
	}

	common.SuccessResponse(c, items)
}

// GetBookingsForRide handles the driver's view of a ride's bookings;
// ?pending=true narrows to requests awaiting review
func (h *Handler) GetBookingsForRide(c *gin.Context) {
	requesterID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid ride id")
		return
	}

	pendingOnly := c.Query("pending") == "true"

	items, err := h.service.GetBookingsForRide(c.Request.Context(), rideID, requesterID, pendingOnly)
	if err != nil {
		common.HandleServiceError(c, err, "failed to list bookings")
		return
	}

	common.SuccessResponse(c, items)
}

// GetBooking handles fetching a single booking
func (h *Handler) GetBooking(c *gin.Context) {
	requesterID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid booking id")
		return
	}

	booking, err := h.service.GetBooking(c.Request.Context(), bookingID, requesterID)
	if err != nil {
		common.HandleServiceError(c, err, "failed to load booking")
		return
	}

	common.SuccessResponse(c, booking)
}

// RegisterRoutes registers booking routes
func (h *Handler) RegisterRoutes(r *gin.Engine, jwtSecret string) {
	bookingsGroup := r.Group("/api/v1/bookings")
	bookingsGroup.Use(middleware.Auth(jwtSecret))
	{
		bookingsGroup.POST("", h.CreateBooking)
		bookingsGroup.GET("/mine", h.GetMyBookings)
		bookingsGroup.GET("/:id", h.GetBooking)
		bookingsGroup.POST("/:id/accept", h.AcceptBooking)
		bookingsGroup.POST("/:id/decline", h.DeclineBooking)
		bookingsGroup.POST("/:id/cancel", h.CancelBooking)
	}

	rideBookings := r.Group("/api/v1/rides/:id/bookings")
	rideBookings.Use(middleware.Auth(jwtSecret))
	{
		rideBookings.GET("", h.GetBookingsForRide)
	}
}
