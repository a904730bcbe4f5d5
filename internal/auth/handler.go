package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/udhago/udhago-backend/pkg/common"
	"github.com/udhago/udhago-backend/pkg/middleware"
	"github.com/udhago/udhago-backend/pkg/models"
)

// Handler handles HTTP requests for authentication
type Handler struct {
	service *Service
}

// NewHandler creates a new auth handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register handles user registration
func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	response, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		common.HandleServiceError(c, err, "registration failed")
		return
	}

	common.CreatedResponse(c, response)
}

// Login handles user login
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	response, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		common.HandleServiceError(c, err, "login failed")
		return
	}

	common.SuccessResponse(c, response)
}

// GetProfile handles getting the authenticated user's profile
func (h *Handler) GetProfile(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		common.HandleServiceError(c, err, "failed to get profile")
		return
	}

	common.SuccessResponse(c, user)
}

// RegisterRoutes registers auth routes
func (h *Handler) RegisterRoutes(r *gin.Engine, jwtSecret string) {
	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)

		protected := auth.Group("")
		protected.Use(middleware.Auth(jwtSecret))
		{
			protected.GET("/me", h.GetProfile)
		}
	}
}
