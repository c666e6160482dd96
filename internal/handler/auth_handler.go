package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medcontrol-backend/internal/middleware"
	"medcontrol-backend/internal/service"
	"medcontrol-backend/pkg/utils"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// LoginRequest carries the email in the username field
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles user authentication
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	response, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, response)
}

// Me returns the authenticated user
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	utils.SuccessResponse(c, service.NewUserResponse(user))
}

// Logout acknowledges the request; tokens are stateless and expire on their own
func (h *AuthHandler) Logout(c *gin.Context) {
	utils.MessageResponse(c, "Logged out successfully")
}
