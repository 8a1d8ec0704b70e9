package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dpruessner/lambda-event-to-http/internal/middleware"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *middleware.AuthService
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *middleware.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// TokenRequest represents the demo token request body
type TokenRequest struct {
	Username string   `json:"username" binding:"required"`
	Roles    []string `json:"roles"`
}

// TokenResponse represents the issued token
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserInfo  `json:"user"`
}

// UserInfo represents user information
type UserInfo struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// Token issues a demo JWT for the supplied username. There is no user store
// behind this endpoint; any username gets a token.
func (h *AuthHandler) Token(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	if len(req.Roles) == 0 {
		req.Roles = []string{"user"}
	}

	userID := uuid.New().String()
	token, err := h.authService.GenerateToken(userID, req.Username, req.Roles)
	if err != nil {
		c.JSON(http.StatusInternalServerError, middleware.ErrorResponse{
			Error:   "Failed to generate token",
			Message: err.Error(),
		})
		return
	}

	// Read the expiry back from the signed token
	claims, err := h.authService.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, middleware.ErrorResponse{
			Error:   "Failed to validate issued token",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, TokenResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User: UserInfo{
			ID:       userID,
			Username: req.Username,
			Roles:    req.Roles,
		},
	})
}

// Me returns information about the currently authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, username, roles, ok := middleware.GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, middleware.ErrorResponse{
			Error: "Not authenticated",
		})
		return
	}

	c.JSON(http.StatusOK, UserInfo{
		ID:       userID,
		Username: username,
		Roles:    roles,
	})
}
