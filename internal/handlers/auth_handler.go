package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"idea-market/internal/auth"
	"idea-market/internal/services"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
}

func NewAuthHandler(authService *services.AuthService, userService *services.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

// IssueChallenge issues a one-time nonce for the wallet to sign.
// POST /auth/challenge
func (h *AuthHandler) IssueChallenge(c *gin.Context) {
	var req struct {
		WalletAddress string `json:"wallet_address" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	challenge, err := h.authService.IssueChallenge(c.Request.Context(), req.WalletAddress)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"nonce":      challenge.Nonce,
		"message":    string(services.LoginMessage(challenge.Nonce)),
		"expires_at": challenge.ExpiresAt,
	})
}

// WalletLogin verifies a signed challenge and returns a session token.
// POST /auth/wallet
func (h *AuthHandler) WalletLogin(c *gin.Context) {
	var req struct {
		WalletAddress string  `json:"wallet_address" binding:"required"`
		Nonce         string  `json:"nonce" binding:"required"`
		Signature     string  `json:"signature" binding:"required"`
		Name          *string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.VerifyLogin(c.Request.Context(), req.WalletAddress, req.Nonce, req.Signature, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := auth.GenerateToken(user.ID, user.WalletAddress)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// GetMe returns the currently authenticated user's profile
// GET /auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	wallet, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), wallet)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
