package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"idea-market/internal/auth"
	"idea-market/internal/models"
	"idea-market/internal/services"
)

// UserHandler handles identity and diagnostics endpoints
type UserHandler struct {
	userService *services.UserService
	chain       services.ChainClient
}

func NewUserHandler(userService *services.UserService, chain services.ChainClient) *UserHandler {
	return &UserHandler{userService: userService, chain: chain}
}

// GetProfile returns a wallet's public profile with aggregate stats
// GET /api/users/:wallet
func (h *UserHandler) GetProfile(c *gin.Context) {
	profile, err := h.userService.GetProfile(c.Request.Context(), c.Param("wallet"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetWalletBalance returns the caller's on-chain balance. Diagnostics only.
// GET /api/wallet/balance
func (h *UserHandler) GetWalletBalance(c *gin.Context) {
	wallet, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	currency := models.Currency(c.DefaultQuery("currency", string(models.CurrencySOL)))
	if currency != models.CurrencySOL && currency != models.CurrencyUSDC {
		c.JSON(http.StatusBadRequest, gin.H{"error": "currency must be SOL or USDC"})
		return
	}

	balance, err := h.chain.GetBalance(c.Request.Context(), wallet, currency)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"wallet_address": wallet,
		"currency":       currency,
		"balance":        balance.String(),
	})
}
