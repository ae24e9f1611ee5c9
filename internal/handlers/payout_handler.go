package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"idea-market/internal/services"
)

// PayoutHandler handles payout disbursement endpoints
type PayoutHandler struct {
	payoutService *services.PayoutService
}

func NewPayoutHandler(payoutService *services.PayoutService) *PayoutHandler {
	return &PayoutHandler{payoutService: payoutService}
}

// SendPayout disburses a pending payout from the treasury
// POST /api/payouts/:id/send
func (h *PayoutHandler) SendPayout(c *gin.Context) {
	payoutID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payout id"})
		return
	}

	payout, err := h.payoutService.SendPayout(c.Request.Context(), payoutID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payout": payout})
}

// GetPayout retrieves a payout
// GET /api/payouts/:id
func (h *PayoutHandler) GetPayout(c *gin.Context) {
	payoutID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payout id"})
		return
	}

	payout, err := h.payoutService.GetPayout(c.Request.Context(), payoutID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payout": payout})
}
