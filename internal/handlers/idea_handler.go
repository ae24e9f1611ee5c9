package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"idea-market/internal/auth"
	"idea-market/internal/models"
	"idea-market/internal/services"
)

// IdeaHandler handles idea lifecycle endpoints
type IdeaHandler struct {
	ideaService *services.IdeaService
}

func NewIdeaHandler(ideaService *services.IdeaService) *IdeaHandler {
	return &IdeaHandler{ideaService: ideaService}
}

// ListIdeas lists ideas, optionally filtered by status
// GET /api/ideas
func (h *IdeaHandler) ListIdeas(c *gin.Context) {
	var status *models.IdeaStatus
	if raw := c.Query("status"); raw != "" {
		s := models.IdeaStatus(raw)
		status = &s
	}

	ideas, err := h.ideaService.ListIdeas(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ideas": ideas})
}

// GetIdea retrieves an idea with its feedbacks
// GET /api/ideas/:id
func (h *IdeaHandler) GetIdea(c *gin.Context) {
	ideaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid idea id"})
		return
	}

	idea, feedbacks, err := h.ideaService.GetIdea(c.Request.Context(), ideaID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"idea":      idea,
		"feedbacks": feedbacks,
	})
}

// CreateIdea creates a new idea awaiting escrow funding
// POST /api/ideas
func (h *IdeaHandler) CreateIdea(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.CreateIdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	idea, err := h.ideaService.CreateIdea(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"idea": idea})
}

// BuildPaymentTx returns the unsigned escrow funding transaction
// POST /api/ideas/:id/payment-tx
func (h *IdeaHandler) BuildPaymentTx(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ideaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid idea id"})
		return
	}

	resp, err := h.ideaService.BuildFundingTransaction(c.Request.Context(), ideaID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ConfirmPayment verifies the funding transaction and opens the idea
// POST /api/ideas/:id/confirm-payment
func (h *IdeaHandler) ConfirmPayment(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ideaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid idea id"})
		return
	}

	var req models.ConfirmFundingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	idea, err := h.ideaService.ConfirmFunding(c.Request.Context(), ideaID, userID, req.TxSignature)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"idea": idea})
}

// GetActivity lists an idea's activity log
// GET /api/ideas/:id/activity
func (h *IdeaHandler) GetActivity(c *gin.Context) {
	ideaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid idea id"})
		return
	}

	entries, err := h.ideaService.GetActivity(c.Request.Context(), ideaID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"activity": entries})
}
