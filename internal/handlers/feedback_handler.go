package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"idea-market/internal/auth"
	"idea-market/internal/models"
	"idea-market/internal/services"
)

// FeedbackHandler handles feedback submission and review endpoints
type FeedbackHandler struct {
	feedbackService *services.FeedbackService
}

func NewFeedbackHandler(feedbackService *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

// SubmitFeedback submits feedback on an open idea
// POST /api/ideas/:id/feedback
func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
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

	var req models.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	feedback, err := h.feedbackService.SubmitFeedback(c.Request.Context(), ideaID, userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"feedback": feedback})
}

func (h *FeedbackHandler) transition(c *gin.Context, target models.FeedbackStatus) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	feedbackID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid feedback id"})
		return
	}

	result, err := h.feedbackService.TransitionFeedback(c.Request.Context(), feedbackID, userID, target)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// AcceptFeedback accepts a feedback and creates its payout
// POST /api/feedback/:id/accept
func (h *FeedbackHandler) AcceptFeedback(c *gin.Context) {
	h.transition(c, models.FeedbackStatusAccepted)
}

// ShortlistFeedback shortlists a pending feedback
// POST /api/feedback/:id/shortlist
func (h *FeedbackHandler) ShortlistFeedback(c *gin.Context) {
	h.transition(c, models.FeedbackStatusShortlisted)
}

// RejectFeedback rejects a feedback
// POST /api/feedback/:id/reject
func (h *FeedbackHandler) RejectFeedback(c *gin.Context) {
	h.transition(c, models.FeedbackStatusRejected)
}
