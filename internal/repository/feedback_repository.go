package repository

import (
	"context"

	"github.com/google/uuid"

	"idea-market/internal/models"
)

// CreateFeedback creates a new feedback
func (r *Repository) CreateFeedback(ctx context.Context, feedback *models.Feedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

// GetFeedbackByID retrieves a feedback with its idea and contributor
func (r *Repository) GetFeedbackByID(ctx context.Context, feedbackID uuid.UUID) (*models.Feedback, error) {
	var feedback models.Feedback
	err := r.db.WithContext(ctx).
		Preload("Idea").
		Preload("Contributor").
		Where("id = ?", feedbackID).
		First(&feedback).Error
	if err != nil {
		return nil, err
	}
	return &feedback, nil
}

// GetFeedbackForUpdate retrieves a feedback under a row-level write lock
func (r *Repository) GetFeedbackForUpdate(ctx context.Context, feedbackID uuid.UUID) (*models.Feedback, error) {
	var feedback models.Feedback
	err := r.forUpdate(r.db.WithContext(ctx)).
		Where("id = ?", feedbackID).
		First(&feedback).Error
	if err != nil {
		return nil, err
	}
	return &feedback, nil
}

// UpdateFeedback persists changes to a feedback
func (r *Repository) UpdateFeedback(ctx context.Context, feedback *models.Feedback) error {
	return r.db.WithContext(ctx).Save(feedback).Error
}

// FeedbackExists reports whether the contributor already submitted feedback
// for the idea
func (r *Repository) FeedbackExists(ctx context.Context, ideaID, contributorID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Feedback{}).
		Where("idea_id = ? AND contributor_id = ?", ideaID, contributorID).
		Count(&count).Error
	return count > 0, err
}

// ListFeedbacksByIdea retrieves all feedbacks for an idea, oldest first
func (r *Repository) ListFeedbacksByIdea(ctx context.Context, ideaID uuid.UUID) ([]models.Feedback, error) {
	var feedbacks []models.Feedback
	err := r.db.WithContext(ctx).
		Preload("Contributor").
		Where("idea_id = ?", ideaID).
		Order("created_at ASC").
		Find(&feedbacks).Error
	if err != nil {
		return nil, err
	}
	return feedbacks, nil
}

// ListFeedbacksByContributor retrieves a contributor's feedbacks with their
// ideas and payouts, newest first
func (r *Repository) ListFeedbacksByContributor(ctx context.Context, contributorID uuid.UUID) ([]models.Feedback, error) {
	var feedbacks []models.Feedback
	err := r.db.WithContext(ctx).
		Preload("Idea").
		Where("contributor_id = ?", contributorID).
		Order("created_at DESC").
		Find(&feedbacks).Error
	if err != nil {
		return nil, err
	}
	return feedbacks, nil
}
