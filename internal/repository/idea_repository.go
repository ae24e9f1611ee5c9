package repository

import (
	"context"

	"github.com/google/uuid"

	"idea-market/internal/models"
)

// CreateIdea creates a new idea
func (r *Repository) CreateIdea(ctx context.Context, idea *models.Idea) error {
	return r.db.WithContext(ctx).Create(idea).Error
}

// GetIdeaByID retrieves an idea with its founder
func (r *Repository) GetIdeaByID(ctx context.Context, ideaID uuid.UUID) (*models.Idea, error) {
	var idea models.Idea
	err := r.db.WithContext(ctx).Preload("Founder").Where("id = ?", ideaID).First(&idea).Error
	if err != nil {
		return nil, err
	}
	return &idea, nil
}

// GetIdeaForUpdate retrieves an idea under a row-level write lock. Must be
// called inside a transaction; serializes concurrent accepts against the
// same idea.
func (r *Repository) GetIdeaForUpdate(ctx context.Context, ideaID uuid.UUID) (*models.Idea, error) {
	var idea models.Idea
	err := r.forUpdate(r.db.WithContext(ctx)).
		Where("id = ?", ideaID).
		First(&idea).Error
	if err != nil {
		return nil, err
	}
	return &idea, nil
}

// UpdateIdea persists changes to an idea
func (r *Repository) UpdateIdea(ctx context.Context, idea *models.Idea) error {
	return r.db.WithContext(ctx).Save(idea).Error
}

// ListIdeas retrieves ideas newest-first, optionally filtered by status
func (r *Repository) ListIdeas(ctx context.Context, status *models.IdeaStatus) ([]models.Idea, error) {
	var ideas []models.Idea
	query := r.db.WithContext(ctx).Preload("Founder").Order("created_at DESC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if err := query.Find(&ideas).Error; err != nil {
		return nil, err
	}
	return ideas, nil
}

// ListIdeasByFounder retrieves a founder's ideas newest-first
func (r *Repository) ListIdeasByFounder(ctx context.Context, founderID uuid.UUID) ([]models.Idea, error) {
	var ideas []models.Idea
	err := r.db.WithContext(ctx).
		Where("founder_id = ?", founderID).
		Order("created_at DESC").
		Find(&ideas).Error
	if err != nil {
		return nil, err
	}
	return ideas, nil
}

// CountFeedbacks returns the number of feedbacks submitted for an idea
func (r *Repository) CountFeedbacks(ctx context.Context, ideaID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Feedback{}).
		Where("idea_id = ?", ideaID).
		Count(&count).Error
	return count, err
}

// CreateActivityLog appends an activity record
func (r *Repository) CreateActivityLog(ctx context.Context, entry *models.IdeaActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListActivityByIdea retrieves an idea's activity log newest-first
func (r *Repository) ListActivityByIdea(ctx context.Context, ideaID uuid.UUID) ([]models.IdeaActivityLog, error) {
	var entries []models.IdeaActivityLog
	err := r.db.WithContext(ctx).
		Where("idea_id = ?", ideaID).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
