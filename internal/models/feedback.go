package models

import (
	"time"

	"github.com/google/uuid"
)

type FeedbackStatus string

const (
	FeedbackStatusPending     FeedbackStatus = "PENDING"
	FeedbackStatusShortlisted FeedbackStatus = "SHORTLISTED"
	FeedbackStatusAccepted    FeedbackStatus = "ACCEPTED"
	FeedbackStatusRejected    FeedbackStatus = "REJECTED"
)

// Feedback is one contributor's paid submission on an idea. The composite
// unique index enforces at most one submission per (idea, contributor).
type Feedback struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	IdeaID        uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:ux_feedback_idea_contributor" json:"idea_id"`
	Idea          *Idea          `gorm:"foreignKey:IdeaID" json:"idea,omitempty"`
	ContributorID uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:ux_feedback_idea_contributor" json:"contributor_id"`
	Contributor   *User          `gorm:"foreignKey:ContributorID" json:"contributor,omitempty"`
	Body          string         `gorm:"type:text;not null" json:"body"`
	ExperienceTag string         `gorm:"size:100;not null" json:"experience_tag"`
	Status        FeedbackStatus `gorm:"size:20;not null;default:PENDING;index" json:"status"`
	CreatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Feedback) TableName() string {
	return "feedbacks"
}

// SubmitFeedbackRequest is the payload for POST /api/ideas/:id/feedback
type SubmitFeedbackRequest struct {
	Body          string  `json:"body" binding:"required"`
	ExperienceTag string  `json:"experience_tag" binding:"required"`
	Name          *string `json:"name"`
}
