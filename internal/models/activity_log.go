package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ActivityType string

const (
	ActivityFeedbackSubmitted   ActivityType = "FEEDBACK_SUBMITTED"
	ActivityFeedbackShortlisted ActivityType = "FEEDBACK_SHORTLISTED"
	ActivityFeedbackAccepted    ActivityType = "FEEDBACK_ACCEPTED"
	ActivityFeedbackRejected    ActivityType = "FEEDBACK_REJECTED"
	ActivityPaymentConfirmed    ActivityType = "PAYMENT_CONFIRMED"
	ActivityPayoutSent          ActivityType = "PAYOUT_SENT"
)

// IdeaActivityLog is an append-only audit record of a state transition,
// written in the same transaction as the transition itself.
type IdeaActivityLog struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	IdeaID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"idea_id"`
	ActorID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"actor_id"`
	Type      ActivityType   `gorm:"size:40;not null" json:"type"`
	Metadata  datatypes.JSON `gorm:"type:jsonb" json:"metadata"`
	CreatedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (IdeaActivityLog) TableName() string {
	return "idea_activity_logs"
}
