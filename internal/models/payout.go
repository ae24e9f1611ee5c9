package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PayoutStatus string

const (
	PayoutStatusPending    PayoutStatus = "PENDING"
	PayoutStatusProcessing PayoutStatus = "PROCESSING"
	PayoutStatusSent       PayoutStatus = "SENT"
	PayoutStatusFailed     PayoutStatus = "FAILED"
)

// Payout is created exactly once when a feedback is accepted. Amount and
// currency are snapshots taken at acceptance and never recomputed.
type Payout struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	FeedbackID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"feedback_id"`
	Feedback      *Feedback       `gorm:"foreignKey:FeedbackID" json:"feedback,omitempty"`
	IdeaID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"idea_id"`
	ContributorID uuid.UUID       `gorm:"type:uuid;not null;index" json:"contributor_id"`
	Contributor   *User           `gorm:"foreignKey:ContributorID" json:"contributor,omitempty"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,9);not null" json:"amount"`
	Currency      Currency        `gorm:"size:10;not null" json:"currency"`
	Status        PayoutStatus    `gorm:"size:20;not null;default:PENDING;index" json:"status"`
	TxSignature   *string         `gorm:"size:128" json:"tx_signature,omitempty"`
	CreatedAt     time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Payout) TableName() string {
	return "payouts"
}
