package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type IdeaStatus string

const (
	IdeaStatusAwaitingPayment IdeaStatus = "AWAITING_PAYMENT"
	IdeaStatusOpen            IdeaStatus = "OPEN"
	IdeaStatusClosed          IdeaStatus = "CLOSED"
)

type Currency string

const (
	CurrencySOL  Currency = "SOL"
	CurrencyUSDC Currency = "USDC"
)

// Idea is a founder's posting with an escrowed feedback budget.
//
// MaxAcceptedFeedbacks is fixed at creation as
// floor(TotalBudget / RewardPerAcceptedFeedback) and never recomputed.
// AcceptedCount may only grow, and never past MaxAcceptedFeedbacks.
// EscrowTxSignature is set exactly once, when funding is confirmed.
type Idea struct {
	ID                        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	FounderID                 uuid.UUID       `gorm:"type:uuid;not null;index" json:"founder_id"`
	Founder                   *User           `gorm:"foreignKey:FounderID" json:"founder,omitempty"`
	Title                     string          `gorm:"size:200;not null" json:"title"`
	Description               string          `gorm:"type:text;not null" json:"description"`
	Context                   *string         `gorm:"type:text" json:"context,omitempty"`
	Currency                  Currency        `gorm:"size:10;not null" json:"currency"`
	TotalBudget               decimal.Decimal `gorm:"type:decimal(20,9);not null" json:"total_budget"`
	RewardPerAcceptedFeedback decimal.Decimal `gorm:"type:decimal(20,9);not null" json:"reward_per_accepted_feedback"`
	MaxAcceptedFeedbacks      int             `gorm:"not null" json:"max_accepted_feedbacks"`
	AcceptedCount             int             `gorm:"not null;default:0" json:"accepted_count"`
	EscrowTxSignature         *string         `gorm:"size:128" json:"escrow_tx_signature,omitempty"`
	Status                    IdeaStatus      `gorm:"size:30;not null;default:AWAITING_PAYMENT;index" json:"status"`
	CreatedAt                 time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt                 time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Idea) TableName() string {
	return "ideas"
}

// CreateIdeaRequest is the payload for POST /api/ideas
type CreateIdeaRequest struct {
	Title                     string  `json:"title" binding:"required"`
	Description               string  `json:"description" binding:"required"`
	Context                   *string `json:"context"`
	Currency                  string  `json:"currency" binding:"required"`
	TotalBudget               string  `json:"total_budget" binding:"required"`
	RewardPerAcceptedFeedback string  `json:"reward_per_accepted_feedback" binding:"required"`
	Name                      *string `json:"name"`
}

// ConfirmFundingRequest is the payload for POST /api/ideas/:id/confirm-payment
type ConfirmFundingRequest struct {
	TxSignature string `json:"tx_signature" binding:"required"`
}

// FundingTxResponse carries the unsigned funding transaction back to the client
type FundingTxResponse struct {
	Transaction string `json:"transaction"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
}

// IdeaSummary is the list-view shape with aggregate feedback counts
type IdeaSummary struct {
	ID                        string    `json:"id"`
	Title                     string    `json:"title"`
	Description               string    `json:"description"`
	Status                    string    `json:"status"`
	Currency                  string    `json:"currency"`
	TotalBudget               string    `json:"total_budget"`
	RewardPerAcceptedFeedback string    `json:"reward_per_accepted_feedback"`
	MaxAcceptedFeedbacks      int       `json:"max_accepted_feedbacks"`
	AcceptedCount             int       `json:"accepted_count"`
	FeedbackCount             int64     `json:"feedback_count"`
	Founder                   UserInfo  `json:"founder"`
	CreatedAt                 time.Time `json:"created_at"`
}
