package models

import (
	"time"

	"github.com/google/uuid"
)

// AuthChallenge is a one-time login nonce. The wallet must sign the nonce
// to obtain a session token; consumed challenges cannot be replayed.
type AuthChallenge struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	WalletAddress string     `gorm:"size:64;not null;index" json:"wallet_address"`
	Nonce         string     `gorm:"size:64;uniqueIndex;not null" json:"nonce"`
	ExpiresAt     time.Time  `gorm:"not null" json:"expires_at"`
	ConsumedAt    *time.Time `json:"consumed_at,omitempty"`
	CreatedAt     time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (AuthChallenge) TableName() string {
	return "auth_challenges"
}
