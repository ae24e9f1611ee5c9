package models

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleContributor UserRole = "CONTRIBUTOR"
	UserRoleFounder     UserRole = "FOUNDER"
	UserRoleBoth        UserRole = "BOTH"
)

// User represents a wallet-backed identity. Created lazily on first
// interaction; the role only ever escalates toward BOTH.
type User struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	WalletAddress string    `gorm:"size:64;uniqueIndex;not null" json:"wallet_address"`
	Name          *string   `gorm:"size:255" json:"name,omitempty"`
	Role          UserRole  `gorm:"size:20;not null;default:CONTRIBUTOR" json:"role"`
	CreatedAt     time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// UserInfo is the trimmed user shape embedded in API responses
type UserInfo struct {
	ID            string  `json:"id"`
	Name          *string `json:"name"`
	WalletAddress string  `json:"wallet_address"`
}

func (u *User) Info() UserInfo {
	return UserInfo{
		ID:            u.ID.String(),
		Name:          u.Name,
		WalletAddress: u.WalletAddress,
	}
}
