package repository

import (
	"context"

	"github.com/google/uuid"

	"idea-market/internal/models"
)

// CreateUser creates a new user
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetUserByID retrieves a user by ID
func (r *Repository) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByWallet retrieves a user by wallet address
func (r *Repository) GetUserByWallet(ctx context.Context, walletAddress string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("wallet_address = ?", walletAddress).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser persists changes to a user
func (r *Repository) UpdateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// CreateAuthChallenge stores a new login nonce
func (r *Repository) CreateAuthChallenge(ctx context.Context, challenge *models.AuthChallenge) error {
	return r.db.WithContext(ctx).Create(challenge).Error
}

// GetAuthChallengeByNonce retrieves a challenge by its nonce
func (r *Repository) GetAuthChallengeByNonce(ctx context.Context, nonce string) (*models.AuthChallenge, error) {
	var challenge models.AuthChallenge
	err := r.db.WithContext(ctx).Where("nonce = ?", nonce).First(&challenge).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

// UpdateAuthChallenge persists changes to a challenge
func (r *Repository) UpdateAuthChallenge(ctx context.Context, challenge *models.AuthChallenge) error {
	return r.db.WithContext(ctx).Save(challenge).Error
}
