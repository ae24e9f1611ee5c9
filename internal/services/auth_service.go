package services

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"

	"idea-market/internal/apperr"
	"idea-market/internal/models"
	"idea-market/internal/repository"
	"idea-market/internal/validation"
)

const challengeTTL = 5 * time.Minute

// AuthService issues one-time login challenges and verifies wallet
// signatures over them. A bare wallet address in a request body is never
// trusted; possession of the key must be proven per login.
type AuthService struct {
	repo  *repository.Repository
	users *UserService
}

func NewAuthService(repo *repository.Repository, users *UserService) *AuthService {
	return &AuthService{repo: repo, users: users}
}

// LoginMessage is the exact byte string the wallet must sign for a nonce.
func LoginMessage(nonce string) []byte {
	return []byte(fmt.Sprintf("Sign this message to authenticate with idea-market: %s", nonce))
}

// IssueChallenge creates a short-lived nonce for the wallet to sign.
func (s *AuthService) IssueChallenge(ctx context.Context, walletAddress string) (*models.AuthChallenge, error) {
	if err := validation.WalletAddress(walletAddress); err != nil {
		return nil, err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	challenge := &models.AuthChallenge{
		ID:            uuid.New(),
		WalletAddress: walletAddress,
		Nonce:         base58.Encode(raw),
		ExpiresAt:     time.Now().Add(challengeTTL),
	}

	if err := s.repo.CreateAuthChallenge(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to store challenge: %w", err)
	}
	return challenge, nil
}

// VerifyLogin checks the ed25519 signature over an outstanding challenge,
// consumes the challenge, and resolves the wallet to an identity.
func (s *AuthService) VerifyLogin(ctx context.Context, walletAddress, nonce, signature string, name *string) (*models.User, error) {
	if err := validation.WalletAddress(walletAddress); err != nil {
		return nil, err
	}

	challenge, err := s.repo.GetAuthChallengeByNonce(ctx, nonce)
	if repository.IsNotFound(err) {
		return nil, apperr.Forbidden("CHALLENGE_UNKNOWN", "unknown login challenge")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up challenge: %w", err)
	}

	if challenge.WalletAddress != walletAddress {
		return nil, apperr.Forbidden("CHALLENGE_MISMATCH", "challenge was issued for a different wallet")
	}
	if challenge.ConsumedAt != nil {
		return nil, apperr.Forbidden("CHALLENGE_CONSUMED", "login challenge already used")
	}
	if time.Now().After(challenge.ExpiresAt) {
		return nil, apperr.Forbidden("CHALLENGE_EXPIRED", "login challenge expired")
	}

	pubKey, err := base58.Decode(walletAddress)
	if err != nil || len(pubKey) != ed25519.PublicKeySize {
		return nil, apperr.Input("ADDRESS_INVALID", "invalid public key format")
	}

	// Wallets return the signature as base58 or hex depending on the client
	sig, err := base58.Decode(signature)
	if err != nil {
		sig, err = hex.DecodeString(signature)
		if err != nil {
			return nil, apperr.Input("SIGNATURE_INVALID", "invalid signature format")
		}
	}

	if !ed25519.Verify(pubKey, LoginMessage(nonce), sig) {
		return nil, apperr.Forbidden("SIGNATURE_REJECTED", "signature verification failed")
	}

	now := time.Now()
	challenge.ConsumedAt = &now
	if err := s.repo.UpdateAuthChallenge(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to consume challenge: %w", err)
	}

	return s.users.Resolve(ctx, walletAddress, name)
}
