package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"idea-market/internal/apperr"
	"idea-market/internal/models"
	"idea-market/internal/repository"
	"idea-market/internal/validation"
)

// UserService resolves wallet addresses to durable identities and owns the
// monotonic role-escalation policy.
type UserService struct {
	repo *repository.Repository
}

func NewUserService(repo *repository.Repository) *UserService {
	return &UserService{repo: repo}
}

// Resolve maps a wallet address to its identity, lazily creating one with
// the CONTRIBUTOR role on first sight. A supplied display name that differs
// from the stored one is persisted. Never escalates roles.
func (s *UserService) Resolve(ctx context.Context, walletAddress string, name *string) (*models.User, error) {
	if err := validation.WalletAddress(walletAddress); err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByWallet(ctx, walletAddress)
	if repository.IsNotFound(err) {
		user = &models.User{
			ID:            uuid.New(),
			WalletAddress: walletAddress,
			Name:          name,
			Role:          models.UserRoleContributor,
		}
		if err := s.repo.CreateUser(ctx, user); err != nil {
			if repository.IsUniqueViolation(err) {
				// Lost a concurrent first-sight race; the row exists now
				return s.repo.GetUserByWallet(ctx, walletAddress)
			}
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		log.Printf("New user created: wallet=%s (ID: %s)", walletAddress, user.ID)
		return user, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if name != nil && (user.Name == nil || *user.Name != *name) {
		user.Name = name
		if err := s.repo.UpdateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to update user name: %w", err)
		}
	}

	return user, nil
}

// EscalateRole moves a user's role toward acted. The lattice only climbs:
// CONTRIBUTOR or FOUNDER plus the other capacity becomes BOTH, and BOTH
// never changes.
func (s *UserService) EscalateRole(ctx context.Context, user *models.User, acted models.UserRole) error {
	return escalateRole(ctx, s.repo, user, acted)
}

// escalateRole is the repo-parameterized form so callers can run the
// escalation inside their own transaction.
func escalateRole(ctx context.Context, repo *repository.Repository, user *models.User, acted models.UserRole) error {
	if user.Role == models.UserRoleBoth || user.Role == acted {
		return nil
	}

	user.Role = models.UserRoleBoth
	if err := repo.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to escalate role: %w", err)
	}
	log.Printf("Role escalated for user %s: now %s", user.ID, user.Role)
	return nil
}

// UserProfile aggregates an identity's marketplace history
type UserProfile struct {
	User              models.UserInfo            `json:"user"`
	Role              models.UserRole            `json:"role"`
	IdeasPosted       []models.Idea              `json:"ideas_posted"`
	Feedbacks         []models.Feedback          `json:"feedbacks"`
	FeedbacksAccepted int                        `json:"feedbacks_accepted"`
	TotalEarned       map[models.Currency]string `json:"total_earned"`
}

// GetProfile returns a wallet's identity with aggregate stats: ideas
// posted, feedback given and accepted, and total payout amounts earned.
func (s *UserService) GetProfile(ctx context.Context, walletAddress string) (*UserProfile, error) {
	if err := validation.WalletAddress(walletAddress); err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByWallet(ctx, walletAddress)
	if repository.IsNotFound(err) {
		return nil, apperr.NotFound("USER_NOT_FOUND", "user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	ideas, err := s.repo.ListIdeasByFounder(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ideas: %w", err)
	}

	feedbacks, err := s.repo.ListFeedbacksByContributor(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedbacks: %w", err)
	}

	accepted := 0
	for _, f := range feedbacks {
		if f.Status == models.FeedbackStatusAccepted {
			accepted++
		}
	}

	totals, err := s.repo.SumPayoutsByContributor(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to total payouts: %w", err)
	}
	earned := make(map[models.Currency]string, len(totals))
	for currency, total := range totals {
		earned[currency] = total.String()
	}
	if len(earned) == 0 {
		earned[models.CurrencySOL] = decimal.Zero.String()
	}

	return &UserProfile{
		User:              user.Info(),
		Role:              user.Role,
		IdeasPosted:       ideas,
		Feedbacks:         feedbacks,
		FeedbacksAccepted: accepted,
		TotalEarned:       earned,
	}, nil
}
