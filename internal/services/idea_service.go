package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"idea-market/internal/apperr"
	"idea-market/internal/models"
	"idea-market/internal/repository"
	"idea-market/internal/validation"
)

// IdeaService owns the idea side of the settlement ledger: creation with
// its budget invariants and the two-phase funding flow.
type IdeaService struct {
	repo  *repository.Repository
	chain ChainClient
}

func NewIdeaService(repo *repository.Repository, chain ChainClient) *IdeaService {
	return &IdeaService{repo: repo, chain: chain}
}

func metadataJSON(fields map[string]interface{}) datatypes.JSON {
	raw, err := json.Marshal(fields)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(raw)
}

// CreateIdea validates the request, fixes maxAcceptedFeedbacks from the
// budget, and creates the idea in AWAITING_PAYMENT. Escalates the founder's
// role as a side effect of acting as a founder.
func (s *IdeaService) CreateIdea(ctx context.Context, founderID uuid.UUID, req *models.CreateIdeaRequest) (*models.Idea, error) {
	totalBudget, err := decimal.NewFromString(req.TotalBudget)
	if err != nil {
		return nil, apperr.Input("INVALID_BUDGET", "total budget is not a valid decimal")
	}
	reward, err := decimal.NewFromString(req.RewardPerAcceptedFeedback)
	if err != nil {
		return nil, apperr.Input("INVALID_REWARD", "reward per feedback is not a valid decimal")
	}

	if err := validation.CreateIdea(req.Title, req.Description, req.Context, req.Currency, totalBudget, reward); err != nil {
		return nil, err
	}

	// Fixed at creation; never recomputed from later state
	maxAccepted := int(totalBudget.Div(reward).Floor().IntPart())
	if maxAccepted < 1 {
		return nil, apperr.Input("INVALID_BUDGET", "budget does not cover a single reward")
	}

	idea := &models.Idea{
		ID:                        uuid.New(),
		FounderID:                 founderID,
		Title:                     req.Title,
		Description:               req.Description,
		Context:                   req.Context,
		Currency:                  models.Currency(req.Currency),
		TotalBudget:               totalBudget,
		RewardPerAcceptedFeedback: reward,
		MaxAcceptedFeedbacks:      maxAccepted,
		Status:                    models.IdeaStatusAwaitingPayment,
	}

	// Role escalation and the insert commit together: a failed creation
	// must not leave the founder promoted
	err = s.repo.WithTransaction(ctx, func(tx *repository.Repository) error {
		founder, err := tx.GetUserByID(ctx, founderID)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperr.NotFound("USER_NOT_FOUND", "founder not found")
			}
			return err
		}

		if err := escalateRole(ctx, tx, founder, models.UserRoleFounder); err != nil {
			return err
		}

		if err := tx.CreateIdea(ctx, idea); err != nil {
			return fmt.Errorf("failed to create idea: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Idea created: %s (budget %s %s, max %d accepts)", idea.ID, totalBudget, idea.Currency, maxAccepted)
	return idea, nil
}

// BuildFundingTransaction returns the unsigned founder→treasury transfer
// covering the idea's full budget. Only the founder may request it, and
// only before funding is confirmed.
func (s *IdeaService) BuildFundingTransaction(ctx context.Context, ideaID, callerID uuid.UUID) (*models.FundingTxResponse, error) {
	idea, err := s.repo.GetIdeaByID(ctx, ideaID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("IDEA_NOT_FOUND", "idea not found")
		}
		return nil, err
	}

	if idea.FounderID != callerID {
		return nil, apperr.Forbidden("NOT_FOUNDER", "only the founder can fund this idea")
	}
	if idea.EscrowTxSignature != nil {
		return nil, apperr.Conflict("ALREADY_FUNDED", "payment already confirmed for this idea")
	}

	encoded, err := s.chain.BuildFundingTransaction(ctx, idea.Founder.WalletAddress, idea.TotalBudget, idea.Currency)
	if err != nil {
		return nil, err
	}

	return &models.FundingTxResponse{
		Transaction: encoded,
		Amount:      idea.TotalBudget.String(),
		Currency:    string(idea.Currency),
	}, nil
}

// ConfirmFunding records a verified funding transaction and opens the idea.
// Idempotency guard: a second confirmation fails ALREADY_FUNDED without
// touching the recorded reference.
func (s *IdeaService) ConfirmFunding(ctx context.Context, ideaID, callerID uuid.UUID, txSignature string) (*models.Idea, error) {
	if err := validation.TxSignature(txSignature); err != nil {
		return nil, err
	}

	idea, err := s.repo.GetIdeaByID(ctx, ideaID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("IDEA_NOT_FOUND", "idea not found")
		}
		return nil, err
	}

	if idea.FounderID != callerID {
		return nil, apperr.Forbidden("NOT_FOUNDER", "only the founder can confirm payment")
	}
	if idea.EscrowTxSignature != nil {
		return nil, apperr.Conflict("ALREADY_FUNDED", "payment already confirmed for this idea")
	}

	// Transport failures surface as EXTERNAL_FAILURE so the founder can
	// retry confirmation; a missing or errored transaction does not.
	ok, err := s.chain.VerifyTransaction(ctx, txSignature)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Input("INVALID_TRANSACTION", "transaction is not finalized on-chain")
	}

	err = s.repo.WithTransaction(ctx, func(tx *repository.Repository) error {
		locked, err := tx.GetIdeaForUpdate(ctx, ideaID)
		if err != nil {
			return err
		}
		if locked.EscrowTxSignature != nil {
			return apperr.Conflict("ALREADY_FUNDED", "payment already confirmed for this idea")
		}

		locked.EscrowTxSignature = &txSignature
		locked.Status = models.IdeaStatusOpen
		if err := tx.UpdateIdea(ctx, locked); err != nil {
			return err
		}
		idea = locked

		return tx.CreateActivityLog(ctx, &models.IdeaActivityLog{
			ID:      uuid.New(),
			IdeaID:  ideaID,
			ActorID: callerID,
			Type:    models.ActivityPaymentConfirmed,
			Metadata: metadataJSON(map[string]interface{}{
				"tx_signature": txSignature,
			}),
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Funding confirmed for idea %s: %s", ideaID, txSignature)
	return idea, nil
}

// ListIdeas returns idea summaries newest-first, optionally filtered by status.
func (s *IdeaService) ListIdeas(ctx context.Context, status *models.IdeaStatus) ([]models.IdeaSummary, error) {
	ideas, err := s.repo.ListIdeas(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list ideas: %w", err)
	}

	summaries := make([]models.IdeaSummary, 0, len(ideas))
	for i := range ideas {
		idea := &ideas[i]
		count, err := s.repo.CountFeedbacks(ctx, idea.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count feedbacks: %w", err)
		}

		summary := models.IdeaSummary{
			ID:                        idea.ID.String(),
			Title:                     idea.Title,
			Description:               idea.Description,
			Status:                    string(idea.Status),
			Currency:                  string(idea.Currency),
			TotalBudget:               idea.TotalBudget.String(),
			RewardPerAcceptedFeedback: idea.RewardPerAcceptedFeedback.String(),
			MaxAcceptedFeedbacks:      idea.MaxAcceptedFeedbacks,
			AcceptedCount:             idea.AcceptedCount,
			FeedbackCount:             count,
			CreatedAt:                 idea.CreatedAt,
		}
		if idea.Founder != nil {
			summary.Founder = idea.Founder.Info()
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// GetIdea returns an idea with its feedbacks.
func (s *IdeaService) GetIdea(ctx context.Context, ideaID uuid.UUID) (*models.Idea, []models.Feedback, error) {
	idea, err := s.repo.GetIdeaByID(ctx, ideaID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil, apperr.NotFound("IDEA_NOT_FOUND", "idea not found")
		}
		return nil, nil, err
	}

	feedbacks, err := s.repo.ListFeedbacksByIdea(ctx, ideaID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list feedbacks: %w", err)
	}
	return idea, feedbacks, nil
}

// GetActivity returns an idea's append-only activity log.
func (s *IdeaService) GetActivity(ctx context.Context, ideaID uuid.UUID) ([]models.IdeaActivityLog, error) {
	if _, err := s.repo.GetIdeaByID(ctx, ideaID); err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("IDEA_NOT_FOUND", "idea not found")
		}
		return nil, err
	}
	return s.repo.ListActivityByIdea(ctx, ideaID)
}
