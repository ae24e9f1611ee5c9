package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"idea-market/internal/apperr"
	"idea-market/internal/models"
	"idea-market/internal/repository"
)

// PayoutService disburses accepted-feedback rewards from the treasury.
type PayoutService struct {
	repo  *repository.Repository
	chain ChainClient
}

func NewPayoutService(repo *repository.Repository, chain ChainClient) *PayoutService {
	return &PayoutService{repo: repo, chain: chain}
}

// SendPayout disburses a payout to the contributor's wallet and records the
// transaction signature. The payout is claimed under a row lock before any
// chain call: the PENDING/FAILED to PROCESSING flip is the serialization
// point, so two concurrent sends can never both reach the treasury. SENT is
// terminal; a FAILED payout may be retried by calling this again. The
// operation never retries the chain call itself.
func (s *PayoutService) SendPayout(ctx context.Context, payoutID uuid.UUID) (*models.Payout, error) {
	var payout *models.Payout
	var contributor *models.User

	err := s.repo.WithTransaction(ctx, func(tx *repository.Repository) error {
		locked, err := tx.GetPayoutForUpdate(ctx, payoutID)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperr.NotFound("PAYOUT_NOT_FOUND", "payout not found")
			}
			return err
		}

		switch locked.Status {
		case models.PayoutStatusSent:
			return apperr.Conflict("ALREADY_SETTLED", fmt.Sprintf("payout is already %s", locked.Status))
		case models.PayoutStatusProcessing:
			return apperr.Conflict("SETTLEMENT_IN_PROGRESS", "payout disbursement is already in flight")
		}

		contributor, err = tx.GetUserByID(ctx, locked.ContributorID)
		if err != nil {
			return fmt.Errorf("failed to load contributor: %w", err)
		}

		locked.Status = models.PayoutStatusProcessing
		if err := tx.UpdatePayout(ctx, locked); err != nil {
			return err
		}
		payout = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	txSignature, err := s.chain.DisburseFromTreasury(ctx, contributor.WalletAddress, payout.Amount, payout.Currency)
	if err != nil {
		// Best-effort FAILED mark; if it fails too, log it and surface the
		// original disbursement error, leaving the payout for reconciliation
		payout.Status = models.PayoutStatusFailed
		if markErr := s.repo.UpdatePayout(ctx, payout); markErr != nil {
			log.Printf("Error marking payout %s failed: %v", payoutID, markErr)
		}
		return nil, err
	}

	err = s.repo.WithTransaction(ctx, func(tx *repository.Repository) error {
		locked, err := tx.GetPayoutForUpdate(ctx, payoutID)
		if err != nil {
			return err
		}

		locked.Status = models.PayoutStatusSent
		locked.TxSignature = &txSignature
		if err := tx.UpdatePayout(ctx, locked); err != nil {
			return err
		}
		locked.Contributor = contributor
		payout = locked

		return tx.CreateActivityLog(ctx, &models.IdeaActivityLog{
			ID:      uuid.New(),
			IdeaID:  payout.IdeaID,
			ActorID: payout.ContributorID,
			Type:    models.ActivityPayoutSent,
			Metadata: metadataJSON(map[string]interface{}{
				"payout_id":    payout.ID.String(),
				"tx_signature": txSignature,
				"amount":       payout.Amount.String(),
				"currency":     string(payout.Currency),
			}),
		})
	})
	if err != nil {
		// The disbursement succeeded; never lose that fact
		log.Printf("Error recording sent payout %s (tx %s): %v", payoutID, txSignature, err)
		return nil, apperr.Internal("disbursement sent but not recorded; manual reconciliation required", err)
	}

	log.Printf("Payout %s sent: %s %s to %s (tx %s)",
		payoutID, payout.Amount, payout.Currency, payout.Contributor.WalletAddress, txSignature)
	return payout, nil
}

// GetPayout returns a payout by ID.
func (s *PayoutService) GetPayout(ctx context.Context, payoutID uuid.UUID) (*models.Payout, error) {
	payout, err := s.repo.GetPayoutByID(ctx, payoutID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("PAYOUT_NOT_FOUND", "payout not found")
		}
		return nil, err
	}
	return payout, nil
}
