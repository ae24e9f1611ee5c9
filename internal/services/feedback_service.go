package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"idea-market/internal/apperr"
	"idea-market/internal/models"
	"idea-market/internal/repository"
	"idea-market/internal/validation"
)

// FeedbackService owns feedback submission and the founder-driven review
// state machine, including the atomic accept+payout transition.
type FeedbackService struct {
	repo *repository.Repository
}

func NewFeedbackService(repo *repository.Repository) *FeedbackService {
	return &FeedbackService{repo: repo}
}

// SubmitFeedback creates a contributor's single pending feedback on an open
// idea. The duplicate check and insert run in one transaction; the
// composite unique index backstops races that slip past the check.
func (s *FeedbackService) SubmitFeedback(ctx context.Context, ideaID, contributorID uuid.UUID, req *models.SubmitFeedbackRequest) (*models.Feedback, error) {
	if err := validation.SubmitFeedback(req.Body, req.ExperienceTag); err != nil {
		return nil, err
	}

	feedback := &models.Feedback{
		ID:            uuid.New(),
		IdeaID:        ideaID,
		ContributorID: contributorID,
		Body:          req.Body,
		ExperienceTag: req.ExperienceTag,
		Status:        models.FeedbackStatusPending,
	}

	err := s.repo.WithTransaction(ctx, func(tx *repository.Repository) error {
		idea, err := tx.GetIdeaByID(ctx, ideaID)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperr.NotFound("IDEA_NOT_FOUND", "idea not found")
			}
			return err
		}

		if idea.Status != models.IdeaStatusOpen {
			return apperr.Conflict("NOT_ACCEPTING_FEEDBACK", "idea is not accepting feedback")
		}
		if idea.FounderID == contributorID {
			return apperr.Forbidden("OWN_IDEA", "founders cannot submit feedback on their own idea")
		}

		exists, err := tx.FeedbackExists(ctx, ideaID, contributorID)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Conflict("DUPLICATE_SUBMISSION", "feedback already submitted for this idea")
		}

		if err := tx.CreateFeedback(ctx, feedback); err != nil {
			if repository.IsUniqueViolation(err) {
				return apperr.Conflict("DUPLICATE_SUBMISSION", "feedback already submitted for this idea")
			}
			return err
		}

		return tx.CreateActivityLog(ctx, &models.IdeaActivityLog{
			ID:      uuid.New(),
			IdeaID:  ideaID,
			ActorID: contributorID,
			Type:    models.ActivityFeedbackSubmitted,
			Metadata: metadataJSON(map[string]interface{}{
				"feedback_id": feedback.ID.String(),
			}),
		})
	})
	if err != nil {
		return nil, err
	}

	return feedback, nil
}

// TransitionResult carries the updated feedback and, on acceptance, the
// payout snapshot created alongside it.
type TransitionResult struct {
	Feedback *models.Feedback `json:"feedback"`
	Payout   *models.Payout   `json:"payout,omitempty"`
}

// TransitionFeedback moves a feedback to target on the founder's authority.
// Accepting additionally increments the idea's accepted count and creates
// the payout, all inside one transaction with the idea row locked so two
// concurrent accepts cannot both pass the budget check.
func (s *FeedbackService) TransitionFeedback(ctx context.Context, feedbackID, actorID uuid.UUID, target models.FeedbackStatus) (*TransitionResult, error) {
	switch target {
	case models.FeedbackStatusShortlisted, models.FeedbackStatusAccepted, models.FeedbackStatusRejected:
	default:
		return nil, apperr.Input("INVALID_TARGET", fmt.Sprintf("cannot transition feedback to %s", target))
	}

	result := &TransitionResult{}

	err := s.repo.WithTransaction(ctx, func(tx *repository.Repository) error {
		feedback, err := tx.GetFeedbackForUpdate(ctx, feedbackID)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperr.NotFound("FEEDBACK_NOT_FOUND", "feedback not found")
			}
			return err
		}

		idea, err := tx.GetIdeaForUpdate(ctx, feedback.IdeaID)
		if err != nil {
			return err
		}

		if idea.FounderID != actorID {
			return apperr.Forbidden("NOT_FOUNDER", "only the founder can review feedback")
		}

		switch target {
		case models.FeedbackStatusShortlisted:
			if feedback.Status != models.FeedbackStatusPending {
				return apperr.Conflict("INVALID_TRANSITION", fmt.Sprintf("cannot shortlist %s feedback", feedback.Status))
			}
			feedback.Status = models.FeedbackStatusShortlisted
			if err := tx.UpdateFeedback(ctx, feedback); err != nil {
				return err
			}
			if err := tx.CreateActivityLog(ctx, &models.IdeaActivityLog{
				ID:      uuid.New(),
				IdeaID:  idea.ID,
				ActorID: actorID,
				Type:    models.ActivityFeedbackShortlisted,
				Metadata: metadataJSON(map[string]interface{}{
					"feedback_id": feedback.ID.String(),
				}),
			}); err != nil {
				return err
			}

		case models.FeedbackStatusRejected:
			if feedback.Status == models.FeedbackStatusAccepted {
				return apperr.Conflict("ALREADY_ACCEPTED", "feedback has already been accepted")
			}
			if feedback.Status == models.FeedbackStatusRejected {
				return apperr.Conflict("INVALID_TRANSITION", "feedback has already been rejected")
			}
			feedback.Status = models.FeedbackStatusRejected
			if err := tx.UpdateFeedback(ctx, feedback); err != nil {
				return err
			}
			if err := tx.CreateActivityLog(ctx, &models.IdeaActivityLog{
				ID:      uuid.New(),
				IdeaID:  idea.ID,
				ActorID: actorID,
				Type:    models.ActivityFeedbackRejected,
				Metadata: metadataJSON(map[string]interface{}{
					"feedback_id": feedback.ID.String(),
				}),
			}); err != nil {
				return err
			}

		case models.FeedbackStatusAccepted:
			if feedback.Status == models.FeedbackStatusAccepted {
				return apperr.Conflict("ALREADY_ACCEPTED", "feedback has already been accepted")
			}
			if feedback.Status == models.FeedbackStatusRejected {
				return apperr.Conflict("INVALID_TRANSITION", "cannot accept rejected feedback")
			}
			if idea.AcceptedCount >= idea.MaxAcceptedFeedbacks {
				return apperr.Conflict("BUDGET_EXHAUSTED", "idea has reached its maximum accepted feedbacks")
			}

			feedback.Status = models.FeedbackStatusAccepted
			if err := tx.UpdateFeedback(ctx, feedback); err != nil {
				return err
			}

			idea.AcceptedCount++
			if err := tx.UpdateIdea(ctx, idea); err != nil {
				return err
			}

			// Amount and currency are snapshots; later idea changes never
			// touch this payout
			payout := &models.Payout{
				ID:            uuid.New(),
				FeedbackID:    feedback.ID,
				IdeaID:        idea.ID,
				ContributorID: feedback.ContributorID,
				Amount:        idea.RewardPerAcceptedFeedback,
				Currency:      idea.Currency,
				Status:        models.PayoutStatusPending,
			}
			if err := tx.CreatePayout(ctx, payout); err != nil {
				return err
			}
			result.Payout = payout

			if err := tx.CreateActivityLog(ctx, &models.IdeaActivityLog{
				ID:      uuid.New(),
				IdeaID:  idea.ID,
				ActorID: actorID,
				Type:    models.ActivityFeedbackAccepted,
				Metadata: metadataJSON(map[string]interface{}{
					"feedback_id": feedback.ID.String(),
					"payout_id":   payout.ID.String(),
				}),
			}); err != nil {
				return err
			}
		}

		result.Feedback = feedback
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Feedback %s transitioned to %s by %s", feedbackID, target, actorID)
	return result, nil
}
