package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"

	"idea-market/internal/apperr"
	"idea-market/internal/models"
)

func TestSubmitFeedback(t *testing.T) {
	_, repo := setupTestDB(t)
	service := NewFeedbackService(repo)
	ctx := context.Background()

	founder := createTestUser(t, repo, models.UserRoleFounder)
	contributor := createTestUser(t, repo, models.UserRoleContributor)
	idea := createOpenIdea(t, repo, founder)

	req := &models.SubmitFeedbackRequest{
		Body:          validFeedbackBody(),
		ExperienceTag: "growth marketing",
	}

	feedback, err := service.SubmitFeedback(ctx, idea.ID, contributor.ID, req)
	if err != nil {
		t.Fatalf("SubmitFeedback failed: %v", err)
	}
	if feedback.Status != models.FeedbackStatusPending {
		t.Errorf("expected PENDING, got %s", feedback.Status)
	}
	if feedback.IdeaID != idea.ID || feedback.ContributorID != contributor.ID {
		t.Errorf("feedback bound to wrong idea/contributor")
	}

	// Submission is logged in the same transaction
	activity, err := repo.ListActivityByIdea(ctx, idea.ID)
	if err != nil {
		t.Fatalf("failed to list activity: %v", err)
	}
	if len(activity) != 1 || activity[0].Type != models.ActivityFeedbackSubmitted {
		t.Errorf("expected one FEEDBACK_SUBMITTED entry, got %v", activity)
	}
}

func TestSubmitFeedbackDuplicate(t *testing.T) {
	_, repo := setupTestDB(t)
	service := NewFeedbackService(repo)
	ctx := context.Background()

	founder := createTestUser(t, repo, models.UserRoleFounder)
	contributor := createTestUser(t, repo, models.UserRoleContributor)
	idea := createOpenIdea(t, repo, founder)

	req := &models.SubmitFeedbackRequest{Body: validFeedbackBody(), ExperienceTag: "product design"}
	if _, err := service.SubmitFeedback(ctx, idea.ID, contributor.ID, req); err != nil {
		t.Fatalf("first submission failed: %v", err)
	}

	_, err := service.SubmitFeedback(ctx, idea.ID, contributor.ID, req)
	assertAppErr(t, err, apperr.KindConflict, "DUPLICATE_SUBMISSION")
}

func TestSubmitFeedbackGuards(t *testing.T) {
	_, repo := setupTestDB(t)
	service := NewFeedbackService(repo)
	ctx := context.Background()

	founder := createTestUser(t, repo, models.UserRoleFounder)
	contributor := createTestUser(t, repo, models.UserRoleContributor)
	idea := createOpenIdea(t, repo, founder)
	req := &models.SubmitFeedbackRequest{Body: validFeedbackBody(), ExperienceTag: "product design"}

	// Founder may not review their own idea as a contributor
	_, err := service.SubmitFeedback(ctx, idea.ID, founder.ID, req)
	assertAppErr(t, err, apperr.KindForbidden, "OWN_IDEA")

	// Unfunded ideas accept nothing
	idea.Status = models.IdeaStatusAwaitingPayment
	if err := repo.UpdateIdea(ctx, idea); err != nil {
		t.Fatalf("failed to update idea: %v", err)
	}
	_, err = service.SubmitFeedback(ctx, idea.ID, contributor.ID, req)
	assertAppErr(t, err, apperr.KindConflict, "NOT_ACCEPTING_FEEDBACK")

	_, err = service.SubmitFeedback(ctx, uuid.New(), contributor.ID, req)
	assertAppErr(t, err, apperr.KindNotFound, "IDEA_NOT_FOUND")

	// Body below the minimum never reaches the store
	_, err = service.SubmitFeedback(ctx, idea.ID, contributor.ID, &models.SubmitFeedbackRequest{
		Body:          "too short",
		ExperienceTag: "product design",
	})
	assertAppErr(t, err, apperr.KindInputInvalid, "BODY_LENGTH")
}

func TestTransitionFeedbackAccept(t *testing.T) {
	_, repo := setupTestDB(t)
	service := NewFeedbackService(repo)
	ctx := context.Background()

	founder := createTestUser(t, repo, models.UserRoleFounder)
	contributor := createTestUser(t, repo, models.UserRoleContributor)
	idea := createOpenIdea(t, repo, founder)

	req := &models.SubmitFeedbackRequest{Body: validFeedbackBody(), ExperienceTag: "backend engineering"}
	feedback, err := service.SubmitFeedback(ctx, idea.ID, contributor.ID, req)
	if err != nil {
		t.Fatalf("SubmitFeedback failed: %v", err)
	}

	result, err := service.TransitionFeedback(ctx, feedback.ID, founder.ID, models.FeedbackStatusAccepted)
	if err != nil {
		t.Fatalf("TransitionFeedback failed: %v", err)
	}
	if result.Feedback.Status != models.FeedbackStatusAccepted {
		t.Errorf("expected ACCEPTED, got %s", result.Feedback.Status)
	}
	if result.Payout == nil {
		t.Fatal("expected a payout to be created on acceptance")
	}

	// Payout snapshots the idea's reward terms at acceptance time
	if !result.Payout.Amount.Equal(idea.RewardPerAcceptedFeedback) {
		t.Errorf("expected payout amount %s, got %s", idea.RewardPerAcceptedFeedback, result.Payout.Amount)
	}
	if result.Payout.Currency != idea.Currency {
		t.Errorf("expected payout currency %s, got %s", idea.Currency, result.Payout.Currency)
	}
	if result.Payout.Status != models.PayoutStatusPending {
		t.Errorf("expected PENDING payout, got %s", result.Payout.Status)
	}
	if result.Payout.ContributorID != contributor.ID {
		t.Errorf("payout bound to wrong contributor")
	}

	updated, err := repo.GetIdeaByID(ctx, idea.ID)
	if err != nil {
		t.Fatalf("failed to reload idea: %v", err)
	}
	if updated.AcceptedCount != 1 {
		t.Errorf("expected accepted count 1, got %d", updated.AcceptedCount)
	}

	// Accepting twice is a conflict, not a second payout
	_, err = service.TransitionFeedback(ctx, feedback.ID, founder.ID, models.FeedbackStatusAccepted)
	assertAppErr(t, err, apperr.KindConflict, "ALREADY_ACCEPTED")
}

func TestTransitionFeedbackBudgetExhausted(t *testing.T) {
	_, repo := setupTestDB(t)
	service := NewFeedbackService(repo)
	ctx := context.Background()

	founder := createTestUser(t, repo, models.UserRoleFounder)
	idea := createOpenIdea(t, repo, founder)

	// Burn through the whole budget (max 4 accepts)
	for i := 0; i < idea.MaxAcceptedFeedbacks; i++ {
		contributor := createTestUser(t, repo, models.UserRoleContributor)
		feedback, err := service.SubmitFeedback(ctx, idea.ID, contributor.ID, &models.SubmitFeedbackRequest{
			Body:          validFeedbackBody(),
			ExperienceTag: "product design",
		})
		if err != nil {
			t.Fatalf("SubmitFeedback %d failed: %v", i, err)
		}
		if _, err := service.TransitionFeedback(ctx, feedback.ID, founder.ID, models.FeedbackStatusAccepted); err != nil {
			t.Fatalf("accept %d failed: %v", i, err)
		}
	}

	extra := createTestUser(t, repo, models.UserRoleContributor)
	feedback, err := service.SubmitFeedback(ctx, idea.ID, extra.ID, &models.SubmitFeedbackRequest{
		Body:          validFeedbackBody(),
		ExperienceTag: "product design",
	})
	if err != nil {
		t.Fatalf("SubmitFeedback failed: %v", err)
	}

	_, err = service.TransitionFeedback(ctx, feedback.ID, founder.ID, models.FeedbackStatusAccepted)
	assertAppErr(t, err, apperr.KindConflict, "BUDGET_EXHAUSTED")

	updated, err := repo.GetIdeaByID(ctx, idea.ID)
	if err != nil {
		t.Fatalf("failed to reload idea: %v", err)
	}
	if updated.AcceptedCount != updated.MaxAcceptedFeedbacks {
		t.Errorf("accepted count %d overran max %d", updated.AcceptedCount, updated.MaxAcceptedFeedbacks)
	}
}

func TestTransitionFeedbackConcurrentAccepts(t *testing.T) {
	db, repo := setupTestDB(t)
	service := NewFeedbackService(repo)
	ctx := context.Background()

	// One connection keeps sqlite from rejecting concurrent writers; the
	// accepts still race through the service from separate goroutines
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	founder := createTestUser(t, repo, models.UserRoleFounder)
	idea := createOpenIdea(t, repo, founder)

	// Twice as many pending feedbacks as the budget covers
	attempts := idea.MaxAcceptedFeedbacks * 2
	feedbackIDs := make([]uuid.UUID, 0, attempts)
	for i := 0; i < attempts; i++ {
		contributor := createTestUser(t, repo, models.UserRoleContributor)
		feedback, err := service.SubmitFeedback(ctx, idea.ID, contributor.ID, &models.SubmitFeedbackRequest{
			Body:          validFeedbackBody(),
			ExperienceTag: "product design",
		})
		if err != nil {
			t.Fatalf("SubmitFeedback %d failed: %v", i, err)
		}
		feedbackIDs = append(feedbackIDs, feedback.ID)
	}

	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for _, feedbackID := range feedbackIDs {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := service.TransitionFeedback(ctx, id, founder.ID, models.FeedbackStatusAccepted)
			errs <- err
		}(feedbackID)
	}
	wg.Wait()
	close(errs)

	accepted := 0
	for err := range errs {
		if err == nil {
			accepted++
			continue
		}
		assertAppErr(t, err, apperr.KindConflict, "BUDGET_EXHAUSTED")
	}
	if accepted != idea.MaxAcceptedFeedbacks {
		t.Errorf("expected exactly %d accepts, got %d", idea.MaxAcceptedFeedbacks, accepted)
	}

	updated, err := repo.GetIdeaByID(ctx, idea.ID)
	if err != nil {
		t.Fatalf("failed to reload idea: %v", err)
	}
	if updated.AcceptedCount != updated.MaxAcceptedFeedbacks {
		t.Errorf("accepted count %d, want %d", updated.AcceptedCount, updated.MaxAcceptedFeedbacks)
	}

	var payouts int64
	if err := db.Model(&models.Payout{}).Where("idea_id = ?", idea.ID).Count(&payouts).Error; err != nil {
		t.Fatalf("failed to count payouts: %v", err)
	}
	if payouts != int64(idea.MaxAcceptedFeedbacks) {
		t.Errorf("expected %d payouts, got %d", idea.MaxAcceptedFeedbacks, payouts)
	}
}

func TestTransitionFeedbackStateMachine(t *testing.T) {
	_, repo := setupTestDB(t)
	service := NewFeedbackService(repo)
	ctx := context.Background()

	founder := createTestUser(t, repo, models.UserRoleFounder)
	stranger := createTestUser(t, repo, models.UserRoleContributor)
	idea := createOpenIdea(t, repo, founder)

	submit := func(t *testing.T) *models.Feedback {
		t.Helper()
		contributor := createTestUser(t, repo, models.UserRoleContributor)
		feedback, err := service.SubmitFeedback(ctx, idea.ID, contributor.ID, &models.SubmitFeedbackRequest{
			Body:          validFeedbackBody(),
			ExperienceTag: "product design",
		})
		if err != nil {
			t.Fatalf("SubmitFeedback failed: %v", err)
		}
		return feedback
	}

	t.Run("only the founder reviews", func(t *testing.T) {
		feedback := submit(t)
		_, err := service.TransitionFeedback(ctx, feedback.ID, stranger.ID, models.FeedbackStatusAccepted)
		assertAppErr(t, err, apperr.KindForbidden, "NOT_FOUNDER")
	})

	t.Run("shortlist then accept", func(t *testing.T) {
		feedback := submit(t)
		if _, err := service.TransitionFeedback(ctx, feedback.ID, founder.ID, models.FeedbackStatusShortlisted); err != nil {
			t.Fatalf("shortlist failed: %v", err)
		}
		// Shortlisting is only a staging step; acceptance still works
		result, err := service.TransitionFeedback(ctx, feedback.ID, founder.ID, models.FeedbackStatusAccepted)
		if err != nil {
			t.Fatalf("accept after shortlist failed: %v", err)
		}
		if result.Payout == nil {
			t.Error("expected payout on acceptance")
		}
	})

	t.Run("shortlist requires pending", func(t *testing.T) {
		feedback := submit(t)
		if _, err := service.TransitionFeedback(ctx, feedback.ID, founder.ID, models.FeedbackStatusRejected); err != nil {
			t.Fatalf("reject failed: %v", err)
		}
		_, err := service.TransitionFeedback(ctx, feedback.ID, founder.ID, models.FeedbackStatusShortlisted)
		assertAppErr(t, err, apperr.KindConflict, "INVALID_TRANSITION")
	})

	t.Run("rejected is terminal", func(t *testing.T) {
		feedback := submit(t)
		if _, err := service.TransitionFeedback(ctx, feedback.ID, founder.ID, models.FeedbackStatusRejected); err != nil {
			t.Fatalf("reject failed: %v", err)
		}
		_, err := service.TransitionFeedback(ctx, feedback.ID, founder.ID, models.FeedbackStatusAccepted)
		assertAppErr(t, err, apperr.KindConflict, "INVALID_TRANSITION")
		_, err = service.TransitionFeedback(ctx, feedback.ID, founder.ID, models.FeedbackStatusRejected)
		assertAppErr(t, err, apperr.KindConflict, "INVALID_TRANSITION")
	})

	t.Run("accepted cannot be rejected", func(t *testing.T) {
		feedback := submit(t)
		if _, err := service.TransitionFeedback(ctx, feedback.ID, founder.ID, models.FeedbackStatusAccepted); err != nil {
			t.Fatalf("accept failed: %v", err)
		}
		_, err := service.TransitionFeedback(ctx, feedback.ID, founder.ID, models.FeedbackStatusRejected)
		assertAppErr(t, err, apperr.KindConflict, "ALREADY_ACCEPTED")
	})

	t.Run("pending is not a target", func(t *testing.T) {
		feedback := submit(t)
		_, err := service.TransitionFeedback(ctx, feedback.ID, founder.ID, models.FeedbackStatusPending)
		assertAppErr(t, err, apperr.KindInputInvalid, "INVALID_TARGET")
	})

	t.Run("unknown feedback", func(t *testing.T) {
		_, err := service.TransitionFeedback(ctx, uuid.New(), founder.ID, models.FeedbackStatusAccepted)
		assertAppErr(t, err, apperr.KindNotFound, "FEEDBACK_NOT_FOUND")
	})
}
