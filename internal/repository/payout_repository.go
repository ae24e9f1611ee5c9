package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"idea-market/internal/models"
)

// CreatePayout creates a new payout
func (r *Repository) CreatePayout(ctx context.Context, payout *models.Payout) error {
	return r.db.WithContext(ctx).Create(payout).Error
}

// GetPayoutByID retrieves a payout with its contributor
func (r *Repository) GetPayoutByID(ctx context.Context, payoutID uuid.UUID) (*models.Payout, error) {
	var payout models.Payout
	err := r.db.WithContext(ctx).
		Preload("Contributor").
		Where("id = ?", payoutID).
		First(&payout).Error
	if err != nil {
		return nil, err
	}
	return &payout, nil
}

// GetPayoutForUpdate retrieves a payout under a row-level write lock so two
// concurrent send attempts cannot both pass the status check
func (r *Repository) GetPayoutForUpdate(ctx context.Context, payoutID uuid.UUID) (*models.Payout, error) {
	var payout models.Payout
	err := r.forUpdate(r.db.WithContext(ctx)).
		Where("id = ?", payoutID).
		First(&payout).Error
	if err != nil {
		return nil, err
	}
	return &payout, nil
}

// GetPayoutByFeedback retrieves the payout spawned by a feedback, if any
func (r *Repository) GetPayoutByFeedback(ctx context.Context, feedbackID uuid.UUID) (*models.Payout, error) {
	var payout models.Payout
	err := r.db.WithContext(ctx).Where("feedback_id = ?", feedbackID).First(&payout).Error
	if err != nil {
		return nil, err
	}
	return &payout, nil
}

// UpdatePayout persists changes to a payout
func (r *Repository) UpdatePayout(ctx context.Context, payout *models.Payout) error {
	return r.db.WithContext(ctx).Save(payout).Error
}

// SumPayoutsByContributor totals a contributor's payout amounts per currency
func (r *Repository) SumPayoutsByContributor(ctx context.Context, contributorID uuid.UUID) (map[models.Currency]decimal.Decimal, error) {
	var rows []struct {
		Currency models.Currency
		Total    decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.Payout{}).
		Select("currency, SUM(amount) AS total").
		Where("contributor_id = ?", contributorID).
		Group("currency").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	totals := make(map[models.Currency]decimal.Decimal, len(rows))
	for _, row := range rows {
		totals[row.Currency] = row.Total
	}
	return totals, nil
}
