package services

import (
	"context"
	"crypto/rand"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"idea-market/internal/apperr"
	"idea-market/internal/models"
	"idea-market/internal/repository"
)

func setupTestDB(t *testing.T) (*gorm.DB, *repository.Repository) {
	t.Helper()

	// :memory: is unique per connection; cache=shared keeps the pool on one DB
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.AuthChallenge{},
		&models.Idea{},
		&models.Feedback{},
		&models.Payout{},
		&models.IdeaActivityLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db, repository.NewRepository(db)
}

// fakeChain implements ChainClient without touching an RPC node.
type fakeChain struct {
	builtTx     string
	buildErr    error
	verifyOK    bool
	verifyErr   error
	disburseSig string
	disburseErr error

	disbursedTo []string
}

func (f *fakeChain) BuildFundingTransaction(ctx context.Context, payerAddress string, amount decimal.Decimal, currency models.Currency) (string, error) {
	if f.buildErr != nil {
		return "", f.buildErr
	}
	return f.builtTx, nil
}

func (f *fakeChain) VerifyTransaction(ctx context.Context, reference string) (bool, error) {
	return f.verifyOK, f.verifyErr
}

func (f *fakeChain) DisburseFromTreasury(ctx context.Context, recipientAddress string, amount decimal.Decimal, currency models.Currency) (string, error) {
	if f.disburseErr != nil {
		return "", f.disburseErr
	}
	f.disbursedTo = append(f.disbursedTo, recipientAddress)
	return f.disburseSig, nil
}

func (f *fakeChain) GetBalance(ctx context.Context, address string, currency models.Currency) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func testWallet(t *testing.T) string {
	t.Helper()
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		t.Fatalf("failed to generate wallet: %v", err)
	}
	return base58.Encode(raw)
}

func testTxSignature(t *testing.T) string {
	t.Helper()
	raw := make([]byte, 64)
	if _, err := rand.Read(raw); err != nil {
		t.Fatalf("failed to generate signature: %v", err)
	}
	return base58.Encode(raw)
}

func createTestUser(t *testing.T, repo *repository.Repository, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		ID:            uuid.New(),
		WalletAddress: testWallet(t),
		Role:          role,
	}
	if err := repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// createOpenIdea seeds a funded, open idea: budget 10, reward 2.5, so at
// most 4 accepted feedbacks.
func createOpenIdea(t *testing.T, repo *repository.Repository, founder *models.User) *models.Idea {
	t.Helper()
	sig := testTxSignature(t)
	idea := &models.Idea{
		ID:                        uuid.New(),
		FounderID:                 founder.ID,
		Title:                     "Reduce churn in onboarding",
		Description:               strings.Repeat("A detailed description of the problem space. ", 3),
		Currency:                  models.CurrencySOL,
		TotalBudget:               decimal.NewFromInt(10),
		RewardPerAcceptedFeedback: decimal.RequireFromString("2.5"),
		MaxAcceptedFeedbacks:      4,
		EscrowTxSignature:         &sig,
		Status:                    models.IdeaStatusOpen,
	}
	if err := repo.CreateIdea(context.Background(), idea); err != nil {
		t.Fatalf("failed to create idea: %v", err)
	}
	return idea
}

func validFeedbackBody() string {
	return strings.Repeat("This feature misses the mark for power users because ", 8)
}

func assertAppErr(t *testing.T, err error, kind apperr.Kind, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s/%s error, got nil", kind, code)
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperr.Error, got %T: %v", err, err)
	}
	if appErr.Kind != kind {
		t.Errorf("expected kind %s, got %s (%v)", kind, appErr.Kind, appErr)
	}
	if appErr.Code != code {
		t.Errorf("expected code %s, got %s (%v)", code, appErr.Code, appErr)
	}
}
