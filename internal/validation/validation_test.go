package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"idea-market/internal/apperr"
)

func errCode(t *testing.T, err error) string {
	t.Helper()
	if err == nil {
		return ""
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperr.Error, got %T", err)
	}
	return appErr.Code
}

func TestCreateIdea(t *testing.T) {
	longContext := strings.Repeat("x", ContextMaxLen+1)
	okContext := "some extra background"

	cases := []struct {
		name        string
		title       string
		description string
		context     *string
		currency    string
		budget      string
		reward      string
		wantCode    string
	}{
		{"valid", "A good title", strings.Repeat("d", 100), &okContext, "SOL", "10", "2.5", ""},
		{"valid usdc no context", "A good title", strings.Repeat("d", 50), nil, "USDC", "1", "0.1", ""},
		{"title too short", "ab", strings.Repeat("d", 100), nil, "SOL", "10", "2.5", "TITLE_LENGTH"},
		{"title too long", strings.Repeat("t", 201), strings.Repeat("d", 100), nil, "SOL", "10", "2.5", "TITLE_LENGTH"},
		{"description too short", "A good title", strings.Repeat("d", 49), nil, "SOL", "10", "2.5", "DESCRIPTION_LENGTH"},
		{"description too long", "A good title", strings.Repeat("d", 5001), nil, "SOL", "10", "2.5", "DESCRIPTION_LENGTH"},
		{"context too long", "A good title", strings.Repeat("d", 100), &longContext, "SOL", "10", "2.5", "CONTEXT_LENGTH"},
		{"bad currency", "A good title", strings.Repeat("d", 100), nil, "ETH", "10", "2.5", "UNSUPPORTED_CURRENCY"},
		{"budget too small", "A good title", strings.Repeat("d", 100), nil, "SOL", "0.99", "0.1", "INVALID_BUDGET"},
		{"reward too small", "A good title", strings.Repeat("d", 100), nil, "SOL", "10", "0.05", "INVALID_REWARD"},
		{"reward above budget", "A good title", strings.Repeat("d", 100), nil, "SOL", "2", "3", "INVALID_BUDGET"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CreateIdea(tc.title, tc.description, tc.context, tc.currency,
				decimal.RequireFromString(tc.budget), decimal.RequireFromString(tc.reward))
			if got := errCode(t, err); got != tc.wantCode {
				t.Errorf("expected code %q, got %q (%v)", tc.wantCode, got, err)
			}
		})
	}
}

func TestSubmitFeedback(t *testing.T) {
	body := strings.Repeat("b", BodyMinLen)

	if err := SubmitFeedback(body, "senior backend engineer"); err != nil {
		t.Errorf("valid feedback rejected: %v", err)
	}
	if got := errCode(t, SubmitFeedback(strings.Repeat("b", BodyMinLen-1), "senior backend engineer")); got != "BODY_LENGTH" {
		t.Errorf("expected BODY_LENGTH, got %q", got)
	}
	if got := errCode(t, SubmitFeedback(strings.Repeat("b", BodyMaxLen+1), "senior backend engineer")); got != "BODY_LENGTH" {
		t.Errorf("expected BODY_LENGTH, got %q", got)
	}
	if got := errCode(t, SubmitFeedback(body, "dev")); got != "EXPERIENCE_TAG_LENGTH" {
		t.Errorf("expected EXPERIENCE_TAG_LENGTH, got %q", got)
	}
}

func TestWalletAddress(t *testing.T) {
	valid := []string{
		"11111111111111111111111111111111",
		"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
	}
	for _, addr := range valid {
		if err := WalletAddress(addr); err != nil {
			t.Errorf("valid address %q rejected: %v", addr, err)
		}
	}

	invalid := []string{
		"",
		"short",
		"0x52908400098527886E0F7030069857D2E4169EE7",   // not base58
		strings.Repeat("A", 45),                        // too long
		"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDtOv", // contains O
	}
	for _, addr := range invalid {
		if got := errCode(t, WalletAddress(addr)); got != "ADDRESS_INVALID" {
			t.Errorf("expected ADDRESS_INVALID for %q, got %q", addr, got)
		}
	}
}

func TestTxSignature(t *testing.T) {
	if err := TxSignature(strings.Repeat("a", 88)); err != nil {
		t.Errorf("valid signature rejected: %v", err)
	}
	for _, sig := range []string{"", strings.Repeat("a", 63), strings.Repeat("a", 129), strings.Repeat("!", 88)} {
		if got := errCode(t, TxSignature(sig)); got != "SIGNATURE_INVALID" {
			t.Errorf("expected SIGNATURE_INVALID for %d chars, got %q", len(sig), got)
		}
	}
}
