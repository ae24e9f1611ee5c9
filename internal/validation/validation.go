package validation

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"idea-market/internal/apperr"
)

// Field length bounds for idea and feedback text
const (
	TitleMinLen       = 3
	TitleMaxLen       = 200
	DescriptionMinLen = 50
	DescriptionMaxLen = 5000
	ContextMaxLen     = 10000
	BodyMinLen        = 300
	BodyMaxLen        = 10000
	TagMinLen         = 5
	TagMaxLen         = 100
)

var (
	MinBudget = decimal.NewFromInt(1)
	MinReward = decimal.RequireFromString("0.1")

	// Base58 alphabet (no 0, O, I, l); Solana addresses and signatures
	walletAddressRe = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)
	txSignatureRe   = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{64,128}$`)
)

func lengthBetween(field, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n < min || n > max {
		return apperr.Input(
			fmt.Sprintf("%s_LENGTH", field),
			fmt.Sprintf("%s must be between %d and %d characters", field, min, max),
		)
	}
	return nil
}

// CreateIdea checks the textual and numeric bounds of a new idea. Pure:
// never touches the store.
func CreateIdea(title, description string, context *string, currency string, totalBudget, reward decimal.Decimal) error {
	if err := lengthBetween("TITLE", title, TitleMinLen, TitleMaxLen); err != nil {
		return err
	}
	if err := lengthBetween("DESCRIPTION", description, DescriptionMinLen, DescriptionMaxLen); err != nil {
		return err
	}
	if context != nil {
		if utf8.RuneCountInString(*context) > ContextMaxLen {
			return apperr.Input("CONTEXT_LENGTH", fmt.Sprintf("context must be at most %d characters", ContextMaxLen))
		}
	}
	if currency != "SOL" && currency != "USDC" {
		return apperr.Input("UNSUPPORTED_CURRENCY", "currency must be SOL or USDC")
	}
	if totalBudget.LessThan(MinBudget) {
		return apperr.Input("INVALID_BUDGET", "total budget must be at least 1")
	}
	if reward.LessThan(MinReward) {
		return apperr.Input("INVALID_REWARD", "reward per feedback must be at least 0.1")
	}
	if reward.GreaterThan(totalBudget) {
		return apperr.Input("INVALID_BUDGET", "reward per feedback cannot exceed total budget")
	}
	return nil
}

// SubmitFeedback checks the body and experience tag bounds.
func SubmitFeedback(body, experienceTag string) error {
	if err := lengthBetween("BODY", body, BodyMinLen, BodyMaxLen); err != nil {
		return err
	}
	return lengthBetween("EXPERIENCE_TAG", experienceTag, TagMinLen, TagMaxLen)
}

// WalletAddress checks the base58 address format.
func WalletAddress(address string) error {
	if !walletAddressRe.MatchString(address) {
		return apperr.Input("ADDRESS_INVALID", "invalid wallet address format")
	}
	return nil
}

// TxSignature checks the base58 transaction signature format.
func TxSignature(signature string) error {
	if !txSignatureRe.MatchString(signature) {
		return apperr.Input("SIGNATURE_INVALID", "invalid transaction signature format")
	}
	return nil
}
