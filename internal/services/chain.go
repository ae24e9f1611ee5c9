package services

import (
	"context"

	"github.com/shopspring/decimal"

	"idea-market/internal/models"
)

// ChainClient is the chain collaborator consumed by the settlement
// services. Implemented by blockchain.SolanaClient.
type ChainClient interface {
	// BuildFundingTransaction returns a base64-encoded unsigned
	// payer→treasury transfer for the client wallet to sign.
	BuildFundingTransaction(ctx context.Context, payerAddress string, amount decimal.Decimal, currency models.Currency) (string, error)

	// VerifyTransaction reports whether the referenced transaction is
	// confirmed and error-free. Missing or errored transactions are false;
	// only transport failures error.
	VerifyTransaction(ctx context.Context, reference string) (bool, error)

	// DisburseFromTreasury signs and submits a treasury→recipient transfer,
	// blocking until confirmation, and returns the transaction signature.
	DisburseFromTreasury(ctx context.Context, recipientAddress string, amount decimal.Decimal, currency models.Currency) (string, error)

	// GetBalance returns the display-unit balance for an address.
	GetBalance(ctx context.Context, address string, currency models.Currency) (decimal.Decimal, error)
}
