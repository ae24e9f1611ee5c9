package blockchain

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"

	"idea-market/internal/apperr"
	"idea-market/internal/models"
)

const (
	solDecimals  = 9
	usdcDecimals = 6

	confirmPollInterval = 2 * time.Second
	confirmTimeout      = 90 * time.Second
)

// SolanaClient handles Solana blockchain interactions: it builds unsigned
// funding transactions for founders, verifies submitted signatures, and
// signs treasury disbursements with the server-held keypair.
type SolanaClient struct {
	rpcClient      *rpc.Client
	network        string
	usdcMint       solana.PublicKey
	treasuryWallet *solana.Wallet
}

// NewSolanaClient creates a new Solana client. rpcURL overrides the
// network's public endpoint when set.
func NewSolanaClient(network, rpcURL, usdcMintAddress, treasuryPrivateKey string) (*SolanaClient, error) {
	if rpcURL == "" {
		switch network {
		case "mainnet-beta":
			rpcURL = "https://api.mainnet-beta.solana.com"
		case "testnet":
			rpcURL = "https://api.testnet.solana.com"
		default:
			rpcURL = "https://api.devnet.solana.com"
		}
	}

	mint, err := solana.PublicKeyFromBase58(usdcMintAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid USDC mint address: %w", err)
	}

	wallet, err := solana.WalletFromPrivateKeyBase58(treasuryPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load treasury wallet: %w", err)
	}
	log.Printf("Treasury wallet loaded: %s", wallet.PublicKey())

	return &SolanaClient{
		rpcClient:      rpc.New(rpcURL),
		network:        network,
		usdcMint:       mint,
		treasuryWallet: wallet,
	}, nil
}

// TreasuryAddress returns the public key of the server-held treasury wallet.
func (s *SolanaClient) TreasuryAddress() string {
	return s.treasuryWallet.PublicKey().String()
}

// toBaseUnits converts a decimal display amount to the currency's smallest
// indivisible unit (lamports for SOL, 10^-6 for USDC), flooring any excess
// precision.
func toBaseUnits(amount decimal.Decimal, currency models.Currency) (uint64, error) {
	var shift int32
	switch currency {
	case models.CurrencySOL:
		shift = solDecimals
	case models.CurrencyUSDC:
		shift = usdcDecimals
	default:
		return 0, apperr.Input("UNSUPPORTED_CURRENCY", fmt.Sprintf("unsupported currency %q", currency))
	}

	units := amount.Shift(shift).Floor()
	if units.Sign() <= 0 {
		return 0, apperr.Input("INVALID_AMOUNT", "amount must be positive")
	}
	return uint64(units.IntPart()), nil
}

func fromBaseUnits(units uint64, currency models.Currency) decimal.Decimal {
	shift := int32(solDecimals)
	if currency == models.CurrencyUSDC {
		shift = usdcDecimals
	}
	return decimal.NewFromInt(int64(units)).Shift(-shift)
}

// transferInstruction builds a transfer of amount/currency from one wallet
// to another: a system transfer for SOL, an SPL token transfer between
// associated token accounts for USDC.
func (s *SolanaClient) transferInstruction(from, to solana.PublicKey, amount decimal.Decimal, currency models.Currency) (solana.Instruction, error) {
	units, err := toBaseUnits(amount, currency)
	if err != nil {
		return nil, err
	}

	if currency == models.CurrencySOL {
		return system.NewTransferInstruction(units, from, to).Build(), nil
	}

	fromATA, _, err := solana.FindAssociatedTokenAddress(from, s.usdcMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive sender token account: %w", err)
	}
	toATA, _, err := solana.FindAssociatedTokenAddress(to, s.usdcMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive recipient token account: %w", err)
	}

	return token.NewTransferInstruction(units, fromATA, toATA, from, nil).Build(), nil
}

// BuildFundingTransaction constructs an unsigned payer→treasury transfer
// and returns it base64-encoded for the client wallet to sign and submit.
func (s *SolanaClient) BuildFundingTransaction(ctx context.Context, payerAddress string, amount decimal.Decimal, currency models.Currency) (string, error) {
	payer, err := solana.PublicKeyFromBase58(payerAddress)
	if err != nil {
		return "", apperr.Input("ADDRESS_INVALID", "invalid payer address")
	}

	instruction, err := s.transferInstruction(payer, s.treasuryWallet.PublicKey(), amount, currency)
	if err != nil {
		return "", err
	}

	blockhash, err := s.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return "", apperr.External("CHAIN_UNAVAILABLE", "failed to get recent blockhash", err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{instruction},
		blockhash.Value.Blockhash,
		solana.TransactionPayer(payer),
	)
	if err != nil {
		return "", fmt.Errorf("failed to build transaction: %w", err)
	}

	encoded, err := tx.ToBase64()
	if err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}
	return encoded, nil
}

// VerifyTransaction reports whether the referenced transaction is confirmed
// and executed without error. Missing and errored transactions both return
// false; only transport failures return an error.
func (s *SolanaClient) VerifyTransaction(ctx context.Context, reference string) (bool, error) {
	sig, err := solana.SignatureFromBase58(reference)
	if err != nil {
		return false, nil
	}

	status, err := s.rpcClient.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return false, apperr.External("CHAIN_UNAVAILABLE", "failed to query transaction status", err)
	}

	if len(status.Value) == 0 || status.Value[0] == nil {
		return false, nil // Not found
	}

	if status.Value[0].Err != nil {
		log.Printf("Transaction %s failed on-chain: %v", reference, status.Value[0].Err)
		return false, nil
	}

	confStatus := status.Value[0].ConfirmationStatus
	return confStatus == rpc.ConfirmationStatusConfirmed || confStatus == rpc.ConfirmationStatusFinalized, nil
}

// DisburseFromTreasury signs and submits a treasury→recipient transfer and
// blocks until the chain confirms it. Every failure path wraps the
// underlying error as DISBURSEMENT_FAILED.
func (s *SolanaClient) DisburseFromTreasury(ctx context.Context, recipientAddress string, amount decimal.Decimal, currency models.Currency) (string, error) {
	recipient, err := solana.PublicKeyFromBase58(recipientAddress)
	if err != nil {
		return "", apperr.Input("ADDRESS_INVALID", "invalid recipient address")
	}

	instruction, err := s.transferInstruction(s.treasuryWallet.PublicKey(), recipient, amount, currency)
	if err != nil {
		return "", err
	}

	blockhash, err := s.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return "", apperr.External("DISBURSEMENT_FAILED", "failed to get recent blockhash", err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{instruction},
		blockhash.Value.Blockhash,
		solana.TransactionPayer(s.treasuryWallet.PublicKey()),
	)
	if err != nil {
		return "", apperr.External("DISBURSEMENT_FAILED", "failed to build transaction", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(s.treasuryWallet.PublicKey()) {
			pk := s.treasuryWallet.PrivateKey
			return &pk
		}
		return nil
	})
	if err != nil {
		return "", apperr.External("DISBURSEMENT_FAILED", "failed to sign transaction", err)
	}

	sig, err := s.rpcClient.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return "", apperr.External("DISBURSEMENT_FAILED", "failed to send transaction", err)
	}

	if err := s.waitForConfirmation(ctx, sig); err != nil {
		return "", apperr.External("DISBURSEMENT_FAILED", "transaction not confirmed", err)
	}

	log.Printf("Treasury disbursement confirmed: %s (%s %s to %s)", sig, amount, currency, recipientAddress)
	return sig.String(), nil
}

// waitForConfirmation polls signature status until the transaction is
// confirmed, errors on-chain, or the timeout elapses.
func (s *SolanaClient) waitForConfirmation(ctx context.Context, sig solana.Signature) error {
	deadline := time.Now().Add(confirmTimeout)
	ticker := time.NewTicker(confirmPollInterval)
	defer ticker.Stop()

	for {
		status, err := s.rpcClient.GetSignatureStatuses(ctx, true, sig)
		if err == nil && len(status.Value) > 0 && status.Value[0] != nil {
			st := status.Value[0]
			if st.Err != nil {
				return fmt.Errorf("transaction execution failed: %v", st.Err)
			}
			if st.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
				st.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
				return nil
			}
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("confirmation timed out after %s", confirmTimeout)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// GetBalance returns the display-unit balance of an address for the given
// currency. Diagnostics only; not on the settlement path.
func (s *SolanaClient) GetBalance(ctx context.Context, address string, currency models.Currency) (decimal.Decimal, error) {
	pubKey, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return decimal.Zero, apperr.Input("ADDRESS_INVALID", "invalid wallet address")
	}

	if currency == models.CurrencySOL {
		balance, err := s.rpcClient.GetBalance(ctx, pubKey, rpc.CommitmentConfirmed)
		if err != nil {
			return decimal.Zero, apperr.External("CHAIN_UNAVAILABLE", "failed to query balance", err)
		}
		return fromBaseUnits(balance.Value, models.CurrencySOL), nil
	}

	ata, _, err := solana.FindAssociatedTokenAddress(pubKey, s.usdcMint)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to derive token account: %w", err)
	}

	balance, err := s.rpcClient.GetTokenAccountBalance(ctx, ata, rpc.CommitmentConfirmed)
	if err != nil {
		return decimal.Zero, apperr.External("CHAIN_UNAVAILABLE", "failed to query token balance", err)
	}

	amount, err := decimal.NewFromString(balance.Value.Amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse token balance: %w", err)
	}
	return amount.Shift(-usdcDecimals), nil
}
