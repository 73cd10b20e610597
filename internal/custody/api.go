package custody

import (
	"context"

	"github.com/shopspring/decimal"
)

// Fixed provisioning policy: one stablecoin, one settlement network and one
// account type for the whole system, chosen once rather than per entity.
const (
	TokenSymbol = "USDC"
	Blockchain  = "MATIC-AMOY"
	AccountType = "SCA"
	FeeLevel    = "MEDIUM"
)

// Wallet is the canonical view of a custodial wallet after normalization.
type Wallet struct {
	ID          string
	Address     string
	Blockchain  string
	Description string
	State       string
}

// TokenBalance is one live token position reported by the provider.
type TokenBalance struct {
	Symbol string
	Amount decimal.Decimal
}

// Transfer is the canonical view of a provider-side transaction.
type Transfer struct {
	ID    string
	State string
}

// TransferRequest describes a stablecoin movement between an owned wallet
// and an on-chain destination address.
type TransferRequest struct {
	SourceWalletID     string
	DestinationAddress string
	Amount             decimal.Decimal
	Memo               string
}

// API is the custody provider surface consumed by the orchestration layer.
// Implemented by *Client; tests substitute fakes.
type API interface {
	CreateWalletSet(ctx context.Context, name, description string) (string, error)
	CreateWallet(ctx context.Context, walletSetID, description string) (Wallet, error)
	GetWallet(ctx context.Context, walletID string) (Wallet, error)
	ListWallets(ctx context.Context, walletSetID string) ([]Wallet, error)
	WalletWithBalances(ctx context.Context, walletID string) (Wallet, []TokenBalance, error)
	TokenBalances(ctx context.Context, walletID string) ([]TokenBalance, error)
	CreateTransfer(ctx context.Context, req TransferRequest) (string, error)
	GetTransfer(ctx context.Context, transferID string) (Transfer, error)
}
