package balance

import (
	"context"
	"errors"
	"log/slog"

	"github.com/medi-pay/medi_pay/internal/custody"
)

// Snapshot is a point-in-time balance view of one wallet. Degraded reads
// carry empty Balances and Degraded set.
type Snapshot struct {
	WalletID string
	Address  string
	State    string
	Balances []custody.TokenBalance
	Degraded bool
}

// Service reads live wallet balances from the custody provider.
type Service struct {
	provider custody.API
	logger   *slog.Logger
}

// NewService constructs a balance reader.
func NewService(provider custody.API, logger *slog.Logger) *Service {
	return &Service{provider: provider, logger: logger}
}

// Read fetches the wallet together with its token balances. The combined
// endpoint is preferred; on failure the dedicated balances endpoint is
// tried. If both fail the snapshot degrades to an empty balance list rather
// than failing the caller, since balance display is advisory. A provider
// that is not configured at all still fails fast.
func (s *Service) Read(ctx context.Context, walletID string) (Snapshot, error) {
	wallet, balances, err := s.provider.WalletWithBalances(ctx, walletID)
	if err == nil {
		return Snapshot{
			WalletID: wallet.ID,
			Address:  wallet.Address,
			State:    wallet.State,
			Balances: nonNil(balances),
		}, nil
	}
	if errors.Is(err, custody.ErrNotConfigured) {
		return Snapshot{}, err
	}
	s.logger.Warn("combined balance read failed, falling back", "wallet_id", walletID, "error", err)

	balances, fallbackErr := s.provider.TokenBalances(ctx, walletID)
	if fallbackErr == nil {
		return Snapshot{WalletID: walletID, Balances: nonNil(balances)}, nil
	}
	if errors.Is(fallbackErr, custody.ErrNotConfigured) {
		return Snapshot{}, fallbackErr
	}

	s.logger.Warn("balance read degraded to empty", "wallet_id", walletID, "error", fallbackErr)
	return Snapshot{WalletID: walletID, Balances: []custody.TokenBalance{}, Degraded: true}, nil
}

func nonNil(balances []custody.TokenBalance) []custody.TokenBalance {
	if balances == nil {
		return []custody.TokenBalance{}
	}
	return balances
}
