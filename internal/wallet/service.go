package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/medi-pay/medi_pay/internal/account"
	"github.com/medi-pay/medi_pay/internal/custody"
)

// ErrMissingWalletSet indicates a wallet was requested without a wallet set
// to provision it under.
var ErrMissingWalletSet = errors.New("wallet set id is required")

const (
	walletSetName = "medipay-wallets"
	setDescMarker = "MediPay managed wallet set"
)

// Service provisions custodial wallets and records them in the account
// directory.
type Service struct {
	provider custody.API
	accounts account.Repository
	sets     *custody.SetRef
	logger   *slog.Logger
}

// NewService builds a provisioning service.
func NewService(provider custody.API, accounts account.Repository, sets *custody.SetRef, logger *slog.Logger) *Service {
	return &Service{provider: provider, accounts: accounts, sets: sets, logger: logger}
}

// CreateWalletSet provisions a new wallet grouping at the provider and
// publishes it as the process-wide set if none is known yet.
func (s *Service) CreateWalletSet(ctx context.Context, name, description string) (string, error) {
	if name == "" {
		name = walletSetName
	}
	id, err := s.provider.CreateWalletSet(ctx, name, description)
	if err != nil {
		return "", err
	}
	winner := s.sets.Publish(id)
	if winner != id {
		// Lost a first-use race; the duplicate set is tolerated and unused.
		s.logger.Warn("wallet set race lost, using published set", "created", id, "using", winner)
	}
	return winner, nil
}

// EnsureWalletSet returns the process-wide wallet set id, creating one
// lazily on first use. The first successful writer wins.
func (s *Service) EnsureWalletSet(ctx context.Context) (string, error) {
	if id := s.sets.Get(); id != "" {
		return id, nil
	}
	return s.CreateWalletSet(ctx, walletSetName, setDescMarker)
}

// CreateWallet provisions one wallet for the entity under the given wallet
// set and persists the directory record. The settlement network, account
// type and currency are fixed system-wide.
func (s *Service) CreateWallet(ctx context.Context, walletSetID, entityType, entityID, description string) (account.Account, error) {
	if walletSetID == "" {
		return account.Account{}, ErrMissingWalletSet
	}
	if !account.ValidEntityType(entityType) {
		return account.Account{}, fmt.Errorf("unknown entity type %q", entityType)
	}
	if entityID == "" {
		return account.Account{}, fmt.Errorf("entity id is required")
	}

	w, err := s.provider.CreateWallet(ctx, walletSetID, description)
	if err != nil {
		return account.Account{}, err
	}

	acct := account.Account{
		ID:         uuid.NewString(),
		EntityType: entityType,
		EntityID:   entityID,
		WalletID:   w.ID,
		Currency:   custody.TokenSymbol,
		Status:     account.StatusActive,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.accounts.Create(ctx, acct); err != nil {
		return account.Account{}, err
	}

	s.logger.Info("wallet provisioned", "entity_type", entityType, "entity_id", entityID, "wallet_id", w.ID)
	return acct, nil
}
