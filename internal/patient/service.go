package patient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/medi-pay/medi_pay/internal/account"
	"github.com/medi-pay/medi_pay/internal/wallet"
)

// Service guarantees at most one active wallet per patient identity,
// provisioning one on demand after the registry confirms the patient.
type Service struct {
	registry Registry
	accounts account.Repository
	wallets  *wallet.Service
	logger   *slog.Logger
}

// NewService constructs a patient wallet resolver.
func NewService(registry Registry, accounts account.Repository, wallets *wallet.Service, logger *slog.Logger) *Service {
	return &Service{registry: registry, accounts: accounts, wallets: wallets, logger: logger}
}

// GetOrCreate returns the patient's account, provisioning a wallet when
// createIfMissing is set. The created flag reports whether this call
// actually provisioned; an idempotent read of an existing account returns
// false. A patient the registry cannot confirm never gets a wallet. Losing
// a concurrent-create race resolves to the winner's account.
func (s *Service) GetOrCreate(ctx context.Context, patientID string, createIfMissing bool) (account.Account, bool, error) {
	if patientID == "" {
		return account.Account{}, false, fmt.Errorf("patient id is required")
	}

	existing, err := s.accounts.FindByEntity(ctx, account.EntityPatient, patientID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, account.ErrNotFound) {
		return account.Account{}, false, err
	}
	if !createIfMissing {
		return account.Account{}, false, account.ErrNotFound
	}

	p, err := s.registry.FindByID(ctx, patientID)
	if err != nil {
		return account.Account{}, false, err
	}

	setID, err := s.wallets.EnsureWalletSet(ctx)
	if err != nil {
		return account.Account{}, false, err
	}

	description := fmt.Sprintf("patient wallet for %s", p.DisplayName)
	created, err := s.wallets.CreateWallet(ctx, setID, account.EntityPatient, patientID, description)
	if err != nil {
		if errors.Is(err, account.ErrDuplicateEntity) {
			// Lost a concurrent create; the winner's account is the account.
			s.logger.Info("patient wallet race lost, reusing winner", "patient_id", patientID)
			acct, err := s.accounts.FindByEntity(ctx, account.EntityPatient, patientID)
			return acct, false, err
		}
		return account.Account{}, false, err
	}
	return created, true, nil
}

// ResolveByContact looks a patient up by phone or email and returns their
// account, provisioning a wallet on first resolution.
func (s *Service) ResolveByContact(ctx context.Context, phone, email string) (account.Account, error) {
	var (
		p   Patient
		err error
	)
	switch {
	case phone != "":
		p, err = s.registry.FindByPhone(ctx, phone)
	case email != "":
		p, err = s.registry.FindByEmail(ctx, email)
	default:
		return account.Account{}, fmt.Errorf("phone or email is required")
	}
	if err != nil {
		return account.Account{}, err
	}
	acct, _, err := s.GetOrCreate(ctx, p.ID, true)
	return acct, err
}
