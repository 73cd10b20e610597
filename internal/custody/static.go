package custody

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Static simulates a fully successful custody provider in memory. It backs
// unit tests across the orchestration packages; tests needing failures embed
// it and override the relevant method.
type Static struct {
	mu        sync.Mutex
	wallets   map[string]Wallet
	sets      map[string][]string
	transfers map[string]Transfer
	balances  map[string][]TokenBalance
	calls     map[string]int
}

// NewStatic builds an empty in-memory provider.
func NewStatic() *Static {
	return &Static{
		wallets:   make(map[string]Wallet),
		sets:      make(map[string][]string),
		transfers: make(map[string]Transfer),
		balances:  make(map[string][]TokenBalance),
		calls:     make(map[string]int),
	}
}

// CallCount reports how many times the named operation was invoked.
func (s *Static) CallCount(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// SeedBalance sets the reported balances for a wallet.
func (s *Static) SeedBalance(walletID string, balances []TokenBalance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[walletID] = balances
}

func (s *Static) CreateWalletSet(_ context.Context, name, description string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["CreateWalletSet"]++
	id := uuid.NewString()
	s.sets[id] = nil
	return id, nil
}

func (s *Static) CreateWallet(_ context.Context, walletSetID, description string) (Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["CreateWallet"]++
	w := Wallet{
		ID:          uuid.NewString(),
		Address:     "0x" + uuid.NewString()[:8],
		Blockchain:  Blockchain,
		Description: description,
		State:       "LIVE",
	}
	s.wallets[w.ID] = w
	s.sets[walletSetID] = append(s.sets[walletSetID], w.ID)
	return w, nil
}

func (s *Static) GetWallet(_ context.Context, walletID string) (Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["GetWallet"]++
	w, ok := s.wallets[walletID]
	if !ok {
		return Wallet{}, &ProviderError{Op: "GetWallet", Status: 404, Message: fmt.Sprintf("wallet %s not found", walletID)}
	}
	return w, nil
}

func (s *Static) ListWallets(_ context.Context, walletSetID string) ([]Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["ListWallets"]++
	ids := s.sets[walletSetID]
	wallets := make([]Wallet, 0, len(ids))
	for _, id := range ids {
		wallets = append(wallets, s.wallets[id])
	}
	return wallets, nil
}

func (s *Static) WalletWithBalances(ctx context.Context, walletID string) (Wallet, []TokenBalance, error) {
	w, err := s.GetWallet(ctx, walletID)
	if err != nil {
		return Wallet{}, nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["WalletWithBalances"]++
	return w, s.balances[walletID], nil
}

func (s *Static) TokenBalances(_ context.Context, walletID string) ([]TokenBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["TokenBalances"]++
	return s.balances[walletID], nil
}

func (s *Static) CreateTransfer(_ context.Context, req TransferRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["CreateTransfer"]++
	tx := Transfer{ID: uuid.NewString(), State: "COMPLETE"}
	s.transfers[tx.ID] = tx
	return tx.ID, nil
}

func (s *Static) GetTransfer(_ context.Context, transferID string) (Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["GetTransfer"]++
	tx, ok := s.transfers[transferID]
	if !ok {
		return Transfer{}, &ProviderError{Op: "GetTransfer", Status: 404, Message: fmt.Sprintf("transfer %s not found", transferID)}
	}
	return tx, nil
}
