package balance

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/medi-pay/medi_pay/internal/custody"
	"github.com/medi-pay/medi_pay/internal/logging"
)

type combinedFailingProvider struct {
	*custody.Static
}

func (p *combinedFailingProvider) WalletWithBalances(context.Context, string) (custody.Wallet, []custody.TokenBalance, error) {
	return custody.Wallet{}, nil, &custody.ProviderError{Op: "WalletWithBalances", Status: 500, Message: "upstream error"}
}

type fullyFailingProvider struct {
	*custody.Static
}

func (p *fullyFailingProvider) WalletWithBalances(context.Context, string) (custody.Wallet, []custody.TokenBalance, error) {
	return custody.Wallet{}, nil, &custody.ProviderError{Op: "WalletWithBalances", Status: 500, Message: "upstream error"}
}

func (p *fullyFailingProvider) TokenBalances(context.Context, string) ([]custody.TokenBalance, error) {
	return nil, &custody.ProviderError{Op: "TokenBalances", Status: 500, Message: "upstream error"}
}

type unconfiguredProvider struct {
	*custody.Static
}

func (p *unconfiguredProvider) WalletWithBalances(context.Context, string) (custody.Wallet, []custody.TokenBalance, error) {
	return custody.Wallet{}, nil, custody.ErrNotConfigured
}

func TestReadCombinedEndpoint(t *testing.T) {
	provider := custody.NewStatic()
	w, err := provider.CreateWallet(context.Background(), "ws-1", "patient p1")
	if err != nil {
		t.Fatalf("seed wallet: %v", err)
	}
	provider.SeedBalance(w.ID, []custody.TokenBalance{{Symbol: custody.TokenSymbol, Amount: decimal.NewFromInt(42)}})

	svc := NewService(provider, logging.Discard())
	snapshot, err := svc.Read(context.Background(), w.ID)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if snapshot.WalletID != w.ID || snapshot.Address != w.Address {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
	if len(snapshot.Balances) != 1 || !snapshot.Balances[0].Amount.Equal(decimal.NewFromInt(42)) {
		t.Fatalf("unexpected balances: %+v", snapshot.Balances)
	}
}

func TestReadEmptyBalancesIsNotAnError(t *testing.T) {
	provider := custody.NewStatic()
	w, err := provider.CreateWallet(context.Background(), "ws-1", "patient p1")
	if err != nil {
		t.Fatalf("seed wallet: %v", err)
	}

	svc := NewService(provider, logging.Discard())
	snapshot, err := svc.Read(context.Background(), w.ID)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if snapshot.Balances == nil || len(snapshot.Balances) != 0 {
		t.Fatalf("expected empty non-nil balances, got %#v", snapshot.Balances)
	}
}

func TestReadFallsBackToBalancesEndpoint(t *testing.T) {
	static := custody.NewStatic()
	static.SeedBalance("w-1", []custody.TokenBalance{{Symbol: custody.TokenSymbol, Amount: decimal.NewFromInt(7)}})

	svc := NewService(&combinedFailingProvider{Static: static}, logging.Discard())
	snapshot, err := svc.Read(context.Background(), "w-1")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(snapshot.Balances) != 1 {
		t.Fatalf("expected fallback balances, got %+v", snapshot.Balances)
	}
	if static.CallCount("TokenBalances") != 1 {
		t.Fatalf("expected fallback call, got %d", static.CallCount("TokenBalances"))
	}
}

func TestReadDegradesToEmptyOnDoubleFailure(t *testing.T) {
	svc := NewService(&fullyFailingProvider{Static: custody.NewStatic()}, logging.Discard())
	snapshot, err := svc.Read(context.Background(), "w-1")
	if err != nil {
		t.Fatalf("degraded read must not error, got %v", err)
	}
	if !snapshot.Degraded {
		t.Fatal("expected degraded snapshot")
	}
	if len(snapshot.Balances) != 0 {
		t.Fatalf("expected empty balances, got %+v", snapshot.Balances)
	}
}

func TestReadUnconfiguredFailsFast(t *testing.T) {
	static := custody.NewStatic()
	svc := NewService(&unconfiguredProvider{Static: static}, logging.Discard())
	_, err := svc.Read(context.Background(), "w-1")
	if !errors.Is(err, custody.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if static.CallCount("TokenBalances") != 0 {
		t.Fatal("unconfigured provider must not be retried")
	}
}
