package patient

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/medi-pay/medi_pay/internal/account"
	"github.com/medi-pay/medi_pay/internal/custody"
	"github.com/medi-pay/medi_pay/internal/logging"
	"github.com/medi-pay/medi_pay/internal/wallet"
)

func newResolver(registry Registry) (*Service, account.Repository, *custody.Static) {
	provider := custody.NewStatic()
	accounts := account.NewMemoryRepository()
	wallets := wallet.NewService(provider, accounts, custody.NewSetRef(""), logging.Discard())
	return NewService(registry, accounts, wallets, logging.Discard()), accounts, provider
}

func TestGetOrCreateProvisionsOnFirstUse(t *testing.T) {
	ctx := context.Background()
	registry := NewMemoryRegistry()
	registry.Add(Patient{ID: "p1", DisplayName: "Ada Lovelace"}, "", "")
	svc, accounts, provider := newResolver(registry)

	acct, created, err := svc.GetOrCreate(ctx, "p1", true)
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if !created {
		t.Fatal("first resolution must report a provisioned wallet")
	}
	if acct.EntityType != account.EntityPatient || acct.EntityID != "p1" {
		t.Fatalf("unexpected account: %+v", acct)
	}
	if acct.WalletID == "" {
		t.Fatal("account must carry a wallet id")
	}
	if provider.CallCount("CreateWalletSet") != 1 {
		t.Fatalf("expected lazy wallet set creation, got %d calls", provider.CallCount("CreateWalletSet"))
	}

	stored, err := accounts.FindByEntity(ctx, account.EntityPatient, "p1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if stored.WalletID != acct.WalletID {
		t.Fatal("stored account does not match returned account")
	}
}

func TestGetOrCreateSecondCallMakesNoProviderCall(t *testing.T) {
	ctx := context.Background()
	registry := NewMemoryRegistry()
	registry.Add(Patient{ID: "p1", DisplayName: "Ada Lovelace"}, "", "")
	svc, _, provider := newResolver(registry)

	first, _, err := svc.GetOrCreate(ctx, "p1", true)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	createCalls := provider.CallCount("CreateWallet")

	second, created, err := svc.GetOrCreate(ctx, "p1", true)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if created {
		t.Fatal("idempotent read must not report a provisioned wallet")
	}
	if second.WalletID != first.WalletID {
		t.Fatalf("expected same wallet, got %s and %s", first.WalletID, second.WalletID)
	}
	if provider.CallCount("CreateWallet") != createCalls {
		t.Fatal("second resolution must not call the provider")
	}
}

func TestGetOrCreateLookupOnly(t *testing.T) {
	registry := NewMemoryRegistry()
	registry.Add(Patient{ID: "p1", DisplayName: "Ada Lovelace"}, "", "")
	svc, _, provider := newResolver(registry)

	_, _, err := svc.GetOrCreate(context.Background(), "p1", false)
	if !errors.Is(err, account.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if provider.CallCount("CreateWallet") != 0 {
		t.Fatal("lookup-only resolution must not provision")
	}
}

func TestGetOrCreateUnknownPatient(t *testing.T) {
	svc, _, provider := newResolver(NewMemoryRegistry())

	_, _, err := svc.GetOrCreate(context.Background(), "ghost", true)
	if !errors.Is(err, ErrUnknownPatient) {
		t.Fatalf("expected ErrUnknownPatient, got %v", err)
	}
	if provider.CallCount("CreateWallet") != 0 {
		t.Fatal("unconfirmed patients must not get wallets")
	}
}

func TestGetOrCreateConcurrent(t *testing.T) {
	ctx := context.Background()
	registry := NewMemoryRegistry()
	registry.Add(Patient{ID: "p1", DisplayName: "Ada Lovelace"}, "", "")
	svc, _, _ := newResolver(registry)

	const n = 16
	results := make([]account.Account, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _, errs[i] = svc.GetOrCreate(ctx, "p1", true)
		}(i)
	}
	wg.Wait()

	walletID := ""
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("resolver %d: %v", i, errs[i])
		}
		if walletID == "" {
			walletID = results[i].WalletID
		}
		if results[i].WalletID != walletID {
			t.Fatalf("resolver %d observed wallet %s, want %s", i, results[i].WalletID, walletID)
		}
	}
}

func TestResolveByContact(t *testing.T) {
	ctx := context.Background()
	registry := NewMemoryRegistry()
	registry.Add(Patient{ID: "p1", DisplayName: "Ada Lovelace"}, "+15550001111", "ada@example.org")
	svc, _, _ := newResolver(registry)

	byPhone, err := svc.ResolveByContact(ctx, "+15550001111", "")
	if err != nil {
		t.Fatalf("by phone: %v", err)
	}
	byEmail, err := svc.ResolveByContact(ctx, "", "ada@example.org")
	if err != nil {
		t.Fatalf("by email: %v", err)
	}
	if byPhone.WalletID != byEmail.WalletID {
		t.Fatal("contact points must resolve to the same account")
	}

	if _, err := svc.ResolveByContact(ctx, "+15559999999", ""); !errors.Is(err, ErrUnknownPatient) {
		t.Fatalf("expected ErrUnknownPatient, got %v", err)
	}
}
