package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/medi-pay/medi_pay/internal/account"
	"github.com/medi-pay/medi_pay/internal/custody"
	"github.com/medi-pay/medi_pay/internal/logging"
)

func newTestService(provider custody.API, seededSet string) (*Service, account.Repository) {
	repo := account.NewMemoryRepository()
	svc := NewService(provider, repo, custody.NewSetRef(seededSet), logging.Discard())
	return svc, repo
}

func TestCreateWalletRequiresWalletSet(t *testing.T) {
	svc, _ := newTestService(custody.NewStatic(), "")
	_, err := svc.CreateWallet(context.Background(), "", account.EntityPatient, "p1", "patient p1")
	if !errors.Is(err, ErrMissingWalletSet) {
		t.Fatalf("expected ErrMissingWalletSet, got %v", err)
	}
}

func TestCreateWalletPersistsAccount(t *testing.T) {
	ctx := context.Background()
	provider := custody.NewStatic()
	svc, repo := newTestService(provider, "")

	setID, err := svc.EnsureWalletSet(ctx)
	if err != nil {
		t.Fatalf("ensure wallet set: %v", err)
	}
	if setID == "" {
		t.Fatal("empty wallet set id")
	}

	acct, err := svc.CreateWallet(ctx, setID, account.EntityProvider, "clinic-42", "provider clinic-42")
	if err != nil {
		t.Fatalf("create wallet: %v", err)
	}
	if acct.WalletID == "" {
		t.Fatal("wallet id not recorded")
	}
	if acct.Currency != custody.TokenSymbol {
		t.Fatalf("expected %s, got %s", custody.TokenSymbol, acct.Currency)
	}

	stored, err := repo.FindByEntity(ctx, account.EntityProvider, "clinic-42")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if stored.WalletID != acct.WalletID {
		t.Fatalf("stored wallet %s, want %s", stored.WalletID, acct.WalletID)
	}
}

func TestCreateWalletDuplicateEntity(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(custody.NewStatic(), "ws-1")

	if _, err := svc.CreateWallet(ctx, "ws-1", account.EntityPatient, "p1", "patient p1"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.CreateWallet(ctx, "ws-1", account.EntityPatient, "p1", "patient p1")
	if !errors.Is(err, account.ErrDuplicateEntity) {
		t.Fatalf("expected ErrDuplicateEntity, got %v", err)
	}
}

func TestCreateWalletRejectsUnknownEntityType(t *testing.T) {
	svc, _ := newTestService(custody.NewStatic(), "ws-1")
	if _, err := svc.CreateWallet(context.Background(), "ws-1", "vendor", "v1", ""); err == nil {
		t.Fatal("expected error for unknown entity type")
	}
}

func TestEnsureWalletSetReusesConfiguredSet(t *testing.T) {
	provider := custody.NewStatic()
	svc, _ := newTestService(provider, "ws-configured")

	id, err := svc.EnsureWalletSet(context.Background())
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if id != "ws-configured" {
		t.Fatalf("expected configured set, got %s", id)
	}
	if provider.CallCount("CreateWalletSet") != 0 {
		t.Fatal("provider must not be called when a set is configured")
	}
}

func TestEnsureWalletSetCreatesOnce(t *testing.T) {
	ctx := context.Background()
	provider := custody.NewStatic()
	svc, _ := newTestService(provider, "")

	first, err := svc.EnsureWalletSet(ctx)
	if err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	second, err := svc.EnsureWalletSet(ctx)
	if err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if first != second {
		t.Fatalf("wallet set changed: %s then %s", first, second)
	}
	if provider.CallCount("CreateWalletSet") != 1 {
		t.Fatalf("expected a single provider call, got %d", provider.CallCount("CreateWalletSet"))
	}
}
