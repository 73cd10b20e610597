package custody

import (
	"encoding/json"
	"errors"
	"testing"
)

func decode(t *testing.T, payload string) map[string]any {
	t.Helper()
	var doc map[string]any
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	return doc
}

func TestNormalizeWalletEnvelopeVariants(t *testing.T) {
	variants := []string{
		`{"data":{"wallet":{"id":"w-1","address":"0xabc","blockchain":"MATIC-AMOY"}}}`,
		`{"wallet":{"id":"w-1","address":"0xabc","blockchain":"MATIC-AMOY"}}`,
		`{"id":"w-1","address":"0xabc","blockchain":"MATIC-AMOY"}`,
		`{"data":{"wallets":[{"id":"w-1","address":"0xabc","blockchain":"MATIC-AMOY"}]}}`,
	}

	for i, payload := range variants {
		w, err := normalizeWallet(decode(t, payload))
		if err != nil {
			t.Fatalf("variant %d: %v", i, err)
		}
		if w.ID != "w-1" {
			t.Fatalf("variant %d: expected id w-1, got %q", i, w.ID)
		}
		if w.Address != "0xabc" {
			t.Fatalf("variant %d: expected address 0xabc, got %q", i, w.Address)
		}
	}
}

func TestNormalizeWalletMalformed(t *testing.T) {
	payloads := []string{
		`{"data":{"wallet":{"address":"0xabc"}}}`,
		`{"data":{}}`,
		`{"something":"else"}`,
	}
	for i, payload := range payloads {
		if _, err := normalizeWallet(decode(t, payload)); !errors.Is(err, ErrMalformedResponse) {
			t.Fatalf("payload %d: expected ErrMalformedResponse, got %v", i, err)
		}
	}
}

func TestNormalizeWalletSetIDVariants(t *testing.T) {
	variants := []string{
		`{"data":{"walletSet":{"id":"ws-9"}}}`,
		`{"walletSet":{"id":"ws-9"}}`,
		`{"data":{"id":"ws-9"}}`,
		`{"id":"ws-9"}`,
	}
	for i, payload := range variants {
		id, err := normalizeWalletSetID(decode(t, payload))
		if err != nil {
			t.Fatalf("variant %d: %v", i, err)
		}
		if id != "ws-9" {
			t.Fatalf("variant %d: expected ws-9, got %q", i, id)
		}
	}
}

func TestNormalizeTransactionVariants(t *testing.T) {
	variants := []string{
		`{"data":{"transaction":{"id":"tx-5","state":"COMPLETE"}}}`,
		`{"transaction":{"id":"tx-5","state":"COMPLETE"}}`,
		`{"data":{"id":"tx-5","state":"COMPLETE"}}`,
	}
	for i, payload := range variants {
		tx, err := normalizeTransaction(decode(t, payload))
		if err != nil {
			t.Fatalf("variant %d: %v", i, err)
		}
		if tx.ID != "tx-5" || tx.State != "COMPLETE" {
			t.Fatalf("variant %d: unexpected transfer %+v", i, tx)
		}
	}
}

func TestNormalizeBalancesShapes(t *testing.T) {
	nested := `{"data":{"tokenBalances":[{"token":{"symbol":"USDC"},"amount":"25.50"}]}}`
	balances, err := normalizeBalances(decode(t, nested))
	if err != nil {
		t.Fatalf("nested token shape: %v", err)
	}
	if len(balances) != 1 || balances[0].Symbol != "USDC" {
		t.Fatalf("unexpected balances: %+v", balances)
	}
	if balances[0].Amount.String() != "25.5" {
		t.Fatalf("expected amount 25.5, got %s", balances[0].Amount)
	}

	flat := `{"balances":[{"symbol":"USDC","amount":"3"}]}`
	balances, err = normalizeBalances(decode(t, flat))
	if err != nil {
		t.Fatalf("flat shape: %v", err)
	}
	if len(balances) != 1 || balances[0].Amount.String() != "3" {
		t.Fatalf("unexpected balances: %+v", balances)
	}
}

func TestNormalizeBalancesAbsentIsEmptyNotError(t *testing.T) {
	balances, err := normalizeBalances(decode(t, `{"data":{"wallet":{"id":"w-1"}}}`))
	if err != nil {
		t.Fatalf("expected empty snapshot, got error: %v", err)
	}
	if len(balances) != 0 {
		t.Fatalf("expected no balances, got %+v", balances)
	}
}

func TestNormalizeBalancesBadAmount(t *testing.T) {
	doc := decode(t, `{"tokenBalances":[{"symbol":"USDC","amount":"not-a-number"}]}`)
	if _, err := normalizeBalances(doc); !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}
