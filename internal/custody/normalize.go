package custody

import (
	"github.com/shopspring/decimal"
)

// The provider does not nest entities under a consistent key path: the same
// wallet may arrive as data.wallet, data.wallets[0], wallet or the bare
// object depending on the call variant. Each kind probes an ordered list of
// candidate paths and takes the first non-empty match, so a response-shape
// change is a one-place fix here rather than an edit per call site.

var (
	walletPaths = [][]string{
		{"data", "wallet"},
		{"wallet"},
		{},
	}
	walletListPaths = [][]string{
		{"data", "wallets"},
		{"wallets"},
	}
	walletSetPaths = [][]string{
		{"data", "walletSet"},
		{"walletSet"},
		{"data"},
		{},
	}
	transactionPaths = [][]string{
		{"data", "transaction"},
		{"transaction"},
		{"data"},
		{},
	}
	balanceListPaths = [][]string{
		{"data", "tokenBalances"},
		{"tokenBalances"},
		{"data", "balances"},
		{"balances"},
	}
)

func normalizeWallet(doc map[string]any) (Wallet, error) {
	for _, path := range walletPaths {
		obj, ok := dig(doc, path)
		if !ok {
			continue
		}
		if w, ok := walletFromObject(obj); ok {
			return w, nil
		}
	}
	// Single-wallet creation responses sometimes wrap the wallet in a list.
	if wallets, err := normalizeWalletList(doc); err == nil && len(wallets) > 0 {
		return wallets[0], nil
	}
	return Wallet{}, ErrMalformedResponse
}

func normalizeWalletList(doc map[string]any) ([]Wallet, error) {
	for _, path := range walletListPaths {
		obj, ok := dig(doc, path)
		if !ok {
			continue
		}
		items, ok := obj.([]any)
		if !ok {
			continue
		}
		wallets := make([]Wallet, 0, len(items))
		for _, item := range items {
			entry, ok := item.(map[string]any)
			if !ok {
				return nil, ErrMalformedResponse
			}
			w, ok := walletFromObject(entry)
			if !ok {
				return nil, ErrMalformedResponse
			}
			wallets = append(wallets, w)
		}
		return wallets, nil
	}
	return nil, ErrMalformedResponse
}

func normalizeWalletSetID(doc map[string]any) (string, error) {
	for _, path := range walletSetPaths {
		obj, ok := dig(doc, path)
		if !ok {
			continue
		}
		entry, ok := obj.(map[string]any)
		if !ok {
			continue
		}
		if id := stringField(entry, "id"); id != "" {
			return id, nil
		}
	}
	return "", ErrMalformedResponse
}

func normalizeTransaction(doc map[string]any) (Transfer, error) {
	for _, path := range transactionPaths {
		obj, ok := dig(doc, path)
		if !ok {
			continue
		}
		entry, ok := obj.(map[string]any)
		if !ok {
			continue
		}
		id := stringField(entry, "id")
		if id == "" {
			continue
		}
		return Transfer{ID: id, State: stringField(entry, "state")}, nil
	}
	return Transfer{}, ErrMalformedResponse
}

// normalizeBalances extracts the token balance list. A response that carries
// none of the candidate paths is treated as an empty balance list, not an
// error: a freshly created wallet reports nothing at all.
func normalizeBalances(doc map[string]any) ([]TokenBalance, error) {
	for _, path := range balanceListPaths {
		obj, ok := dig(doc, path)
		if !ok {
			continue
		}
		items, ok := obj.([]any)
		if !ok {
			continue
		}
		balances := make([]TokenBalance, 0, len(items))
		for _, item := range items {
			entry, ok := item.(map[string]any)
			if !ok {
				return nil, ErrMalformedResponse
			}
			symbol := stringField(entry, "symbol")
			if symbol == "" {
				if token, ok := entry["token"].(map[string]any); ok {
					symbol = stringField(token, "symbol")
				}
			}
			raw := stringField(entry, "amount")
			if symbol == "" || raw == "" {
				return nil, ErrMalformedResponse
			}
			amount, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, ErrMalformedResponse
			}
			balances = append(balances, TokenBalance{Symbol: symbol, Amount: amount})
		}
		return balances, nil
	}
	return []TokenBalance{}, nil
}

func walletFromObject(obj any) (Wallet, bool) {
	entry, ok := obj.(map[string]any)
	if !ok {
		return Wallet{}, false
	}
	id := stringField(entry, "id")
	if id == "" {
		return Wallet{}, false
	}
	return Wallet{
		ID:          id,
		Address:     stringField(entry, "address"),
		Blockchain:  stringField(entry, "blockchain"),
		Description: stringField(entry, "description"),
		State:       stringField(entry, "state"),
	}, true
}

// dig walks a key path through nested objects. An empty path yields the
// document itself.
func dig(doc map[string]any, path []string) (any, bool) {
	var current any = doc
	for _, key := range path {
		entry, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = entry[key]
		if !ok {
			return nil, false
		}
	}
	return current, current != nil
}

func stringField(entry map[string]any, key string) string {
	value, _ := entry[key].(string)
	return value
}
