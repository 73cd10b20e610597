package custody

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultTimeout = 15 * time.Second

// Config captures the credentials and endpoint for the custody provider.
// An empty APIKey disables the whole orchestration layer.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client is the HTTP connector to the remote custody provider. Every
// mutating call carries a freshly generated v4 UUID idempotency token, so a
// retry after an unknown-outcome failure (e.g. a timeout) is always safe to
// re-issue with a new token and risks at most a duplicate.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// NewClient builds a custody client. The client is returned even without
// credentials; each operation then fails fast with ErrNotConfigured before
// any network I/O.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Configured reports whether provider credentials are present.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != "" && c.cfg.BaseURL != ""
}

// CreateWalletSet provisions a new wallet grouping and returns its id.
func (c *Client) CreateWalletSet(ctx context.Context, name, description string) (string, error) {
	doc, err := c.do(ctx, http.MethodPost, "/v1/walletSets", map[string]any{
		"idempotencyKey": uuid.NewString(),
		"name":           name,
		"description":    description,
	})
	if err != nil {
		return "", err
	}
	id, err := normalizeWalletSetID(doc)
	if err != nil {
		return "", fmt.Errorf("create wallet set: %w", err)
	}
	return id, nil
}

// CreateWallet provisions a single smart-contract wallet under the given
// wallet set on the fixed settlement network.
func (c *Client) CreateWallet(ctx context.Context, walletSetID, description string) (Wallet, error) {
	doc, err := c.do(ctx, http.MethodPost, "/v1/wallets", map[string]any{
		"idempotencyKey": uuid.NewString(),
		"walletSetId":    walletSetID,
		"blockchains":    []string{Blockchain},
		"accountType":    AccountType,
		"count":          1,
		"metadata":       []map[string]any{{"name": description}},
	})
	if err != nil {
		return Wallet{}, err
	}
	w, err := normalizeWallet(doc)
	if err != nil {
		return Wallet{}, fmt.Errorf("create wallet: %w", err)
	}
	return w, nil
}

// GetWallet fetches one wallet, including its on-chain address.
func (c *Client) GetWallet(ctx context.Context, walletID string) (Wallet, error) {
	doc, err := c.do(ctx, http.MethodGet, "/v1/wallets/"+url.PathEscape(walletID), nil)
	if err != nil {
		return Wallet{}, err
	}
	w, err := normalizeWallet(doc)
	if err != nil {
		return Wallet{}, fmt.Errorf("get wallet %s: %w", walletID, err)
	}
	return w, nil
}

// ListWallets returns every wallet in a wallet set.
func (c *Client) ListWallets(ctx context.Context, walletSetID string) ([]Wallet, error) {
	doc, err := c.do(ctx, http.MethodGet, "/v1/wallets?walletSetId="+url.QueryEscape(walletSetID), nil)
	if err != nil {
		return nil, err
	}
	wallets, err := normalizeWalletList(doc)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	return wallets, nil
}

// WalletWithBalances fetches a wallet together with its live token balances
// in a single combined query.
func (c *Client) WalletWithBalances(ctx context.Context, walletID string) (Wallet, []TokenBalance, error) {
	doc, err := c.do(ctx, http.MethodGet, "/v1/wallets/"+url.PathEscape(walletID)+"?includeBalances=true", nil)
	if err != nil {
		return Wallet{}, nil, err
	}
	w, err := normalizeWallet(doc)
	if err != nil {
		return Wallet{}, nil, fmt.Errorf("get wallet %s: %w", walletID, err)
	}
	balances, err := normalizeBalances(doc)
	if err != nil {
		return Wallet{}, nil, fmt.Errorf("wallet %s balances: %w", walletID, err)
	}
	return w, balances, nil
}

// TokenBalances fetches only the token balance list for a wallet.
func (c *Client) TokenBalances(ctx context.Context, walletID string) ([]TokenBalance, error) {
	doc, err := c.do(ctx, http.MethodGet, "/v1/wallets/"+url.PathEscape(walletID)+"/balances", nil)
	if err != nil {
		return nil, err
	}
	balances, err := normalizeBalances(doc)
	if err != nil {
		return nil, fmt.Errorf("wallet %s balances: %w", walletID, err)
	}
	return balances, nil
}

// CreateTransfer submits a stablecoin transfer and returns the provider
// transaction id.
func (c *Client) CreateTransfer(ctx context.Context, req TransferRequest) (string, error) {
	doc, err := c.do(ctx, http.MethodPost, "/v1/transactions/transfer", map[string]any{
		"idempotencyKey":     uuid.NewString(),
		"walletId":           req.SourceWalletID,
		"destinationAddress": req.DestinationAddress,
		"amounts":            []string{req.Amount.String()},
		"tokenSymbol":        TokenSymbol,
		"feeLevel":           FeeLevel,
		"memo":               req.Memo,
	})
	if err != nil {
		return "", err
	}
	tx, err := normalizeTransaction(doc)
	if err != nil {
		return "", fmt.Errorf("create transfer: %w", err)
	}
	return tx.ID, nil
}

// GetTransfer fetches the current state of a provider transaction.
func (c *Client) GetTransfer(ctx context.Context, transferID string) (Transfer, error) {
	doc, err := c.do(ctx, http.MethodGet, "/v1/transactions/"+url.PathEscape(transferID), nil)
	if err != nil {
		return Transfer{}, err
	}
	tx, err := normalizeTransaction(doc)
	if err != nil {
		return Transfer{}, fmt.Errorf("get transfer %s: %w", transferID, err)
	}
	return tx, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (map[string]any, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Unknown outcome: the request may have been applied server-side.
		// Safe to retry because tokens are fresh per call.
		return nil, &ProviderError{Op: method + " " + path, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Op: method + " " + path, Status: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("custody call rejected", "method", method, "path", path, "status", resp.StatusCode)
		return nil, &ProviderError{
			Op:      method + " " + path,
			Status:  resp.StatusCode,
			Message: providerMessage(raw),
			Raw:     raw,
		}
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, err)
	}
	return doc, nil
}

func providerMessage(raw []byte) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	return "provider rejected the request"
}
