package funding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medi-pay/medi_pay/internal/custody"
	"github.com/medi-pay/medi_pay/internal/notification"
)

var (
	// ErrFundingSourceUnavailable indicates no system funding wallet is
	// configured and none could be discovered in the wallet set.
	ErrFundingSourceUnavailable = errors.New("no funding source wallet available")

	// ErrDestinationUnresolvable indicates the target wallet's on-chain
	// address could not be resolved.
	ErrDestinationUnresolvable = errors.New("destination wallet address unresolvable")
)

// Wallet descriptions matching either marker qualify as a funding source
// when no explicit funding wallet id is configured.
var sourceMarkers = []string{"system", "funding"}

// Service moves stablecoin value from the system funding wallet to a target
// wallet and records the outcome.
type Service struct {
	provider        custody.API
	transfers       Repository
	sets            *custody.SetRef
	fundingWalletID string
	notifier        notification.Notifier
	logger          *slog.Logger
}

// NewService constructs a funding orchestrator. fundingWalletID may be
// empty, in which case the source is discovered by description search.
func NewService(provider custody.API, transfers Repository, sets *custody.SetRef, fundingWalletID string, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{
		provider:        provider,
		transfers:       transfers,
		sets:            sets,
		fundingWalletID: fundingWalletID,
		notifier:        notifier,
		logger:          logger,
	}
}

// FundInput captures a funding request.
type FundInput struct {
	TargetWalletID string
	Amount         decimal.Decimal
	ClaimID        string
}

// Fund transfers Amount of the fixed stablecoin from the system funding
// wallet to the target wallet. A provider rejection after address
// resolution still records a pending transfer: sandbox funding sources are
// frequently unfunded, and an operator is expected to fund the source
// out-of-band and retry.
func (s *Service) Fund(ctx context.Context, input FundInput) (Transfer, error) {
	if !input.Amount.IsPositive() {
		return Transfer{}, fmt.Errorf("amount must be positive")
	}
	if input.TargetWalletID == "" {
		return Transfer{}, fmt.Errorf("target wallet id is required")
	}

	sourceID, err := s.resolveSource(ctx)
	if err != nil {
		return Transfer{}, err
	}

	destination, err := s.provider.GetWallet(ctx, input.TargetWalletID)
	if err != nil {
		if errors.Is(err, custody.ErrNotConfigured) {
			return Transfer{}, err
		}
		return Transfer{}, fmt.Errorf("%w: %v", ErrDestinationUnresolvable, err)
	}
	if destination.Address == "" {
		return Transfer{}, fmt.Errorf("%w: wallet %s has no address", ErrDestinationUnresolvable, input.TargetWalletID)
	}

	record := Transfer{
		ID:           uuid.NewString(),
		ClaimID:      input.ClaimID,
		FromWalletID: sourceID,
		ToWalletID:   input.TargetWalletID,
		Amount:       input.Amount,
		Currency:     custody.TokenSymbol,
		Status:       StatusPending,
		CreatedAt:    time.Now().UTC(),
	}

	memo := fmt.Sprintf("MediPay funding %s %s to wallet %s", input.Amount, custody.TokenSymbol, input.TargetWalletID)
	providerID, transferErr := s.provider.CreateTransfer(ctx, custody.TransferRequest{
		SourceWalletID:     sourceID,
		DestinationAddress: destination.Address,
		Amount:             input.Amount,
		Memo:               memo,
	})
	if transferErr != nil {
		// Deliberate degrade-to-pending: keep the record for the operator
		// to retry once the source is funded.
		if err := s.transfers.Create(ctx, record); err != nil {
			s.logger.Error("record pending transfer", "error", err)
			return Transfer{}, errors.Join(transferErr, err)
		}
		s.logger.Warn("funding transfer rejected, recorded pending",
			"transfer_id", record.ID, "target", input.TargetWalletID, "error", transferErr)
		return record, transferErr
	}

	now := time.Now().UTC()
	record.ProviderTransferID = providerID
	record.Status = StatusCompleted
	record.CompletedAt = &now
	if err := s.transfers.Create(ctx, record); err != nil {
		return Transfer{}, err
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindWalletFunded,
			Destination: input.TargetWalletID,
			Body:        fmt.Sprintf("Funded %s %s (transfer %s)", input.Amount, custody.TokenSymbol, providerID),
		})
	}

	s.logger.Info("funding transfer completed",
		"transfer_id", record.ID, "provider_transfer_id", providerID, "target", input.TargetWalletID)
	return record, nil
}

// Get returns one transfer record.
func (s *Service) Get(ctx context.Context, id string) (Transfer, error) {
	return s.transfers.Get(ctx, id)
}

// ReconcileCompleted transitions the pending transfer matching the provider
// transaction id to completed. Terminal records are never re-opened.
func (s *Service) ReconcileCompleted(ctx context.Context, providerTransferID string, completedAt time.Time) error {
	if err := s.transfers.MarkCompleted(ctx, providerTransferID, completedAt); err != nil {
		return err
	}
	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindTransferReconciled,
			Destination: providerTransferID,
			Body:        "transfer completed",
		})
	}
	return nil
}

// ReconcileFailed transitions the pending transfer matching the provider
// transaction id to failed.
func (s *Service) ReconcileFailed(ctx context.Context, providerTransferID string) error {
	return s.transfers.MarkFailed(ctx, providerTransferID)
}

// resolveSource prefers the configured funding wallet and falls back to a
// description search across the configured wallet set.
func (s *Service) resolveSource(ctx context.Context) (string, error) {
	if s.fundingWalletID != "" {
		return s.fundingWalletID, nil
	}

	setID := s.sets.Get()
	if setID == "" {
		return "", ErrFundingSourceUnavailable
	}
	wallets, err := s.provider.ListWallets(ctx, setID)
	if err != nil {
		if errors.Is(err, custody.ErrNotConfigured) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrFundingSourceUnavailable, err)
	}
	for _, w := range wallets {
		desc := strings.ToLower(w.Description)
		for _, marker := range sourceMarkers {
			if strings.Contains(desc, marker) {
				return w.ID, nil
			}
		}
	}
	return "", ErrFundingSourceUnavailable
}
