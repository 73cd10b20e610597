package funding

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// StatusPending marks a transfer whose provider call has not succeeded
	// yet. A funding attempt rejected by the provider stays pending so an
	// operator can fund the source out-of-band and retry.
	StatusPending = "pending"
	// StatusCompleted marks a transfer the provider accepted. The provider
	// call is treated as settlement-equivalent; on-chain finality is not
	// tracked separately.
	StatusCompleted = "completed"
	// StatusFailed marks a transfer the provider reported as failed after
	// acceptance.
	StatusFailed = "failed"
)

// Transfer records one value movement between wallets.
type Transfer struct {
	ID                 string
	ClaimID            string
	FromWalletID       string
	ToWalletID         string
	Amount             decimal.Decimal
	Currency           string
	ProviderTransferID string
	Status             string
	CreatedAt          time.Time
	CompletedAt        *time.Time
}
