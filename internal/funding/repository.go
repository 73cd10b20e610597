package funding

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrTransferNotFound indicates no transfer record matches the requested
// identifier.
var ErrTransferNotFound = errors.New("transfer not found")

// Repository persists transfer records. Records are created once and only
// ever transition pending -> completed or pending -> failed; terminal
// records are never re-opened.
type Repository interface {
	Create(ctx context.Context, transfer Transfer) error
	Get(ctx context.Context, id string) (Transfer, error)
	FindByProviderID(ctx context.Context, providerTransferID string) (Transfer, error)
	MarkCompleted(ctx context.Context, providerTransferID string, completedAt time.Time) error
	MarkFailed(ctx context.Context, providerTransferID string) error
}

// PostgresRepository stores transfers in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a transfer repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a transfer record.
func (r *PostgresRepository) Create(ctx context.Context, transfer Transfer) error {
	id, err := uuid.Parse(transfer.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO transfers (id, claim_id, from_wallet_id, to_wallet_id, amount, currency, provider_transfer_id, status, created_at, completed_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id, transfer.ClaimID, transfer.FromWalletID, transfer.ToWalletID, transfer.Amount.String(),
		transfer.Currency, transfer.ProviderTransferID, transfer.Status, transfer.CreatedAt.UTC(), transfer.CompletedAt)
	return err
}

// Get fetches one transfer record by internal id.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Transfer, error) {
	transferID, err := uuid.Parse(id)
	if err != nil {
		return Transfer{}, err
	}
	row := r.db.QueryRow(ctx, selectTransfer+` WHERE id = $1`, transferID)
	return scanTransfer(row)
}

// FindByProviderID fetches one transfer record by the provider-assigned
// transaction id.
func (r *PostgresRepository) FindByProviderID(ctx context.Context, providerTransferID string) (Transfer, error) {
	row := r.db.QueryRow(ctx, selectTransfer+` WHERE provider_transfer_id = $1`, providerTransferID)
	return scanTransfer(row)
}

// MarkCompleted transitions a pending transfer to completed. Terminal
// records are left untouched.
func (r *PostgresRepository) MarkCompleted(ctx context.Context, providerTransferID string, completedAt time.Time) error {
	tag, err := r.db.Exec(ctx, `UPDATE transfers SET status = $1, completed_at = $2
        WHERE provider_transfer_id = $3 AND status = $4`,
		StatusCompleted, completedAt.UTC(), providerTransferID, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTransferNotFound
	}
	return nil
}

// MarkFailed transitions a pending transfer to failed.
func (r *PostgresRepository) MarkFailed(ctx context.Context, providerTransferID string) error {
	tag, err := r.db.Exec(ctx, `UPDATE transfers SET status = $1
        WHERE provider_transfer_id = $2 AND status = $3`,
		StatusFailed, providerTransferID, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTransferNotFound
	}
	return nil
}

const selectTransfer = `SELECT id, claim_id, from_wallet_id, to_wallet_id, amount, currency, provider_transfer_id, status, created_at, completed_at FROM transfers`

func scanTransfer(row pgx.Row) (Transfer, error) {
	var t Transfer
	var id uuid.UUID
	var amount string
	var createdAt time.Time
	var completedAt *time.Time
	err := row.Scan(&id, &t.ClaimID, &t.FromWalletID, &t.ToWalletID, &amount, &t.Currency, &t.ProviderTransferID, &t.Status, &createdAt, &completedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Transfer{}, ErrTransferNotFound
	}
	if err != nil {
		return Transfer{}, err
	}
	t.ID = id.String()
	t.CreatedAt = createdAt.UTC()
	if completedAt != nil {
		utc := completedAt.UTC()
		t.CompletedAt = &utc
	}
	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return Transfer{}, err
	}
	t.Amount = parsed
	return t, nil
}
