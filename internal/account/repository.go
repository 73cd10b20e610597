package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrDuplicateEntity indicates an active account already exists for the
	// (entity_type, entity_id) key.
	ErrDuplicateEntity = errors.New("active account exists for entity")

	// ErrNotFound indicates no account exists for the requested key.
	ErrNotFound = errors.New("account not found")
)

// Repository persists the directory of entity-to-wallet mappings. Creation
// is append-only; uniqueness of active accounts per entity key is enforced
// by the store, not by application-level locking.
type Repository interface {
	Create(ctx context.Context, acct Account) error
	FindByEntity(ctx context.Context, entityType, entityID string) (Account, error)
	ListByType(ctx context.Context, entityType string) ([]Account, error)
}

// PostgresRepository stores accounts in PostgreSQL. The wallet_accounts
// table carries a partial unique index on (entity_type, entity_id) where
// status = 'active'.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a directory record, mapping the unique violation onto
// ErrDuplicateEntity so create races resolve via re-read.
func (r *PostgresRepository) Create(ctx context.Context, acct Account) error {
	id, err := uuid.Parse(acct.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO wallet_accounts (id, entity_type, entity_id, wallet_id, currency, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, acct.EntityType, acct.EntityID, acct.WalletID, acct.Currency, acct.Status, acct.CreatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateEntity
	}
	return err
}

// FindByEntity returns the active account for the entity key.
func (r *PostgresRepository) FindByEntity(ctx context.Context, entityType, entityID string) (Account, error) {
	row := r.db.QueryRow(ctx, `SELECT id, entity_type, entity_id, wallet_id, currency, status, created_at
        FROM wallet_accounts WHERE entity_type = $1 AND entity_id = $2 AND status = $3`,
		entityType, entityID, StatusActive)
	return scanAccount(row)
}

// ListByType returns all accounts of one entity class in creation order.
func (r *PostgresRepository) ListByType(ctx context.Context, entityType string) ([]Account, error) {
	rows, err := r.db.Query(ctx, `SELECT id, entity_type, entity_id, wallet_id, currency, status, created_at
        FROM wallet_accounts WHERE entity_type = $1 ORDER BY created_at ASC`, entityType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acct)
	}
	return accounts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (Account, error) {
	var acct Account
	var id uuid.UUID
	var createdAt time.Time
	err := row.Scan(&id, &acct.EntityType, &acct.EntityID, &acct.WalletID, &acct.Currency, &acct.Status, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	if err != nil {
		return Account{}, err
	}
	acct.ID = id.String()
	acct.CreatedAt = createdAt.UTC()
	return acct, nil
}
