package account

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu       sync.RWMutex
	accounts []Account
}

// NewMemoryRepository constructs an in-memory directory with the same
// uniqueness semantics as the Postgres store. Used in tests and dev mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (r *memoryRepository) Create(_ context.Context, acct Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.EntityType == acct.EntityType && existing.EntityID == acct.EntityID && existing.Status == StatusActive {
			return ErrDuplicateEntity
		}
	}
	r.accounts = append(r.accounts, acct)
	return nil
}

func (r *memoryRepository) FindByEntity(_ context.Context, entityType, entityID string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, acct := range r.accounts {
		if acct.EntityType == entityType && acct.EntityID == entityID && acct.Status == StatusActive {
			return acct, nil
		}
	}
	return Account{}, ErrNotFound
}

func (r *memoryRepository) ListByType(_ context.Context, entityType string) ([]Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var accounts []Account
	for _, acct := range r.accounts {
		if acct.EntityType == entityType {
			accounts = append(accounts, acct)
		}
	}
	return accounts, nil
}
