package funding

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu        sync.RWMutex
	transfers []Transfer
}

// NewMemoryRepository constructs an in-memory transfer store for tests and
// dev mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (r *memoryRepository) Create(_ context.Context, transfer Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transfers = append(r.transfers, transfer)
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.transfers {
		if t.ID == id {
			return t, nil
		}
	}
	return Transfer{}, ErrTransferNotFound
}

func (r *memoryRepository) FindByProviderID(_ context.Context, providerTransferID string) (Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.transfers {
		if t.ProviderTransferID == providerTransferID && providerTransferID != "" {
			return t, nil
		}
	}
	return Transfer{}, ErrTransferNotFound
}

func (r *memoryRepository) MarkCompleted(_ context.Context, providerTransferID string, completedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.transfers {
		if r.transfers[i].ProviderTransferID == providerTransferID && r.transfers[i].Status == StatusPending {
			utc := completedAt.UTC()
			r.transfers[i].Status = StatusCompleted
			r.transfers[i].CompletedAt = &utc
			return nil
		}
	}
	return ErrTransferNotFound
}

func (r *memoryRepository) MarkFailed(_ context.Context, providerTransferID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.transfers {
		if r.transfers[i].ProviderTransferID == providerTransferID && r.transfers[i].Status == StatusPending {
			r.transfers[i].Status = StatusFailed
			return nil
		}
	}
	return ErrTransferNotFound
}
