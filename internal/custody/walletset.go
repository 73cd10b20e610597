package custody

import "sync"

// SetRef holds the process-wide wallet set identifier. The value is set
// lazily on first successful provisioning with first-writer-wins semantics:
// concurrent first-use races may each create a wallet set, but only one id
// is published and duplicate sets are tolerated (wallet sets are cheap and
// per-call idempotency tokens prevent duplicate wallets within the winner).
type SetRef struct {
	mu sync.Mutex
	id string
}

// NewSetRef seeds the reference, typically from configuration. An empty
// seed leaves the reference unset until the first Publish.
func NewSetRef(id string) *SetRef {
	return &SetRef{id: id}
}

// Get returns the current wallet set id, or "" when none is known yet.
func (r *SetRef) Get() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.id
}

// Publish records id if no wallet set is known yet and returns the winning
// value either way.
func (r *SetRef) Publish(id string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.id == "" {
		r.id = id
	}
	return r.id
}
