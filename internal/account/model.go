package account

import "time"

// Entity classes that can own a custodial wallet.
const (
	EntityProvider = "provider"
	EntityInsurer  = "insurer"
	EntityPatient  = "patient"
	EntitySystem   = "system"
)

const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

// Account maps an internal entity identity onto an externally provisioned
// wallet. WalletID is immutable once set; correcting a mis-provisioned
// wallet means creating a new record and suspending the old one.
type Account struct {
	ID         string
	EntityType string
	EntityID   string
	WalletID   string
	Currency   string
	Status     string
	CreatedAt  time.Time
}

// ValidEntityType reports whether t names a known entity class.
func ValidEntityType(t string) bool {
	switch t {
	case EntityProvider, EntityInsurer, EntityPatient, EntitySystem:
		return true
	}
	return false
}
