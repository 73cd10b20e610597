package custody

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured indicates custody credentials are absent. Every
	// operation checks this before attempting network I/O.
	ErrNotConfigured = errors.New("custody provider not configured")

	// ErrMalformedResponse indicates the provider replied but no recognized
	// envelope shape contained the expected entity.
	ErrMalformedResponse = errors.New("unrecognized custody response shape")
)

// ProviderError reports a call that reached the provider and was rejected or
// errored. Raw carries the unmodified response body for operator diagnosis.
type ProviderError struct {
	Op      string
	Status  int
	Message string
	Raw     []byte
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("custody %s: status %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("custody %s: %s", e.Op, e.Message)
}
