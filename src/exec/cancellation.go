package exec

import "sync/atomic"

// CancellationToken is threaded through the executor and checked by each
// chunk worker before starting a chunk (spec.md §5: "checked cooperatively
// between chunks, not between rows").
type CancellationToken struct {
	canceled atomic.Bool
}

// NewCancellationToken returns a token in the not-canceled state.
func NewCancellationToken() *CancellationToken { return &CancellationToken{} }

// Cancel marks the token canceled; safe to call more than once or
// concurrently with Canceled.
func (t *CancellationToken) Cancel() { t.canceled.Store(true) }

// Canceled reports whether Cancel has been called.
func (t *CancellationToken) Canceled() bool {
	if t == nil {
		return false
	}
	return t.canceled.Load()
}
