package index

import (
	"sync/atomic"

	apperrors "pubsearch/pkg/errors"
)

// Holder owns the published index snapshot. A rebuild constructs a fresh
// State off to the side and publishes it with a single atomic pointer swap,
// so in-flight readers always observe one consistent snapshot and never a
// mix of old and new postings. Snapshots themselves are read-only and need
// no locking.
type Holder struct {
	current atomic.Pointer[State]
}

// NewHolder returns an uninitialised Holder. Snapshot fails until the first
// Publish.
func NewHolder() *Holder {
	return &Holder{}
}

// Snapshot returns the currently published state, or ErrIndexNotReady when
// no build or load has succeeded yet.
func (h *Holder) Snapshot() (*State, error) {
	if s := h.current.Load(); s != nil {
		return s, nil
	}
	return nil, apperrors.ErrIndexNotReady
}

// Publish atomically replaces the published state. Readers holding the
// previous snapshot keep it until they finish.
func (h *Holder) Publish(s *State) {
	h.current.Store(s)
}

// Ready reports whether a snapshot has been published.
func (h *Holder) Ready() bool {
	return h.current.Load() != nil
}
