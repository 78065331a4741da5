package messaging

import "sync"

type removalState int

const (
	stateActive removalState = iota
	statePendingRemoval
)

// RemovableRegistry tracks bot messages that users may delete with a
// reaction. A message is Active from the moment it is sent until the
// delete reaction claims it, PendingRemoval while the tombstone is up,
// and evicted once the tombstone expires. Mutated concurrently from
// reaction handlers and expiry timers.
type RemovableRegistry struct {
	mu     sync.Mutex
	states map[string]removalState
}

func NewRemovableRegistry() *RemovableRegistry {
	return &RemovableRegistry{states: make(map[string]removalState)}
}

// Track registers a freshly sent message as Active.
func (r *RemovableRegistry) Track(messageID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[messageID] = stateActive
}

// BeginRemoval transitions Active → PendingRemoval. Returns true for
// exactly one caller; untracked or already-pending messages return
// false, making duplicate reaction events no-ops.
func (r *RemovableRegistry) BeginRemoval(messageID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.states[messageID]
	if !ok || st != stateActive {
		return false
	}
	r.states[messageID] = statePendingRemoval
	return true
}

// Evict removes the message from the registry. Idempotent.
func (r *RemovableRegistry) Evict(messageID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, messageID)
}

// Tracked reports whether the message is still in the registry.
func (r *RemovableRegistry) Tracked(messageID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.states[messageID]
	return ok
}
