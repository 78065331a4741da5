package messaging

import "sync"

// MessageRef locates a message on the platform.
type MessageRef struct {
	ChannelID string
	MessageID string
}

// Ledger maps a trigger message id to the reply the bot sent for it, so
// deleting the trigger cascades to the reply. Entries are written only
// after a successful send and removed when the cascade fires, keeping
// the map bounded by live trigger messages.
type Ledger struct {
	mu      sync.Mutex
	entries map[string]MessageRef
}

func NewLedger() *Ledger {
	return &Ledger{entries: make(map[string]MessageRef)}
}

// Record associates a trigger message with the reply sent for it.
func (l *Ledger) Record(triggerID string, reply MessageRef) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[triggerID] = reply
}

// Take removes and returns the reply for a trigger. The second return
// is false when the trigger is untracked, which makes repeated delete
// notifications no-ops.
func (l *Ledger) Take(triggerID string) (MessageRef, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ref, ok := l.entries[triggerID]
	if ok {
		delete(l.entries, triggerID)
	}
	return ref, ok
}

// Len returns the number of live entries.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
