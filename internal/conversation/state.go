// Package conversation tracks per-user throttling and multi-turn dialog
// state. All state is in-memory and process-local.
package conversation

import (
	"sync"
	"time"
)

// Verdict is the outcome of a cooldown check.
type Verdict int

const (
	// Allow: no live cooldown, the action may proceed.
	Allow Verdict = iota
	// Warn: a cooldown is live and the user has not been warned yet.
	// The caller sends exactly one rate-limit notice.
	Warn
	// Deny: a cooldown is live and the warning was already sent.
	// The caller drops the action silently.
	Deny
)

type cooldownRecord struct {
	nextAllowedAt time.Time
	warned        bool
}

// State holds cooldown records and the set of users mid multi-turn
// dialog. Safe for concurrent use.
type State struct {
	mu         sync.Mutex
	cooldowns  map[string]*cooldownRecord
	incomplete map[string]struct{}

	now func() time.Time
}

func NewState() *State {
	return &State{
		cooldowns:  make(map[string]*cooldownRecord),
		incomplete: make(map[string]struct{}),
		now:        time.Now,
	}
}

// CheckCooldown returns the verdict for a user and, for Warn, the time
// remaining in the window. Expired records are pruned on check; the
// warned flag is never reset early within a live window.
func (s *State) CheckCooldown(userID string) (Verdict, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.cooldowns[userID]
	if !ok {
		return Allow, 0
	}
	now := s.now()
	if !now.Before(rec.nextAllowedAt) {
		delete(s.cooldowns, userID)
		return Allow, 0
	}
	remaining := rec.nextAllowedAt.Sub(now)
	if rec.warned {
		return Deny, remaining
	}
	rec.warned = true
	return Warn, remaining
}

// StartCooldown opens a fresh window for the user. Called after a
// successful guarded dispatch: throttling follows success, not every
// inbound event.
func (s *State) StartCooldown(userID string, window time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cooldowns[userID] = &cooldownRecord{nextAllowedAt: s.now().Add(window)}
}

// MarkIncomplete records that the user is mid multi-turn dialog, so
// plain messages from them keep flowing through the intent pipeline.
func (s *State) MarkIncomplete(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incomplete[userID] = struct{}{}
}

// ClearIncomplete ends the user's multi-turn dialog.
func (s *State) ClearIncomplete(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.incomplete, userID)
}

// IsIncomplete reports whether the user is mid multi-turn dialog.
func (s *State) IsIncomplete(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.incomplete[userID]
	return ok
}
