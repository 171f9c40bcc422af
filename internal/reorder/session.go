// Package reorder keeps an optimistic drag-and-drop order on the client side
// of the API and turns it into minimal absolute-position batches.
package reorder

import (
	"slices"

	models "savesite/internal/domain/models/bookmarks"
)

// Session tracks one scope's order: the last order the server accepted and
// the order the user is currently looking at. A Session is not safe for
// concurrent use; Debouncer serializes access to the one it owns.
type Session struct {
	ScopeID string

	lastConfirmed []string
	pending       []string
}

// NewSession starts a session from the order the server last returned.
func NewSession(scopeID string, confirmed []string) *Session {
	return &Session{ScopeID: scopeID, lastConfirmed: slices.Clone(confirmed)}
}

// Propose records an optimistic order, replacing any earlier proposal.
func (s *Session) Propose(order []string) {
	s.pending = slices.Clone(order)
}

// Current is the order to display: the pending proposal if there is one.
func (s *Session) Current() []string {
	if s.pending != nil {
		return slices.Clone(s.pending)
	}
	return slices.Clone(s.lastConfirmed)
}

// Confirmed is the last order the server accepted.
func (s *Session) Confirmed() []string {
	return slices.Clone(s.lastConfirmed)
}

// HasPending reports whether a proposal is waiting to be committed.
func (s *Session) HasPending() bool {
	return s.pending != nil
}

// Diff returns the (id, index) pairs of the pending order whose index differs
// from the confirmed snapshot. Ids the snapshot does not know are included.
func (s *Session) Diff() []models.PositionUpdate {
	if s.pending == nil {
		return nil
	}
	before := make(map[string]int, len(s.lastConfirmed))
	for i, id := range s.lastConfirmed {
		before[id] = i
	}
	var updates []models.PositionUpdate
	for i, id := range s.pending {
		if pos, ok := before[id]; ok && pos == i {
			continue
		}
		updates = append(updates, models.PositionUpdate{ID: id, Position: i})
	}
	return updates
}

// Confirm promotes the pending order to confirmed.
func (s *Session) Confirm() {
	if s.pending == nil {
		return
	}
	s.lastConfirmed = s.pending
	s.pending = nil
}

// Rollback drops the pending order and returns the confirmed one.
func (s *Session) Rollback() []string {
	s.pending = nil
	return slices.Clone(s.lastConfirmed)
}

// confirmSnapshot marks snapshot as accepted. A proposal made after the
// snapshot was taken stays pending.
func (s *Session) confirmSnapshot(snapshot []string) {
	s.lastConfirmed = snapshot
	if slices.Equal(s.pending, snapshot) {
		s.pending = nil
	}
}
