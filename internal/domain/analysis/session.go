// Package analysis models a feedback analysis session: a retained snapshot of
// the full record set plus the filter state applied to it. Filter state is an
// explicit value owned by the session rather than hidden module state, and
// every view is recomputed from the original snapshot so filters never
// compound earlier restrictions.
package analysis

import (
	"fmt"

	"github.com/modelarena/feedbackd/internal/domain"
	"github.com/modelarena/feedbackd/internal/domain/feedback"
)

// State is the active filter applied to a session's snapshot.
type State struct {
	Mode  feedback.Mode `json:"mode"`
	Query string        `json:"query"`
}

// Session holds one analysis snapshot and its filter state. Sessions are not
// safe for concurrent use; the owning service serializes access.
type Session struct {
	ID      string
	Visible bool

	snapshot []feedback.Record
	state    State
	stats    feedback.Stats

	// Refresh generations. issued grows on every BeginRefresh; applied
	// remembers the newest generation whose result was accepted, so a slow
	// early response can never overwrite a later one.
	issued  uint64
	applied uint64
}

// New creates an empty hidden session.
func New(id string) *Session {
	return &Session{ID: id, state: State{Mode: feedback.ModeAll}}
}

// Populated reports whether the session already holds a snapshot.
func (s *Session) Populated() bool { return s.snapshot != nil }

// Show flips the session visible. It returns true when the snapshot is still
// empty and must be populated; repeated toggles reuse the retained snapshot.
func (s *Session) Show() (needLoad bool) {
	s.Visible = true
	return !s.Populated()
}

// Hide flips visibility without discarding the snapshot.
func (s *Session) Hide() { s.Visible = false }

// SetSnapshot replaces the snapshot wholesale and fixes the summary stats at
// load time. Stats are computed over the entire unfiltered snapshot and do
// not change as filters are applied.
func (s *Session) SetSnapshot(records []feedback.Record) {
	if records == nil {
		records = []feedback.Record{}
	}
	s.snapshot = records
	s.stats = feedback.ComputeStats(records)
}

// SetFilter updates the filter state. The mode must be one of all, positive
// or negative.
func (s *Session) SetFilter(mode feedback.Mode, query string) error {
	if !feedback.ValidMode(mode) {
		return fmt.Errorf("%w: unknown filter mode %q", domain.ErrValidation, mode)
	}
	s.state = State{Mode: mode, Query: query}
	return nil
}

// State returns the current filter state.
func (s *Session) State() State { return s.state }

// Stats returns the summary counts fixed at the last snapshot load.
func (s *Session) Stats() feedback.Stats { return s.stats }

// View filters the original snapshot with the current state. The snapshot is
// never replaced by a filtered result.
func (s *Session) View() []feedback.Record {
	return feedback.Filter(s.snapshot, s.state.Mode, s.state.Query)
}

// Find returns the snapshot record with the given id.
func (s *Session) Find(id string) (feedback.Record, bool) {
	for _, r := range s.snapshot {
		if r.ID == id {
			return r, true
		}
	}
	return feedback.Record{}, false
}

// BeginRefresh issues a new refresh generation token.
func (s *Session) BeginRefresh() uint64 {
	s.issued++
	return s.issued
}

// CompleteRefresh applies a refresh result. The result is discarded when a
// newer generation has been issued or applied since gen was handed out, so
// the last response to *arrive* never silently wins over the last one
// *requested*.
func (s *Session) CompleteRefresh(gen uint64, records []feedback.Record) bool {
	if gen != s.issued || gen <= s.applied {
		return false
	}
	s.applied = gen
	s.SetSnapshot(records)
	return true
}
