// Package store owns the canonical in-memory match table. All mutation goes
// through ApplyUpdate, which serializes writes per match, diffs the tracked
// fields and returns the resulting change events for the notification
// pipeline to act on. Reads may be concurrent and return copies.
package store

import (
	"log/slog"
	"sync"
	"time"

	"github.com/skynolimit/topscores/internal/match"
)

type entry struct {
	mu         sync.Mutex
	m          *match.Match
	tracked    bool // registered for change detection at creation
	finishedAt time.Time
}

// Store is the canonical match table.
type Store struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	trackAll bool
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a live-match store. Change tracking is registered only for
// matches whose date is "today" when first seen; records for other days are
// replaced wholesale without diffing.
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		entries: make(map[string]*entry),
		logger:  logger,
		now:     time.Now,
	}
}

// NewTrackingAll creates a store that tracks every record regardless of
// date. Used by the predictor, whose matches are always live.
func NewTrackingAll(logger *slog.Logger) *Store {
	s := New(logger)
	s.trackAll = true
	return s
}

// ApplyUpdate stores the incoming state for a match and returns the change
// events produced by diffing it against the previous state. Events are only
// produced for tracked matches, and only for the four notification-relevant
// fields, in a fixed order (scores, then time label, then kick-off) so that
// message generation is deterministic when several values change at once.
//
// Calls for the same id are serialized; calls for different ids proceed
// independently.
func (s *Store) ApplyUpdate(id string, incoming *match.Match) []match.ChangeEvent {
	now := s.now()
	normalize(incoming)

	e := s.entryFor(id, incoming)

	e.mu.Lock()
	defer e.mu.Unlock()

	previous := e.m
	if previous != nil {
		// Interest sets are owned by the store, not the feed.
		incoming.InterestedUsers = previous.InterestedUsers
	}

	var events []match.ChangeEvent
	if e.tracked && previous != nil && !incoming.Cancelled {
		events = detectChanges(id, previous, incoming, now)
	}

	if incoming.Finished && (previous == nil || !previous.Finished) {
		e.finishedAt = now
	}
	e.m = incoming

	return events
}

// Update applies fn to a copy of the stored match while holding the match's
// write lock, then stores the result and returns the change events, exactly
// as ApplyUpdate would. fn may return false to leave the stored state
// untouched; unknown ids are a no-op. The check-then-mutate runs atomically,
// so callers can guard on the current state without racing other writers.
func (s *Store) Update(id string, fn func(m *match.Match) bool) []match.ChangeEvent {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.m == nil {
		return nil
	}

	next := e.m.Clone()
	if !fn(next) {
		return nil
	}
	normalize(next)

	now := s.now()
	var events []match.ChangeEvent
	if e.tracked && !next.Cancelled {
		events = detectChanges(id, e.m, next, now)
	}
	if next.Finished && !e.m.Finished {
		e.finishedAt = now
	}
	e.m = next
	return events
}

// Get returns a copy of the match, or nil if unknown.
func (s *Store) Get(id string) *match.Match {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.m == nil {
		return nil
	}
	return e.m.Clone()
}

// All returns copies of every stored match, cancelled ones excluded.
func (s *Store) All() []*match.Match {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	out := make([]*match.Match, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if e.m != nil && !e.m.Cancelled {
			out = append(out, e.m.Clone())
		}
		e.mu.Unlock()
	}
	return out
}

// Count returns the number of stored matches.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Remove deletes a match.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
}

// SetInterested adds or removes a device from the match's interest set.
// No notification side effects; purely a membership mutation.
func (s *Store) SetInterested(id, deviceID string, interested bool) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.m == nil {
		return
	}

	idx := -1
	for i, u := range e.m.InterestedUsers {
		if u == deviceID {
			idx = i
			break
		}
	}
	switch {
	case interested && idx < 0:
		e.m.InterestedUsers = append(e.m.InterestedUsers, deviceID)
	case !interested && idx >= 0:
		e.m.InterestedUsers = append(e.m.InterestedUsers[:idx], e.m.InterestedUsers[idx+1:]...)
	}
}

// InterestedUsers returns the interest set for a match.
func (s *Store) InterestedUsers(id string) []string {
	m := s.Get(id)
	if m == nil {
		return nil
	}
	return m.InterestedUsers
}

// RemoveFinishedOlderThan evicts matches that finished (or, for predictor
// matches, started) longer than maxAge ago. Returns the number removed.
// Used by the simulator's periodic sweep; live matches are retained for
// their full tracked day range.
func (s *Store) RemoveFinishedOlderThan(maxAge time.Duration) int {
	now := s.now()
	cutoff := now.Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.entries {
		e.mu.Lock()
		expired := false
		if e.m != nil {
			if p := e.m.Predictor; p != nil {
				expired = (p.FinishedTime != nil && p.FinishedTime.Before(cutoff)) ||
					(!p.StartedTime.IsZero() && p.StartedTime.Before(cutoff))
			} else {
				expired = e.m.Finished && !e.finishedAt.IsZero() && e.finishedAt.Before(cutoff)
			}
		}
		e.mu.Unlock()
		if expired {
			delete(s.entries, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info("Evicted old matches", "count", removed)
	}
	return removed
}

// RemoveDatedBefore evicts matches dated strictly before the given
// YYYY-MM-DD date. Used by the maintenance sweep to trail the sliding feed
// window. Returns the number removed.
func (s *Store) RemoveDatedBefore(date string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.entries {
		e.mu.Lock()
		expired := e.m != nil && e.m.Date != "" && e.m.Date < date
		e.mu.Unlock()
		if expired {
			delete(s.entries, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info("Evicted matches outside the covered window",
			"count", removed, "before", date)
	}
	return removed
}

// entryFor returns the entry for id, creating it (and deciding whether the
// match is change-tracked) on first sight.
func (s *Store) entryFor(id string, incoming *match.Match) *entry {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.entries[id]; ok {
		return e
	}
	tracked := s.trackAll || incoming.Date == s.now().Format("2006-01-02")
	e = &entry{tracked: tracked}
	s.entries[id] = e
	if tracked {
		s.logger.Info("Tracking match for live updates", "match_id", id, "date", incoming.Date)
	}
	return e
}

// normalize enforces model invariants on an incoming record.
func normalize(m *match.Match) {
	if m.Finished {
		m.Started = true
	}
	if m.Time < 0 {
		m.Time = 0
	}
	if m.InterestedUsers == nil {
		m.InterestedUsers = []string{}
	}
}
