package notify

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryEnvelopeStore keeps envelopes in process memory. Used when no
// database is configured; dedup then only covers the current process
// lifetime.
type MemoryEnvelopeStore struct {
	mu    sync.RWMutex
	byKey map[string]*Envelope
}

func NewMemoryEnvelopeStore() *MemoryEnvelopeStore {
	return &MemoryEnvelopeStore{byKey: make(map[string]*Envelope)}
}

func (s *MemoryEnvelopeStore) Get(_ context.Context, key string) (*Envelope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byKey[key]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (s *MemoryEnvelopeStore) Set(_ context.Context, e *Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.byKey[e.Key] = &cp
	return nil
}

// Prune removes envelopes older than the given age.
func (s *MemoryEnvelopeStore) Prune(_ context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for key, e := range s.byKey {
		if e.AttemptedAt.Before(cutoff) {
			delete(s.byKey, key)
			removed++
		}
	}
	return removed, nil
}

// List returns the most recent envelopes, newest first.
func (s *MemoryEnvelopeStore) List(_ context.Context, limit int) ([]*Envelope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Envelope, 0, len(s.byKey))
	for _, e := range s.byKey {
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AttemptedAt.After(out[j].AttemptedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
