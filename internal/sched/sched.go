// Package sched provides per-key cancellable delayed tasks with replace
// semantics: scheduling under an existing key cancels the outstanding task
// for that key, so at most one task per key is ever pending. Used for the
// per-date feed refresh loops, per-match simulation ticks, and per-recipient
// notification delivery.
package sched

import (
	"sync"
	"time"
)

// Timers is a set of named delayed tasks.
type Timers struct {
	mu      sync.Mutex
	pending map[string]*time.Timer
	stopped bool
}

// New creates an empty timer set.
func New() *Timers {
	return &Timers{pending: make(map[string]*time.Timer)}
}

// Schedule runs fn after delay, cancelling any task already pending under
// the same key. fn runs on its own goroutine.
func (t *Timers) Schedule(key string, delay time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	if prev, ok := t.pending[key]; ok {
		prev.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		t.mu.Lock()
		// A replacement may already have been scheduled; only clear our own entry.
		if t.pending[key] == timer {
			delete(t.pending, key)
		}
		stopped := t.stopped
		t.mu.Unlock()
		if !stopped {
			fn()
		}
	})
	t.pending[key] = timer
}

// Cancel stops and removes the pending task for key, if any.
func (t *Timers) Cancel(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if timer, ok := t.pending[key]; ok {
		timer.Stop()
		delete(t.pending, key)
	}
}

// Stop cancels every pending task and rejects future scheduling.
func (t *Timers) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	for key, timer := range t.pending {
		timer.Stop()
		delete(t.pending, key)
	}
}

// Len returns the number of pending tasks.
func (t *Timers) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}
