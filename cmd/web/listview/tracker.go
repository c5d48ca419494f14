package listview

import (
	"context"
	"sync"
)

// Tracker remembers the latest load issued for each container of one visitor.
type Tracker struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	latest uint64
	cancel context.CancelFunc
}

func NewTracker() *Tracker {
	return &Tracker{slots: make(map[string]*slot)}
}

// begin issues the next token for key and cancels the load it supersedes.
func (t *Tracker) begin(parent context.Context, key string) (context.Context, uint64) {
	ctx, cancel := context.WithCancel(parent)

	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.slotFor(key)
	if s.cancel != nil {
		s.cancel()
	}
	s.latest++
	s.cancel = cancel
	return ctx, s.latest
}

// supersede issues the next token for key and cancels the load it overtakes.
// Nothing is tracked for the new token, so the caller's load cannot be cancelled.
func (t *Tracker) supersede(key string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.slotFor(key)
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.latest++
	return s.latest
}

func (t *Tracker) slotFor(key string) *slot {
	if t.slots == nil {
		t.slots = make(map[string]*slot)
	}
	s, ok := t.slots[key]
	if !ok {
		s = &slot{}
		t.slots[key] = s
	}
	return s
}

// commit runs apply only while token is still the latest for key.
func (t *Tracker) commit(key string, token uint64, apply func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.slots[key]
	if !ok || s.latest != token {
		return false
	}
	apply()
	return true
}

// release drops the cancel func of a finished load.
func (t *Tracker) release(key string, token uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.slots[key]
	if !ok {
		return
	}
	if s.latest == token && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Latest returns the most recent token issued for key, zero if none.
func (t *Tracker) Latest(key string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.slots[key]; ok {
		return s.latest
	}
	return 0
}

// CancelAll aborts every in-flight load, used when the visitor goes away.
func (t *Tracker) CancelAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range t.slots {
		if s.cancel != nil {
			s.cancel()
			s.cancel = nil
		}
	}
}
