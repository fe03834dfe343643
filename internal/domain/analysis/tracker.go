package analysis

import (
	"sync"
	"time"
)

type trackedFlow struct {
	flow     *Flow
	lastSeen time.Time
}

// Tracker keeps one Flow per viewer and forgets viewers that stay idle past the TTL.
type Tracker struct {
	newFlow func() *Flow
	idleTTL time.Duration
	now     func() time.Time

	mu     sync.Mutex
	flows  map[string]*trackedFlow
	closed bool
}

// NewTracker builds a registry. idleTTL <= 0 keeps flows until released.
func NewTracker(newFlow func() *Flow, idleTTL time.Duration) *Tracker {
	return &Tracker{
		newFlow: newFlow,
		idleTTL: idleTTL,
		now:     time.Now,
		flows:   make(map[string]*trackedFlow),
	}
}

// Acquire returns the viewer's flow, creating it on first use.
func (t *Tracker) Acquire(viewerID string) *Flow {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	t.sweepLocked(now)

	entry, ok := t.flows[viewerID]
	if !ok || t.closed {
		entry = &trackedFlow{flow: t.newFlow()}
		if t.closed {
			entry.flow.Close()
			return entry.flow
		}
		t.flows[viewerID] = entry
	}
	entry.lastSeen = now
	return entry.flow
}

// Lookup returns the viewer's flow without creating one.
func (t *Tracker) Lookup(viewerID string) (*Flow, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.flows[viewerID]
	if !ok {
		return nil, false
	}
	entry.lastSeen = t.now()
	return entry.flow, true
}

// Release tears down the viewer's flow.
func (t *Tracker) Release(viewerID string) {
	t.mu.Lock()
	entry, ok := t.flows[viewerID]
	delete(t.flows, viewerID)
	t.mu.Unlock()
	if ok {
		entry.flow.Close()
	}
}

// Len reports how many viewers are tracked.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.flows)
}

// Close tears down every flow. Flows acquired afterwards are born closed.
func (t *Tracker) Close() {
	t.mu.Lock()
	flows := t.flows
	t.flows = make(map[string]*trackedFlow)
	t.closed = true
	t.mu.Unlock()
	for _, entry := range flows {
		entry.flow.Close()
	}
}

func (t *Tracker) sweepLocked(now time.Time) {
	if t.idleTTL <= 0 {
		return
	}
	for id, entry := range t.flows {
		if now.Sub(entry.lastSeen) <= t.idleTTL {
			continue
		}
		if entry.flow.State().Loading {
			continue
		}
		entry.flow.Close()
		delete(t.flows, id)
	}
}
