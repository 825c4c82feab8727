package events

import (
	"sync"
	"time"
)

// ItemEvent describes a change to an owner's items. Events are delivered only
// to subscribers of the owning identity, never across tenants.
type ItemEvent struct {
	Action    string    `json:"action"` // created, updated, deleted
	ItemID    string    `json:"item_id"`
	Name      string    `json:"name,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Bus is an in-process publish/subscribe fanout keyed by owner id.
// Subscribers with full buffers are skipped rather than blocking publishers.
type Bus struct {
	mu   sync.RWMutex
	subs map[string]map[chan ItemEvent]struct{}
}

// NewBus creates an event bus
func NewBus() *Bus {
	return &Bus{subs: map[string]map[chan ItemEvent]struct{}{}}
}

// Subscribe registers a listener for one owner's events. The returned cancel
// function must be called to release the subscription.
func (b *Bus) Subscribe(ownerID string) (<-chan ItemEvent, func()) {
	ch := make(chan ItemEvent, 16)

	b.mu.Lock()
	if b.subs[ownerID] == nil {
		b.subs[ownerID] = map[chan ItemEvent]struct{}{}
	}
	b.subs[ownerID][ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if set, ok := b.subs[ownerID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(b.subs, ownerID)
			}
		}
		b.mu.Unlock()
	}

	return ch, cancel
}

// Publish delivers an event to all of the owner's subscribers
func (b *Bus) Publish(ownerID string, event ItemEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subs[ownerID] {
		select {
		case ch <- event:
		default:
			// slow consumer, drop
		}
	}
}
