// Package realtime fans out group chat change signals to in-process
// subscribers. Signals carry no payload beyond the group; subscribers
// refetch what they display.
package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// Hub delivers group signals to subscribers
type Hub struct {
	mu   sync.Mutex
	subs map[uuid.UUID]map[chan struct{}]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uuid.UUID]map[chan struct{}]struct{})}
}

// Subscribe returns a channel that receives a value after every change to
// the group's chat, and a cancel func that must be called to release it.
// Signals coalesce: a slow subscriber sees at most one pending signal.
func (h *Hub) Subscribe(groupID uuid.UUID) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	if h.subs[groupID] == nil {
		h.subs[groupID] = make(map[chan struct{}]struct{})
	}
	h.subs[groupID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[groupID], ch)
			if len(h.subs[groupID]) == 0 {
				delete(h.subs, groupID)
			}
		})
	}
	return ch, cancel
}

// Publish signals every subscriber of the group without blocking
func (h *Hub) Publish(groupID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[groupID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribers returns the number of live subscriptions for a group
func (h *Hub) Subscribers(groupID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[groupID])
}
