package events

import "sync"

const subscriberBuffer = 64

// Hub fans emitted events out to an arbitrary number of subscribers. Slow
// subscribers are dropped rather than allowed to block state transitions.
type Hub struct {
	mu   sync.Mutex
	next uint64
	subs map[uint64]chan Event
}

// NewHub constructs an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]chan Event)}
}

// Emit implements the Emitter interface.
func (h *Hub) Emit(evt Event) {
	if h == nil || evt == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		select {
		case ch <- evt:
		default:
			// Subscriber stopped draining; evict it.
			close(ch)
			delete(h.subs, id)
		}
	}
}

// Subscribe registers a new subscriber. The returned cancel function must be
// called exactly once when the subscriber is done.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan Event, subscriberBuffer)
	h.subs[id] = ch
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if existing, ok := h.subs[id]; ok {
			close(existing)
			delete(h.subs, id)
		}
	}
	return ch, cancel
}
