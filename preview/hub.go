// Package preview serves the current template to a browser and pushes every
// change to it over server-sent events.
package preview

import "sync"

// Hub holds the latest template and fans updates out to subscribers.
//
// Each subscriber has a one-slot buffer. A slow reader loses intermediate
// updates but always ends up with the latest one.
type Hub struct {
	mu      sync.Mutex
	current string
	subs    map[chan string]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan string]struct{})}
}

// Publish replaces the current template and notifies subscribers.
func (h *Hub) Publish(html string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.current = html
	for ch := range h.subs {
		select {
		case ch <- html:
		default:
			// Replace the stale pending value. Only Publish sends, under mu,
			// so the second send cannot block.
			select {
			case <-ch:
			default:
			}
			ch <- html
		}
	}
}

func (h *Hub) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Subscribe registers a new listener. cancel unregisters it and closes the
// channel; it is safe to call more than once.
func (h *Hub) Subscribe() (<-chan string, func()) {
	ch := make(chan string, 1)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			close(ch)
			h.mu.Unlock()
		})
	}
	return ch, cancel
}

// Subscribers reports how many listeners are attached.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
