package hub

import (
	"log"
	"sync"

	"github.com/stegus64/plucklogviz/internal/model"
)

const subscriberBuffer = 16

// Hub fans rebuilt timelines out to subscribers. Subscribers are websocket
// sessions in serve mode; they attach and detach as browsers connect, and a
// slow one only ever misses intermediate rebuilds, never the latest state,
// which it can re-fetch over HTTP.
type Hub struct {
	mu          sync.Mutex
	subscribers map[chan *model.Timeline]bool
	latest      *model.Timeline
	dropped     int64
	closed      bool
}

// New creates an empty Hub.
func New() *Hub {
	return &Hub{subscribers: make(map[chan *model.Timeline]bool)}
}

// Subscribe returns a buffered channel carrying every future rebuild.
func (h *Hub) Subscribe() <-chan *model.Timeline {
	ch := make(chan *model.Timeline, subscriberBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch
	}
	h.subscribers[ch] = true
	return ch
}

// Unsubscribe detaches a channel returned by Subscribe and closes it.
func (h *Hub) Unsubscribe(ch <-chan *model.Timeline) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subscribers {
		if sub == ch {
			delete(h.subscribers, sub)
			close(sub)
			return
		}
	}
}

// Publish broadcasts a rebuilt timeline and records it as the latest state.
// A full subscriber buffer drops the notice rather than blocking the
// rebuild loop.
func (h *Hub) Publish(tl *model.Timeline) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	h.latest = tl
	for ch := range h.subscribers {
		select {
		case ch <- tl:
		default:
			h.dropped++
			log.Printf("hub: dropped rebuild notice for slow consumer (total dropped: %d)", h.dropped)
		}
	}
}

// Latest returns the most recently published timeline, or nil before the
// first publish.
func (h *Hub) Latest() *model.Timeline {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest
}

// Dropped returns the total number of notices dropped on full buffers.
func (h *Hub) Dropped() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

// Close detaches and closes every subscriber channel. Publish and Subscribe
// become no-ops afterwards.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subscribers {
		close(ch)
	}
	h.subscribers = make(map[chan *model.Timeline]bool)
}
