package web

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"gdl90rx/internal/gdl90"
)

// Event is one websocket payload: a decoded message or a stream error.
type Event struct {
	Type    string        `json:"type"`
	Time    time.Time     `json:"time"`
	Message gdl90.Message `json:"message,omitempty"`
	Error   string        `json:"error,omitempty"`
	Kind    string        `json:"kind,omitempty"`
}

func MessageEvent(nowUTC time.Time, m gdl90.Message) Event {
	return Event{Type: m.MessageID().String(), Time: nowUTC, Message: m}
}

func ErrorEvent(nowUTC time.Time, err error) Event {
	return Event{Type: "error", Time: nowUTC, Error: err.Error(), Kind: gdl90.Kind(err).String()}
}

// Hub fans events out to websocket clients. Publish never blocks: a client
// whose buffer is full misses the event.
type Hub struct {
	mu      sync.RWMutex
	subs    map[int]chan []byte
	nextID  int
	dropped uint64
}

// NewHub returns a Hub with no subscribers.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan []byte)}
}

// Subscribe registers a client channel holding up to buffer encoded events
// (64 when buffer <= 0). The id is passed to Unsubscribe.
func (h *Hub) Subscribe(buffer int) (int, <-chan []byte) {
	if buffer <= 0 {
		buffer = 64
	}
	ch := make(chan []byte, buffer)
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()
	return id, ch
}

func (h *Hub) Unsubscribe(id int) {
	h.mu.Lock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
	h.mu.Unlock()
}

// Publish encodes ev once and offers it to every subscriber.
func (h *Hub) Publish(ev Event) {
	if h == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.subs) == 0 {
		return
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	for _, ch := range h.subs {
		select {
		case ch <- b:
		default:
			atomic.AddUint64(&h.dropped, 1)
		}
	}
}

func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped returns how many events were skipped for slow clients.
func (h *Hub) Dropped() uint64 {
	return atomic.LoadUint64(&h.dropped)
}
