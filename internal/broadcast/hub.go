package broadcast

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Event carries one committed state snapshot for a match.
type Event struct {
	MatchID uint
	Payload interface{}
}

// Notifier is what the scoring engine publishes through.
type Notifier interface {
	Publish(matchID uint, payload interface{})
}

// Hub fans committed snapshots out to per-match subscriber sets. Transport is
// the caller's business; the hub only hands out channels.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint]map[chan Event]struct{}
	buffer int
	log    *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		subs:   make(map[uint]map[chan Event]struct{}),
		buffer: 16,
		log:    log,
	}
}

// Subscribe registers a listener for one match. The returned cancel func
// removes the subscription and closes the channel.
func (h *Hub) Subscribe(matchID uint) (<-chan Event, func()) {
	ch := make(chan Event, h.buffer)

	h.mu.Lock()
	set, ok := h.subs[matchID]
	if !ok {
		set = make(map[chan Event]struct{})
		h.subs[matchID] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[matchID]; ok {
			if _, present := set[ch]; present {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(h.subs, matchID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the payload to every subscriber of the match. A slow
// subscriber whose buffer is full misses the event rather than blocking the
// scoring path.
func (h *Hub) Publish(matchID uint, payload interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[matchID] {
		select {
		case ch <- Event{MatchID: matchID, Payload: payload}:
		default:
			if h.log != nil {
				h.log.WithField("match_id", matchID).Warn("dropping snapshot for slow subscriber")
			}
		}
	}
}

// SubscriberCount returns the number of active subscribers for a match.
func (h *Hub) SubscriberCount(matchID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[matchID])
}
