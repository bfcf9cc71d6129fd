package realtime

import (
	"sync"

	"chopline-be/internal/metrics"
)

const subscriptionBuffer = 16

// Subscription is a live, cancellable view of matching order events. After
// Unsubscribe returns, C is closed and no further events are delivered.
type Subscription struct {
	C chan OrderEvent

	id   int64
	hub  *Hub
	once sync.Once
}

func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.hub.remove(s.id)
		close(s.C)
	})
}

// Hub fans order events out to subscribers. Delivery is non-blocking: a
// subscriber that stops draining loses events rather than stalling the feed.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int64]*subscriber
	nextID int64

	counters *metrics.HubCounters
}

type subscriber struct {
	filter Filter
	ch     chan OrderEvent
}

func NewHub() *Hub {
	return &Hub{
		subs:     make(map[int64]*subscriber),
		counters: &metrics.HubCounters{},
	}
}

func (h *Hub) Counters() *metrics.HubCounters {
	return h.counters
}

func (h *Hub) Subscribe(filter Filter) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	ch := make(chan OrderEvent, subscriptionBuffer)
	h.subs[h.nextID] = &subscriber{filter: filter, ch: ch}

	return &Subscription{C: ch, id: h.nextID, hub: h}
}

// remove detaches the subscriber. It takes the exclusive lock, so it cannot
// overlap an in-flight Publish send; closing the channel afterwards is safe.
func (h *Hub) remove(id int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

func (h *Hub) Publish(ev OrderEvent) {
	h.counters.Published.Inc()

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		if !sub.filter.matches(ev) {
			continue
		}
		select {
		case sub.ch <- ev:
			h.counters.Delivered.Inc()
		default:
			h.counters.Dropped.Inc()
		}
	}
}

// SubscriberCount is used by tests and diagnostics.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
