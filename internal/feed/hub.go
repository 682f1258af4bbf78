package feed

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

const subscriptionBuffer = 256

// Hub is an in-process feed. Publish never blocks: a subscriber whose buffer
// is full misses the event.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[uuid.UUID]map[int]*hubSubscription
}

func NewHub() *Hub {
	return &Hub{subs: map[uuid.UUID]map[int]*hubSubscription{}}
}

func (h *Hub) Publish(_ context.Context, ev Event) error {
	if ev.Table == "" {
		ev.Table = TableShoppingList
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs[ev.ShopperID()] {
		select {
		case sub.events <- ev:
		default:
		}
	}
	return nil
}

func (h *Hub) Subscribe(_ context.Context, shopperID uuid.UUID) (Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	sub := &hubSubscription{
		hub:       h,
		id:        h.nextID,
		shopperID: shopperID,
		events:    make(chan Event, subscriptionBuffer),
	}
	if h.subs[shopperID] == nil {
		h.subs[shopperID] = map[int]*hubSubscription{}
	}
	h.subs[shopperID][sub.id] = sub
	return sub, nil
}

// Subscribers reports how many open subscriptions watch shopperID.
func (h *Hub) Subscribers(shopperID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[shopperID])
}

type hubSubscription struct {
	hub       *Hub
	id        int
	shopperID uuid.UUID
	events    chan Event
	once      sync.Once
}

func (s *hubSubscription) Events() <-chan Event {
	return s.events
}

func (s *hubSubscription) Close() error {
	s.once.Do(func() {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		delete(s.hub.subs[s.shopperID], s.id)
		if len(s.hub.subs[s.shopperID]) == 0 {
			delete(s.hub.subs, s.shopperID)
		}
		close(s.events)
	})
	return nil
}
