package auth

import (
	"context"
	"sync"
)

// EventType names an auth state change.
type EventType string

const (
	EventSignedIn       EventType = "SIGNED_IN"
	EventSignedOut      EventType = "SIGNED_OUT"
	EventTokenRefreshed EventType = "TOKEN_REFRESHED"
)

// Event is delivered to listeners after the state change is durable.
// Identity is empty for EventSignedOut.
type Event struct {
	Type       EventType
	SessionKey string
	Identity   Identity
}

// Listener reacts to auth changes. Listeners run synchronously on the
// goroutine that caused the change.
type Listener func(ctx context.Context, ev Event)

type listeners struct {
	mu     sync.Mutex
	nextID int
	byID   map[int]Listener
	order  []int
}

func (l *listeners) add(fn Listener) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.byID == nil {
		l.byID = make(map[int]Listener)
	}
	l.nextID++
	id := l.nextID
	l.byID[id] = fn
	l.order = append(l.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.byID, id)
			for i, v := range l.order {
				if v == id {
					l.order = append(l.order[:i], l.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (l *listeners) snapshot() []Listener {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Listener, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.byID[id])
	}
	return out
}

func (l *listeners) notify(ctx context.Context, ev Event) {
	for _, fn := range l.snapshot() {
		fn(ctx, ev)
	}
}
