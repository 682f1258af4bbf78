// Package feed carries row-level change events for the shopping_list table
// from writers to the cart engines watching a shopper's list.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/smartcart/smartcart-backend/pkg/enums"
)

// TableShoppingList is the only table the storefront watches.
const TableShoppingList = "shopping_list"

// Row is the shopping_list row image carried by an event.
type Row struct {
	ID        int64     `json:"id"`
	ShopperID uuid.UUID `json:"shopper_id"`
	ProductID string    `json:"product_id"`
	Scanned   bool      `json:"scanned"`
}

// Event is one committed change. Insert events carry New, delete events
// carry Old.
type Event struct {
	Type       enums.FeedEventType `json:"type"`
	Table      string              `json:"table"`
	Old        *Row                `json:"old,omitempty"`
	New        *Row                `json:"new,omitempty"`
	OccurredAt time.Time           `json:"occurred_at"`
}

// ShopperID returns the shopper the changed row belongs to.
func (e Event) ShopperID() uuid.UUID {
	if e.New != nil {
		return e.New.ShopperID
	}
	if e.Old != nil {
		return e.Old.ShopperID
	}
	return uuid.Nil
}

// ProductRef returns the product reference of the changed row.
func (e Event) ProductRef() string {
	if e.New != nil {
		return e.New.ProductID
	}
	if e.Old != nil {
		return e.Old.ProductID
	}
	return ""
}

// Decode parses a wire event. Unknown event types are kept as-is so callers
// can ignore them.
func Decode(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, fmt.Errorf("decode feed event: %w", err)
	}
	if parsed, err := enums.ParseFeedEventType(string(ev.Type)); err == nil {
		ev.Type = parsed
	}
	return ev, nil
}

// Publisher emits events after the corresponding write committed.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Subscription delivers events for one shopper until closed. Close never
// waits on the consumer.
type Subscription interface {
	Events() <-chan Event
	Close() error
}

// Subscriber opens per-shopper subscriptions.
type Subscriber interface {
	Subscribe(ctx context.Context, shopperID uuid.UUID) (Subscription, error)
}
