package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/smartcart/smartcart-backend/pkg/logger"
	redisclient "github.com/smartcart/smartcart-backend/pkg/redis"
)

// RedisFeed publishes and subscribes through Redis pub/sub, one channel per
// shopper.
type RedisFeed struct {
	client *redisclient.Client
	logg   *logger.Logger
}

func NewRedisFeed(client *redisclient.Client, logg *logger.Logger) (*RedisFeed, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &RedisFeed{client: client, logg: logg}, nil
}

func (f *RedisFeed) channel(shopperID uuid.UUID) string {
	return f.client.FeedChannel(TableShoppingList, shopperID.String())
}

func (f *RedisFeed) Publish(ctx context.Context, ev Event) error {
	shopperID := ev.ShopperID()
	if shopperID == uuid.Nil {
		return fmt.Errorf("feed event without shopper")
	}
	if ev.Table == "" {
		ev.Table = TableShoppingList
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode feed event: %w", err)
	}
	return f.client.Publish(ctx, f.channel(shopperID), payload)
}

func (f *RedisFeed) Subscribe(ctx context.Context, shopperID uuid.UUID) (Subscription, error) {
	raw, err := f.client.Subscribe(ctx, f.channel(shopperID))
	if err != nil {
		return nil, err
	}
	sub := &redisSubscription{
		raw:    raw,
		events: make(chan Event, subscriptionBuffer),
		done:   make(chan struct{}),
	}
	go sub.pump(ctx, f.logg, shopperID)
	return sub, nil
}

type redisSubscription struct {
	raw    *redisclient.Subscription
	events chan Event
	done   chan struct{}
	once   sync.Once
}

func (s *redisSubscription) pump(ctx context.Context, logg *logger.Logger, shopperID uuid.UUID) {
	defer close(s.events)
	ctx = logg.WithShopperID(context.WithoutCancel(ctx), shopperID.String())
	for payload := range s.raw.Payloads() {
		ev, err := Decode(payload)
		if err != nil {
			logg.Warn(ctx, fmt.Sprintf("dropping malformed feed payload: %v", err))
			continue
		}
		select {
		case s.events <- ev:
		case <-s.done:
			return
		}
	}
}

func (s *redisSubscription) Events() <-chan Event {
	return s.events
}

func (s *redisSubscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.raw.Close()
	})
	return err
}
