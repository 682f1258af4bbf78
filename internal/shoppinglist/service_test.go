package shoppinglist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/smartcart/smartcart-backend/internal/feed"
	"github.com/smartcart/smartcart-backend/internal/repo/repotest"
	"github.com/smartcart/smartcart-backend/pkg/enums"
	pkgerrors "github.com/smartcart/smartcart-backend/pkg/errors"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	events []feed.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev feed.Event) error {
	p.events = append(p.events, ev)
	return p.err
}

func newTestStore(t *testing.T) (Store, *recordingPublisher) {
	t.Helper()
	conn := repotest.Open(t)
	seedProducts(t, conn, "0001", "0002")
	pub := &recordingPublisher{}
	store, err := NewService(NewRepository(conn), pub, nil)
	require.NoError(t, err)
	return store, pub
}

func TestNewServiceValidatesDeps(t *testing.T) {
	_, err := NewService(nil, &recordingPublisher{}, nil)
	require.Error(t, err)
	_, err = NewService(NewRepository(repotest.Open(t)), nil, nil)
	require.Error(t, err)
}

func TestServicePublishesAfterWrites(t *testing.T) {
	store, pub := newTestStore(t)
	ctx := context.Background()
	shopper := uuid.New()

	entry, err := store.Insert(ctx, shopper, "0001", true)
	require.NoError(t, err)
	require.True(t, entry.Scanned)
	_, err = store.Insert(ctx, shopper, "0001", false)
	require.NoError(t, err)
	_, err = store.Insert(ctx, shopper, "0002", false)
	require.NoError(t, err)

	require.Len(t, pub.events, 3)
	ins := pub.events[0]
	require.Equal(t, enums.FeedEventInsert, ins.Type)
	require.Equal(t, feed.TableShoppingList, ins.Table)
	require.NotNil(t, ins.New)
	require.Equal(t, shopper, ins.ShopperID())
	require.False(t, ins.OccurredAt.IsZero())

	n, err := store.Delete(ctx, shopper, "0001")
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Len(t, pub.events, 5)
	for _, ev := range pub.events[3:] {
		require.Equal(t, enums.FeedEventDelete, ev.Type)
		require.NotNil(t, ev.Old)
		require.Equal(t, "0001", ev.ProductRef())
	}

	entries, err := store.List(ctx, shopper)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Product)
	require.Equal(t, "0002", entries[0].Product.BarcodeID)

	n, err = store.Clear(ctx, shopper)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Len(t, pub.events, 6)

	n, err = store.Delete(ctx, shopper, "0002")
	require.NoError(t, err)
	require.Zero(t, n)
	require.Len(t, pub.events, 6)
}

func TestServicePublishFailureKeepsWrite(t *testing.T) {
	store, pub := newTestStore(t)
	pub.err = errors.New("redis down")
	ctx := context.Background()
	shopper := uuid.New()

	_, err := store.Insert(ctx, shopper, "0001", false)
	require.NoError(t, err)
	ok, err := store.Exists(ctx, shopper, "0001")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestServiceValidation(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Insert(ctx, uuid.Nil, "0001", false)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = store.Exists(ctx, uuid.New(), " ")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = store.List(ctx, uuid.Nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = store.Clear(ctx, uuid.Nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

type failingStore struct {
	Store
	calls int
	err   error
}

func (f *failingStore) Exists(context.Context, uuid.UUID, string) (bool, error) {
	f.calls++
	return false, f.err
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	inner := &failingStore{err: pkgerrors.New(pkgerrors.CodeDependency, "db down")}
	b := NewBreaker(inner, BreakerSettings{MinRequests: 3, FailureRatio: 0.6, OpenFor: time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := b.Exists(ctx, uuid.New(), "0001")
		require.Error(t, err)
	}
	require.Equal(t, "open", b.State())

	_, err := b.Exists(ctx, uuid.New(), "0001")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	require.Equal(t, 3, inner.calls)
}

func TestBreakerIgnoresValidationErrors(t *testing.T) {
	inner := &failingStore{err: pkgerrors.New(pkgerrors.CodeValidation, "bad ref")}
	b := NewBreaker(inner, BreakerSettings{MinRequests: 1, FailureRatio: 0.5, OpenFor: time.Minute})

	for i := 0; i < 5; i++ {
		_, err := b.Exists(context.Background(), uuid.New(), "")
		require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	}
	require.Equal(t, "closed", b.State())
	require.Equal(t, 5, inner.calls)
}

func TestBreakerPassesResults(t *testing.T) {
	store, _ := newTestStore(t)
	b := NewBreaker(store, BreakerSettings{MinRequests: 3, FailureRatio: 0.6, OpenFor: time.Second})
	ctx := context.Background()
	shopper := uuid.New()

	entry, err := b.Insert(ctx, shopper, "0001", false)
	require.NoError(t, err)
	require.Equal(t, "0001", entry.ProductRef)

	entries, err := b.List(ctx, shopper)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	n, err := b.Clear(ctx, shopper)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}
