package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
	"github.com/smartcart/smartcart-backend/internal/catalog"
	"github.com/smartcart/smartcart-backend/internal/feed"
	"github.com/smartcart/smartcart-backend/internal/repo/repotest"
	"github.com/smartcart/smartcart-backend/internal/shoppinglist"
	"github.com/smartcart/smartcart-backend/pkg/enums"
	pkgerrors "github.com/smartcart/smartcart-backend/pkg/errors"
	"github.com/smartcart/smartcart-backend/pkg/metrics"
	"github.com/stretchr/testify/require"
)

func timeAt(ns int) time.Time {
	return time.Unix(0, 0).Add(time.Duration(ns))
}

type staticLookup struct{}

func (staticLookup) ProductByRef(_ context.Context, ref string) (catalog.Product, error) {
	for _, p := range catalog.Static() {
		if p.Matches(ref) {
			return p, nil
		}
	}
	return catalog.Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

type harness struct {
	store   *MemoryStore
	hub     *feed.Hub
	remote  shoppinglist.Store
	reg     *prometheus.Registry
	metrics *metrics.CartMetrics
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	conn := repotest.Open(t)
	products, err := catalog.NewService(catalog.NewRepository(conn), nil)
	require.NoError(t, err)
	_, err = products.Seed(context.Background())
	require.NoError(t, err)
	hub := feed.NewHub()
	remote, err := shoppinglist.NewService(shoppinglist.NewRepository(conn), hub, nil)
	require.NoError(t, err)
	reg := prometheus.NewRegistry()
	return &harness{store: NewMemoryStore(), hub: hub, remote: remote, reg: reg, metrics: metrics.NewCartMetrics(reg)}
}

func (h *harness) engine(t *testing.T, key string) *Engine {
	t.Helper()
	e, err := NewEngine(context.Background(), Config{SessionKey: key, EchoWindow: 10 * time.Second, RemoteTimeout: time.Second}, Deps{
		Store:    h.store,
		Remote:   h.remote,
		Products: staticLookup{},
		Feed:     h.hub,
		Metrics:  h.metrics,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func (h *harness) counter(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	mfs, err := h.reg.Gather()
	require.NoError(t, err)
	var total float64
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if hasLabels(m, labels) {
				total += m.GetCounter().GetValue()
			}
		}
	}
	return total
}

func hasLabels(m *dto.Metric, want map[string]string) bool {
	for k, v := range want {
		found := false
		for _, lp := range m.GetLabel() {
			if lp.GetName() == k && lp.GetValue() == v {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func staticProduct(t *testing.T, id string) catalog.Product {
	t.Helper()
	p, err := staticLookup{}.ProductByRef(context.Background(), id)
	require.NoError(t, err)
	return p
}

func quantityOf(t *testing.T, e *Engine, ref string) int {
	t.Helper()
	snap, err := e.Snapshot(context.Background())
	require.NoError(t, err)
	for _, it := range snap.Items {
		if it.Product.Matches(ref) {
			return it.Quantity
		}
	}
	return 0
}

func TestEngineLocalOperations(t *testing.T) {
	h := newHarness(t)
	e := h.engine(t, "s1")
	ctx := context.Background()
	bananas := staticProduct(t, "1")

	n, err := e.Add(ctx, bananas, 2)
	require.NoError(t, err)
	require.Equal(t, NoticeAdded, n.Kind)
	n, err = e.Add(ctx, bananas, 3)
	require.NoError(t, err)
	require.Equal(t, NoticeQuantityUpdated, n.Kind)
	require.Equal(t, 5, quantityOf(t, e, "1"))

	_, err = e.Add(ctx, staticProduct(t, "2"), 0)
	require.NoError(t, err)
	require.Equal(t, 1, quantityOf(t, e, "2"))

	n, err = e.UpdateQuantity(ctx, "1", 7)
	require.NoError(t, err)
	require.Equal(t, NoticeQuantityUpdated, n.Kind)
	require.Equal(t, 7, quantityOf(t, e, "1"))

	n, err = e.UpdateQuantity(ctx, "0002", 0)
	require.NoError(t, err)
	require.Equal(t, NoticeRemoved, n.Kind)
	require.Zero(t, quantityOf(t, e, "2"))

	_, err = e.Remove(ctx, "2")
	require.ErrorIs(t, err, ErrItemNotFound)
	_, err = e.UpdateQuantity(ctx, "2", 3)
	require.ErrorIs(t, err, ErrItemNotFound)

	snap, err := e.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, 7, snap.TotalItems)
	require.True(t, snap.TotalPrice.Equal(bananas.Price.Mul(decimal.NewFromInt(7))))
	require.False(t, snap.Authenticated)

	n, err = e.Clear(ctx)
	require.NoError(t, err)
	require.Equal(t, NoticeCleared, n.Kind)
	snap, err = e.Snapshot(ctx)
	require.NoError(t, err)
	require.Empty(t, snap.Items)

	_, err = e.Add(ctx, catalog.Product{Name: "no identity"}, 1)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestEngineWriteThroughAndReload(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	first := h.engine(t, "persist")
	_, err := first.Add(ctx, staticProduct(t, "3"), 2)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	raw, err := h.store.Load(ctx, "persist")
	require.NoError(t, err)
	require.Contains(t, string(raw), `"quantity":2`)

	second := h.engine(t, "persist")
	require.Equal(t, 2, quantityOf(t, second, "3"))
}

func TestEngineDiscardsCorruptStoredCart(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.store.Save(ctx, "corrupt", []byte(`{{{not json`)))

	e := h.engine(t, "corrupt")
	snap, err := e.Snapshot(ctx)
	require.NoError(t, err)
	require.Empty(t, snap.Items)

	raw, err := h.store.Load(ctx, "corrupt")
	require.NoError(t, err)
	require.Nil(t, raw)
}

func TestEngineAuthenticateMergesRemoteList(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	shopper := uuid.New()
	a, b := staticProduct(t, "1"), staticProduct(t, "2")

	_, err := h.remote.Insert(ctx, shopper, a.Ref(), false)
	require.NoError(t, err)
	_, err = h.remote.Insert(ctx, shopper, b.Ref(), true)
	require.NoError(t, err)

	e := h.engine(t, "merge")
	_, err = e.Add(ctx, a, 5)
	require.NoError(t, err)

	require.NoError(t, e.Authenticate(ctx, shopper))
	snap, err := e.Snapshot(ctx)
	require.NoError(t, err)
	require.True(t, snap.Authenticated)
	require.Len(t, snap.Items, 2)
	require.True(t, snap.Items[0].Product.Same(a))
	require.Equal(t, 5, snap.Items[0].Quantity)
	require.True(t, snap.Items[1].Product.Same(b))
	require.Equal(t, 1, snap.Items[1].Quantity)

	id, authed, err := e.ShopperID(ctx)
	require.NoError(t, err)
	require.True(t, authed)
	require.Equal(t, shopper, id)

	// a second sign-in for the same shopper is a no-op
	require.NoError(t, e.Authenticate(ctx, shopper))
	require.Equal(t, 1, h.hub.Subscribers(shopper))
}

func TestEngineAppliesExternalFeedEvents(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	shopper := uuid.New()
	milk := staticProduct(t, "9")

	e := h.engine(t, "feed")
	require.NoError(t, e.Authenticate(ctx, shopper))
	_, err := e.Add(ctx, milk, 3)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		ok, _ := h.remote.Exists(ctx, shopper, milk.Ref())
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	// a scan by the shopper's physical cart
	_, err = h.remote.Insert(ctx, shopper, milk.Ref(), true)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return quantityOf(t, e, milk.Ref()) == 4 }, 2*time.Second, 10*time.Millisecond)

	// a product the cart has never seen
	_, err = h.remote.Insert(ctx, shopper, "0020", true)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return quantityOf(t, e, "20") == 1 }, 2*time.Second, 10*time.Millisecond)

	// removal elsewhere drops the item whatever its quantity
	_, err = h.remote.Delete(ctx, shopper, milk.Ref())
	require.NoError(t, err)
	require.Eventually(t, func() bool { return quantityOf(t, e, milk.Ref()) == 0 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, h.hub.Publish(ctx, feed.Event{Type: enums.FeedEventUpdate, New: &feed.Row{ShopperID: shopper, ProductID: "0020"}}))
	require.Eventually(t, func() bool {
		return h.counter(t, "cart_feed_events_total", map[string]string{"type": "UPDATE", "outcome": metrics.FeedIgnored}) == 1
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, 1, quantityOf(t, e, "20"))
}

func TestEngineSuppressesOwnEchoes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	shopper := uuid.New()
	eggs := staticProduct(t, "11")

	e := h.engine(t, "echo")
	require.NoError(t, e.Authenticate(ctx, shopper))

	_, err := e.Add(ctx, eggs, 1)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return h.counter(t, "cart_feed_events_total", map[string]string{"type": "INSERT", "outcome": metrics.FeedSuppressed}) == 1
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, 1, quantityOf(t, e, eggs.Ref()))

	// the row already exists, so a second add writes nothing remotely
	_, err = e.Add(ctx, eggs, 1)
	require.NoError(t, err)
	require.Equal(t, 2, quantityOf(t, e, eggs.Ref()))

	_, err = e.Remove(ctx, eggs.ID)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return h.counter(t, "cart_feed_events_total", map[string]string{"type": "DELETE", "outcome": metrics.FeedSuppressed}) == 1
	}, 2*time.Second, 10*time.Millisecond)

	entries, err := h.remote.List(ctx, shopper)
	require.NoError(t, err)
	require.Empty(t, entries)
	require.Zero(t, quantityOf(t, e, eggs.Ref()))
}

func TestEngineAppliesExternalDeleteAfterOwnRemove(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	shopper := uuid.New()
	eggs := staticProduct(t, "11")
	suppressedDeletes := func() float64 {
		return h.counter(t, "cart_feed_events_total", map[string]string{"type": "DELETE", "outcome": metrics.FeedSuppressed})
	}

	e := h.engine(t, "echo-then-external")
	require.NoError(t, e.Authenticate(ctx, shopper))

	_, err := e.Add(ctx, eggs, 1)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		ok, _ := h.remote.Exists(ctx, shopper, eggs.Ref())
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	_, err = e.Remove(ctx, eggs.ID)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return suppressedDeletes() == 1 }, 2*time.Second, 10*time.Millisecond)

	// the physical cart scans eggs, then they are removed elsewhere, all
	// well inside the echo window
	_, err = h.remote.Insert(ctx, shopper, eggs.Ref(), true)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return quantityOf(t, e, eggs.Ref()) == 1 }, 2*time.Second, 10*time.Millisecond)

	_, err = h.remote.Delete(ctx, shopper, eggs.Ref())
	require.NoError(t, err)
	require.Eventually(t, func() bool { return quantityOf(t, e, eggs.Ref()) == 0 }, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, float64(1), suppressedDeletes())
}

func TestEngineClearMirrorsRemotely(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	shopper := uuid.New()

	e := h.engine(t, "clear")
	require.NoError(t, e.Authenticate(ctx, shopper))
	for _, id := range []string{"1", "2", "3"} {
		_, err := e.Add(ctx, staticProduct(t, id), 1)
		require.NoError(t, err)
	}
	require.Eventually(t, func() bool {
		entries, _ := h.remote.List(ctx, shopper)
		return len(entries) == 3
	}, 2*time.Second, 10*time.Millisecond)

	_, err := e.Clear(ctx)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		entries, _ := h.remote.List(ctx, shopper)
		return len(entries) == 0
	}, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		return h.counter(t, "cart_feed_events_total", map[string]string{"type": "DELETE", "outcome": metrics.FeedSuppressed}) == 3
	}, 2*time.Second, 10*time.Millisecond)

	snap, err := e.Snapshot(ctx)
	require.NoError(t, err)
	require.Empty(t, snap.Items)
}

func TestEngineDeauthenticateStopsFeed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	shopper := uuid.New()

	e := h.engine(t, "signout")
	require.NoError(t, e.Authenticate(ctx, shopper))
	require.Equal(t, 1, h.hub.Subscribers(shopper))
	_, err := e.Add(ctx, staticProduct(t, "5"), 2)
	require.NoError(t, err)

	require.NoError(t, e.Deauthenticate(ctx))
	require.Equal(t, 0, h.hub.Subscribers(shopper))

	_, err = h.remote.Insert(ctx, shopper, "0005", true)
	require.NoError(t, err)
	require.Equal(t, 2, quantityOf(t, e, "5"))

	snap, err := e.Snapshot(ctx)
	require.NoError(t, err)
	require.False(t, snap.Authenticated)
}

type failingRemote struct {
	mu    sync.Mutex
	calls []string
}

func (f *failingRemote) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
}

var errRemoteDown = errors.New("remote down")

func (f *failingRemote) Exists(context.Context, uuid.UUID, string) (bool, error) {
	f.record(opExists)
	return false, errRemoteDown
}

func (f *failingRemote) Insert(context.Context, uuid.UUID, string, bool) (shoppinglist.Entry, error) {
	f.record(opInsert)
	return shoppinglist.Entry{}, errRemoteDown
}

func (f *failingRemote) Delete(context.Context, uuid.UUID, string) (int, error) {
	f.record(opDelete)
	return 0, errRemoteDown
}

func (f *failingRemote) Clear(context.Context, uuid.UUID) (int, error) {
	f.record(opClear)
	return 0, errRemoteDown
}

func (f *failingRemote) List(context.Context, uuid.UUID) ([]shoppinglist.Entry, error) {
	f.record(opList)
	return nil, errRemoteDown
}

func TestEngineRemoteFailuresStayLocal(t *testing.T) {
	reg := prometheus.NewRegistry()
	remote := &failingRemote{}
	e, err := NewEngine(context.Background(), Config{SessionKey: "down"}, Deps{
		Store:    NewMemoryStore(),
		Remote:   remote,
		Products: staticLookup{},
		Metrics:  metrics.NewCartMetrics(reg),
	})
	require.NoError(t, err)
	defer e.Close()
	ctx := context.Background()

	require.NoError(t, e.Authenticate(ctx, uuid.New()))
	_, err = e.Add(ctx, staticProduct(t, "1"), 1)
	require.NoError(t, err)
	_, err = e.Remove(ctx, "1")
	require.NoError(t, err)
	_, err = e.Clear(ctx)
	require.NoError(t, err)

	h := &harness{reg: reg}
	require.Eventually(t, func() bool {
		return h.counter(t, "cart_remote_sync_failures_total", nil) == 4
	}, 2*time.Second, 10*time.Millisecond)
	for _, op := range []string{opList, opExists, opDelete, opClear} {
		require.Equal(t, float64(1), h.counter(t, "cart_remote_sync_failures_total", map[string]string{"op": op}), op)
	}
}

func TestEngineWatchStreamsSnapshots(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	e := h.engine(t, "watch")

	ch, cancel, err := e.Watch(ctx)
	require.NoError(t, err)
	initial := <-ch
	require.Empty(t, initial.Items)

	_, err = e.Add(ctx, staticProduct(t, "7"), 2)
	require.NoError(t, err)
	select {
	case snap := <-ch:
		require.Equal(t, 2, snap.TotalItems)
	case <-time.After(time.Second):
		t.Fatal("expected snapshot after add")
	}

	cancel()
	cancel()
	_, open := <-ch
	require.False(t, open)
}

func TestEngineCloseRejectsFurtherCalls(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	shopper := uuid.New()
	e := h.engine(t, "closed")
	require.NoError(t, e.Authenticate(ctx, shopper))
	ch, _, err := e.Watch(ctx)
	require.NoError(t, err)
	<-ch

	require.NoError(t, e.Close())
	require.NoError(t, e.Close())
	require.Equal(t, 0, h.hub.Subscribers(shopper))
	_, open := <-ch
	require.False(t, open)

	_, err = e.Add(ctx, staticProduct(t, "1"), 1)
	require.ErrorIs(t, err, ErrClosed)
	_, err = e.Snapshot(ctx)
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, e.Deauthenticate(ctx), ErrClosed)
}

func TestNewEngineValidatesDeps(t *testing.T) {
	_, err := NewEngine(context.Background(), Config{}, Deps{})
	require.Error(t, err)
	_, err = NewEngine(context.Background(), Config{SessionKey: "k"}, Deps{Store: NewMemoryStore()})
	require.Error(t, err)
}
