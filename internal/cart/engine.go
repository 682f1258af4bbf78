// Package cart holds the storefront cart engine: the authoritative
// in-memory cart of one session, persisted write-through to a local store
// and mirrored to the shopper's remote shopping list while signed in.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/smartcart/smartcart-backend/internal/catalog"
	"github.com/smartcart/smartcart-backend/internal/feed"
	"github.com/smartcart/smartcart-backend/internal/shoppinglist"
	"github.com/smartcart/smartcart-backend/pkg/enums"
	pkgerrors "github.com/smartcart/smartcart-backend/pkg/errors"
	"github.com/smartcart/smartcart-backend/pkg/logger"
	"github.com/smartcart/smartcart-backend/pkg/metrics"
)

var (
	ErrClosed       = errors.New("cart engine closed")
	ErrItemNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
)

const (
	opExists = "exists"
	opInsert = "insert"
	opDelete = "delete"
	opClear  = "clear"
	opList   = "list"
	opLookup = "product_lookup"
)

// RemoteList is the shopper's remote shopping list.
type RemoteList interface {
	Exists(ctx context.Context, shopperID uuid.UUID, ref string) (bool, error)
	Insert(ctx context.Context, shopperID uuid.UUID, ref string, scanned bool) (shoppinglist.Entry, error)
	Delete(ctx context.Context, shopperID uuid.UUID, ref string) (int, error)
	Clear(ctx context.Context, shopperID uuid.UUID) (int, error)
	List(ctx context.Context, shopperID uuid.UUID) ([]shoppinglist.Entry, error)
}

// ProductLookup resolves a shopping list product reference.
type ProductLookup interface {
	ProductByRef(ctx context.Context, ref string) (catalog.Product, error)
}

type Config struct {
	SessionKey    string
	EchoWindow    time.Duration
	RemoteTimeout time.Duration
}

type Deps struct {
	Store    LocalStore
	Remote   RemoteList
	Products ProductLookup
	Feed     feed.Subscriber
	Metrics  *metrics.CartMetrics
	Logger   *logger.Logger
	Clock    func() time.Time
}

// Engine owns one session's cart. Every state change, whether it comes from
// a caller, a remote completion or the change feed, runs as a message on a
// single loop goroutine.
type Engine struct {
	cfg      Config
	store    LocalStore
	remote   RemoteList
	products ProductLookup
	feed     feed.Subscriber
	metrics  *metrics.CartMetrics
	logg     *logger.Logger
	now      func() time.Time

	msgs      chan func()
	closing   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	// owned by the loop goroutine
	items       []Item
	shopperID   uuid.UUID
	authed      bool
	gen         uint64
	sub         feed.Subscription
	echoes      echoLedger
	watchers    map[int]chan Snapshot
	nextWatcher int
}

// NewEngine loads the session's cart from the local store and starts the
// loop. Unreadable stored data is discarded and the cart starts empty.
func NewEngine(ctx context.Context, cfg Config, deps Deps) (*Engine, error) {
	if cfg.SessionKey == "" {
		return nil, fmt.Errorf("session key required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("local store required")
	}
	if deps.Remote == nil {
		return nil, fmt.Errorf("remote list required")
	}
	if deps.Products == nil {
		return nil, fmt.Errorf("product lookup required")
	}
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if cfg.EchoWindow <= 0 {
		cfg.EchoWindow = 10 * time.Second
	}
	if cfg.RemoteTimeout <= 0 {
		cfg.RemoteTimeout = 5 * time.Second
	}

	e := &Engine{
		cfg:      cfg,
		store:    deps.Store,
		remote:   deps.Remote,
		products: deps.Products,
		feed:     deps.Feed,
		metrics:  deps.Metrics,
		logg:     deps.Logger,
		now:      deps.Clock,
		msgs:     make(chan func()),
		closing:  make(chan struct{}),
		done:     make(chan struct{}),
		echoes:   echoLedger{window: cfg.EchoWindow},
		watchers: map[int]chan Snapshot{},
	}
	e.items = e.load(ctx)
	go e.loop()
	return e, nil
}

func (e *Engine) loop() {
	defer close(e.done)
	for {
		select {
		case fn := <-e.msgs:
			fn()
		case <-e.closing:
			e.detach()
			for id, w := range e.watchers {
				delete(e.watchers, id)
				close(w)
			}
			return
		}
	}
}

// post hands fn to the loop. It reports false once the engine is closing
// or ctx is done, in which case fn never runs.
func (e *Engine) post(ctx context.Context, fn func()) bool {
	select {
	case <-e.closing:
		return false
	default:
	}
	select {
	case e.msgs <- fn:
		return true
	case <-e.closing:
		return false
	case <-ctx.Done():
		return false
	}
}

// do runs fn on the loop and waits for it to finish.
func (e *Engine) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !e.post(ctx, func() {
		defer close(finished)
		fn()
	}) {
		if err := ctx.Err(); err != nil {
			return err
		}
		return ErrClosed
	}
	<-finished
	return nil
}

// Add puts quantity units of product in the cart (1 when quantity <= 0).
func (e *Engine) Add(ctx context.Context, product catalog.Product, quantity int) (Notice, error) {
	if err := product.Validate(); err != nil {
		return Notice{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product")
	}
	if quantity <= 0 {
		quantity = 1
	}
	var notice Notice
	err := e.do(ctx, func() {
		var appended bool
		e.items, appended = addItem(e.items, product, quantity)
		notice = addedNotice(product.Name, appended)
		e.changed(ctx)
		if e.authed {
			e.mirrorInsert(product.Ref())
		}
	})
	return notice, err
}

// Remove drops the item for productID (id or barcode).
func (e *Engine) Remove(ctx context.Context, productID string) (Notice, error) {
	var (
		notice Notice
		found  bool
	)
	err := e.do(ctx, func() {
		i := indexOfRef(e.items, productID)
		if i < 0 {
			return
		}
		found = true
		item := e.items[i]
		e.items = removeAt(e.items, i)
		notice = removedNotice(item.Product.Name)
		e.changed(ctx)
		if e.authed {
			e.mirrorDelete(item.Product.Ref())
		}
	})
	if err != nil {
		return Notice{}, err
	}
	if !found {
		return Notice{}, ErrItemNotFound
	}
	return notice, nil
}

// UpdateQuantity sets an item's quantity in place. Zero or less removes it.
// The remote list holds presence only, so nothing is mirrored.
func (e *Engine) UpdateQuantity(ctx context.Context, productID string, quantity int) (Notice, error) {
	if quantity <= 0 {
		return e.Remove(ctx, productID)
	}
	var (
		notice Notice
		found  bool
	)
	err := e.do(ctx, func() {
		i := indexOfRef(e.items, productID)
		if i < 0 {
			return
		}
		found = true
		e.items[i].Quantity = capQuantity(quantity, e.items[i].Product)
		notice = quantityNotice(e.items[i].Product.Name, e.items[i].Quantity)
		e.changed(ctx)
	})
	if err != nil {
		return Notice{}, err
	}
	if !found {
		return Notice{}, ErrItemNotFound
	}
	return notice, nil
}

// Clear empties the cart and, when signed in, the remote list.
func (e *Engine) Clear(ctx context.Context) (Notice, error) {
	err := e.do(ctx, func() {
		removed := e.items
		e.items = nil
		e.changed(ctx)
		if e.authed {
			e.mirrorClear(removed)
		}
	})
	if err != nil {
		return Notice{}, err
	}
	return clearedNotice, nil
}

// Snapshot returns the current cart with its totals.
func (e *Engine) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := e.do(ctx, func() {
		snap = snapshotOf(e.items, e.authed)
	})
	return snap, err
}

// Watch streams a snapshot now and after every applied change. Slow readers
// only see the latest snapshot. The channel closes on cancel or Close.
func (e *Engine) Watch(ctx context.Context) (<-chan Snapshot, func(), error) {
	ch := make(chan Snapshot, 1)
	var id int
	err := e.do(ctx, func() {
		e.nextWatcher++
		id = e.nextWatcher
		e.watchers[id] = ch
		ch <- snapshotOf(e.items, e.authed)
	})
	if err != nil {
		return nil, func() {}, err
	}
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			_ = e.do(context.Background(), func() {
				if w, ok := e.watchers[id]; ok {
					delete(e.watchers, id)
					close(w)
				}
			})
		})
	}
	return ch, cancel, nil
}

// Authenticate binds the cart to shopperID: the remote list is merged into
// the local cart and the shopper's change feed is applied from then on.
// Remote failures are logged; the cart keeps working locally.
func (e *Engine) Authenticate(ctx context.Context, shopperID uuid.UUID) error {
	if shopperID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "shopper id is required")
	}
	var (
		gen     uint64
		already bool
	)
	if err := e.do(ctx, func() {
		if e.authed && e.shopperID == shopperID {
			already = true
			return
		}
		e.detach()
		e.shopperID = shopperID
		e.authed = true
		e.gen++
		gen = e.gen
		e.notify()
	}); err != nil {
		return err
	}
	if already {
		return nil
	}

	logCtx := e.logContext(ctx, shopperID)

	if e.feed != nil {
		sub, err := e.feed.Subscribe(ctx, shopperID)
		if err != nil {
			e.logg.Error(logCtx, "cart feed subscribe failed", err)
		} else if !e.post(ctx, func() { e.attach(gen, sub) }) {
			_ = sub.Close()
		}
	}

	products := e.fetchRemote(ctx, shopperID)
	if products == nil {
		return nil
	}
	return e.do(ctx, func() {
		if gen != e.gen {
			return
		}
		e.items = mergeRemote(e.items, products)
		e.changed(ctx)
	})
}

// Deauthenticate stops mirroring and feed consumption. The local cart stays.
func (e *Engine) Deauthenticate(ctx context.Context) error {
	return e.do(ctx, func() {
		if !e.authed {
			return
		}
		e.detach()
		e.authed = false
		e.shopperID = uuid.Nil
		e.gen++
		e.echoes.reset()
		e.notify()
	})
}

// ShopperID returns the bound shopper, if any.
func (e *Engine) ShopperID(ctx context.Context) (uuid.UUID, bool, error) {
	var (
		id     uuid.UUID
		authed bool
	)
	err := e.do(ctx, func() {
		id, authed = e.shopperID, e.authed
	})
	return id, authed, err
}

// Close stops the engine. In-flight remote writes finish (bounded by the
// remote timeout) but their completions are dropped.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		close(e.closing)
		<-e.done
		e.wg.Wait()
	})
	return nil
}

// loop-side helpers below must only run on the loop goroutine.

func (e *Engine) changed(ctx context.Context) {
	e.persist(ctx)
	e.notify()
}

func (e *Engine) notify() {
	if len(e.watchers) == 0 {
		return
	}
	snap := snapshotOf(e.items, e.authed)
	for _, w := range e.watchers {
		select {
		case <-w:
		default:
		}
		w <- snap
	}
}

func (e *Engine) persist(ctx context.Context) {
	data, err := encodeItems(e.items)
	if err != nil {
		e.logg.Error(e.logContext(ctx, e.shopperID), "encode cart", err)
		return
	}
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.cfg.RemoteTimeout)
	defer cancel()
	if err := e.store.Save(sctx, e.cfg.SessionKey, data); err != nil {
		e.logg.Error(e.logContext(ctx, e.shopperID), "persist cart", err)
	}
}

func (e *Engine) load(ctx context.Context) []Item {
	logCtx := e.logContext(ctx, uuid.Nil)
	data, err := e.store.Load(ctx, e.cfg.SessionKey)
	if err != nil {
		e.logg.Error(logCtx, "load stored cart", err)
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	items, err := decodeItems(data)
	if err != nil {
		e.logg.Warn(logCtx, fmt.Sprintf("discarding stored cart: %v", err))
		if err := e.store.Clear(ctx, e.cfg.SessionKey); err != nil {
			e.logg.Error(logCtx, "clear stored cart", err)
		}
		return nil
	}
	return items
}

func (e *Engine) detach() {
	if e.sub == nil {
		return
	}
	_ = e.sub.Close()
	e.sub = nil
}

func (e *Engine) attach(gen uint64, sub feed.Subscription) {
	if gen != e.gen {
		_ = sub.Close()
		return
	}
	e.detach()
	e.sub = sub
	e.wg.Add(1)
	go e.forward(gen, sub)
}

// forward moves feed events onto the loop until the subscription closes.
func (e *Engine) forward(gen uint64, sub feed.Subscription) {
	defer e.wg.Done()
	for ev := range sub.Events() {
		if !e.post(context.Background(), func() { e.applyFeed(gen, ev) }) {
			return
		}
	}
}

func (e *Engine) applyFeed(gen uint64, ev feed.Event) {
	eventType := ev.Type.String()
	if gen != e.gen || !e.authed || ev.ShopperID() != e.shopperID {
		e.metrics.IncFeedEvent(eventType, metrics.FeedIgnored)
		return
	}
	ref := ev.ProductRef()
	switch ev.Type {
	case enums.FeedEventInsert:
		if e.echoes.consume(ref, enums.FeedEventInsert, e.now()) {
			e.metrics.IncFeedEvent(eventType, metrics.FeedSuppressed)
			return
		}
		if i := indexOfRef(e.items, ref); i >= 0 {
			e.items[i].Quantity++
			e.changed(context.Background())
		} else {
			e.lookupAndAppend(gen, ref)
		}
		e.metrics.IncFeedEvent(eventType, metrics.FeedApplied)
	case enums.FeedEventDelete:
		if e.echoes.consume(ref, enums.FeedEventDelete, e.now()) {
			e.metrics.IncFeedEvent(eventType, metrics.FeedSuppressed)
			return
		}
		i := indexOfRef(e.items, ref)
		if i < 0 {
			e.metrics.IncFeedEvent(eventType, metrics.FeedIgnored)
			return
		}
		e.items = removeAt(e.items, i)
		e.changed(context.Background())
		e.metrics.IncFeedEvent(eventType, metrics.FeedApplied)
	default:
		e.metrics.IncFeedEvent(eventType, metrics.FeedIgnored)
	}
}

// lookupAndAppend resolves a product seen only on the feed and adds one
// unit once it is known.
func (e *Engine) lookupAndAppend(gen uint64, ref string) {
	shopperID := e.shopperID
	e.async(func(ctx context.Context) {
		started := time.Now()
		product, err := e.products.ProductByRef(ctx, ref)
		e.metrics.ObserveSync(opLookup, time.Since(started), err)
		if err != nil {
			e.logRemoteError(ctx, shopperID, ref, opLookup, err)
			return
		}
		e.post(context.Background(), func() {
			if gen != e.gen {
				return
			}
			if i := indexOf(e.items, product); i >= 0 {
				e.items[i].Quantity++
			} else {
				e.items = append(e.items, Item{Product: product, Quantity: 1})
			}
			e.changed(context.Background())
		})
	})
}

// mirrorInsert adds a remote row for ref unless one already exists. The echo
// token is taken before the call so the resulting feed event cannot beat it.
func (e *Engine) mirrorInsert(ref string) {
	shopperID := e.shopperID
	token := e.echoes.record(enums.FeedEventInsert, e.now(), 1, ref)
	e.async(func(ctx context.Context) {
		started := time.Now()
		exists, err := e.remote.Exists(ctx, shopperID, ref)
		e.metrics.ObserveSync(opExists, time.Since(started), err)
		if err != nil {
			e.logRemoteError(ctx, shopperID, ref, opExists, err)
			e.withdraw(token)
			return
		}
		if exists {
			e.withdraw(token)
			return
		}
		started = time.Now()
		_, err = e.remote.Insert(ctx, shopperID, ref, false)
		e.metrics.ObserveSync(opInsert, time.Since(started), err)
		if err != nil {
			e.logRemoteError(ctx, shopperID, ref, opInsert, err)
			e.withdraw(token)
		}
	})
}

// mirrorDelete removes the shopper's rows for ref. The echo batch stays
// pending until the row count comes back, so it absorbs only the delete
// events this call produced.
func (e *Engine) mirrorDelete(ref string) {
	shopperID := e.shopperID
	token := e.echoes.record(enums.FeedEventDelete, e.now(), echoPending, ref)
	e.async(func(ctx context.Context) {
		started := time.Now()
		n, err := e.remote.Delete(ctx, shopperID, ref)
		e.metrics.ObserveSync(opDelete, time.Since(started), err)
		if err != nil {
			e.logRemoteError(ctx, shopperID, ref, opDelete, err)
			e.withdraw(token)
			return
		}
		e.settle(token, n)
	})
}

func (e *Engine) mirrorClear(removed []Item) {
	shopperID := e.shopperID
	refs := make([]string, 0, len(removed))
	for _, it := range removed {
		refs = append(refs, it.Product.Ref())
	}
	token := e.echoes.record(enums.FeedEventDelete, e.now(), echoPending, refs...)
	e.async(func(ctx context.Context) {
		started := time.Now()
		n, err := e.remote.Clear(ctx, shopperID)
		e.metrics.ObserveSync(opClear, time.Since(started), err)
		if err != nil {
			e.logRemoteError(ctx, shopperID, "", opClear, err)
			e.withdraw(token)
			return
		}
		e.settle(token, n)
	})
}

func (e *Engine) settle(id uint64, count int) {
	e.post(context.Background(), func() {
		e.echoes.settle(id, count)
	})
}

func (e *Engine) withdraw(ids ...uint64) {
	e.post(context.Background(), func() {
		for _, id := range ids {
			e.echoes.withdraw(id)
		}
	})
}

// async runs fn off the loop with a remote-call deadline. Close waits for it.
func (e *Engine) async(fn func(ctx context.Context)) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), e.cfg.RemoteTimeout)
		defer cancel()
		fn(ctx)
	}()
}

// fetchRemote lists the shopper's rows as products. Rows whose product does
// not resolve are skipped. It returns nil when the list could not be read.
func (e *Engine) fetchRemote(ctx context.Context, shopperID uuid.UUID) []catalog.Product {
	rctx, cancel := context.WithTimeout(ctx, e.cfg.RemoteTimeout)
	defer cancel()

	started := time.Now()
	entries, err := e.remote.List(rctx, shopperID)
	e.metrics.ObserveSync(opList, time.Since(started), err)
	if err != nil {
		e.logRemoteError(ctx, shopperID, "", opList, err)
		return nil
	}
	products := make([]catalog.Product, 0, len(entries))
	for _, entry := range entries {
		if entry.Product != nil {
			products = append(products, *entry.Product)
			continue
		}
		p, err := e.products.ProductByRef(rctx, entry.ProductRef)
		if err != nil {
			e.logRemoteError(ctx, shopperID, entry.ProductRef, opLookup, err)
			continue
		}
		products = append(products, p)
	}
	return products
}

func (e *Engine) logContext(ctx context.Context, shopperID uuid.UUID) context.Context {
	ctx = e.logg.WithSessionKey(ctx, e.cfg.SessionKey)
	if shopperID != uuid.Nil {
		ctx = e.logg.WithShopperID(ctx, shopperID.String())
	}
	return ctx
}

func (e *Engine) logRemoteError(ctx context.Context, shopperID uuid.UUID, ref, op string, err error) {
	ctx = e.logContext(ctx, shopperID)
	ctx = e.logg.WithFields(ctx, map[string]any{"product_ref": ref, "op": op})
	e.logg.Error(ctx, "cart remote sync failed", err)
}
