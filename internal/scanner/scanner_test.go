package scanner

import (
	"context"
	"errors"
	"testing"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartcart/smartcart-backend/internal/catalog"
	"github.com/smartcart/smartcart-backend/internal/feed"
	"github.com/smartcart/smartcart-backend/internal/repo/repotest"
	"github.com/smartcart/smartcart-backend/internal/shoppinglist"
	"github.com/smartcart/smartcart-backend/internal/users"
	"github.com/smartcart/smartcart-backend/pkg/db/models"
	"github.com/smartcart/smartcart-backend/pkg/enums"
	pkgerrors "github.com/smartcart/smartcart-backend/pkg/errors"
	"github.com/smartcart/smartcart-backend/pkg/logger"
	"github.com/smartcart/smartcart-backend/pkg/metrics"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type harness struct {
	svc  Service
	hub  *feed.Hub
	list shoppinglist.Store
	conn *gorm.DB
}

func newHarness(t *testing.T) harness {
	t.Helper()
	conn := repotest.Open(t)
	ctx := context.Background()

	products, err := catalog.NewService(catalog.NewRepository(conn), nil)
	require.NoError(t, err)
	_, err = products.Seed(ctx)
	require.NoError(t, err)

	hub := feed.NewHub()
	list, err := shoppinglist.NewService(shoppinglist.NewRepository(conn), hub, nil)
	require.NoError(t, err)

	svc, err := NewService(users.NewRepository(conn), products, list, nil)
	require.NoError(t, err)
	return harness{svc: svc, hub: hub, list: list, conn: conn}
}

func pairShopper(t *testing.T, h harness, tag string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	row := models.Shopper{ID: id, Email: tag + "@example.com", RFIDTag: tag, DietaryPreferences: pq.StringArray{}, Timestamp: time.Now().UTC()}
	require.NoError(t, h.conn.Create(&row).Error)
	return id
}

func TestHandleScanInsertsScannedRow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	shopper := pairShopper(t, h, "TAG-1")

	sub, err := h.hub.Subscribe(ctx, shopper)
	require.NoError(t, err)
	defer sub.Close()

	entry, err := h.svc.HandleScan(ctx, Scan{RFIDTag: " TAG-1 ", Barcode: "0009"})
	require.NoError(t, err)
	require.True(t, entry.Scanned)
	require.Equal(t, shopper, entry.ShopperID)
	require.Equal(t, "0009", entry.ProductRef)

	_, err = h.svc.HandleScan(ctx, Scan{RFIDTag: "TAG-1", Barcode: "0009"})
	require.NoError(t, err)
	rows, err := h.list.List(ctx, shopper)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	select {
	case ev := <-sub.Events():
		require.Equal(t, enums.FeedEventInsert, ev.Type)
		require.Equal(t, "0009", ev.ProductRef())
	case <-time.After(time.Second):
		t.Fatal("expected insert event")
	}
}

func TestHandleScanUnknownTagOrProduct(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	pairShopper(t, h, "TAG-2")

	_, err := h.svc.HandleScan(ctx, Scan{RFIDTag: "nope", Barcode: "0001"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)

	_, err = h.svc.HandleScan(ctx, Scan{RFIDTag: "TAG-2", Barcode: "9999"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)

	_, err = h.svc.HandleScan(ctx, Scan{RFIDTag: "", Barcode: "0001"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}

type stubService struct {
	err   error
	scans []Scan
}

func (s *stubService) HandleScan(_ context.Context, scan Scan) (shoppinglist.Entry, error) {
	s.scans = append(s.scans, scan)
	return shoppinglist.Entry{}, s.err
}

func TestConsumerAckNack(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewScannerMetrics(reg)
	stub := &stubService{}
	c := &Consumer{svc: stub, metrics: m, logg: logger.Nop()}
	ctx := context.Background()

	res := c.process(ctx, "m1", []byte(`{"rfid_tag":"T","barcode":"0001"}`))
	require.True(t, res.ack)
	require.Equal(t, []Scan{{RFIDTag: "T", Barcode: "0001"}}, stub.scans)

	res = c.process(ctx, "m2", []byte(`not json`))
	require.True(t, res.ack)

	stub.err = pkgerrors.New(pkgerrors.CodeNotFound, "no shopper paired with tag")
	res = c.process(ctx, "m3", []byte(`{"rfid_tag":"T","barcode":"0001"}`))
	require.True(t, res.ack)

	stub.err = pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("db down"), "lookup shopper by tag")
	res = c.process(ctx, "m4", []byte(`{"rfid_tag":"T","barcode":"0001"}`))
	require.True(t, res.nack)

	require.Equal(t, 1.0, scanCount(t, reg, metrics.ScanInserted))
	require.Equal(t, 2.0, scanCount(t, reg, metrics.ScanDropped))
	require.Equal(t, 1.0, scanCount(t, reg, metrics.ScanRetried))
}

func scanCount(t *testing.T, reg *prometheus.Registry, outcome string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != "scanner_messages_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "outcome" && l.GetValue() == outcome {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

type stubPublisher struct {
	msgs []*pubsub.Message
	err  error
}

type stubResult struct {
	id  string
	err error
}

func (r stubResult) Get(context.Context) (string, error) { return r.id, r.err }

func (p *stubPublisher) Publish(_ context.Context, msg *pubsub.Message) publishResult {
	p.msgs = append(p.msgs, msg)
	return stubResult{id: "srv-1", err: p.err}
}

func TestPublisherPublish(t *testing.T) {
	stub := &stubPublisher{}
	p := &Publisher{pub: stub}

	id, err := p.Publish(context.Background(), Scan{RFIDTag: "TAG-1", Barcode: "0001"}, "dashboard")
	require.NoError(t, err)
	require.Equal(t, "srv-1", id)
	require.Len(t, stub.msgs, 1)
	require.JSONEq(t, `{"rfid_tag":"TAG-1","barcode":"0001"}`, string(stub.msgs[0].Data))
	require.Equal(t, "dashboard", stub.msgs[0].Attributes["source"])

	stub.err = errors.New("unavailable")
	_, err = p.Publish(context.Background(), Scan{RFIDTag: "TAG-1", Barcode: "0001"}, "dashboard")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}
