package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/smartcart/smartcart-backend/api/controllers"
	"github.com/smartcart/smartcart-backend/api/middleware"
	"github.com/smartcart/smartcart-backend/internal/auth"
	"github.com/smartcart/smartcart-backend/internal/cart"
	"github.com/smartcart/smartcart-backend/internal/catalog"
	"github.com/smartcart/smartcart-backend/internal/feed"
	"github.com/smartcart/smartcart-backend/internal/inventory"
	"github.com/smartcart/smartcart-backend/internal/recipes"
	"github.com/smartcart/smartcart-backend/internal/repo/repotest"
	"github.com/smartcart/smartcart-backend/internal/roles"
	"github.com/smartcart/smartcart-backend/internal/scanner"
	"github.com/smartcart/smartcart-backend/internal/shoppinglist"
	"github.com/smartcart/smartcart-backend/internal/storefront"
	"github.com/smartcart/smartcart-backend/internal/users"
	"github.com/smartcart/smartcart-backend/pkg/auth/session"
	"github.com/smartcart/smartcart-backend/pkg/config"
	"github.com/smartcart/smartcart-backend/pkg/db/models"
	"github.com/smartcart/smartcart-backend/pkg/metrics"
	"gorm.io/gorm"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

// memorySessions keeps refresh sessions in a map.
type memorySessions struct {
	mu   sync.Mutex
	live map[string]uuid.UUID
}

func (m *memorySessions) Generate(_ context.Context, accessID string, accountID uuid.UUID) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.live[accessID] = accountID
	return "refresh-" + accessID, nil
}

func (m *memorySessions) Rotate(_ context.Context, oldAccessID string, accountID uuid.UUID, provided string) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.live[oldAccessID] != accountID || provided != "refresh-"+oldAccessID {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(m.live, oldAccessID)
	next := session.NewAccessID()
	m.live[next] = accountID
	return next, "refresh-" + next, nil
}

func (m *memorySessions) Revoke(_ context.Context, accessID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.live, accessID)
	return nil
}

func (m *memorySessions) HasSession(_ context.Context, accessID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.live[accessID]
	return ok, nil
}

type stubScans struct {
	got []scanner.Scan
}

func (s *stubScans) Publish(_ context.Context, scan scanner.Scan, source string) (string, error) {
	if source != "dashboard" {
		return "", errors.New("unexpected source " + source)
	}
	s.got = append(s.got, scan)
	return "msg-1", nil
}

type testAPI struct {
	handler http.Handler
	conn    *gorm.DB
	scans   *stubScans
}

func newTestAPI(t *testing.T, ready map[string]controllers.Pinger) *testAPI {
	t.Helper()
	ctx := context.Background()
	conn := repotest.Open(t)

	cfg := &config.Config{
		App: config.AppConfig{Env: "test"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "smartcart", ExpirationMinutes: 30, RefreshTokenTTLMinutes: 60},
		Password: config.PasswordConfig{
			ArgonMemoryKB: 1024, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32,
		},
		Dashboard: config.DashboardConfig{LowStockThreshold: 5},
	}

	products, err := catalog.NewService(catalog.NewRepository(conn), nil)
	require.NoError(t, err)
	_, err = products.Seed(ctx)
	require.NoError(t, err)

	hub := feed.NewHub()
	remote, err := shoppinglist.NewService(shoppinglist.NewRepository(conn), hub, nil)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	cartMetrics := metrics.NewCartMetrics(reg)
	roleMetrics := metrics.NewRoleMetrics(reg)
	store := cart.NewMemoryStore()
	directory := roles.NewRepository(conn)

	mgr, err := storefront.NewManager(storefront.Params{
		NewEngine: func(ctx context.Context, key string) (*cart.Engine, error) {
			return cart.NewEngine(ctx, cart.Config{SessionKey: key, RemoteTimeout: time.Second}, cart.Deps{
				Store: store, Remote: remote, Products: products, Feed: hub, Metrics: cartMetrics,
			})
		},
		NewResolver: func() (*roles.Resolver, error) {
			return roles.NewResolver(directory, nil, roleMetrics)
		},
		Metrics: cartMetrics,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })

	authSvc, err := auth.NewService(auth.ServiceParams{
		Accounts:       auth.NewRepository(conn),
		SessionManager: &memorySessions{live: map[string]uuid.UUID{}},
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	require.NoError(t, err)
	authSvc.OnAuthChange(mgr.HandleAuthEvent)

	userSvc, err := users.NewService(users.NewRepository(conn))
	require.NoError(t, err)
	recipeSvc, err := recipes.NewService(products)
	require.NoError(t, err)
	editor, err := inventory.NewEditor(products, inventory.NewMemoryStore(), cfg.Dashboard.LowStockThreshold, nil)
	require.NoError(t, err)

	scans := &stubScans{}
	handler := NewRouter(Dependencies{
		Config:     cfg,
		Ready:      ready,
		Gatherer:   reg,
		Auth:       authSvc,
		Storefront: mgr,
		Catalog:    products,
		Recipes:    recipeSvc,
		Users:      userSvc,
		Inventory:  editor,
		Scans:      scans,
	})
	return &testAPI{handler: handler, conn: conn, scans: scans}
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type client struct {
	api   *testAPI
	key   string
	token string
}

func (a *testAPI) client(key string) *client {
	return &client{api: a, key: key}
}

func (c *client) do(t *testing.T, method, path, body string) (int, envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if c.key != "" {
		req.Header.Set(middleware.SessionHeader, c.key)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.api.handler.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func (c *client) signup(t *testing.T, email string) {
	t.Helper()
	code, env := c.do(t, http.MethodPost, "/api/v1/auth/signup", `{"email":"`+email+`","password":"long-enough"}`)
	require.Equal(t, http.StatusCreated, code)
	var tokens auth.TokenResponse
	require.NoError(t, json.Unmarshal(env.Data, &tokens))
	c.token = tokens.AccessToken
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

type cartBody struct {
	Notice *cart.Notice  `json:"notice"`
	Cart   cart.Snapshot `json:"cart"`
}

func TestHealthEndpoints(t *testing.T) {
	api := newTestAPI(t, map[string]controllers.Pinger{"db": stubPinger{}, "redis": stubPinger{err: errors.New("down")}})
	c := api.client("")

	code, _ := c.do(t, http.MethodGet, "/health/live", "")
	require.Equal(t, http.StatusOK, code)

	code, env := c.do(t, http.MethodGet, "/health/ready", "")
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, "DEPENDENCY_ERROR", env.Error.Code)
}

func TestCatalogIsPublic(t *testing.T) {
	c := newTestAPI(t, nil).client("")

	code, env := c.do(t, http.MethodGet, "/api/v1/products?category=Produce&popular=true", "")
	require.Equal(t, http.StatusOK, code)
	list := decode[[]catalog.Product](t, env)
	require.NotEmpty(t, list)
	for _, p := range list {
		require.Equal(t, "Produce", p.Category)
		require.True(t, p.Popular)
	}

	code, env = c.do(t, http.MethodGet, "/api/v1/products/1", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Bananas", decode[catalog.Product](t, env).Name)

	code, _ = c.do(t, http.MethodGet, "/api/v1/products/999", "")
	require.Equal(t, http.StatusNotFound, code)

	code, env = c.do(t, http.MethodGet, "/api/v1/categories", "")
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, decode[[]catalog.Category](t, env))
}

func TestGuestCartLifecycle(t *testing.T) {
	api := newTestAPI(t, nil)

	code, env := api.client("").do(t, http.MethodGet, "/api/v1/cart", "")
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	c := api.client("guest-browser")
	code, env = c.do(t, http.MethodPost, "/api/v1/cart/items", `{"product_id":"1","quantity":2}`)
	require.Equal(t, http.StatusOK, code)
	body := decode[cartBody](t, env)
	require.Equal(t, cart.NoticeAdded, body.Notice.Kind)
	require.Equal(t, 2, body.Cart.TotalItems)
	require.False(t, body.Cart.Authenticated)

	code, env = c.do(t, http.MethodPost, "/api/v1/cart/items", `{"product_id":"0001","quantity":3}`)
	require.Equal(t, http.StatusOK, code)
	body = decode[cartBody](t, env)
	require.Equal(t, cart.NoticeQuantityUpdated, body.Notice.Kind)
	require.Len(t, body.Cart.Items, 1)
	require.Equal(t, 5, body.Cart.TotalItems)

	code, _ = c.do(t, http.MethodPost, "/api/v1/cart/items", `{"product_id":"nope"}`)
	require.Equal(t, http.StatusNotFound, code)

	code, env = c.do(t, http.MethodPatch, "/api/v1/cart/items/1", `{"quantity":0}`)
	require.Equal(t, http.StatusOK, code)
	require.Empty(t, decode[cartBody](t, env).Cart.Items)

	code, _ = c.do(t, http.MethodDelete, "/api/v1/cart/items/1", "")
	require.Equal(t, http.StatusNotFound, code)

	_, _ = c.do(t, http.MethodPost, "/api/v1/cart/items", `{"product_id":"2"}`)
	code, env = c.do(t, http.MethodDelete, "/api/v1/cart", "")
	require.Equal(t, http.StatusOK, code)
	body = decode[cartBody](t, env)
	require.Equal(t, cart.NoticeCleared, body.Notice.Kind)
	require.Zero(t, body.Cart.TotalItems)
}

func TestShopperFlow(t *testing.T) {
	api := newTestAPI(t, nil)
	c := api.client("shopper-browser")

	_, _ = c.do(t, http.MethodPost, "/api/v1/cart/items", `{"product_id":"1"}`)
	c.signup(t, "sam@example.com")

	code, env := c.do(t, http.MethodGet, "/api/v1/auth/session", "")
	require.Equal(t, http.StatusOK, code)
	view := decode[map[string]any](t, env)
	require.Equal(t, true, view["authenticated"])
	require.Equal(t, "shopper", view["state"])

	code, env = c.do(t, http.MethodGet, "/api/v1/cart", "")
	require.Equal(t, http.StatusOK, code)
	snap := decode[cartBody](t, env).Cart
	require.True(t, snap.Authenticated)
	require.Equal(t, 1, snap.TotalItems)

	code, env = c.do(t, http.MethodPut, "/api/v1/me/preferences", `{"preferences":["vegan"]}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, []any{"vegan"}, decode[map[string]any](t, env)["preferences"])

	code, _ = c.do(t, http.MethodPut, "/api/v1/me/preferences", `{"preferences":["carnivore"]}`)
	require.Equal(t, http.StatusBadRequest, code)

	code, env = c.do(t, http.MethodGet, "/api/v1/recipes/r1", "")
	require.Equal(t, http.StatusOK, code)
	detail := decode[recipes.Detail](t, env)
	var conflicts []string
	for _, ing := range detail.Annotated {
		if ing.Conflict {
			conflicts = append(conflicts, ing.Name)
		}
	}
	require.Equal(t, []string{"Fresh Mozzarella"}, conflicts)

	code, env = c.do(t, http.MethodPost, "/api/v1/recipes/r1/cart", "")
	require.Equal(t, http.StatusOK, code)
	added := decode[struct {
		Summary recipes.Summary `json:"summary"`
		Cart    cart.Snapshot   `json:"cart"`
	}](t, env)
	require.Equal(t, []string{"Fresh Mozzarella"}, added.Summary.Skipped)
	require.Len(t, added.Summary.Added, 3)
	require.Equal(t, 4, added.Cart.TotalItems)

	code, env = c.do(t, http.MethodGet, "/api/v1/navigation?path=/dashboard/users", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "/shop", decode[map[string]any](t, env)["redirect"])

	code, env = c.do(t, http.MethodGet, "/api/v1/dashboard/analytics", "")
	require.Equal(t, http.StatusForbidden, code)
	require.Equal(t, "FORBIDDEN", env.Error.Code)

	code, _ = c.do(t, http.MethodPost, "/api/v1/auth/logout", "")
	require.Equal(t, http.StatusOK, code)
	c.token = ""

	code, _ = c.do(t, http.MethodGet, "/api/v1/me/preferences", "")
	require.Equal(t, http.StatusUnauthorized, code)

	code, env = c.do(t, http.MethodGet, "/api/v1/cart", "")
	require.Equal(t, http.StatusOK, code)
	snap = decode[cartBody](t, env).Cart
	require.False(t, snap.Authenticated)
	require.Equal(t, 4, snap.TotalItems)
}

func TestOwnerDashboard(t *testing.T) {
	api := newTestAPI(t, nil)
	require.NoError(t, api.conn.Create(&models.Owner{ID: uuid.New(), Email: "olive@example.com"}).Error)

	shopper := api.client("other-browser")
	shopper.signup(t, "sam@example.com")

	c := api.client("owner-browser")
	c.signup(t, "olive@example.com")

	code, env := c.do(t, http.MethodGet, "/api/v1/navigation?path=/cart", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "/dashboard", decode[map[string]any](t, env)["redirect"])

	code, _ = c.do(t, http.MethodGet, "/api/v1/cart", "")
	require.Equal(t, http.StatusForbidden, code)

	code, env = c.do(t, http.MethodGet, "/api/v1/dashboard/inventory", "")
	require.Equal(t, http.StatusOK, code)
	initial := decode[[]catalog.Product](t, env)
	require.NotEmpty(t, initial)

	code, env = c.do(t, http.MethodPost, "/api/v1/dashboard/inventory", `{"name":"Oat Milk","category":"Dairy & Eggs","price":"3.99","quantity_in_stock":2}`)
	require.Equal(t, http.StatusCreated, code)
	created := decode[catalog.Product](t, env)
	require.Equal(t, "Oat Milk", created.Name)

	code, env = c.do(t, http.MethodPatch, "/api/v1/dashboard/inventory/"+created.ID, `{"quantity_in_stock":40}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, 40, decode[catalog.Product](t, env).QuantityInStock)

	code, _ = c.do(t, http.MethodPost, "/api/v1/dashboard/inventory", `{"category":"Produce"}`)
	require.Equal(t, http.StatusBadRequest, code)

	code, env = c.do(t, http.MethodGet, "/api/v1/dashboard/analytics", "")
	require.Equal(t, http.StatusOK, code)
	report := decode[inventory.Analytics](t, env)
	require.Equal(t, len(initial)+1, report.TotalProducts)

	code, _ = c.do(t, http.MethodDelete, "/api/v1/dashboard/inventory/"+created.ID, "")
	require.Equal(t, http.StatusOK, code)
	code, env = c.do(t, http.MethodPost, "/api/v1/dashboard/inventory/reset", "")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, decode[[]catalog.Product](t, env), len(initial))

	code, env = c.do(t, http.MethodGet, "/api/v1/dashboard/users?limit=10", "")
	require.Equal(t, http.StatusOK, code)
	page := decode[struct {
		Items []users.ShopperDTO `json:"items"`
	}](t, env)
	require.Len(t, page.Items, 1)
	require.Equal(t, "sam@example.com", page.Items[0].Email)

	code, _ = c.do(t, http.MethodGet, "/api/v1/dashboard/users?limit=0", "")
	require.Equal(t, http.StatusBadRequest, code)

	code, env = c.do(t, http.MethodPost, "/api/v1/dashboard/scans", `{"rfid_tag":"TAG-1","barcode":"0001"}`)
	require.Equal(t, http.StatusAccepted, code)
	require.Equal(t, "msg-1", decode[map[string]string](t, env)["message_id"])
	require.Equal(t, []scanner.Scan{{RFIDTag: "TAG-1", Barcode: "0001"}}, api.scans.got)
}

func TestGuestCannotReachRoleScreens(t *testing.T) {
	c := newTestAPI(t, nil).client("guest")

	code, _ := c.do(t, http.MethodGet, "/api/v1/dashboard/inventory", "")
	require.Equal(t, http.StatusUnauthorized, code)

	code, env := c.do(t, http.MethodGet, "/api/v1/navigation?path=/dashboard", "")
	require.Equal(t, http.StatusOK, code)
	view := decode[map[string]any](t, env)
	require.Equal(t, "unauthenticated", view["state"])
	require.Nil(t, view["redirect"])

	code, _ = c.do(t, http.MethodGet, "/api/v1/navigation", "")
	require.Equal(t, http.StatusBadRequest, code)
}

func TestMetricsEndpoint(t *testing.T) {
	api := newTestAPI(t, nil)
	_, _ = api.client("metrics-browser").do(t, http.MethodGet, "/api/v1/cart", "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "storefront_sessions_active 1")
}
