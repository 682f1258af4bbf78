// Package storefront keeps one cart engine and one role resolver per browser
// session and keeps them in step with sign-in and sign-out.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/smartcart/smartcart-backend/internal/auth"
	"github.com/smartcart/smartcart-backend/internal/cart"
	"github.com/smartcart/smartcart-backend/internal/roles"
	"github.com/smartcart/smartcart-backend/pkg/enums"
	pkgerrors "github.com/smartcart/smartcart-backend/pkg/errors"
	"github.com/smartcart/smartcart-backend/pkg/logger"
	"github.com/smartcart/smartcart-backend/pkg/metrics"
	"go.uber.org/multierr"
)

const maxSessionKeyLen = 128

// ErrClosed is returned once the manager has been closed.
var ErrClosed = errors.New("storefront manager closed")

// EngineFactory builds the cart engine of a new session.
type EngineFactory func(ctx context.Context, sessionKey string) (*cart.Engine, error)

// ResolverFactory builds the role resolver of a new session.
type ResolverFactory func() (*roles.Resolver, error)

// Session is one browser's storefront state.
type Session struct {
	Key   string
	Cart  *cart.Engine
	Roles *roles.Resolver

	// orders cart (de)authentication against sign-out
	authMu   sync.Mutex
	lastSeen time.Time
}

// State is the session's role state.
func (s *Session) State() enums.SessionState {
	return s.Roles.State()
}

type Params struct {
	NewEngine   EngineFactory
	NewResolver ResolverFactory
	IdleTTL     time.Duration
	Metrics     *metrics.CartMetrics
	Logger      *logger.Logger
	Clock       func() time.Time
}

// Manager owns every live Session. Idle sessions are closed by Sweep; their
// carts survive in the local store and are reloaded on the next request.
type Manager struct {
	newEngine   EngineFactory
	newResolver ResolverFactory
	idleTTL     time.Duration
	metrics     *metrics.CartMetrics
	logg        *logger.Logger
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

func NewManager(p Params) (*Manager, error) {
	if p.NewEngine == nil {
		return nil, fmt.Errorf("engine factory required")
	}
	if p.NewResolver == nil {
		return nil, fmt.Errorf("resolver factory required")
	}
	if p.IdleTTL <= 0 {
		p.IdleTTL = 30 * time.Minute
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	if p.Clock == nil {
		p.Clock = time.Now
	}
	return &Manager{
		newEngine:   p.NewEngine,
		newResolver: p.NewResolver,
		idleTTL:     p.IdleTTL,
		metrics:     p.Metrics,
		logg:        p.Logger,
		now:         p.Clock,
		sessions:    map[string]*Session{},
	}, nil
}

// ValidKey reports whether key can name a session.
func ValidKey(key string) bool {
	key = strings.TrimSpace(key)
	return key != "" && len(key) <= maxSessionKeyLen && !strings.ContainsAny(key, " :\t\r\n")
}

// Get returns the session for key, creating it on first use.
func (m *Manager) Get(ctx context.Context, key string) (*Session, error) {
	key = strings.TrimSpace(key)
	if !ValidKey(key) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid session key")
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	if s, ok := m.sessions[key]; ok {
		s.lastSeen = m.now()
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	// Building the engine reads the local store, so it runs unlocked.
	s, err := m.build(ctx, key)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		_ = s.Cart.Close()
		return nil, ErrClosed
	}
	if existing, ok := m.sessions[key]; ok {
		existing.lastSeen = m.now()
		m.mu.Unlock()
		_ = s.Cart.Close()
		return existing, nil
	}
	s.lastSeen = m.now()
	m.sessions[key] = s
	n := len(m.sessions)
	m.mu.Unlock()

	m.metrics.SetActiveSessions(n)
	m.logg.Debug(m.logg.WithSessionKey(ctx, key), "storefront.session_opened")
	return s, nil
}

// Lookup returns a live session without creating one.
func (m *Manager) Lookup(key string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[strings.TrimSpace(key)]
	if ok {
		s.lastSeen = m.now()
	}
	return s, ok
}

func (m *Manager) build(ctx context.Context, key string) (*Session, error) {
	resolver, err := m.newResolver()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build role resolver")
	}
	engine, err := m.newEngine(ctx, key)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build cart engine")
	}
	return &Session{Key: key, Cart: engine, Roles: resolver}, nil
}

// SignIn resolves the identity's role for the session. A shopper's cart is
// bound to their remote list; an owner's cart stays local.
func (m *Manager) SignIn(ctx context.Context, key string, id auth.Identity) (roles.Resolution, error) {
	s, err := m.Get(ctx, key)
	if err != nil {
		return roles.Resolution{}, err
	}
	ctx = m.logg.WithSessionKey(ctx, s.Key)

	res, err := s.Roles.Resolve(ctx, roles.Identity{AccountID: id.AccountID, Email: id.Email})
	if err != nil {
		return res, err
	}
	ctx = m.logg.WithRole(ctx, res.Role.String())

	s.authMu.Lock()
	defer s.authMu.Unlock()
	current, ok := s.Roles.Identity()
	if !ok || current.AccountID != id.AccountID || s.Roles.State() != enums.SessionStateForRole(res.Role) {
		return res, roles.ErrResolutionSuperseded
	}
	if res.Role == enums.RoleShopper {
		if err := s.Cart.Authenticate(ctx, id.AccountID); err != nil {
			return res, err
		}
	} else if err := s.Cart.Deauthenticate(ctx); err != nil {
		return res, err
	}
	m.logg.Info(ctx, "storefront.signed_in")
	return res, nil
}

// SignOut returns the session to unauthenticated and unbinds its cart.
func (m *Manager) SignOut(ctx context.Context, key string) error {
	s, ok := m.Lookup(key)
	if !ok {
		return nil
	}
	s.authMu.Lock()
	defer s.authMu.Unlock()
	s.Roles.SignOut()
	if err := s.Cart.Deauthenticate(ctx); err != nil && !errors.Is(err, cart.ErrClosed) {
		return err
	}
	m.logg.Info(m.logg.WithSessionKey(ctx, s.Key), "storefront.signed_out")
	return nil
}

// Restore applies the result of a request's session check. info is nil when
// the request carried no live session.
func (m *Manager) Restore(ctx context.Context, key string, info *auth.SessionInfo) (*Session, error) {
	s, err := m.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if info == nil {
		s.Roles.SessionChecked(false)
		return s, nil
	}

	current, ok := s.Roles.Identity()
	if ok && current.AccountID == info.Identity.AccountID && s.Roles.State() != enums.SessionUnauthenticated {
		return s, nil
	}
	_, err = m.SignIn(ctx, key, info.Identity)
	if err != nil && !errors.Is(err, roles.ErrResolutionInFlight) && !errors.Is(err, roles.ErrResolutionSuperseded) {
		return s, err
	}
	return s, nil
}

// HandleAuthEvent is registered as an auth.Listener.
func (m *Manager) HandleAuthEvent(ctx context.Context, ev auth.Event) {
	if ev.SessionKey == "" {
		return
	}
	ctx = m.logg.WithSessionKey(ctx, ev.SessionKey)
	switch ev.Type {
	case auth.EventSignedIn:
		if _, err := m.SignIn(ctx, ev.SessionKey, ev.Identity); err != nil {
			m.logg.Warn(ctx, "storefront.sign_in_incomplete: "+err.Error())
		}
	case auth.EventSignedOut:
		if err := m.SignOut(ctx, ev.SessionKey); err != nil {
			m.logg.Error(ctx, "storefront.sign_out_failed", err)
		}
	}
}

// Sweep closes sessions idle longer than the idle TTL and returns how many
// were closed.
func (m *Manager) Sweep(ctx context.Context) int {
	cutoff := m.now().Add(-m.idleTTL)

	m.mu.Lock()
	var idle []*Session
	for key, s := range m.sessions {
		if s.lastSeen.Before(cutoff) {
			idle = append(idle, s)
			delete(m.sessions, key)
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	for _, s := range idle {
		if err := s.Cart.Close(); err != nil {
			m.logg.Error(m.logg.WithSessionKey(ctx, s.Key), "storefront.session_close_failed", err)
		}
	}
	if len(idle) > 0 {
		m.metrics.SetActiveSessions(n)
		m.logg.Debug(ctx, fmt.Sprintf("storefront.sessions_evicted count=%d", len(idle)))
	}
	return len(idle)
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// Len is the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close closes every session; later calls to Get fail with ErrClosed.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	sessions := m.sessions
	m.sessions = map[string]*Session{}
	m.mu.Unlock()

	var err error
	for _, s := range sessions {
		err = multierr.Append(err, s.Cart.Close())
	}
	m.metrics.SetActiveSessions(0)
	return err
}
