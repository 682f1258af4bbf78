// Package roles decides whether a signed-in identity is a store owner or a
// shopper, provisioning a shopper profile on first sign-in.
package roles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/smartcart/smartcart-backend/pkg/enums"
	"github.com/smartcart/smartcart-backend/pkg/logger"
	"github.com/smartcart/smartcart-backend/pkg/metrics"
)

var (
	// ErrResolutionInFlight is returned when a resolution is already running
	// for this resolver. Nothing changes.
	ErrResolutionInFlight = errors.New("role resolution already in progress")
	// ErrResolutionSuperseded is returned when the session signed out while
	// the resolution was running; its result is discarded.
	ErrResolutionSuperseded = errors.New("role resolution superseded by sign-out")
)

// Identity is the authenticated account a resolution runs for.
type Identity struct {
	AccountID uuid.UUID
	Email     string
}

type Resolution struct {
	Role        enums.Role `json:"role"`
	Provisioned bool       `json:"provisioned"`
}

// ShopperSeed is the profile created for a first-time shopper.
type ShopperSeed struct {
	ID        uuid.UUID
	Email     string
	Username  string
	Timestamp time.Time
}

// Directory answers the owners/shoppers lookups.
type Directory interface {
	FindOwner(ctx context.Context, id uuid.UUID, email string) (bool, error)
	FindShopper(ctx context.Context, id uuid.UUID) (bool, error)
	ProvisionShopper(ctx context.Context, seed ShopperSeed) error
}

// Resolver is the per-session role state machine:
// resolving -> unauthenticated | shopper | owner, and back to
// unauthenticated on sign-out.
type Resolver struct {
	dir     Directory
	logg    *logger.Logger
	metrics *metrics.RoleMetrics
	now     func() time.Time

	inFlight atomic.Bool

	mu       sync.Mutex
	state    enums.SessionState
	identity *Identity
	gen      uint64
}

func NewResolver(dir Directory, logg *logger.Logger, m *metrics.RoleMetrics) (*Resolver, error) {
	if dir == nil {
		return nil, fmt.Errorf("role directory required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Resolver{dir: dir, logg: logg, metrics: m, now: time.Now, state: enums.SessionResolving}, nil
}

func (r *Resolver) State() enums.SessionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Identity returns the identity of the current or last resolution.
func (r *Resolver) Identity() (Identity, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.identity == nil {
		return Identity{}, false
	}
	return *r.identity, true
}

// SessionChecked records the outcome of the initial session check. Without
// a session the resolver settles on unauthenticated.
func (r *Resolver) SessionChecked(found bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !found && r.state == enums.SessionResolving && !r.inFlight.Load() {
		r.state = enums.SessionUnauthenticated
	}
}

// SignOut forgets the identity and its role.
func (r *Resolver) SignOut() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.identity = nil
	r.state = enums.SessionUnauthenticated
}

// Resolve settles the role of id. Owners win over shoppers; an identity in
// neither table is provisioned as a shopper. Lookup failures count as "not
// found", so a role is always produced.
func (r *Resolver) Resolve(ctx context.Context, id Identity) (Resolution, error) {
	if !r.inFlight.CompareAndSwap(false, true) {
		return Resolution{}, ErrResolutionInFlight
	}
	defer r.inFlight.Store(false)

	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.state = enums.SessionResolving
	identity := id
	r.identity = &identity
	r.mu.Unlock()

	ctx = r.logg.WithUserID(ctx, id.AccountID.String())
	res := r.resolve(ctx, id)

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		return res, ErrResolutionSuperseded
	}
	r.state = enums.SessionStateForRole(res.Role)
	r.metrics.IncResolution(res.Role.String(), res.Provisioned)
	return res, nil
}

func (r *Resolver) resolve(ctx context.Context, id Identity) Resolution {
	owner, err := r.dir.FindOwner(ctx, id.AccountID, id.Email)
	if err != nil {
		r.metrics.IncLookupError("owners")
		r.logg.Error(ctx, "owner lookup failed", err)
	}
	if owner {
		return Resolution{Role: enums.RoleOwner}
	}

	shopper, err := r.dir.FindShopper(ctx, id.AccountID)
	if err != nil {
		r.metrics.IncLookupError("shoppers")
		r.logg.Error(ctx, "shopper lookup failed", err)
	}
	if shopper {
		return Resolution{Role: enums.RoleShopper}
	}

	seed := ShopperSeed{
		ID:        id.AccountID,
		Email:     id.Email,
		Username:  Username(id.Email),
		Timestamp: r.now().UTC(),
	}
	if err := r.dir.ProvisionShopper(ctx, seed); err != nil {
		r.metrics.IncLookupError("shoppers")
		r.logg.Error(ctx, "shopper provisioning failed", err)
		return Resolution{Role: enums.RoleShopper}
	}
	r.logg.Info(ctx, "provisioned shopper profile")
	return Resolution{Role: enums.RoleShopper, Provisioned: true}
}

// Username derives the default display name from an email local part.
func Username(email string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	return local
}
