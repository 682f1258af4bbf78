package shoppinglist

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/smartcart/smartcart-backend/pkg/errors"
	"github.com/sony/gobreaker/v2"
)

// BreakerSettings trips the breaker once at least MinRequests calls were
// made and the failure ratio reached FailureRatio.
type BreakerSettings struct {
	Name         string
	MinRequests  uint32
	FailureRatio float64
	OpenFor      time.Duration
}

// Breaker wraps a Store in a circuit breaker. While open, calls fail with
// CodeDependency without reaching the database.
type Breaker struct {
	inner Store
	cb    *gobreaker.CircuitBreaker[any]
}

var _ Store = (*Breaker)(nil)

func NewBreaker(inner Store, settings BreakerSettings) *Breaker {
	var st gobreaker.Settings
	st.Name = settings.Name
	if st.Name == "" {
		st.Name = "shopping_list"
	}
	st.Timeout = settings.OpenFor
	minRequests := settings.MinRequests
	ratio := settings.FailureRatio
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		if counts.Requests == 0 {
			return false
		}
		failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
		return counts.Requests >= minRequests && failureRatio >= ratio
	}
	// validation errors do not count against the database
	st.IsSuccessful = func(err error) bool {
		return err == nil || pkgerrors.IsCode(err, pkgerrors.CodeValidation)
	}
	return &Breaker{inner: inner, cb: gobreaker.NewCircuitBreaker[any](st)}
}

// State reports the breaker state name (closed, half-open, open).
func (b *Breaker) State() string {
	return b.cb.State().String()
}

func (b *Breaker) Exists(ctx context.Context, shopperID uuid.UUID, ref string) (bool, error) {
	return run(b, func() (bool, error) { return b.inner.Exists(ctx, shopperID, ref) })
}

func (b *Breaker) Insert(ctx context.Context, shopperID uuid.UUID, ref string, scanned bool) (Entry, error) {
	return run(b, func() (Entry, error) { return b.inner.Insert(ctx, shopperID, ref, scanned) })
}

func (b *Breaker) Delete(ctx context.Context, shopperID uuid.UUID, ref string) (int, error) {
	return run(b, func() (int, error) { return b.inner.Delete(ctx, shopperID, ref) })
}

func (b *Breaker) Clear(ctx context.Context, shopperID uuid.UUID) (int, error) {
	return run(b, func() (int, error) { return b.inner.Clear(ctx, shopperID) })
}

func (b *Breaker) List(ctx context.Context, shopperID uuid.UUID) ([]Entry, error) {
	return run(b, func() ([]Entry, error) { return b.inner.List(ctx, shopperID) })
}

func run[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var zero T
	out, err := b.cb.Execute(func() (any, error) {
		v, err := fn()
		return v, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "shopping list unavailable")
		}
		return zero, err
	}
	typed, _ := out.(T)
	return typed, nil
}
