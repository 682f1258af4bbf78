package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/smartcart/smartcart-backend/pkg/config"
	"github.com/smartcart/smartcart-backend/pkg/logger"
)

type stubPinger struct {
	err   error
	calls int
}

func (p *stubPinger) Ping(context.Context) error {
	p.calls++
	return p.err
}

type stubConsumer struct {
	err     error
	started chan struct{}
}

func (c *stubConsumer) Run(ctx context.Context) error {
	if c.started != nil {
		close(c.started)
	}
	if c.err != nil {
		return c.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func newTestService(t *testing.T, db, redis, ps *stubPinger, c *stubConsumer) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Config:    &config.Config{},
		Logger:    logger.Nop(),
		DB:        db,
		Redis:     redis,
		PubSub:    ps,
		Consumer:  c,
		Heartbeat: 10 * time.Millisecond,
	})
	require.NoError(t, err)
	return svc
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{Config: &config.Config{}, Logger: logger.Nop()})
	require.EqualError(t, err, "database client is required")

	_, err = NewService(ServiceParams{
		Config: &config.Config{},
		Logger: logger.Nop(),
		DB:     &stubPinger{},
		Redis:  &stubPinger{},
		PubSub: &stubPinger{},
	})
	require.EqualError(t, err, "scan consumer is required")
}

func TestRunStopsWhenDependencyUnavailable(t *testing.T) {
	db, redis, ps := &stubPinger{}, &stubPinger{err: errors.New("refused")}, &stubPinger{}
	c := &stubConsumer{}
	svc := newTestService(t, db, redis, ps, c)

	err := svc.Run(context.Background())
	require.ErrorContains(t, err, "redis ping failed")
	require.Equal(t, 1, db.calls)
	require.Zero(t, ps.calls)
}

func TestRunReturnsConsumerError(t *testing.T) {
	boom := errors.New("subscription deleted")
	svc := newTestService(t, &stubPinger{}, &stubPinger{}, &stubPinger{}, &stubConsumer{err: boom})

	require.ErrorIs(t, svc.Run(context.Background()), boom)
}

func TestRunStopsOnCancel(t *testing.T) {
	c := &stubConsumer{started: make(chan struct{})}
	svc := newTestService(t, &stubPinger{}, &stubPinger{}, &stubPinger{}, c)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	<-c.started
	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
