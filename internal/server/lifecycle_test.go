package server

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// blockingService behaves like the real listener services: Start parks until
// Stop is called.
type blockingService struct {
	running   atomic.Bool
	stoppedAt atomic.Int64
	done      chan struct{}
}

func newBlockingService() *blockingService {
	return &blockingService{done: make(chan struct{})}
}

func (s *blockingService) Start() error {
	s.running.Store(true)
	<-s.done
	return nil
}

func (s *blockingService) Stop() {
	s.stoppedAt.Store(time.Now().UnixNano())
	close(s.done)
}

func TestLifecycle_WindsDownInReverseOrder(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))

	gateway := newBlockingService()
	pool := newBlockingService()
	lc.Add("gateway", gateway)
	lc.Add("pool", pool)

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan error, 1)
	go func() { finished <- lc.Run(ctx) }()

	require.Eventually(t, func() bool {
		return gateway.running.Load() && pool.running.Load()
	}, 2*time.Second, 10*time.Millisecond, "services never started")

	cancel()

	select {
	case err := <-finished:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not wind down")
	}

	// The pool was registered last, so it must stop first.
	assert.NotZero(t, gateway.stoppedAt.Load())
	assert.NotZero(t, pool.stoppedAt.Load())
	assert.LessOrEqual(t, pool.stoppedAt.Load(), gateway.stoppedAt.Load())
}

func TestLifecycle_ServiceFailureTriggersShutdown(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))

	healthy := newBlockingService()
	lc.Add("healthy", healthy)
	lc.Add("broken", &FuncService{
		StartFn: func() error { return assert.AnError },
		StopFn:  func() {},
	})

	finished := make(chan error, 1)
	go func() { finished <- lc.Run(context.Background()) }()

	select {
	case err := <-finished:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not react to the failure")
	}
	assert.NotZero(t, healthy.stoppedAt.Load())
}

func TestFuncService_DelegatesToClosures(t *testing.T) {
	var started, stopped bool
	svc := &FuncService{
		StartFn: func() error { started = true; return nil },
		StopFn:  func() { stopped = true },
	}

	require.NoError(t, svc.Start())
	svc.Stop()
	assert.True(t, started)
	assert.True(t, stopped)
}
