package server

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

type mockService struct {
	name    string
	started atomic.Bool
	stopped atomic.Bool
	stopCh  chan struct{}
	once    sync.Once
	startFn func() error
	order   *stopOrder
}

type stopOrder struct {
	mu    sync.Mutex
	names []string
}

func newMockService(name string, order *stopOrder) *mockService {
	return &mockService{name: name, stopCh: make(chan struct{}), order: order}
}

func (m *mockService) Start() error {
	m.started.Store(true)
	if m.startFn != nil {
		return m.startFn()
	}
	<-m.stopCh
	return nil
}

func (m *mockService) Stop() {
	m.stopped.Store(true)
	if m.order != nil {
		m.order.mu.Lock()
		m.order.names = append(m.order.names, m.name)
		m.order.mu.Unlock()
	}
	m.once.Do(func() { close(m.stopCh) })
}

func waitStarted(t *testing.T, svcs ...*mockService) {
	t.Helper()
	require.Eventually(t, func() bool {
		for _, s := range svcs {
			if !s.started.Load() {
				return false
			}
		}
		return true
	}, 2*time.Second, 10*time.Millisecond, "services did not start in time")
}

func TestLifecycleStartsAndStopsServicesInReverse(t *testing.T) {
	defer goleak.VerifyNone(t)

	lc := NewLifecycle(zaptest.NewLogger(t))
	order := &stopOrder{}
	svc1 := newMockService("svc1", order)
	svc2 := newMockService("svc2", order)
	lc.Add("svc1", svc1)
	lc.Add("svc2", svc2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()

	waitStarted(t, svc1, svc2)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
	}

	assert.True(t, svc1.stopped.Load())
	assert.True(t, svc2.stopped.Load())
	assert.Equal(t, []string{"svc2", "svc1"}, order.names)
}

func TestLifecycleServiceFailureStopsOthers(t *testing.T) {
	defer goleak.VerifyNone(t)

	lc := NewLifecycle(zaptest.NewLogger(t))
	healthy := newMockService("healthy", nil)
	failing := newMockService("failing", nil)
	boom := errors.New("boom")
	failing.startFn = func() error { return boom }
	lc.Add("healthy", healthy)
	lc.Add("failing", failing)

	err := lc.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "service failing")
	assert.True(t, healthy.stopped.Load())
}

func TestNewLifecycleNilLoggerPanics(t *testing.T) {
	assert.Panics(t, func() { NewLifecycle(nil) })
}

func TestFuncService(t *testing.T) {
	started := false
	stopped := false

	svc := &FuncService{
		StartFn: func() error {
			started = true
			return nil
		},
		StopFn: func() {
			stopped = true
		},
	}

	err := svc.Start()
	assert.NoError(t, err)
	assert.True(t, started)

	svc.Stop()
	assert.True(t, stopped)
}
