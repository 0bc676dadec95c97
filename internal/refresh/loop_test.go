package refresh

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"PriceBoard/internal/clock"
)

var t0 = time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	starts []time.Time
	clk    clock.Clock
	ch     chan struct{}
}

func newRecorder(clk clock.Clock) *recorder {
	return &recorder{clk: clk, ch: make(chan struct{}, 64)}
}

func (r *recorder) pass(context.Context) error {
	r.mu.Lock()
	r.starts = append(r.starts, r.clk.Now())
	r.mu.Unlock()
	r.ch <- struct{}{}
	return nil
}

func (r *recorder) snapshot() []time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Time(nil), r.starts...)
}

func TestClampInterval(t *testing.T) {
	tests := map[int]int{
		0: 30, 29: 30, 30: 30, 44: 30, 45: 60, 60: 60,
		100: 90, 299: 300, 300: 300, 1000: 300, -5: 30,
	}
	for in, want := range tests {
		assert.Equal(t, want, ClampInterval(in), "in=%d", in)
	}
}

func TestLoop_WaitsBetweenPasses(t *testing.T) {
	clk := clock.NewFake(t0)
	rec := newRecorder(clk)
	loop := NewLoop(rec.pass, 60, clk, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	const cycles = 5
	<-rec.ch
	for i := 0; i < cycles; i++ {
		clk.BlockUntil(1)
		clk.Advance(59 * time.Second)
		assert.Len(t, rec.snapshot(), i+1, "no pass before the interval elapses")
		clk.Advance(time.Second)
		<-rec.ch
	}
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	starts := rec.snapshot()
	require.Len(t, starts, cycles+1)
	for i := 1; i < len(starts); i++ {
		assert.GreaterOrEqual(t, starts[i].Sub(starts[i-1]), time.Minute)
	}
}

func TestLoop_DisableStopsAfterWait(t *testing.T) {
	clk := clock.NewFake(t0)
	rec := newRecorder(clk)
	loop := NewLoop(rec.pass, 30, clk, nil)

	done := make(chan error, 1)
	go func() { done <- loop.Run(context.Background()) }()

	<-rec.ch
	clk.BlockUntil(1)
	loop.SetEnabled(false)
	clk.Advance(30 * time.Second)

	require.NoError(t, <-done)
	assert.Equal(t, 1, loop.Passes())
}

func TestLoop_DisabledRunsOnePass(t *testing.T) {
	clk := clock.NewFake(t0)
	rec := newRecorder(clk)
	loop := NewLoop(rec.pass, 30, clk, nil)
	loop.SetEnabled(false)

	require.NoError(t, loop.Run(context.Background()))
	assert.Len(t, rec.snapshot(), 1)
}

func TestLoop_CancelDuringWait(t *testing.T) {
	clk := clock.NewFake(t0)
	rec := newRecorder(clk)
	loop := NewLoop(rec.pass, 300, clk, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	<-rec.ch
	clk.BlockUntil(1)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Len(t, rec.snapshot(), 1)
}

func TestLoop_PassErrorsDoNotStopLoop(t *testing.T) {
	clk := clock.NewFake(t0)
	calls := make(chan struct{}, 8)
	loop := NewLoop(func(context.Context) error {
		calls <- struct{}{}
		return errors.New("upstream down")
	}, 30, clk, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = loop.Run(ctx) }()

	<-calls
	clk.BlockUntil(1)
	clk.Advance(30 * time.Second)
	<-calls
	assert.Equal(t, 2, loop.Passes())
}

func TestLoop_SetInterval(t *testing.T) {
	loop := NewLoop(func(context.Context) error { return nil }, 10, nil, nil)
	assert.Equal(t, 30*time.Second, loop.Interval())
	loop.SetInterval(120)
	assert.Equal(t, 2*time.Minute, loop.Interval())
	assert.True(t, loop.Enabled())
}
