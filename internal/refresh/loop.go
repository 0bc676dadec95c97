// Package refresh re-runs a render pass on a timer.
package refresh

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"PriceBoard/internal/clock"
)

// Interval bounds in seconds.
const (
	MinSeconds     = 30
	MaxSeconds     = 300
	StepSeconds    = 30
	DefaultSeconds = 60
)

// ClampInterval bounds seconds to [MinSeconds, MaxSeconds] and snaps it to
// the nearest StepSeconds.
func ClampInterval(seconds int) int {
	if seconds < MinSeconds {
		seconds = MinSeconds
	}
	if seconds > MaxSeconds {
		seconds = MaxSeconds
	}
	return (seconds + StepSeconds/2) / StepSeconds * StepSeconds
}

// PassFunc performs one full render pass.
type PassFunc func(ctx context.Context) error

// Loop runs Pass, waits the configured interval, and runs it again while
// enabled. The wait always comes between two passes.
type Loop struct {
	pass   PassFunc
	clock  clock.Clock
	logger *zap.Logger

	mu       sync.Mutex
	interval time.Duration
	enabled  bool
	passes   int
}

// NewLoop creates an enabled loop. seconds is clamped.
func NewLoop(pass PassFunc, seconds int, clk clock.Clock, logger *zap.Logger) *Loop {
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{
		pass:     pass,
		clock:    clk,
		logger:   logger,
		interval: time.Duration(ClampInterval(seconds)) * time.Second,
		enabled:  true,
	}
}

// SetEnabled toggles auto-refresh. Disabling takes effect after the current
// wait, if any, completes.
func (l *Loop) SetEnabled(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = on
}

func (l *Loop) Enabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

// SetInterval changes the wait used from the next cycle on.
func (l *Loop) SetInterval(seconds int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.interval = time.Duration(ClampInterval(seconds)) * time.Second
}

func (l *Loop) Interval() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.interval
}

// Passes returns how many passes have started.
func (l *Loop) Passes() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.passes
}

// Run performs a pass, then repeats wait and pass until disabled or ctx is
// done. It returns ctx.Err() on cancellation and nil when disabled.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.mu.Lock()
		l.passes++
		n := l.passes
		l.mu.Unlock()

		if err := l.pass(ctx); err != nil {
			l.logger.Warn("refresh pass failed", zap.Int("pass", n), zap.Error(err))
		}
		if !l.Enabled() {
			return nil
		}

		wait := l.Interval()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.clock.After(wait):
		}
		if !l.Enabled() {
			l.logger.Debug("auto-refresh disabled", zap.Int("passes", n))
			return nil
		}
	}
}
