// Package countdown runs the "next day in HH:MM:SS" polling loop.
package countdown

import (
	"context"
	"sync"
	"time"

	"github.com/julianstephens/dailycal/internal/constants"
	"github.com/julianstephens/dailycal/internal/logger"
)

// Timer runs at most one countdown loop. Restart cancels the running loop
// and waits for it to exit before starting the next one.
type Timer struct {
	now      func() time.Time
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New returns a Timer polling every interval. A nil now uses time.Now.
func New(now func() time.Time, interval time.Duration) *Timer {
	if now == nil {
		now = time.Now
	}
	if interval <= 0 {
		interval = constants.DefaultTickInterval
	}
	return &Timer{
		now:      now,
		interval: interval,
	}
}

// Restart replaces the running loop with one counting down to deadline.
// onTick receives the remaining time right away and on every poll; onExpire
// runs once when the deadline passes. The loop counts as finished before
// onExpire is called, so onExpire may call Restart.
func (t *Timer) Restart(deadline time.Time, onTick func(time.Duration), onExpire func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	t.cancel = cancel
	t.done = done

	go t.run(ctx, done, deadline, onTick, onExpire)
}

// Stop cancels the running loop, if any, and waits for it to exit.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

// Running reports whether a loop is active.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done == nil {
		return false
	}
	select {
	case <-t.done:
		return false
	default:
		return true
	}
}

func (t *Timer) stopLocked() {
	if t.cancel == nil {
		return
	}
	t.cancel()
	<-t.done
	t.cancel = nil
	t.done = nil
}

func (t *Timer) run(ctx context.Context, done chan struct{}, deadline time.Time, onTick func(time.Duration), onExpire func()) {
	finish := sync.OnceFunc(func() { close(done) })
	defer finish()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		remaining := deadline.Sub(t.now())
		if remaining <= 0 {
			finish()
			logger.Debug("countdown expired", "deadline", deadline)
			if onExpire != nil {
				onExpire()
			}
			return
		}
		if onTick != nil {
			onTick(remaining)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
