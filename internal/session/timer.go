package session

import (
	"fmt"
	"sync"
	"time"
)

// CountdownTimer owns the one autonomous activity of a session: the
// per-second countdown while the session is active. Its lifetime is
// strictly scoped to the active phase; stopping it on every phase exit
// is what makes a second expiry fire structurally impossible rather
// than merely flag-guarded.
type CountdownTimer struct {
	total    int
	interval time.Duration

	mu        sync.Mutex
	remaining int
	running   bool
	stopCh    chan struct{}
	stopOnce  *sync.Once
}

// NewCountdownTimer creates a stopped timer with totalSeconds on the
// clock. The tick interval defaults to one second; tests shrink it for
// determinism.
func NewCountdownTimer(totalSeconds int, opts ...TimerOption) *CountdownTimer {
	t := &CountdownTimer{
		total:     totalSeconds,
		remaining: totalSeconds,
		interval:  time.Second,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type TimerOption func(*CountdownTimer)

// WithTickInterval overrides the real-time second per tick.
func WithTickInterval(d time.Duration) TimerOption {
	return func(t *CountdownTimer) { t.interval = d }
}

// Start begins ticking and invokes onExpire exactly once if the clock
// reaches zero before Stop is called. Starting an already running or
// already expired timer is a no-op.
func (t *CountdownTimer) Start(onExpire func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running || t.remaining <= 0 {
		return
	}
	t.running = true
	t.stopCh = make(chan struct{})
	t.stopOnce = &sync.Once{}
	go t.run(t.stopCh, onExpire)
}

func (t *CountdownTimer) run(stopCh chan struct{}, onExpire func()) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if t.decrement() {
				// The goroutine exits right after firing, so a
				// second expiry cannot happen.
				onExpire()
				return
			}
		}
	}
}

// decrement takes one second off the clock and reports whether the
// timer just expired.
func (t *CountdownTimer) decrement() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return false
	}
	if t.remaining > 0 {
		t.remaining--
	}
	if t.remaining == 0 {
		t.running = false
		return true
	}
	return false
}

// Stop cancels the countdown. Safe to call multiple times and after
// expiry.
func (t *CountdownTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
	if t.stopOnce != nil {
		stopCh := t.stopCh
		t.stopOnce.Do(func() { close(stopCh) })
	}
}

// Remaining returns the seconds left on the clock; never negative.
func (t *CountdownTimer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Progress is the remaining fraction of the total, for presentation
// only.
func (t *CountdownTimer) Progress() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.total <= 0 {
		return 1
	}
	return float64(t.remaining) / float64(t.total)
}

// FormatRemaining renders the clock as MM:SS.
func (t *CountdownTimer) FormatRemaining() string {
	return FormatSeconds(t.Remaining())
}

// FormatSeconds renders a second count as MM:SS.
func FormatSeconds(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
