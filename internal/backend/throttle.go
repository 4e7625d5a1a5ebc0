package backend

import (
	"sync"
	"time"
)

// throttle spaces successive polls at least interval apart, so a slow
// filesystem cannot make the ticker fire stats back to back.
type throttle struct {
	interval time.Duration

	mu   sync.Mutex
	next time.Time
}

func newThrottle(interval time.Duration) *throttle {
	if interval <= 0 {
		return &throttle{}
	}
	return &throttle{interval: interval}
}

func (t *throttle) wait() {
	if t == nil || t.interval <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if d := time.Until(t.next); d > 0 {
		time.Sleep(min(d, t.interval))
	}
	t.next = time.Now().Add(t.interval)
}
