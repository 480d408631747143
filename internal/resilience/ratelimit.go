package resilience

import (
	"sync"
	"time"
)

// WindowLimiter is a fixed-window rate limiter keyed by caller identity.
// Each key owns an independent window record with its own lock; keys never
// contend with each other.
type WindowLimiter struct {
	limit  int
	window time.Duration

	keys sync.Map // map[string]*keyWindow
	stop chan struct{}
	once sync.Once
}

type keyWindow struct {
	mu          sync.Mutex
	count       int
	windowStart time.Time
}

// NewWindowLimiter creates a limiter allowing limit requests per window per
// key. A background sweeper evicts idle keys.
func NewWindowLimiter(limit int, window time.Duration) *WindowLimiter {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}
	l := &WindowLimiter{
		limit:  limit,
		window: window,
		stop:   make(chan struct{}),
	}
	go l.sweep()
	return l
}

// Allow records one request for key and reports whether it is within the
// limit. The window resets once it has fully elapsed.
func (l *WindowLimiter) Allow(key string) bool {
	now := time.Now()

	v, _ := l.keys.LoadOrStore(key, &keyWindow{windowStart: now})
	w := v.(*keyWindow)

	w.mu.Lock()
	defer w.mu.Unlock()

	if now.Sub(w.windowStart) >= l.window {
		w.count = 0
		w.windowStart = now
	}
	w.count++
	return w.count <= l.limit
}

// Limit returns the configured per-window request limit.
func (l *WindowLimiter) Limit() int { return l.limit }

// Window returns the configured window length.
func (l *WindowLimiter) Window() time.Duration { return l.window }

// ActiveKeys returns the number of keys currently tracked.
func (l *WindowLimiter) ActiveKeys() int {
	n := 0
	l.keys.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Close stops the background sweeper.
func (l *WindowLimiter) Close() {
	l.once.Do(func() { close(l.stop) })
}

// sweep evicts keys whose window expired long ago.
func (l *WindowLimiter) sweep() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-2 * l.window)
			l.keys.Range(func(k, v any) bool {
				w := v.(*keyWindow)
				w.mu.Lock()
				idle := w.windowStart.Before(cutoff)
				w.mu.Unlock()
				if idle {
					l.keys.Delete(k)
				}
				return true
			})
		}
	}
}
