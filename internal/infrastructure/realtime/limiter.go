package realtime

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// FrameLimiter applies a token bucket per user so a single chatty client
// cannot monopolize the socket loop. Idle entries are evicted lazily.
type FrameLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration

	mu    sync.Mutex
	byKey map[string]*limiterEntry
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewFrameLimiter creates a per-user limiter; returns nil for non-positive
// arguments, and a nil limiter allows everything.
func NewFrameLimiter(rps float64, burst int, idleTTL time.Duration) *FrameLimiter {
	if rps <= 0 || burst <= 0 {
		return nil
	}
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &FrameLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
		byKey:   make(map[string]*limiterEntry),
	}
}

// Allow reports whether one frame may be processed for the user at now.
func (l *FrameLimiter) Allow(userID string, now time.Time) bool {
	if l == nil || userID == "" {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.byKey[userID]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.byKey[userID] = e
	}
	e.lastSeen = now

	l.evictIdleLocked(now)
	return e.limiter.AllowN(now, 1)
}

func (l *FrameLimiter) evictIdleLocked(now time.Time) {
	for key, e := range l.byKey {
		if now.Sub(e.lastSeen) > l.idleTTL {
			delete(l.byKey, key)
		}
	}
}
