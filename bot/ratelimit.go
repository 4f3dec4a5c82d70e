package bot

import (
	"sync"
	"time"
)

// Entries idle past this multiple of the interval are dropped on sweep.
const staleFactor = 16

// rateLimiter enforces a minimum interval between messages from the same
// user. A zero interval disables limiting.
type rateLimiter struct {
	interval time.Duration

	mu       sync.Mutex
	lastSeen map[string]time.Time
	now      func() time.Time
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{
		interval: interval,
		lastSeen: make(map[string]time.Time),
		now:      time.Now,
	}
}

func (l *rateLimiter) Allow(userID string) bool {
	if l.interval <= 0 || userID == "" {
		return true
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if last, ok := l.lastSeen[userID]; ok && now.Sub(last) < l.interval {
		return false
	}
	l.lastSeen[userID] = now

	if len(l.lastSeen) > 1024 {
		l.sweep(now)
	}
	return true
}

// sweep drops stale entries; callers hold the mutex.
func (l *rateLimiter) sweep(now time.Time) {
	cutoff := now.Add(-l.interval * staleFactor)
	for id, last := range l.lastSeen {
		if last.Before(cutoff) {
			delete(l.lastSeen, id)
		}
	}
}
