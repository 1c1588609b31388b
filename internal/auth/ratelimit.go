package auth

import (
	"sync"
	"time"
)

// LoginLimiter is a bounded sliding-window counter keyed by
// (source address, submitted email). It throttles distributed guessing
// before any per-account lockout applies, including against emails that do
// not exist. Expired windows are pruned on access and, past maxKeys, the
// whole stale portion of the map is swept so memory stays bounded.
type LoginLimiter struct {
	mu          sync.Mutex
	window      time.Duration
	maxAttempts int
	maxKeys     int
	attempts    map[string][]time.Time
}

func NewLoginLimiter(window time.Duration, maxAttempts, maxKeys int) *LoginLimiter {
	return &LoginLimiter{
		window:      window,
		maxAttempts: maxAttempts,
		maxKeys:     maxKeys,
		attempts:    make(map[string][]time.Time),
	}
}

// Allow records an attempt for the key and reports whether it is inside the
// window budget.
func (l *LoginLimiter) Allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-l.window)

	recent := prune(l.attempts[key], cutoff)
	if len(recent) >= l.maxAttempts {
		l.attempts[key] = recent
		return false
	}

	if len(l.attempts) >= l.maxKeys {
		l.sweep(cutoff)
	}

	l.attempts[key] = append(recent, now)
	return true
}

func (l *LoginLimiter) sweep(cutoff time.Time) {
	for k, times := range l.attempts {
		recent := prune(times, cutoff)
		if len(recent) == 0 {
			delete(l.attempts, k)
		} else {
			l.attempts[k] = recent
		}
	}
}

func prune(times []time.Time, cutoff time.Time) []time.Time {
	recent := times[:0]
	for _, ts := range times {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}
	return recent
}
