// Package ratelimit throttles API callers with one token bucket per key.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyLimiter hands out a token bucket per client key (usually the remote IP).
type KeyLimiter struct {
	mu    sync.Mutex
	m     map[string]*entry
	r     rate.Limit
	b     int
	clock func() time.Time
}

func New(reqPerSec float64, burst int) *KeyLimiter {
	return &KeyLimiter{
		m:     make(map[string]*entry),
		r:     rate.Limit(reqPerSec),
		b:     burst,
		clock: time.Now,
	}
}

func (l *KeyLimiter) limiterFor(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if e, ok := l.m[key]; ok {
		e.lastSeen = now
		return e.limiter
	}
	lim := rate.NewLimiter(l.r, l.b)
	l.m[key] = &entry{limiter: lim, lastSeen: now}
	return lim
}

// Allow reports whether key may make a request now.
func (l *KeyLimiter) Allow(key string) bool {
	return l.limiterFor(key).AllowN(l.clock(), 1)
}

// Sweep forgets keys idle for longer than idle and returns how many were
// dropped.
func (l *KeyLimiter) Sweep(idle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.clock().Add(-idle)
	n := 0
	for k, e := range l.m {
		if e.lastSeen.Before(cutoff) {
			delete(l.m, k)
			n++
		}
	}
	return n
}

func (l *KeyLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}
