// Package ratelimit keeps one token bucket per key (client IP, user id).
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

// KeyedLimiter manages a rate.Limiter per key and forgets idle keys.
type KeyedLimiter struct {
	mu    sync.Mutex
	keys  map[string]*entry
	r     rate.Limit
	burst int
	idle  time.Duration
}

// New creates a limiter allowing r events per second with the given burst.
func New(r rate.Limit, burst int) *KeyedLimiter {
	return &KeyedLimiter{
		keys:  make(map[string]*entry),
		r:     r,
		burst: burst,
		idle:  3 * time.Minute,
	}
}

// Every allows one event per interval per key.
func Every(interval time.Duration) *KeyedLimiter {
	l := New(rate.Every(interval), 1)
	if interval > l.idle {
		l.idle = interval
	}
	return l
}

// Get returns the limiter for key, creating it on first use.
func (l *KeyedLimiter) Get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.keys[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.r, l.burst)}
		l.keys[key] = e
	}
	e.lastSeen = time.Now()
	return e.limiter
}

func (l *KeyedLimiter) Allow(key string) bool {
	return l.Get(key).Allow()
}

// Len is the number of tracked keys.
func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.keys)
}

// Prune drops keys not seen for the idle period.
func (l *KeyedLimiter) Prune() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, e := range l.keys {
		if time.Since(e.lastSeen) > l.idle {
			delete(l.keys, k)
		}
	}
}

// RunCleanup prunes every minute until done is closed.
func (l *KeyedLimiter) RunCleanup(done <-chan struct{}) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			l.Prune()
		}
	}
}
