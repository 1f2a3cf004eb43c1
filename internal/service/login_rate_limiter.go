package service

import (
	"context"
	"strings"
	"sync"
	"time"
)

const (
	defaultLoginRateWindow = 10 * time.Minute
	defaultLoginRateMax    = 10
)

// LoginRateLimiter decide si se acepta un intento de login para la clave dada.
// Ambas implementaciones usan ventana deslizante: se cuentan los intentos
// aceptados en los últimos `window` y los rechazados no suman.
// Una clave vacía no se limita.
type LoginRateLimiter interface {
	Allow(ctx context.Context, key string) bool
}

func normalizeLimiterKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func limiterDefaults(window time.Duration, max int) (time.Duration, int) {
	if window <= 0 {
		window = defaultLoginRateWindow
	}
	if max <= 0 {
		max = defaultLoginRateMax
	}
	return window, max
}

type memoryLoginRateLimiter struct {
	mu        sync.Mutex
	window    time.Duration
	max       int
	hits      map[string][]time.Time
	lastSweep time.Time
	now       func() time.Time
}

// NewLoginRateLimiter crea el limiter en memoria, usado cuando no hay redis.
func NewLoginRateLimiter(window time.Duration, max int) LoginRateLimiter {
	return newMemoryLoginRateLimiter(window, max)
}

func newMemoryLoginRateLimiter(window time.Duration, max int) *memoryLoginRateLimiter {
	window, max = limiterDefaults(window, max)
	return &memoryLoginRateLimiter{
		window: window,
		max:    max,
		hits:   make(map[string][]time.Time),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (l *memoryLoginRateLimiter) Allow(_ context.Context, key string) bool {
	key = normalizeLimiterKey(key)
	if key == "" {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)
	if now.Sub(l.lastSweep) >= l.window {
		l.sweep(cutoff)
		l.lastSweep = now
	}

	kept := pruneBefore(l.hits[key], cutoff)
	if len(kept) >= l.max {
		l.hits[key] = kept
		return false
	}
	l.hits[key] = append(kept, now)
	return true
}

// sweep elimina las claves sin intentos dentro de la ventana.
func (l *memoryLoginRateLimiter) sweep(cutoff time.Time) {
	for key, entries := range l.hits {
		kept := pruneBefore(entries, cutoff)
		if len(kept) == 0 {
			delete(l.hits, key)
			continue
		}
		l.hits[key] = kept
	}
}

func (l *memoryLoginRateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hits)
}

func pruneBefore(entries []time.Time, cutoff time.Time) []time.Time {
	kept := entries[:0]
	for _, ts := range entries {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	return kept
}
