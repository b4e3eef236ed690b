// Package ratelimit provides a sliding-window rate limiter with an explicit
// sweep cycle. It is an injectable service object rather than process-wide
// state, so every test can construct a fresh one.
package ratelimit

import (
	"sync"
	"time"
)

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Info describes the outcome of one Allow call.
type Info struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter tracks request timestamps per operation key inside a sliding
// window.
type Limiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	clock  Clock
	ticker *time.Ticker
	stop   chan struct{}
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock injects the time source.
func WithClock(c Clock) Option { return func(l *Limiter) { l.clock = c } }

// New creates an empty limiter.
func New(opts ...Option) *Limiter {
	l := &Limiter{
		hits:  make(map[string][]time.Time),
		clock: systemClock{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow records a request under key and reports whether it fits inside the
// window: at most max requests per window duration. Denied requests are not
// recorded.
func (l *Limiter) Allow(key string, max int, window time.Duration) Info {
	if max <= 0 {
		return Info{Allowed: true}
	}

	now := l.clock.Now()
	cutoff := now.Add(-window)

	l.mu.Lock()
	defer l.mu.Unlock()

	recent := trimBefore(l.hits[key], cutoff)
	if len(recent) >= max {
		l.hits[key] = recent
		return Info{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: recent[0].Add(window).Sub(now),
		}
	}

	recent = append(recent, now)
	l.hits[key] = recent
	return Info{
		Allowed:   true,
		Remaining: max - len(recent),
	}
}

// Sweep drops every timestamp older than maxAge and deletes empty keys. The
// owned timer calls this periodically; tests call it directly.
func (l *Limiter) Sweep(maxAge time.Duration) {
	cutoff := l.clock.Now().Add(-maxAge)

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, stamps := range l.hits {
		recent := trimBefore(stamps, cutoff)
		if len(recent) == 0 {
			delete(l.hits, key)
			continue
		}
		l.hits[key] = recent
	}
}

// Start launches the owned sweep timer. Stop releases it.
func (l *Limiter) Start(interval, maxAge time.Duration) {
	if l.ticker != nil {
		return
	}
	l.ticker = time.NewTicker(interval)
	l.stop = make(chan struct{})
	go func() {
		for {
			select {
			case <-l.ticker.C:
				l.Sweep(maxAge)
			case <-l.stop:
				return
			}
		}
	}()
}

// Stop halts the sweep timer started by Start.
func (l *Limiter) Stop() {
	if l.ticker == nil {
		return
	}
	l.ticker.Stop()
	close(l.stop)
	l.ticker = nil
}

// Len reports how many keys currently hold timestamps.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hits)
}

func trimBefore(stamps []time.Time, cutoff time.Time) []time.Time {
	idx := 0
	for idx < len(stamps) && !stamps[idx].After(cutoff) {
		idx++
	}
	if idx == 0 {
		return stamps
	}
	return append([]time.Time(nil), stamps[idx:]...)
}
