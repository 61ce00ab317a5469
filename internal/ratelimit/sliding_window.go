// Package ratelimit implements a per-key sliding window admission counter.
package ratelimit

import (
	"sync"
	"time"
)

// Window is the span over which admissions are counted.
const Window = 60 * time.Second

// Decision is the outcome of one admission attempt.
type Decision struct {
	Allowed bool
	// Remaining admissions left in the current window after this one.
	Remaining int
	// RetryAfter is the whole number of seconds, at least 1, until the
	// oldest admission leaves the window. Zero when Allowed.
	RetryAfter int
}

// SlidingWindow admits at most limit events per key in any trailing Window.
// Safe for concurrent use; keys never contend with each other except while
// the map itself grows or is swept.
type SlidingWindow struct {
	limit  int
	window time.Duration

	mu      sync.RWMutex
	entries map[string]*entry
}

type entry struct {
	mu     sync.Mutex
	stamps []time.Time // oldest first
	// dead is set by Sweep after the entry leaves the map; an Admit that
	// raced the sweep must look the key up again.
	dead bool
}

func New(limit int) *SlidingWindow {
	return &SlidingWindow{
		limit:   limit,
		window:  Window,
		entries: make(map[string]*entry),
	}
}

func (l *SlidingWindow) Limit() int {
	return l.limit
}

// Admit records an event for key at now if the key is under its limit.
func (l *SlidingWindow) Admit(key string, now time.Time) Decision {
	for {
		e := l.lookup(key)
		e.mu.Lock()
		if e.dead {
			e.mu.Unlock()
			continue
		}
		d := e.admit(now, l.limit, l.window)
		e.mu.Unlock()
		return d
	}
}

// Len returns the number of tracked keys.
func (l *SlidingWindow) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Sweep drops keys with no admissions left inside the window and returns
// how many were removed.
func (l *SlidingWindow) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, e := range l.entries {
		e.mu.Lock()
		e.prune(now, l.window)
		if len(e.stamps) == 0 {
			e.dead = true
			delete(l.entries, key)
			removed++
		}
		e.mu.Unlock()
	}
	return removed
}

func (l *SlidingWindow) lookup(key string) *entry {
	l.mu.RLock()
	e, ok := l.entries[key]
	l.mu.RUnlock()
	if ok {
		return e
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok = l.entries[key]; !ok {
		e = &entry{}
		l.entries[key] = e
	}
	return e
}

func (e *entry) admit(now time.Time, limit int, window time.Duration) Decision {
	e.prune(now, window)

	if len(e.stamps) < limit {
		// Callers sample the clock before taking the lock, so a later
		// caller can arrive with a slightly earlier now. Keep the slice
		// ordered.
		if n := len(e.stamps); n > 0 && now.Before(e.stamps[n-1]) {
			now = e.stamps[n-1]
		}
		e.stamps = append(e.stamps, now)
		return Decision{Allowed: true, Remaining: limit - len(e.stamps)}
	}

	return Decision{RetryAfter: retryAfter(e.stamps[0], now, window)}
}

// prune drops stamps whose age has reached window.
func (e *entry) prune(now time.Time, window time.Duration) {
	i := 0
	for i < len(e.stamps) && now.Sub(e.stamps[i]) >= window {
		i++
	}
	if i == 0 {
		return
	}
	n := copy(e.stamps, e.stamps[i:])
	e.stamps = e.stamps[:n]
}

func retryAfter(oldest, now time.Time, window time.Duration) int {
	remaining := window - now.Sub(oldest)
	if remaining > window {
		remaining = window
	}
	secs := int((remaining + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
