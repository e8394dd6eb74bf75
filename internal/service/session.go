package service

import (
	"sync"
	"time"
)

// SessionRegistry tracks the newest query sequence number of each suggestion
// session. A response whose sequence is no longer the newest is stale: the user
// kept typing and its results must not be shown.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*session
	now      func() time.Time
}

type session struct {
	latest   uint64
	lastSeen time.Time
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*session), now: time.Now}
}

// Begin registers a query. With seq 0 the registry assigns the next number;
// otherwise the client's number is recorded if it is the newest seen.
// It returns the sequence number the query runs under.
func (r *SessionRegistry) Begin(id string, seq uint64) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		s = &session{}
		r.sessions[id] = s
	}
	s.lastSeen = r.now()
	if seq == 0 {
		seq = s.latest + 1
	}
	if seq > s.latest {
		s.latest = seq
	}
	return seq
}

// Current reports whether seq is still the newest query of the session.
// Unknown sessions are current.
func (r *SessionRegistry) Current(id string, seq uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return !ok || s.latest == seq
}

// Prune forgets sessions idle for longer than maxIdle and returns how many were removed.
func (r *SessionRegistry) Prune(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-maxIdle)
	n := 0
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// Len returns the number of tracked sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Debouncer runs only the last of a burst of calls, once the burst has been
// quiet for the configured delay.
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn, cancelling any call still waiting.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop cancels the pending call, if any.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
