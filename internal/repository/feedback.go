package repository

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/model"
	"github.com/sirupsen/logrus"
)

// FeedbackStore maps property id to a click counter that only ever grows.
type FeedbackStore interface {
	// RecordClick adds one click and returns the new count.
	RecordClick(ctx context.Context, id string) (int64, error)
	// Count returns the clicks of one property, 0 when unknown.
	Count(ctx context.Context, id string) (int64, error)
	// Counts returns every known counter.
	Counts(ctx context.Context) (map[string]int64, error)
	Close() error
}

// SearchLogger records searches and what users did with them.
type SearchLogger interface {
	LogSearch(ctx context.Context, entry *model.SearchLog) error
	LogFeedback(ctx context.Context, searchID, listingID, action string) error
}

// MemoryFeedback keeps counters in process memory.
type MemoryFeedback struct {
	mu     sync.RWMutex
	counts map[string]int64
}

// NewMemoryFeedback creates an empty in-memory store.
func NewMemoryFeedback() *MemoryFeedback {
	return &MemoryFeedback{counts: make(map[string]int64)}
}

// RecordClick implements FeedbackStore.
func (m *MemoryFeedback) RecordClick(_ context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[id]++
	return m.counts[id], nil
}

// Count implements FeedbackStore.
func (m *MemoryFeedback) Count(_ context.Context, id string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counts[id], nil
}

// Counts implements FeedbackStore. The returned map is a copy.
func (m *MemoryFeedback) Counts(context.Context) (map[string]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]int64, len(m.counts))
	for k, v := range m.counts {
		out[k] = v
	}
	return out, nil
}

// Close implements FeedbackStore.
func (m *MemoryFeedback) Close() error { return nil }

// Resilient wraps a backend so that storage failures never reach callers.
// When the backend fails, clicks are kept in memory and reads are served from
// memory. Clicks kept in memory are added on top of the backend's counts once
// it answers again; they are never written back to it.
type Resilient struct {
	backend  FeedbackStore
	fallback *MemoryFeedback
	logger   *logrus.Logger
	failures atomic.Int64
}

// NewResilient wraps backend. A nil backend means memory only.
func NewResilient(backend FeedbackStore, logger *logrus.Logger) *Resilient {
	fallback := NewMemoryFeedback()
	if backend == nil {
		backend = fallback
	}
	return &Resilient{backend: backend, fallback: fallback, logger: logger}
}

// Failures returns how many backend calls have failed so far.
func (r *Resilient) Failures() int64 { return r.failures.Load() }

// RecordClick implements FeedbackStore. It never returns an error.
func (r *Resilient) RecordClick(ctx context.Context, id string) (int64, error) {
	n, err := r.backend.RecordClick(ctx, id)
	if err == nil {
		return n + r.pending(ctx, id), nil
	}
	r.fail(err, "record click", id)
	n, _ = r.fallback.RecordClick(ctx, id)
	return n, nil
}

// Count implements FeedbackStore. It never returns an error.
func (r *Resilient) Count(ctx context.Context, id string) (int64, error) {
	n, err := r.backend.Count(ctx, id)
	if err == nil {
		return n + r.pending(ctx, id), nil
	}
	r.fail(err, "count", id)
	n, _ = r.fallback.Count(ctx, id)
	return n, nil
}

// Counts implements FeedbackStore. It never returns an error.
func (r *Resilient) Counts(ctx context.Context) (map[string]int64, error) {
	counts, err := r.backend.Counts(ctx)
	if err == nil {
		if counts == nil {
			counts = make(map[string]int64)
		}
		if r.backend != FeedbackStore(r.fallback) {
			held, _ := r.fallback.Counts(ctx)
			for id, n := range held {
				counts[id] += n
			}
		}
		return counts, nil
	}
	r.fail(err, "counts", "")
	counts, _ = r.fallback.Counts(ctx)
	return counts, nil
}

// Close implements FeedbackStore.
func (r *Resilient) Close() error {
	return r.backend.Close()
}

// pending returns the clicks on id held in memory during a backend outage.
func (r *Resilient) pending(ctx context.Context, id string) int64 {
	if r.backend == FeedbackStore(r.fallback) {
		return 0
	}
	n, _ := r.fallback.Count(ctx, id)
	return n
}

func (r *Resilient) fail(err error, op, id string) {
	r.failures.Add(1)
	r.logger.WithError(err).WithFields(logrus.Fields{
		"op": op,
		"id": id,
	}).Warn("Feedback store unavailable, using in-memory counts")
}
