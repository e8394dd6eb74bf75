package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/model"
	"github.com/sirupsen/logrus"
)

// ErrCatalogUnavailable means the feed could not be fetched and no cached copy exists,
// not even a stale one. Searching is impossible, which is different from "no matches".
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// Snapshot is a decoded catalog ready to be indexed.
type Snapshot struct {
	Properties []model.Property
	Version    string
	Source     string
	FetchedAt  time.Time
	CheckedAt  time.Time
	Stale      bool // served from cache after the source failed
	Skipped    int
}

// Loader combines a Source and a Cache: fresh cache entries are served without a
// fetch, expired ones are revalidated, and a failed fetch falls back to whatever
// the cache still holds.
type Loader struct {
	source    Source
	cache     Cache
	validator *Validator
	ttl       time.Duration
	logger    *logrus.Logger
	now       func() time.Time

	mu sync.Mutex // one fetch at a time
}

// NewLoader creates a loader. A nil cache keeps entries in memory.
func NewLoader(source Source, cache Cache, ttl time.Duration, logger *logrus.Logger) (*Loader, error) {
	v, err := NewValidator()
	if err != nil {
		return nil, err
	}
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Loader{
		source:    source,
		cache:     cache,
		validator: v,
		ttl:       ttl,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// TTL returns the revalidation interval.
func (l *Loader) TTL() time.Duration { return l.ttl }

// Load returns the catalog, fetching only when the cached copy is missing or expired.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cached := l.readCache(ctx)
	if cached != nil && cached.Age(l.now()) < l.ttl {
		snap, err := l.decode(cached, false)
		if err == nil {
			l.logger.WithFields(logrus.Fields{
				"version": snap.Version,
				"age":     cached.Age(l.now()).Round(time.Second),
			}).Debug("Using cached catalog")
			return snap, nil
		}
		l.logger.WithError(err).Warn("Cached catalog is unusable, refetching")
		cached = nil
	}
	return l.fetch(ctx, cached)
}

// Refresh fetches the feed regardless of cache age. On failure the cached copy is
// served as stale, or ErrCatalogUnavailable is returned when there is none.
func (l *Loader) Refresh(ctx context.Context) (*Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fetch(ctx, l.readCache(ctx))
}

// Watch revalidates every interval and calls onChange when the content version changes.
// It returns when ctx is done.
func (l *Loader) Watch(ctx context.Context, interval time.Duration, current string, onChange func(*Snapshot)) {
	if interval <= 0 {
		interval = l.ttl
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap, err := l.Refresh(ctx)
			if err != nil {
				l.logger.WithError(err).Warn("Background catalog revalidation failed")
				continue
			}
			if snap.Version != current && !snap.Stale {
				l.logger.WithFields(logrus.Fields{
					"old_version": current,
					"new_version": snap.Version,
				}).Info("Catalog changed")
				current = snap.Version
				onChange(snap)
			}
		}
	}
}

func (l *Loader) fetch(ctx context.Context, cached *Entry) (*Snapshot, error) {
	data, origin, err := l.source.Fetch(ctx)
	if err == nil {
		snap, entry, derr := l.accept(ctx, data, origin, cached)
		if derr == nil {
			if perr := l.cache.Put(ctx, entry); perr != nil {
				l.logger.WithError(perr).Warn("Failed to write catalog cache")
			}
			return snap, nil
		}
		err = derr
	}

	if cached != nil {
		snap, derr := l.decode(cached, true)
		if derr == nil {
			l.logger.WithError(err).WithField("version", snap.Version).Warn("Catalog fetch failed, serving cached copy")
			return snap, nil
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
}

// accept decodes freshly fetched bytes and builds the cache entry for them.
// Unchanged content keeps its original FetchedAt and only moves CheckedAt.
func (l *Loader) accept(ctx context.Context, data []byte, origin string, cached *Entry) (*Snapshot, *Entry, error) {
	now := l.now()
	entry := &Entry{
		Data:      data,
		Version:   ContentVersion(data),
		Source:    origin,
		FetchedAt: now,
		CheckedAt: now,
	}
	if cached != nil && cached.Version == entry.Version {
		entry.FetchedAt = cached.FetchedAt
	}

	snap, err := l.decode(entry, false)
	if err != nil {
		return nil, nil, err
	}
	if len(snap.Properties) == 0 && cached != nil {
		return nil, nil, errors.New("fetched catalog has no usable records")
	}

	l.logger.WithFields(logrus.Fields{
		"version":    entry.Version,
		"properties": len(snap.Properties),
		"skipped":    snap.Skipped,
		"source":     origin,
	}).Info("Catalog loaded")
	return snap, entry, nil
}

func (l *Loader) decode(e *Entry, stale bool) (*Snapshot, error) {
	res, err := Decode(e.Data, l.validator, l.logger)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Properties: res.Properties,
		Version:    e.Version,
		Source:     e.Source,
		FetchedAt:  e.FetchedAt,
		CheckedAt:  e.CheckedAt,
		Stale:      stale,
		Skipped:    res.Skipped,
	}, nil
}

func (l *Loader) readCache(ctx context.Context) *Entry {
	e, err := l.cache.Get(ctx)
	if err != nil {
		l.logger.WithError(err).Warn("Catalog cache read failed")
		return nil
	}
	return e
}
