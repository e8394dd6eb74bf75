package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/utils"
	"github.com/cespare/xxhash/v2"
)

// Entry is a cached copy of the raw feed.
type Entry struct {
	Data      json.RawMessage `json:"data"`
	Version   string          `json:"version"`
	Source    string          `json:"source"`
	FetchedAt time.Time       `json:"fetched_at"` // when this content was first seen
	CheckedAt time.Time       `json:"checked_at"` // last time the source confirmed it
}

// Age returns the time since the source last confirmed the entry.
func (e *Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.CheckedAt)
}

// ContentVersion is the content hash used to tell catalog versions apart.
func ContentVersion(data []byte) string {
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}

// Cache stores the last good feed. Get returns nil, nil on a miss.
// Entries are never expired by the cache itself: a stale copy beats no copy.
type Cache interface {
	Get(ctx context.Context) (*Entry, error)
	Put(ctx context.Context, e *Entry) error
}

// MemoryCache keeps the entry in process memory.
type MemoryCache struct {
	mu    sync.RWMutex
	entry *Entry
}

// NewMemoryCache creates an empty memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

// Get implements Cache.
func (c *MemoryCache) Get(context.Context) (*Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entry, nil
}

// Put implements Cache.
func (c *MemoryCache) Put(_ context.Context, e *Entry) error {
	c.mu.Lock()
	c.entry = e
	c.mu.Unlock()
	return nil
}

// FileCache keeps the entry as a JSON envelope on disk.
type FileCache struct {
	path string
	mu   sync.Mutex
}

// NewFileCache creates a cache at path.
func NewFileCache(path string) *FileCache {
	return &FileCache{path: path}
}

// Get implements Cache.
func (c *FileCache) Get(context.Context) (*Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog cache %s: %w", c.path, err)
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("corrupt catalog cache %s: %w", c.path, err)
	}
	if len(e.Data) == 0 {
		return nil, nil
	}
	return &e, nil
}

// Put implements Cache.
func (c *FileCache) Put(_ context.Context, e *Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog cache: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := utils.WriteFileAtomic(c.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write catalog cache %s: %w", c.path, err)
	}
	return nil
}
