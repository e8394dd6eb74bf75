package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/utils"
)

// FileFeedback persists counters as a JSON document holding one namespaced key:
//
//	{"altorra:ssrc:clicks": {"P1": 3, "P2": 1}}
//
// Other keys in the document are preserved. Every click is written through
// synchronously with an atomic rename.
type FileFeedback struct {
	path string
	key  string

	mu     sync.Mutex
	doc    map[string]json.RawMessage
	counts map[string]int64
}

// NewFileFeedback opens (or prepares to create) the store at path.
func NewFileFeedback(path, key string) (*FileFeedback, error) {
	f := &FileFeedback{
		path:   path,
		key:    key,
		doc:    make(map[string]json.RawMessage),
		counts: make(map[string]int64),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read feedback file %s: %w", path, err)
	}
	if len(data) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(data, &f.doc); err != nil {
		return nil, fmt.Errorf("corrupt feedback file %s: %w", path, err)
	}
	if raw, ok := f.doc[key]; ok {
		if err := json.Unmarshal(raw, &f.counts); err != nil {
			return nil, fmt.Errorf("corrupt click counts in %s: %w", path, err)
		}
	}
	return f, nil
}

// RecordClick implements FeedbackStore.
func (f *FileFeedback) RecordClick(_ context.Context, id string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.counts[id]++
	if err := f.persist(); err != nil {
		f.counts[id]--
		return 0, err
	}
	return f.counts[id], nil
}

// Count implements FeedbackStore.
func (f *FileFeedback) Count(_ context.Context, id string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[id], nil
}

// Counts implements FeedbackStore.
func (f *FileFeedback) Counts(context.Context) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int64, len(f.counts))
	for k, v := range f.counts {
		out[k] = v
	}
	return out, nil
}

// Close implements FeedbackStore.
func (f *FileFeedback) Close() error { return nil }

func (f *FileFeedback) persist() error {
	raw, err := json.Marshal(f.counts)
	if err != nil {
		return fmt.Errorf("failed to marshal click counts: %w", err)
	}
	f.doc[f.key] = raw

	data, err := json.MarshalIndent(f.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal feedback file: %w", err)
	}
	if err := utils.WriteFileAtomic(f.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write feedback file %s: %w", f.path, err)
	}
	return nil
}
