package service

import (
	"time"

	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/catalog"
	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/model"
)

// Index is everything a query needs, built once per catalog version and never
// mutated afterwards. Readers share it without locking.
type Index struct {
	Properties []model.Property
	Vocabulary *Vocabulary
	Version    string
	Source     string
	Stale      bool
	FetchedAt  time.Time
	CheckedAt  time.Time
	Skipped    int

	entries []indexEntry
	byID    map[string]int
}

// BuildIndex precomputes the vocabulary and the per-property field bags.
func BuildIndex(snap *catalog.Snapshot, syn *SynonymIndex) *Index {
	idx := &Index{
		Properties: snap.Properties,
		Vocabulary: BuildVocabulary(snap.Properties, syn),
		Version:    snap.Version,
		Source:     snap.Source,
		Stale:      snap.Stale,
		FetchedAt:  snap.FetchedAt,
		CheckedAt:  snap.CheckedAt,
		Skipped:    snap.Skipped,
		entries:    make([]indexEntry, len(snap.Properties)),
		byID:       make(map[string]int, len(snap.Properties)),
	}
	for i := range snap.Properties {
		idx.entries[i] = indexEntry{prop: snap.Properties[i]}
		idx.entries[i].bag = newFieldBag(&idx.entries[i].prop, syn)
		if _, dup := idx.byID[snap.Properties[i].ID]; !dup {
			idx.byID[snap.Properties[i].ID] = i
		}
	}
	return idx
}

// Lookup returns the property with the given id.
func (idx *Index) Lookup(id string) (*model.Property, bool) {
	i, ok := idx.byID[id]
	if !ok {
		return nil, false
	}
	return &idx.entries[i].prop, true
}

// Status describes the index for the catalog endpoint.
func (idx *Index) Status() *model.CatalogStatus {
	st := &model.CatalogStatus{
		Version:    idx.Version,
		Properties: len(idx.Properties),
		Vocabulary: idx.Vocabulary.Len(),
		Source:     idx.Source,
		Stale:      idx.Stale,
		Skipped:    idx.Skipped,
	}
	if !idx.FetchedAt.IsZero() {
		st.FetchedAt = idx.FetchedAt.UTC().Format(time.RFC3339)
	}
	if !idx.CheckedAt.IsZero() {
		st.CheckedAt = idx.CheckedAt.UTC().Format(time.RFC3339)
	}
	return st
}
