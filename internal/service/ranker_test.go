package service

import (
	"fmt"
	"testing"

	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/catalog"
	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIndex(props ...model.Property) *Index {
	return BuildIndex(&catalog.Snapshot{Properties: props, Version: "test"}, DefaultSynonymIndex())
}

func rank(t *testing.T, idx *Index, query string, clicks map[string]int64, limit int) RankOutcome {
	t.Helper()
	q := NewIntentParser(nil).Parse(query, idx.Vocabulary)
	return NewRanker(DefaultWeights()).Rank(idx.entries, q, clicks, limit)
}

func resultIDs(out RankOutcome) []string {
	ids := make([]string, len(out.Results))
	for i, r := range out.Results {
		ids[i] = r.Property.ID
	}
	return ids
}

func TestRanker_EndToEnd(t *testing.T) {
	idx := testIndex(
		model.Property{ID: "P1", Title: "Apartamento vista al mar", City: "Cartagena", Price: 380_000_000, Beds: intPtr(3)},
		model.Property{ID: "P2", Title: "Casa en el centro", City: "Cartagena", Price: 600_000_000, Beds: intPtr(2)},
	)

	out := rank(t, idx, "apartamento 350-400m 3h", nil, 12)
	require.Equal(t, []string{"P1"}, resultIDs(out))
	assert.Greater(t, out.Results[0].Score, 0.0)
	assert.Contains(t, out.Results[0].MatchedReasons, ReasonBedroomsMatch)
	assert.Contains(t, out.Results[0].MatchedReasons, ReasonPriceMatch)
	assert.False(t, out.Relaxed)
}

func TestRanker_HardConstraintExclusion(t *testing.T) {
	idx := testIndex(
		model.Property{ID: "two", Title: "Apartamento", Type: "apartamento", Beds: intPtr(2)},
		model.Property{ID: "unknown", Title: "Apartamento", Type: "apartamento"},
		model.Property{ID: "three", Title: "Apartamento", Type: "apartamento", Beds: intPtr(3)},
	)

	out := rank(t, idx, "apartamento 3h", nil, 12)
	ids := resultIDs(out)
	assert.NotContains(t, ids, "two")
	assert.Contains(t, ids, "unknown")
	assert.Equal(t, "three", ids[0], "a verified match outranks an unknown one")
}

func TestRanker_MissingDataPasses(t *testing.T) {
	idx := testIndex(
		model.Property{ID: "priced", Title: "Casa amplia", Price: 900_000_000},
		model.Property{ID: "unpriced", Title: "Casa amplia"},
		model.Property{ID: "zero", Title: "Casa amplia", Price: 0},
	)

	out := rank(t, idx, "casa <=400m", nil, 12)
	ids := resultIDs(out)
	assert.NotContains(t, ids, "priced")
	assert.Contains(t, ids, "unpriced")
	assert.Contains(t, ids, "zero", "price 0 means unknown")
}

func TestRanker_UnknownBathsAndParking(t *testing.T) {
	idx := testIndex(
		model.Property{ID: "a", Title: "Casa", Type: "casa", Baths: intPtr(1), Parking: intPtr(0)},
		model.Property{ID: "b", Title: "Casa", Type: "casa"},
	)

	out := rank(t, idx, "casa 2b 1g", nil, 12)
	assert.Equal(t, []string{"b"}, resultIDs(out))
}

func TestRanker_PopularityMonotonic(t *testing.T) {
	idx := testIndex(
		model.Property{ID: "A", Title: "Casa en Manga", Beds: intPtr(3)},
		model.Property{ID: "B", Title: "Casa en Manga", Beds: intPtr(3)},
	)
	r := NewRanker(DefaultWeights())
	q := NewIntentParser(nil).Parse("casa manga 3h", idx.Vocabulary)

	base, _ := r.Score(&idx.entries[1], q, 0)
	prev := base
	for _, clicks := range []int64{1, 2, 5, 40, 1000} {
		score, reasons := r.Score(&idx.entries[0], q, clicks)
		assert.Greater(t, score, prev, "clicks=%d", clicks)
		assert.Contains(t, reasons, ReasonPopular)
		prev = score
	}

	// Clicks never rescue an excluded property.
	q = NewIntentParser(nil).Parse("casa manga 4h", idx.Vocabulary)
	score, _ := r.Score(&idx.entries[0], q, 1_000_000)
	assert.Less(t, score, 0.0)

	out := r.Rank(idx.entries, NewIntentParser(nil).Parse("casa manga", idx.Vocabulary), map[string]int64{"B": 3}, 12)
	assert.Equal(t, []string{"B", "A"}, resultIDs(out))
}

func TestRanker_ResultCap(t *testing.T) {
	props := make([]model.Property, 50)
	for i := range props {
		props[i] = model.Property{ID: fmt.Sprintf("X%02d", i), Title: "Lote campestre"}
	}
	idx := testIndex(props...)

	first := rank(t, idx, "lote campestre", nil, 12)
	require.Len(t, first.Results, 12)
	assert.Equal(t, 50, first.Total)

	// Equal scores keep catalog order, so the top 12 are stable.
	assert.Equal(t, "X00", first.Results[0].Property.ID)
	assert.Equal(t, "X11", first.Results[11].Property.ID)

	second := rank(t, idx, "lote campestre", nil, 12)
	assert.Equal(t, resultIDs(first), resultIDs(second))
}

func TestRanker_CapAppliedAfterSort(t *testing.T) {
	props := make([]model.Property, 20)
	for i := range props {
		props[i] = model.Property{ID: fmt.Sprintf("L%02d", i), Title: "Lote", Type: "lote"}
	}
	props[19].Features = []string{"piscina"}
	idx := testIndex(props...)

	out := rank(t, idx, "lote piscina", nil, 5)
	require.Len(t, out.Results, 5)
	assert.Equal(t, 20, out.Total)
	assert.Equal(t, "L19", out.Results[0].Property.ID)
}

func TestRanker_RelaxedFallback(t *testing.T) {
	idx := testIndex(
		model.Property{ID: "P1", Title: "Apartamento", City: "Cartagena"},
		model.Property{ID: "P2", Title: "Casa", City: "Barranquilla"},
	)

	strict := rank(t, idx, "cartagena", nil, 12)
	assert.False(t, strict.Relaxed)
	assert.Equal(t, []string{"P1"}, resultIDs(strict))

	// No property has both words, so the any-token gate takes over.
	relaxed := rank(t, idx, "cartagena barranquilla", nil, 12)
	assert.True(t, relaxed.Relaxed)
	assert.ElementsMatch(t, []string{"P1", "P2"}, resultIDs(relaxed))
}

func TestRanker_FeatureConstraint(t *testing.T) {
	idx := testIndex(
		model.Property{ID: "flag", Title: "Apartamento", Flags: []string{"piscina"}},
		model.Property{ID: "tag", Title: "Apartamento", Features: []string{"Pool"}},
		model.Property{ID: "none", Title: "Apartamento"},
	)

	out := rank(t, idx, "apartamento piscina", nil, 12)
	ids := resultIDs(out)
	require.GreaterOrEqual(t, len(ids), 2)
	assert.ElementsMatch(t, []string{"flag", "tag"}, ids[:2])
	for _, r := range out.Results[:2] {
		assert.Contains(t, r.MatchedReasons, ReasonFeatureMatch)
	}
}

func TestRanker_DescriptionDoesNotPassGate(t *testing.T) {
	idx := testIndex(
		model.Property{ID: "desc", Title: "Casa", Description: "cerca a la playa"},
		model.Property{ID: "title", Title: "Casa playa"},
	)

	out := rank(t, idx, "playa", nil, 12)
	assert.Equal(t, []string{"title"}, resultIDs(out))
}

func TestRanker_ConstraintOnlyQueries(t *testing.T) {
	idx := testIndex(
		model.Property{ID: "P1", Title: "Apartamento vista al mar", City: "Cartagena", Type: "apartamento", Features: []string{"piscina"}},
		model.Property{ID: "P2", Title: "Casa en el centro", City: "Cartagena", Type: "casa"},
	)

	tests := []struct {
		query string
		want  []string
	}{
		{"piscina", []string{"P1"}},
		{"apartamento", []string{"P1"}},
		{"apartamento vista al mar", []string{"P1"}},
		{"ascensor", []string{}},
		{"oficina", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			out := rank(t, idx, tt.query, nil, 12)
			assert.Equal(t, tt.want, resultIDs(out))
			for _, r := range out.Results {
				assert.NotContains(t, r.MatchedReasons, ReasonGeneralMatch)
			}
		})
	}
}
