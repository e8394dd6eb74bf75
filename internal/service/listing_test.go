package service

import (
	"testing"

	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listingFixture() []model.Property {
	return []model.Property{
		{ID: "V1", Title: "Apartamento en Bocagrande", City: "Cartagena", Type: "apartamento", Operation: "comprar", Price: 500_000_000, Beds: intPtr(3), Sqm: 90, Added: "2024-03-01", HighlightScore: 2},
		{ID: "V2", Title: "Casa en Manga", City: "Cartagena", Type: "casa", Operation: "venta", Price: 800_000_000, Beds: intPtr(4), Sqm: 200, Added: "2024-05-10", Featured: true},
		{ID: "V3", Title: "Lote campestre", City: "Turbaco", Type: "lote", Operation: "sale", Price: 150_000_000, Sqm: 1000},
		{ID: "A1", Title: "Apartamento amoblado", City: "Cartagena", Type: "apartamento", Operation: "arriendo", Price: 3_500_000, Beds: intPtr(2), Features: []string{"piscina"}},
		{ID: "D1", Title: "Apartamento por días", City: "Cartagena", Type: "apartamento", Operation: "temporada", Price: 400_000},
	}
}

func listingIDs(page *model.ListingPage) []string {
	ids := make([]string, len(page.Results))
	for i, p := range page.Results {
		ids[i] = p.ID
	}
	return ids
}

func TestBrowse_Operation(t *testing.T) {
	props := listingFixture()

	tests := []struct {
		operation string
		want      []string
	}{
		{"comprar", []string{"V2", "V1", "V3"}},
		{"arrendar", []string{"A1"}},
		{"alojamientos", []string{"D1"}},
		{"", []string{"V2", "V1", "V3", "A1", "D1"}},
	}

	for _, tt := range tests {
		t.Run(tt.operation, func(t *testing.T) {
			page, err := Browse(props, &model.ListingFilters{Operation: tt.operation}, 9)
			require.NoError(t, err)
			assert.Equal(t, tt.want, listingIDs(page))
			assert.Equal(t, len(tt.want), page.Total)
		})
	}

	_, err := Browse(props, &model.ListingFilters{Operation: "permutar"}, 9)
	assert.ErrorIs(t, err, ErrUnknownOperation)
}

func TestBrowse_Filters(t *testing.T) {
	props := listingFixture()

	tests := []struct {
		name    string
		filters model.ListingFilters
		want    []string
	}{
		{"every search term", model.ListingFilters{Operation: "comprar", Search: "apartamento bocagrande"}, []string{"V1"}},
		{"search includes features", model.ListingFilters{Search: "piscina"}, []string{"A1"}},
		{"city substring", model.ListingFilters{City: "turb"}, []string{"V3"}},
		{"type equality", model.ListingFilters{Operation: "comprar", Type: "casa"}, []string{"V2"}},
		{"beds min, unknown counts as zero", model.ListingFilters{Operation: "comprar", BedsMin: intPtr(3)}, []string{"V2", "V1"}},
		{"price window", model.ListingFilters{Operation: "comprar", PriceMin: floatPtr(200_000_000), PriceMax: floatPtr(600_000_000)}, []string{"V1"}},
		{"sqm window", model.ListingFilters{Operation: "comprar", SqmMin: floatPtr(100), SqmMax: floatPtr(500)}, []string{"V2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := Browse(props, &tt.filters, 9)
			require.NoError(t, err)
			assert.Equal(t, tt.want, listingIDs(page))
		})
	}
}

func TestBrowse_Sort(t *testing.T) {
	props := listingFixture()

	tests := []struct {
		sort string
		want []string
	}{
		{model.SortRelevance, []string{"V2", "V1", "V3"}},
		{model.SortPriceAsc, []string{"V3", "V1", "V2"}},
		{model.SortPriceDesc, []string{"V2", "V1", "V3"}},
		{model.SortNewest, []string{"V2", "V1", "V3"}},
		{model.SortSqmDesc, []string{"V3", "V2", "V1"}},
	}

	for _, tt := range tests {
		t.Run(tt.sort, func(t *testing.T) {
			page, err := Browse(props, &model.ListingFilters{Operation: "comprar", Sort: tt.sort}, 9)
			require.NoError(t, err)
			assert.Equal(t, tt.want, listingIDs(page))
		})
	}
}

func TestBrowse_Pagination(t *testing.T) {
	props := make([]model.Property, 20)
	for i := range props {
		props[i] = model.Property{ID: string(rune('a' + i)), Operation: "comprar"}
	}

	page, err := Browse(props, &model.ListingFilters{Page: 3}, 9)
	require.NoError(t, err)
	assert.Len(t, page.Results, 2)
	assert.Equal(t, 3, page.TotalPages)
	assert.False(t, page.HasMore)

	page, err = Browse(props, &model.ListingFilters{}, 9)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Results, 9)
	assert.True(t, page.HasMore)

	page, err = Browse(props, &model.ListingFilters{Page: 10}, 9)
	require.NoError(t, err)
	assert.Empty(t, page.Results)
}
