package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyUnmarshalAliases(t *testing.T) {
	input := `{
		"id": "ALT-101",
		"title": "Apartamento vista al mar",
		"city": "Cartagena",
		"barrio": "Bocagrande",
		"type": "apartamento",
		"operation": "comprar",
		"precio": "380.000.000",
		"bedrooms": "3",
		"baños": 2,
		"garajes": 1,
		"sqm": 95.5,
		"features": ["Piscina", "Gimnasio", ""],
		"featured": 1,
		"highlightScore": "7",
		"hasElevator": true,
		"oceanView": "yes",
		"petFriendly": false
	}`

	var p Property
	require.NoError(t, json.Unmarshal([]byte(input), &p))

	assert.Equal(t, "ALT-101", p.ID)
	assert.Equal(t, "Bocagrande", p.Neighborhood)
	assert.Equal(t, 380000000.0, p.Price)
	require.NotNil(t, p.Beds)
	assert.Equal(t, 3, *p.Beds)
	require.NotNil(t, p.Baths)
	assert.Equal(t, 2, *p.Baths)
	assert.Nil(t, p.Parking, "garajes is not a parking alias")
	assert.Equal(t, 95.5, p.Sqm)
	assert.Equal(t, []string{"Piscina", "Gimnasio"}, p.Features)
	assert.True(t, p.Featured)
	assert.Equal(t, 7.0, p.HighlightScore)
	assert.Equal(t, []string{"ascensor", "vista al mar"}, p.Flags)
}

func TestPropertyParkingCountAndFlag(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantParking *int
		wantFlag    bool
	}{
		{name: "count", input: `{"id":"1","parking":2}`, wantParking: intPtr(2), wantFlag: true},
		{name: "zero count", input: `{"id":"1","parking":0}`, wantParking: intPtr(0), wantFlag: false},
		{name: "boolean only", input: `{"id":"1","parking":true}`, wantParking: nil, wantFlag: true},
		{name: "garaje alias", input: `{"id":"1","garaje":"1"}`, wantParking: intPtr(1), wantFlag: false},
		{name: "absent", input: `{"id":"1"}`, wantParking: nil, wantFlag: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Property
			require.NoError(t, json.Unmarshal([]byte(tt.input), &p))
			assert.Equal(t, tt.wantParking, p.Parking)
			assert.Equal(t, tt.wantFlag, p.HasFlag("parqueadero"))
		})
	}
}

func TestPropertyNumericID(t *testing.T) {
	var p Property
	require.NoError(t, json.Unmarshal([]byte(`{"id": 42, "price": 0}`), &p))
	assert.Equal(t, "42", p.ID)
	_, known := p.KnownPrice()
	assert.False(t, known)
}

func TestPropertyMissingID(t *testing.T) {
	var p Property
	assert.Error(t, json.Unmarshal([]byte(`{"title": "sin id"}`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{"id": ""}`), &p))
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &p))
}

func TestPropertyFlagsSurviveRoundTrip(t *testing.T) {
	var p Property
	require.NoError(t, json.Unmarshal([]byte(`{"id":"X","pool":true,"furnished":1}`), &p))

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var back Property
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, p.Flags, back.Flags)
}

func TestParseLooseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"3", 3, true},
		{"1.5", 1.5, true},
		{"1,5", 1.5, true},
		{"380.000.000", 380000000, true},
		{"$ 1,200,000", 1200000, true},
		{"", 0, false},
		{"tres", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseLooseNumber(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConstraintSetNarrow(t *testing.T) {
	var c ConstraintSet
	c.Narrow(&PriceRange{Min: floatPtr(250e6), Max: floatPtr(400e6)})
	c.Narrow(&PriceRange{Max: floatPtr(350e6)})
	c.Narrow(&PriceRange{Min: floatPtr(200e6)})
	c.Narrow(nil)

	require.NotNil(t, c.PriceMin)
	require.NotNil(t, c.PriceMax)
	assert.Equal(t, 250e6, *c.PriceMin)
	assert.Equal(t, 350e6, *c.PriceMax)
	assert.True(t, c.HasPrice())
}

func TestConstraintSetRaiseAndFeatures(t *testing.T) {
	var c ConstraintSet
	assert.True(t, c.IsEmpty())

	c.RaiseBeds(2)
	c.RaiseBeds(4)
	c.RaiseBeds(3)
	c.AddFeature("piscina")
	c.AddFeature("piscina")
	c.AddFeature("terraza")

	assert.Equal(t, 4, *c.BedsMin)
	assert.Equal(t, []string{"piscina", "terraza"}, c.Features)
	assert.False(t, c.IsEmpty())
}

func TestJSONArrayValueScan(t *testing.T) {
	v, err := JSONArray{"P1", "P2"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["P1","P2"]`, v)

	var j JSONArray
	require.NoError(t, j.Scan([]byte(`["a"]`)))
	assert.Equal(t, JSONArray{"a"}, j)
	require.NoError(t, j.Scan(nil))
	assert.Nil(t, j)
	assert.Error(t, j.Scan(42))
}

func intPtr(n int) *int             { return &n }
func floatPtr(f float64) *float64 { return &f }
