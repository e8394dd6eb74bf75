package service

import (
	"testing"

	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func floatPtr(v float64) *float64 { return &v }

func TestIntentParser_Parse(t *testing.T) {
	parser := NewIntentParser(nil)
	vocab := NewVocabulary("piscina", "cartagena", "bocagrande", "apartamento")

	tests := []struct {
		name        string
		query       string
		tokens      []string
		constraints model.ConstraintSet
	}{
		{
			name:   "shorthands and budget range",
			query:  "apartamento 350-400m 3h",
			tokens: []string{},
			constraints: model.ConstraintSet{
				BedsMin:  intPtr(3),
				Type:     "apartamento",
				PriceMin: floatPtr(350_000_000),
				PriceMax: floatPtr(400_000_000),
			},
		},
		{
			name:   "baths and parking shorthands",
			query:  "casa 2b 1g bocagrande",
			tokens: []string{"bocagrande"},
			constraints: model.ConstraintSet{
				BathsMin:   intPtr(2),
				ParkingMin: intPtr(1),
				Type:       "casa",
			},
		},
		{
			name:   "repeated shorthand keeps the maximum",
			query:  "3h 2h",
			tokens: []string{},
			constraints: model.ConstraintSet{
				BedsMin: intPtr(3),
			},
		},
		{
			name:   "budget tokens intersect",
			query:  ">=200m <=400m 250-500m",
			tokens: []string{},
			constraints: model.ConstraintSet{
				PriceMin: floatPtr(250_000_000),
				PriceMax: floatPtr(400_000_000),
			},
		},
		{
			name:   "number followed by a million word",
			query:  "casa 400 millones",
			tokens: []string{},
			constraints: model.ConstraintSet{
				Type:     "casa",
				PriceMin: floatPtr(400_000_000),
				PriceMax: floatPtr(400_000_000),
			},
		},
		{
			name:   "single word features and diacritics",
			query:  "Balcón con Piscina",
			tokens: []string{"con"},
			constraints: model.ConstraintSet{
				Features: []string{"balcon", "piscina"},
			},
		},
		{
			name:   "last type word wins",
			query:  "casa apartamento",
			tokens: []string{},
			constraints: model.ConstraintSet{
				Type: "apartamento",
			},
		},
		{
			name:   "typo corrected against vocabulary",
			query:  "cartagna",
			tokens: []string{"cartagena"},
		},
		{
			name:   "short tokens are not corrected",
			query:  "crt",
			tokens: []string{"crt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parser.Parse(tt.query, vocab)
			require.NotNil(t, result.Constraints)
			assert.Equal(t, tt.tokens, result.Tokens)
			assert.Equal(t, tt.constraints, *result.Constraints)
		})
	}
}

func TestIntentParser_PhrasePrecedence(t *testing.T) {
	parser := NewIntentParser(nil)
	result := parser.Parse("vista al mar", nil)

	require.Len(t, result.Phrases, 1)
	assert.Equal(t, model.Phrase{Kind: model.PhraseFeature, Canonical: "vista al mar", Match: "vista al mar"}, result.Phrases[0])
	assert.Empty(t, result.Tokens)
	assert.Equal(t, []string{"vista al mar"}, result.Constraints.Features)
}

func TestIntentParser_PhraseSynonym(t *testing.T) {
	parser := NewIntentParser(nil)
	result := parser.Parse("apartamento frente al mar en cartagena", nil)

	require.Len(t, result.Phrases, 1)
	assert.Equal(t, "vista al mar", result.Phrases[0].Canonical)
	assert.Equal(t, "apartamento", result.Constraints.Type)
	assert.Equal(t, []string{"en", "cartagena"}, result.Tokens)
}

func TestIntentParser_Corrections(t *testing.T) {
	parser := NewIntentParser(nil)
	result := parser.Parse("bocagrnde", NewVocabulary("bocagrande"))

	assert.Equal(t, []string{"bocagrande"}, result.Tokens)
	assert.Equal(t, map[string]string{"bocagrnde": "bocagrande"}, result.Corrections)
}

func TestIntentParser_EmptyQuery(t *testing.T) {
	parser := NewIntentParser(nil)

	for _, q := range []string{"", "   ", "¿?!"} {
		result := parser.Parse(q, nil)
		assert.True(t, result.IsEmpty(), "query %q", q)
	}
}
