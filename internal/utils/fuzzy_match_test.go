package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithinOneEdit(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"identical", "piscina", "piscina", true},
		{"deletion", "piscna", "piscina", true},
		{"insertion", "piscinaa", "piscina", true},
		{"adjacent swap", "pisicna", "piscina", true},
		{"substitution", "piscena", "piscina", true},
		{"missing first vowel", "pscina", "piscina", true},
		{"two deletions", "pscna", "piscina", false},
		{"two substitutions", "pescena", "piscina", false},
		{"length differs by two", "piscinaaa", "piscina", false},
		{"non adjacent swap", "pnscisa", "piscina", false},
		{"swap at end", "terraaz", "terraza", true},
		{"empty vs one", "", "a", true},
		{"empty vs two", "", "ab", false},
		{"symmetric", "piscina", "piscna", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WithinOneEdit(tt.a, tt.b))
		})
	}
}

func TestSharedPrefixLen(t *testing.T) {
	assert.Equal(t, 4, SharedPrefixLen("casa", "casaquinta"))
	assert.Equal(t, 0, SharedPrefixLen("lote", "casa"))
	assert.Equal(t, 0, SharedPrefixLen("", "casa"))
}

func TestOverlapScore(t *testing.T) {
	assert.Equal(t, 0.0, OverlapScore("", "anything"))
	assert.Equal(t, 1.0, OverlapScore("casa", "una casa linda"))
	assert.Equal(t, 1.0, OverlapScore("apto mar", "apartamento vista al mar"))

	// partial subsequences earn nothing
	assert.Equal(t, 0.0, OverlapScore("abxy", "ab"))
	assert.Equal(t, 0.0, OverlapScore("piscina", "pisci"))
	assert.Equal(t, 0.0, OverlapScore("apartamento", "casa en el centro cartagena p2 casa"))

	// more shared characters never lowers the score
	assert.LessOrEqual(t, OverlapScore("piscina", "pis"), OverlapScore("piscina", "una piscina"))
}
