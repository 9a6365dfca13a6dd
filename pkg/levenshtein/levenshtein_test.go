package levenshtein_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/scopemap/pkg/levenshtein"
)

func TestDistance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"source.go", "source.go", 0},
		{"source.og", "source.go", 2},
		{"kitten", "sitting", 3},
		{"héllo", "hello", 1},
	}

	var ctx levenshtein.Context

	for _, tt := range tests {
		assert.Equal(t, tt.want, ctx.Distance(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
		assert.Equal(t, tt.want, ctx.Distance(tt.b, tt.a), "%q vs %q", tt.b, tt.a)
	}
}

func TestClosest(t *testing.T) {
	t.Parallel()

	candidates := []string{"source.python", "source.go", "source.json"}

	got, ok := levenshtein.Closest("source.og", candidates, 2)
	assert.True(t, ok)
	assert.Equal(t, "source.go", got)

	_, ok = levenshtein.Closest("text.plain", candidates, 2)
	assert.False(t, ok)

	_, ok = levenshtein.Closest("anything", nil, 5)
	assert.False(t, ok)
}
