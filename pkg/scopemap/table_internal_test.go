package scopemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/scopemap/pkg/selector"
)

func TestTrie_WildcardSharedByBothRoots(t *testing.T) {
	t.Parallel()

	tr := newTrie()
	tr.insert(selector.MustParse("*"), 0)
	tr.insert(selector.MustParse(`"x"`), 1)

	require.NotNil(t, tr.named[selector.Any])
	assert.Same(t, tr.named[selector.Any], tr.literal[selector.Any])
}

func TestTrie_InsertLastWriteWins(t *testing.T) {
	t.Parallel()

	tr := newTrie()
	tr.insert(selector.MustParse("a > b"), 0)
	tr.insert(selector.MustParse("a > b"), 1)

	assert.Equal(t, []int{1}, tr.named[selector.NamedTerm("b")].byParent[selector.NamedTerm("a")].results)
}

func TestTrie_SettleMergesBeforeDescending(t *testing.T) {
	t.Parallel()

	tr := newTrie()
	tr.insert(selector.MustParse("* > *"), 0)
	tr.insert(selector.MustParse("* > * > * > d"), 1)
	tr.insert(selector.MustParse("a > * > * > *"), 2)
	tr.insert(selector.MustParse("a > * > * > d"), 3)
	tr.settle()

	d := tr.named[selector.NamedTerm("d")]
	deep := d.byParent[selector.Any].byParent[selector.Any]

	assert.Equal(t, []int{0}, d.byParent[selector.Any].results)
	assert.Equal(t, []int{1, 2, 3}, deep.byParent[selector.NamedTerm("a")].results)
	assert.Equal(t, []int{1}, deep.byParent[selector.Any].results)
}

func TestTrie_PositionsDoNotCascade(t *testing.T) {
	t.Parallel()

	tr := newTrie()
	tr.insert(selector.MustParse("b"), 0)
	tr.insert(selector.MustParse("b:nth-child(1)"), 1)
	tr.insert(selector.MustParse("b:nth-child(2)"), 2)
	tr.settle()

	b := tr.named[selector.NamedTerm("b")]

	assert.Equal(t, []int{0, 1}, b.byPosition[1].results)
	assert.Equal(t, []int{0, 2}, b.byPosition[2].results)
	assert.Empty(t, b.byPosition[1].byPosition)
}

func TestPrependMissing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		inherited []int
		own       []int
		want      []int
	}{
		{name: "empty", want: nil},
		{name: "only inherited", inherited: []int{1, 2}, want: []int{1, 2}},
		{name: "only own", own: []int{3}, want: []int{3}},
		{name: "disjoint", inherited: []int{1}, own: []int{3}, want: []int{1, 3}},
		{name: "overlap keeps own position", inherited: []int{1, 3}, own: []int{3}, want: []int{1, 3}},
		{name: "all present", inherited: []int{3}, own: []int{1, 3}, want: []int{1, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, prependMissing(tt.inherited, tt.own))
		})
	}
}
