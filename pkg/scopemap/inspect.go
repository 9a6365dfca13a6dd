package scopemap

import (
	"slices"

	"github.com/Sumatoshi-tech/scopemap/pkg/selector"
)

// Stats summarizes a compiled Map.
type Stats struct {
	Declarations int
	Selectors    int
	Nodes        int
	NamedRoots   int
	LiteralRoots int
	MaxDepth     int
	HasWildcard  bool
}

// Entry is one trie node that yields results, after default propagation.
type Entry struct {
	// Selector is the canonical selector leading to the node.
	Selector string
	// Declarations lists declaration ids from least to most specific.
	Declarations []int
}

// Stats returns the build summary.
func (m *Map[T]) Stats() Stats {
	return m.stats
}

// Entries lists every node that yields results, ordered by canonical selector.
func (m *Map[T]) Entries() []Entry {
	var entries []Entry

	var visit func(table *Table, chain []selector.Step)

	visit = func(table *Table, chain []selector.Step) {
		if len(table.results) > 0 {
			entries = append(entries, Entry{
				Selector:     render(chain),
				Declarations: slices.Clone(table.results),
			})
		}

		for _, pos := range table.sortedPositions() {
			refined := slices.Clone(chain)
			refined[len(refined)-1].Position = pos
			refined[len(refined)-1].HasPosition = true

			visit(table.byPosition[pos], refined)
		}

		for _, term := range level(table.byParent).sortedTerms() {
			visit(table.byParent[term], append(slices.Clone(chain), selector.Step{Term: term}))
		}
	}

	for _, term := range m.named.sortedTerms() {
		visit(m.named[term], []selector.Step{{Term: term}})
	}

	for _, term := range m.literal.sortedTerms() {
		if term != selector.Any {
			visit(m.literal[term], []selector.Step{{Term: term}})
		}
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		switch {
		case a.Selector < b.Selector:
			return -1
		case a.Selector > b.Selector:
			return 1
		default:
			return 0
		}
	})

	return entries
}

// render turns a leaf-first chain into canonical selector text.
func render(chain []selector.Step) string {
	sel := make(selector.Selector, len(chain))

	for idx, step := range chain {
		sel[len(chain)-1-idx] = step
	}

	return sel.String()
}

func (m *Map[T]) collectStats() Stats {
	stats := Stats{
		Declarations: len(m.payloads),
		HasWildcard:  m.named[selector.Any] != nil,
	}

	seen := make(map[*Table]bool)

	var count func(table *Table, depth int)

	count = func(table *Table, depth int) {
		if seen[table] {
			return
		}

		seen[table] = true
		stats.Nodes++
		stats.MaxDepth = max(stats.MaxDepth, depth)

		for _, sub := range table.byPosition {
			count(sub, depth)
		}

		for _, parent := range table.byParent {
			count(parent, depth+1)
		}
	}

	for term, table := range m.named {
		if term != selector.Any {
			stats.NamedRoots++
		}

		count(table, 1)
	}

	for term, table := range m.literal {
		if term != selector.Any {
			stats.LiteralRoots++
		}

		count(table, 1)
	}

	return stats
}
