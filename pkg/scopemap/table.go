package scopemap

import (
	"slices"

	"github.com/Sumatoshi-tech/scopemap/pkg/selector"
)

// Table is one node of the compiled selector trie. A node is reached by matching a node type
// and then, optionally, its sibling position; from there matching continues with the parent.
type Table struct {
	// results holds declaration ids in increasing specificity.
	results    []int
	byPosition map[int]*Table
	byParent   map[selector.Term]*Table
}

// level is a set of sibling trie entries keyed by term: a root or a byParent map.
type level map[selector.Term]*Table

func (lv level) child(term selector.Term) *Table {
	table, ok := lv[term]
	if !ok {
		table = &Table{}
		lv[term] = table
	}

	return table
}

func (lv level) sortedTerms() []selector.Term {
	terms := make([]selector.Term, 0, len(lv))

	for term := range lv {
		terms = append(terms, term)
	}

	slices.SortFunc(terms, func(a, b selector.Term) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		default:
			return 0
		}
	})

	return terms
}

func (t *Table) parent(term selector.Term) *Table {
	if t.byParent == nil {
		t.byParent = make(map[selector.Term]*Table)
	}

	return level(t.byParent).child(term)
}

func (t *Table) position(pos int) *Table {
	if t.byPosition == nil {
		t.byPosition = make(map[int]*Table)
	}

	table, ok := t.byPosition[pos]
	if !ok {
		table = &Table{}
		t.byPosition[pos] = table
	}

	return table
}

func (t *Table) sortedPositions() []int {
	positions := make([]int, 0, len(t.byPosition))

	for pos := range t.byPosition {
		positions = append(positions, pos)
	}

	slices.Sort(positions)

	return positions
}

// trie is the mutable structure used while a Map is being built.
type trie struct {
	named   level
	literal level
}

func newTrie() *trie {
	return &trie{
		named:   make(level),
		literal: make(level),
	}
}

// insert records declaration id for sel, walking from the target step to the outermost one.
func (tr *trie) insert(sel selector.Selector, id int) {
	last := len(sel) - 1
	target := sel[last]

	var table *Table

	switch target.Term.Kind {
	case selector.Wildcard:
		table = tr.wildcard()
	case selector.Literal:
		table = tr.literal.child(target.Term)
	default:
		table = tr.named.child(target.Term)
	}

	if target.HasPosition {
		table = table.position(target.Position)
	}

	for idx := last - 1; idx >= 0; idx-- {
		step := sel[idx]

		table = table.parent(step.Term)
		if step.HasPosition {
			table = table.position(step.Position)
		}
	}

	table.results = []int{id}
}

// wildcard returns the root wildcard entry, shared by both roots.
func (tr *trie) wildcard() *Table {
	if table, ok := tr.named[selector.Any]; ok {
		return table
	}

	table := &Table{}
	tr.named[selector.Any] = table
	tr.literal[selector.Any] = table

	return table
}

// settle runs default propagation once all selectors are inserted. Every entry of a level
// inherits from the level's wildcard entry, then each entry's refinements inherit from the
// entry itself, then the same is applied to every parent level below. Inheritance only fills
// gaps: a node's own declaration is never removed and stays last in its chain.
func (tr *trie) settle() {
	wild := tr.named[selector.Any]

	tr.named.inheritFrom(wild)
	tr.literal.inheritFrom(wild)

	for _, term := range tr.named.sortedTerms() {
		tr.named[term].settle()
	}

	for _, term := range tr.literal.sortedTerms() {
		if term != selector.Any {
			tr.literal[term].settle()
		}
	}
}

func (lv level) settle() {
	lv.inheritFrom(lv[selector.Any])

	for _, term := range lv.sortedTerms() {
		lv[term].settle()
	}
}

func (lv level) inheritFrom(wild *Table) {
	if wild == nil {
		return
	}

	for _, term := range lv.sortedTerms() {
		if term != selector.Any {
			lv[term].inherit(wild, true)
		}
	}
}

func (t *Table) settle() {
	positions := t.sortedPositions()

	// Refinement is single-level: a position table takes the entry's results and parents,
	// never its other positions.
	for _, pos := range positions {
		t.byPosition[pos].inherit(t, false)
	}

	level(t.byParent).settle()

	for _, pos := range positions {
		level(t.byPosition[pos].byParent).settle()
	}
}

func (t *Table) inherit(def *Table, withPositions bool) {
	if withPositions {
		for _, pos := range def.sortedPositions() {
			t.position(pos).inherit(def.byPosition[pos], true)
		}
	}

	for _, term := range level(def.byParent).sortedTerms() {
		t.parent(term).inherit(def.byParent[term], true)
	}

	t.results = prependMissing(def.results, t.results)
}

// prependMissing returns own preceded by the inherited ids it does not already hold.
func prependMissing(inherited, own []int) []int {
	var merged []int

	for _, id := range inherited {
		if !slices.Contains(own, id) {
			merged = append(merged, id)
		}
	}

	if len(merged) == 0 {
		return own
	}

	return append(merged, own...)
}
