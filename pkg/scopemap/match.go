package scopemap

import (
	"slices"

	"github.com/Sumatoshi-tech/scopemap/pkg/selector"
)

// NoPosition marks a PathStep whose sibling position is unknown.
const NoPosition = -1

// PathStep describes one node of a queried ancestor chain.
type PathStep struct {
	Type     string
	Position int
	Named    bool
}

// Get returns the payloads whose selectors match the last node of nodeTypes.
//
// nodeTypes lists the node's ancestors from the root down to the node itself, and positions
// holds each of those nodes' index among its siblings. Missing positions disable nth-child
// refinement for that level. An ancestor is looked up as a named type first, then as anonymous
// token text, then through the wildcard; leafIsNamed selects whether the node itself is looked
// up as a named type or as anonymous token text.
//
// Payloads are ordered from the least to the most specific match. A declaration reached at
// several levels, as selector lists allow, is reported once at its most specific position. The
// boolean is false when nothing matches; a match always carries at least one payload.
func (m *Map[T]) Get(nodeTypes []string, positions []int, leafIsNamed bool) ([]T, bool) {
	idx := len(nodeTypes) - 1
	if idx < 0 {
		return nil, false
	}

	table := m.leaf(nodeTypes[idx], leafIsNamed)

	var ids []int

	for table != nil {
		if idx < len(positions) {
			table = refine(table, positions[idx])
		}

		ids = append(ids, table.results...)

		if idx == 0 {
			break
		}

		idx--
		table = ascend(table, selector.NamedTerm(nodeTypes[idx]), selector.LiteralTerm(nodeTypes[idx]))
	}

	return m.payloadsOf(ids)
}

// GetPath is Get for a chain whose every node carries its own namedness, so that anonymous
// ancestors are matched by their token text.
func (m *Map[T]) GetPath(path []PathStep) ([]T, bool) {
	idx := len(path) - 1
	if idx < 0 {
		return nil, false
	}

	table := m.leaf(path[idx].Type, path[idx].Named)

	var ids []int

	for table != nil {
		table = refine(table, path[idx].Position)
		ids = append(ids, table.results...)

		if idx == 0 {
			break
		}

		idx--
		table = ascend(table, termOf(path[idx]))
	}

	return m.payloadsOf(ids)
}

func (m *Map[T]) leaf(nodeType string, named bool) *Table {
	var table *Table
	if named {
		table = m.named[selector.NamedTerm(nodeType)]
	} else {
		table = m.literal[selector.LiteralTerm(nodeType)]
	}

	if table == nil {
		table = m.named[selector.Any]
	}

	return table
}

// payloadsOf maps ids to payloads, keeping only the last occurrence of a repeated id.
func (m *Map[T]) payloadsOf(ids []int) ([]T, bool) {
	if len(ids) == 0 {
		return nil, false
	}

	out := make([]T, 0, len(ids))

	for idx, id := range ids {
		if !slices.Contains(ids[idx+1:], id) {
			out = append(out, m.payloads[id])
		}
	}

	return out, true
}

func refine(table *Table, position int) *Table {
	if position < 0 {
		return table
	}

	if refined, ok := table.byPosition[position]; ok {
		return refined
	}

	return table
}

// ascend follows the first of terms present among table's parents, then the wildcard.
func ascend(table *Table, terms ...selector.Term) *Table {
	for _, term := range terms {
		if next, ok := table.byParent[term]; ok {
			return next
		}
	}

	return table.byParent[selector.Any]
}

func termOf(step PathStep) selector.Term {
	if step.Named {
		return selector.NamedTerm(step.Type)
	}

	return selector.LiteralTerm(step.Type)
}
