package annotate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Dump renders one line per span: 1-based start and end positions, node type, scope and, for
// leaves, the quoted text. Anonymous node types are quoted.
func (r *Result) Dump() string {
	var sb strings.Builder

	for _, span := range r.Spans {
		nodeType := span.Type
		if !span.Named {
			nodeType = strconv.Quote(nodeType)
		}

		fmt.Fprintf(&sb, "%d:%d-%d:%d\t%s\t%s",
			span.StartRow+1, span.StartCol+1, span.EndRow+1, span.EndCol+1, nodeType, span.Scope)

		if span.Text != "" {
			sb.WriteString("\t" + strconv.Quote(span.Text))
		}

		sb.WriteByte('\n')
	}

	return sb.String()
}

// LineDiff is one line of a dump comparison.
type LineDiff struct {
	Line string
	Op   diffmatchpatch.Operation
}

// Diff compares two dumps line by line.
func Diff(before, after string) []LineDiff {
	dmp := diffmatchpatch.New()
	src, dst, lines := dmp.DiffLinesToRunes(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMainRunes(src, dst, false), lines)

	var out []LineDiff

	for _, diff := range diffs {
		for line := range strings.Lines(diff.Text) {
			out = append(out, LineDiff{Op: diff.Type, Line: strings.TrimSuffix(line, "\n")})
		}
	}

	return out
}

// Changed reports whether diffs contain an insertion or deletion.
func Changed(diffs []LineDiff) bool {
	for _, diff := range diffs {
		if diff.Op != diffmatchpatch.DiffEqual {
			return true
		}
	}

	return false
}

// FormatDiff renders diffs with "+", "-" and " " line prefixes. Unchanged lines are kept only
// when context is true.
func FormatDiff(diffs []LineDiff, context bool) string {
	var sb strings.Builder

	for _, diff := range diffs {
		switch diff.Op {
		case diffmatchpatch.DiffInsert:
			sb.WriteString("+" + diff.Line + "\n")
		case diffmatchpatch.DiffDelete:
			sb.WriteString("-" + diff.Line + "\n")
		case diffmatchpatch.DiffEqual:
			if context {
				sb.WriteString(" " + diff.Line + "\n")
			}
		}
	}

	return sb.String()
}
