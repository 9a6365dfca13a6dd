// Package selector parses the CSS-like selectors used to attach scopes to syntax tree nodes.
//
// A selector is a chain of terms joined by the child combinator:
//
//	call_expression > identifier
//	"func"
//	* > string:nth-child(0)
//
// A term names a grammar node type (an identifier), an anonymous token by its exact text
// (a double-quoted string) or any node (*). A term may carry one :nth-child(N) qualifier that
// restricts it to the N-th child of its parent, counted as the tree walker counts siblings.
package selector

import (
	"strconv"
	"strings"
)

// Kind distinguishes the three forms a term can take.
type Kind uint8

// Term kinds.
const (
	// Named matches a named grammar node by its type name.
	Named Kind = iota + 1
	// Literal matches an anonymous token by its exact text.
	Literal
	// Wildcard matches any node.
	Wildcard
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Named:
		return "named"
	case Literal:
		return "literal"
	case Wildcard:
		return "wildcard"
	default:
		return "invalid"
	}
}

// Term identifies the node a selector step matches. Terms are comparable and are used
// directly as lookup keys.
type Term struct {
	Kind Kind
	Text string
}

// Any is the wildcard term.
var Any = Term{Kind: Wildcard} //nolint:gochecknoglobals // immutable value used as a map key

// NamedTerm returns a term matching named nodes of the given type.
func NamedTerm(name string) Term {
	return Term{Kind: Named, Text: name}
}

// LiteralTerm returns a term matching anonymous tokens with the given text.
func LiteralTerm(text string) Term {
	return Term{Kind: Literal, Text: text}
}

// String renders the term in selector syntax.
func (t Term) String() string {
	switch t.Kind {
	case Named:
		return t.Text
	case Literal:
		return quote(t.Text)
	case Wildcard:
		return "*"
	default:
		return ""
	}
}

// Less orders terms by kind, then text.
func (t Term) Less(other Term) bool {
	if t.Kind != other.Kind {
		return t.Kind < other.Kind
	}

	return t.Text < other.Text
}

// Step is one term of a selector together with its optional nth-child qualifier.
type Step struct {
	Term        Term
	Position    int
	HasPosition bool
}

// String renders the step in selector syntax.
func (s Step) String() string {
	if !s.HasPosition {
		return s.Term.String()
	}

	return s.Term.String() + ":nth-child(" + strconv.Itoa(s.Position) + ")"
}

// Selector is a non-empty chain of steps in source order: the first step is the outermost
// ancestor and the last step is the node the selector targets.
type Selector []Step

// Target returns the step the selector ultimately matches.
func (s Selector) Target() Step {
	return s[len(s)-1]
}

// String renders the selector in canonical form.
func (s Selector) String() string {
	parts := make([]string, len(s))

	for idx, step := range s {
		parts[idx] = step.String()
	}

	return strings.Join(parts, " > ")
}

func quote(text string) string {
	var sb strings.Builder

	sb.Grow(len(text) + 2) //nolint:mnd // opening and closing quote
	sb.WriteByte('"')

	for idx := range len(text) {
		ch := text[idx]
		if ch == '"' || ch == '\\' {
			sb.WriteByte('\\')
		}

		sb.WriteByte(ch)
	}

	sb.WriteByte('"')

	return sb.String()
}
