// Package syntaxpath walks tree-sitter syntax trees and reports, for every node, the ancestor
// chain a scope map query needs: each ancestor's type, namedness and index among all of its
// parent's children.
package syntaxpath

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/scopemap/pkg/safeconv"
	"github.com/Sumatoshi-tech/scopemap/pkg/scopemap"
)

// Sentinel errors.
var (
	ErrNoRootNode = errors.New("syntaxpath: no root node")
	errPoolType   = errors.New("syntaxpath: pool returned unexpected type")
)

// Parser parses source text with one tree-sitter language. It is safe for concurrent use.
type Parser struct {
	pool sync.Pool
}

// NewParser creates a Parser for lang.
func NewParser(lang *sitter.Language) *Parser {
	return &Parser{
		pool: sync.Pool{
			New: func() any {
				tsParser := sitter.NewParser()
				tsParser.SetLanguage(lang)

				return tsParser
			},
		},
	}
}

// Parse parses content. The caller must Close the returned tree.
func (p *Parser) Parse(ctx context.Context, content []byte) (*sitter.Tree, error) {
	tsParser, ok := p.pool.Get().(*sitter.Parser)
	if !ok {
		return nil, errPoolType
	}

	defer p.pool.Put(tsParser)

	tree, err := tsParser.ParseString(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("syntaxpath: failed to parse: %w", err)
	}

	if tree.RootNode().IsNull() {
		tree.Close()

		return nil, ErrNoRootNode
	}

	return tree, nil
}

// VisitFunc is called for every node. path runs from the root to node and is reused between
// calls; copy it to keep it. Returning false skips the node's children.
type VisitFunc func(node sitter.Node, path []scopemap.PathStep) bool

// Walk visits root and its descendants depth-first in document order. Anonymous tokens are
// visited too, and sibling indices count them.
func Walk(root sitter.Node, fn VisitFunc) {
	if root.IsNull() {
		return
	}

	path := []scopemap.PathStep{{Type: root.Type(), Position: 0, Named: root.IsNamed()}}

	walk(root, path, fn)
}

func walk(node sitter.Node, path []scopemap.PathStep, fn VisitFunc) {
	if !fn(node, path) {
		return
	}

	position := 0

	for idx := range node.ChildCount() {
		child := node.Child(idx)

		walk(child, append(path, scopemap.PathStep{
			Type:     child.Type(),
			Position: position,
			Named:    child.IsNamed(),
		}), fn)

		position++
	}
}

// Types returns the node types of path, root first.
func Types(path []scopemap.PathStep) []string {
	types := make([]string, len(path))
	for idx, step := range path {
		types[idx] = step.Type
	}

	return types
}

// Positions returns the sibling indices of path, root first.
func Positions(path []scopemap.PathStep) []int {
	positions := make([]int, len(path))
	for idx, step := range path {
		positions[idx] = step.Position
	}

	return positions
}

// Span is a node's location: byte offsets and 0-based rows and columns.
type Span struct {
	StartByte int
	EndByte   int
	StartRow  int
	StartCol  int
	EndRow    int
	EndCol    int
}

// SpanOf returns the location of node.
func SpanOf(node sitter.Node) Span {
	start, end := node.StartPoint(), node.EndPoint()

	return Span{
		StartByte: safeconv.MustUintToInt(node.StartByte()),
		EndByte:   safeconv.MustUintToInt(node.EndByte()),
		StartRow:  safeconv.MustUintToInt(start.Row),
		StartCol:  safeconv.MustUintToInt(start.Column),
		EndRow:    safeconv.MustUintToInt(end.Row),
		EndCol:    safeconv.MustUintToInt(end.Column),
	}
}
