// Package grammar loads grammar definition files and compiles their scope declarations.
//
// A grammar file names a tree-sitter parser and maps selectors to leaf rules:
//
//	name: Go
//	scopeName: source.go
//	parser: go
//	fileTypes: [go]
//	scopes:
//	  comment: comment.block
//	  '"func", "return"': keyword.control
//	  call_expression > identifier: entity.name.function
//
// Files may be written in YAML, JSON or TOML.
package grammar

import (
	"fmt"
	"slices"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/scopemap/pkg/scopemap"
	"github.com/Sumatoshi-tech/scopemap/pkg/scoperules"
)

// Grammar is a compiled grammar definition.
type Grammar struct {
	Scopes    *scopemap.Map[scoperules.Rule]
	Name      string
	ScopeName string
	Parser    string
	Source    string
	FileTypes []string
}

// Compile turns a definition into a Grammar. The options are passed to the scope map build.
func Compile(def *Definition, opts ...scopemap.Option) (*Grammar, error) {
	rules := make([]scopemap.Rule[scoperules.Rule], 0, len(def.Scopes))

	for _, entry := range def.Scopes {
		rule, err := scoperules.FromValue(entry.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: scope %q: %w", def.Source, entry.Selector, err)
		}

		rules = append(rules, scopemap.Rule[scoperules.Rule]{Selector: entry.Selector, Payload: rule})
	}

	scopes, err := scopemap.NewOrdered(rules, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", def.Source, err)
	}

	return &Grammar{
		Scopes:    scopes,
		Name:      def.Name,
		ScopeName: def.ScopeName,
		Parser:    def.Parser,
		Source:    def.Source,
		FileTypes: slices.Clone(def.FileTypes),
	}, nil
}

// LoadFile loads, validates and compiles a grammar file.
func LoadFile(path string, opts ...scopemap.Option) (*Grammar, error) {
	def, err := Load(path)
	if err != nil {
		return nil, err
	}

	return Compile(def, opts...)
}

// Language returns the tree-sitter language named by the grammar's parser.
func (g *Grammar) Language() (*sitter.Language, error) {
	lang := LanguageFor(g.Parser)
	if lang == nil {
		return nil, fmt.Errorf("%w: %s", ErrLanguageUnavailable, g.Parser)
	}

	return lang, nil
}
