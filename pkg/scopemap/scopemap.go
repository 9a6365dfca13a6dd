// Package scopemap compiles selector-to-scope declarations into an immutable lookup table and
// answers which declarations apply to a node given its ancestor chain.
//
// Matching follows the CSS cascade: more specific selectors do not hide less specific ones.
// A query returns every applicable payload, least specific first, so that the last element is
// the one a highlighter would normally pick.
//
// A Map is built once and never modified, so it can be queried from any number of goroutines.
package scopemap

import (
	"log/slog"
	"time"

	"github.com/Sumatoshi-tech/scopemap/pkg/mapx"
	"github.com/Sumatoshi-tech/scopemap/pkg/selector"
)

// SelectorParser turns selector source text into parsed selectors. A single source may hold
// several selectors (a selector list); each one receives the same payload.
type SelectorParser interface {
	Parse(src string) ([]selector.Selector, error)
}

// BuildObserver receives the outcome of every Map build.
type BuildObserver interface {
	ObserveBuild(stats Stats, elapsed time.Duration, err error)
}

// Rule is one declaration: a selector source and the payload attached to it.
type Rule[T any] struct {
	Selector string
	Payload  T
}

// Map is the compiled selector table. The zero value matches nothing.
type Map[T any] struct {
	named    level
	literal  level
	payloads []T
	sources  []string
	stats    Stats
}

type options struct {
	parser   SelectorParser
	logger   *slog.Logger
	observer BuildObserver
}

// Option configures how a Map is built.
type Option func(*options)

// WithParser replaces the default selector grammar.
func WithParser(parser SelectorParser) Option {
	return func(opts *options) {
		opts.parser = parser
	}
}

// WithLogger sets the logger receiving build diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

// WithObserver sets a BuildObserver, typically build metrics.
func WithObserver(observer BuildObserver) Option {
	return func(opts *options) {
		opts.observer = observer
	}
}

// New compiles a selector-to-payload mapping. Selectors are compiled in sorted order, so the
// error reported for several invalid selectors and the winner between two spellings of the
// same chain do not depend on map iteration order.
func New[T any](declarations map[string]T, opts ...Option) (*Map[T], error) {
	sources := mapx.SortedKeys(declarations)
	rules := make([]Rule[T], len(sources))

	for idx, src := range sources {
		rules[idx] = Rule[T]{Selector: src, Payload: declarations[src]}
	}

	return NewOrdered(rules, opts...)
}

// NewOrdered compiles declarations in the given order. When the same selector chain is
// declared more than once the last declaration wins.
func NewOrdered[T any](rules []Rule[T], opts ...Option) (*Map[T], error) {
	cfg := options{parser: selector.Parser{}}

	for _, opt := range opts {
		opt(&cfg)
	}

	start := time.Now()

	built, err := build(rules, cfg.parser)
	elapsed := time.Since(start)

	if cfg.observer != nil {
		var stats Stats
		if built != nil {
			stats = built.stats
		}

		cfg.observer.ObserveBuild(stats, elapsed, err)
	}

	if err != nil {
		return nil, err
	}

	if cfg.logger != nil {
		cfg.logger.Debug("scope map compiled",
			slog.Int("declarations", built.stats.Declarations),
			slog.Int("selectors", built.stats.Selectors),
			slog.Int("nodes", built.stats.Nodes),
			slog.Duration("duration", elapsed),
		)
	}

	return built, nil
}

func build[T any](rules []Rule[T], parser SelectorParser) (*Map[T], error) {
	tr := newTrie()

	payloads := make([]T, 0, len(rules))
	sources := make([]string, 0, len(rules))
	selectors := 0

	for _, rule := range rules {
		parsed, err := parser.Parse(rule.Selector)
		if err != nil {
			return nil, &CompileError{Selector: rule.Selector, Err: err}
		}

		if len(parsed) == 0 {
			return nil, &CompileError{Selector: rule.Selector, Err: selector.ErrEmptySelector}
		}

		for _, sel := range parsed {
			if len(sel) == 0 {
				return nil, &CompileError{Selector: rule.Selector, Err: selector.ErrEmptySelector}
			}
		}

		id := len(payloads)
		payloads = append(payloads, rule.Payload)
		sources = append(sources, rule.Selector)

		for _, sel := range parsed {
			tr.insert(sel, id)
		}

		selectors += len(parsed)
	}

	tr.settle()

	compiled := &Map[T]{
		named:    tr.named,
		literal:  tr.literal,
		payloads: payloads,
		sources:  sources,
	}

	compiled.stats = compiled.collectStats()
	compiled.stats.Selectors = selectors

	return compiled, nil
}

// Payload returns the payload of declaration id, as listed by Entries.
func (m *Map[T]) Payload(id int) T {
	return m.payloads[id]
}

// Source returns the selector text of declaration id.
func (m *Map[T]) Source(id int) string {
	return m.sources[id]
}
