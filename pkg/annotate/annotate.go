// Package annotate assigns scopes to every node of a source file using a compiled grammar.
//
// It runs the whole pipeline once per file: parse with tree-sitter, walk the tree keeping the
// ancestor chain, query the grammar's scope map, resolve leaf rules against the node text and
// intern the winning scope. It is meant for grammar authoring and tests, not for incremental
// highlighting.
package annotate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/scopemap/pkg/grammar"
	"github.com/Sumatoshi-tech/scopemap/pkg/scopeid"
	"github.com/Sumatoshi-tech/scopemap/pkg/scopemap"
	"github.com/Sumatoshi-tech/scopemap/pkg/scoperules"
	"github.com/Sumatoshi-tech/scopemap/pkg/syntaxpath"
	"github.com/Sumatoshi-tech/scopemap/pkg/textutil"
)

const tracerName = "scopemap/annotate"

// Recorder receives one record per annotated file. observability.AnnotateMetrics implements it.
type Recorder interface {
	RecordFile(ctx context.Context, grammar string, nodes, scoped int, elapsed time.Duration, err error)
}

// Span is one scoped node.
type Span struct {
	// Text is set for leaf nodes only.
	Text  string
	Type  string
	Scope string
	syntaxpath.Span
	ID    int
	Named bool
}

// Result is the annotation of one file.
type Result struct {
	Grammar string
	Spans   []Span
	// Nodes counts every visited node, scoped or not.
	Nodes int
	Lines int
}

// Annotator annotates files for one grammar. It is safe for concurrent use.
type Annotator struct {
	grammar  *grammar.Grammar
	parser   *syntaxpath.Parser
	ids      *scopeid.Registry
	recorder Recorder
	logger   *slog.Logger
	tracer   trace.Tracer
}

// Option configures an Annotator.
type Option func(*Annotator)

// WithRegistry shares a scope id registry between annotators.
func WithRegistry(ids *scopeid.Registry) Option {
	return func(a *Annotator) {
		a.ids = ids
	}
}

// WithRecorder sets the per-file recorder.
func WithRecorder(recorder Recorder) Option {
	return func(a *Annotator) {
		a.recorder = recorder
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Annotator) {
		a.logger = logger
	}
}

// New creates an Annotator for g. It fails when g's parser has no tree-sitter language.
func New(g *grammar.Grammar, opts ...Option) (*Annotator, error) {
	lang, err := g.Language()
	if err != nil {
		return nil, err
	}

	a := &Annotator{
		grammar: g,
		parser:  syntaxpath.NewParser(lang),
		logger:  slog.New(slog.DiscardHandler),
		tracer:  otel.Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.ids == nil {
		a.ids = scopeid.NewRegistry()
	}

	return a, nil
}

// Registry returns the scope id registry used by a.
func (a *Annotator) Registry() *scopeid.Registry {
	return a.ids
}

// Annotate parses content and scopes every node.
func (a *Annotator) Annotate(ctx context.Context, content []byte) (result *Result, err error) {
	ctx, span := a.tracer.Start(ctx, "annotate.file",
		trace.WithAttributes(attribute.String("annotate.grammar", a.grammar.ScopeName)))
	start := time.Now()

	defer func() {
		elapsed := time.Since(start)

		nodes, scoped := 0, 0
		if result != nil {
			nodes, scoped = result.Nodes, len(result.Spans)
		}

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		span.SetAttributes(attribute.Int("annotate.nodes", nodes), attribute.Int("annotate.scoped", scoped))
		span.End()

		if a.recorder != nil {
			a.recorder.RecordFile(ctx, a.grammar.ScopeName, nodes, scoped, elapsed, err)
		}
	}()

	tree, err := a.parser.Parse(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("annotate %s: %w", a.grammar.ScopeName, err)
	}
	defer tree.Close()

	result = &Result{Grammar: a.grammar.ScopeName, Lines: textutil.CountLines(content)}

	syntaxpath.Walk(tree.RootNode(), func(node sitter.Node, path []scopemap.PathStep) bool {
		result.Nodes++

		if scope, ok := a.scopeFor(node, path, content); ok {
			result.Spans = append(result.Spans, a.spanOf(node, scope, content))
		}

		return ctx.Err() == nil
	})

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	a.logger.DebugContext(ctx, "annotated file",
		slog.String("grammar", a.grammar.ScopeName),
		slog.Int("nodes", result.Nodes),
		slog.Int("scoped", len(result.Spans)),
	)

	return result, nil
}

func (a *Annotator) scopeFor(node sitter.Node, path []scopemap.PathStep, content []byte) (string, bool) {
	rules, ok := a.grammar.Scopes.GetPath(path)
	if !ok {
		return "", false
	}

	var text string
	if scoperules.NeedText(rules) {
		text = node.Content(content)
	}

	return scoperules.Resolve(rules, text)
}

func (a *Annotator) spanOf(node sitter.Node, scope string, content []byte) Span {
	out := Span{
		Span:  syntaxpath.SpanOf(node),
		Type:  node.Type(),
		Named: node.IsNamed(),
		Scope: scope,
		ID:    a.ids.Intern(scope),
	}

	if node.ChildCount() == 0 {
		out.Text = node.Content(content)
	}

	return out
}
