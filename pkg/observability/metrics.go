package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Sumatoshi-tech/scopemap/pkg/scopemap"
)

const (
	metricBuildsTotal      = "scopemap.builds.total"
	metricBuildErrorsTotal = "scopemap.build.errors.total"
	metricBuildDuration    = "scopemap.build.duration.seconds"
	metricBuildNodes       = "scopemap.build.nodes"

	metricFilesTotal       = "scopemap.annotate.files.total"
	metricNodesTotal       = "scopemap.annotate.nodes.total"
	metricScopedTotal      = "scopemap.annotate.scoped.total"
	metricAnnotateDuration = "scopemap.annotate.duration.seconds"

	attrStatus  = "status"
	attrGrammar = "grammar"

	statusOK    = "ok"
	statusError = "error"
)

// buildBucketBoundaries covers 100µs to 1s; grammars compile in well under a second.
var buildBucketBoundaries = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}

// annotateBucketBoundaries covers 1ms to 30s for whole-file annotation.
var annotateBucketBoundaries = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 5, 30}

// nodeBucketBoundaries sizes compiled tables.
var nodeBucketBoundaries = []float64{10, 50, 100, 250, 500, 1000, 5000}

// metricBuilder accumulates OTel instrument creation errors,
// enabling batch construction with a single error check.
type metricBuilder struct {
	meter metric.Meter
	err   error
}

func newMetricBuilder(mt metric.Meter) *metricBuilder {
	return &metricBuilder{meter: mt}
}

func (b *metricBuilder) counter(name, desc, unit string) metric.Int64Counter {
	c, err := b.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	b.setErr(name, err)

	return c
}

func (b *metricBuilder) histogram(name, desc, unit string, bounds ...float64) metric.Float64Histogram {
	h, err := b.meter.Float64Histogram(name,
		metric.WithDescription(desc),
		metric.WithUnit(unit),
		metric.WithExplicitBucketBoundaries(bounds...),
	)
	b.setErr(name, err)

	return h
}

func (b *metricBuilder) intHistogram(name, desc, unit string, bounds ...float64) metric.Int64Histogram {
	h, err := b.meter.Int64Histogram(name,
		metric.WithDescription(desc),
		metric.WithUnit(unit),
		metric.WithExplicitBucketBoundaries(bounds...),
	)
	b.setErr(name, err)

	return h
}

// setErr records the first instrument creation error.
func (b *metricBuilder) setErr(name string, err error) {
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("create %s: %w", name, err)
	}
}

// BuildMetrics records scope map compilations. It implements [scopemap.BuildObserver].
type BuildMetrics struct {
	buildsTotal   metric.Int64Counter
	errorsTotal   metric.Int64Counter
	buildDuration metric.Float64Histogram
	buildNodes    metric.Int64Histogram
}

var _ scopemap.BuildObserver = (*BuildMetrics)(nil)

// NewBuildMetrics creates build metric instruments from the given meter.
func NewBuildMetrics(mt metric.Meter) (*BuildMetrics, error) {
	b := newMetricBuilder(mt)

	bm := &BuildMetrics{
		buildsTotal:   b.counter(metricBuildsTotal, "Scope map builds", "{build}"),
		errorsTotal:   b.counter(metricBuildErrorsTotal, "Scope map builds rejected by an unsupported selector", "{build}"),
		buildDuration: b.histogram(metricBuildDuration, "Scope map build duration in seconds", "s", buildBucketBoundaries...),
		buildNodes:    b.intHistogram(metricBuildNodes, "Trie nodes per compiled scope map", "{node}", nodeBucketBoundaries...),
	}

	if b.err != nil {
		return nil, b.err
	}

	return bm, nil
}

// ObserveBuild records one build outcome.
func (bm *BuildMetrics) ObserveBuild(stats scopemap.Stats, elapsed time.Duration, err error) {
	ctx := context.Background()

	status := statusOK
	if err != nil {
		status = statusError

		bm.errorsTotal.Add(ctx, 1)
	}

	attrs := metric.WithAttributes(attribute.String(attrStatus, status))

	bm.buildsTotal.Add(ctx, 1, attrs)
	bm.buildDuration.Record(ctx, elapsed.Seconds(), attrs)

	if err == nil {
		bm.buildNodes.Record(ctx, int64(stats.Nodes))
	}
}

// AnnotateMetrics records whole-file annotation runs.
type AnnotateMetrics struct {
	filesTotal  metric.Int64Counter
	nodesTotal  metric.Int64Counter
	scopedTotal metric.Int64Counter
	duration    metric.Float64Histogram
}

// NewAnnotateMetrics creates annotation metric instruments from the given meter.
func NewAnnotateMetrics(mt metric.Meter) (*AnnotateMetrics, error) {
	b := newMetricBuilder(mt)

	am := &AnnotateMetrics{
		filesTotal:  b.counter(metricFilesTotal, "Files annotated", "{file}"),
		nodesTotal:  b.counter(metricNodesTotal, "Syntax nodes visited", "{node}"),
		scopedTotal: b.counter(metricScopedTotal, "Syntax nodes that received a scope", "{node}"),
		duration:    b.histogram(metricAnnotateDuration, "Per-file annotation duration in seconds", "s", annotateBucketBoundaries...),
	}

	if b.err != nil {
		return nil, b.err
	}

	return am, nil
}

// RecordFile records one annotated file.
func (am *AnnotateMetrics) RecordFile(ctx context.Context, grammar string, nodes, scoped int, elapsed time.Duration, err error) {
	status := statusOK
	if err != nil {
		status = statusError
	}

	grammarAttr := attribute.String(attrGrammar, grammar)

	am.filesTotal.Add(ctx, 1, metric.WithAttributes(grammarAttr, attribute.String(attrStatus, status)))
	am.nodesTotal.Add(ctx, int64(nodes), metric.WithAttributes(grammarAttr))
	am.scopedTotal.Add(ctx, int64(scoped), metric.WithAttributes(grammarAttr))
	am.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(grammarAttr))
}
