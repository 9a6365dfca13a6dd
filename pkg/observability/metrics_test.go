package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/scopemap/pkg/observability"
	"github.com/Sumatoshi-tech/scopemap/pkg/scopemap"
)

func newTestReader(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	return reader, mp
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics

	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}

	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}

	return total
}

func TestBuildMetrics_ObservesScopeMapBuilds(t *testing.T) {
	t.Parallel()

	reader, mp := newTestReader(t)

	bm, err := observability.NewBuildMetrics(mp.Meter("test"))
	require.NoError(t, err)

	_, err = scopemap.New(map[string]string{"a > b": "x", "*": "any"}, scopemap.WithObserver(bm))
	require.NoError(t, err)

	_, err = scopemap.New(map[string]string{"a >": "x"}, scopemap.WithObserver(bm))
	require.Error(t, err)

	got := collect(t, reader)

	assert.Equal(t, int64(2), sumOf(t, got["scopemap.builds.total"]))
	assert.Equal(t, int64(1), sumOf(t, got["scopemap.build.errors.total"]))

	nodes, ok := got["scopemap.build.nodes"].Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, nodes.DataPoints, 1)
	assert.Equal(t, uint64(1), nodes.DataPoints[0].Count)
}

func TestAnnotateMetrics_RecordFile(t *testing.T) {
	t.Parallel()

	reader, mp := newTestReader(t)

	am, err := observability.NewAnnotateMetrics(mp.Meter("test"))
	require.NoError(t, err)

	am.RecordFile(context.Background(), "source.go", 40, 12, 3*time.Millisecond, nil)
	am.RecordFile(context.Background(), "source.go", 10, 2, time.Millisecond, nil)

	got := collect(t, reader)

	assert.Equal(t, int64(2), sumOf(t, got["scopemap.annotate.files.total"]))
	assert.Equal(t, int64(50), sumOf(t, got["scopemap.annotate.nodes.total"]))
	assert.Equal(t, int64(14), sumOf(t, got["scopemap.annotate.scoped.total"]))

	duration, ok := got["scopemap.annotate.duration.seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, duration.DataPoints, 1)
	assert.Equal(t, uint64(2), duration.DataPoints[0].Count)
}
