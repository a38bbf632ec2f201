package observe

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumFor(t *testing.T, rm metricdata.ResourceMetrics, name string, attr attribute.KeyValue) int64 {
	t.Helper()
	met := findMetric(rm, name)
	if met == nil {
		t.Fatalf("metric %q not found", name)
	}
	sum, ok := met.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric %q is not an int64 sum", name)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attr.Key); ok && v.AsString() == attr.Value.AsString() {
			total += dp.Value
		}
	}
	return total
}

func TestRecordRun(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordRun(ctx, RunSummary{
		Mode:     "segment",
		Duration: 20 * time.Millisecond,
		Units:    map[string]int{"fresh": 2, "carried": 5, "expired": 1},
		Mentions: map[string]int{"intro_za": 2},
	})
	m.RecordRun(ctx, RunSummary{Mode: "segment", Units: map[string]int{"fresh": 1}})

	rm := collect(t, reader)
	if got := sumFor(t, rm, "speakertag.engine.runs", attribute.String("mode", "segment")); got != 2 {
		t.Fatalf("runs = %d, want 2", got)
	}
	if got := sumFor(t, rm, "speakertag.engine.units", attribute.String("provenance", "fresh")); got != 3 {
		t.Fatalf("fresh units = %d, want 3", got)
	}
	if got := sumFor(t, rm, "speakertag.engine.mentions", attribute.String("pattern", "intro_za")); got != 2 {
		t.Fatalf("intro_za mentions = %d, want 2", got)
	}

	met := findMetric(rm, "speakertag.engine.run.duration")
	if met == nil {
		t.Fatalf("duration histogram missing")
	}
	hist, ok := met.Data.(metricdata.Histogram[float64])
	if !ok || len(hist.DataPoints) == 0 || hist.DataPoints[0].Count != 2 {
		t.Fatalf("duration histogram = %+v", met.Data)
	}
}

func TestRecordCommitted(t *testing.T) {
	m, reader := newTestMetrics(t)
	m.RecordCommitted(context.Background(), 4)
	m.RecordCommitted(context.Background(), 0)

	rm := collect(t, reader)
	met := findMetric(rm, "speakertag.attribution.committed")
	if met == nil {
		t.Fatalf("committed counter missing")
	}
	sum := met.Data.(metricdata.Sum[int64])
	if len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 4 {
		t.Fatalf("committed = %+v", sum.DataPoints)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordRun(context.Background(), RunSummary{Mode: "line"})
	m.RecordCommitted(context.Background(), 3)
}
