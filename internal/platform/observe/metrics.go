// Package observe holds the OpenTelemetry instruments for attribution runs
package observe

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "speakertag"

// Metrics groups the instruments recorded by the engine and the attribution service
type Metrics struct {
	Runs        metric.Int64Counter
	Units       metric.Int64Counter
	Mentions    metric.Int64Counter
	RunDuration metric.Float64Histogram
	Committed   metric.Int64Counter
}

// NewMetrics creates the instruments on mp
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var (
		out Metrics
		err error
	)
	if out.Runs, err = m.Int64Counter("speakertag.engine.runs",
		metric.WithDescription("Transcripts run through the attribution engine"),
	); err != nil {
		return nil, fmt.Errorf("observe: runs counter: %w", err)
	}
	if out.Units, err = m.Int64Counter("speakertag.engine.units",
		metric.WithDescription("Attribution units assigned, by provenance"),
	); err != nil {
		return nil, fmt.Errorf("observe: units counter: %w", err)
	}
	if out.Mentions, err = m.Int64Counter("speakertag.engine.mentions",
		metric.WithDescription("Speaker mentions detected, by rule"),
	); err != nil {
		return nil, fmt.Errorf("observe: mentions counter: %w", err)
	}
	if out.RunDuration, err = m.Float64Histogram("speakertag.engine.run.duration",
		metric.WithDescription("Wall time of one engine run"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	); err != nil {
		return nil, fmt.Errorf("observe: run duration histogram: %w", err)
	}
	if out.Committed, err = m.Int64Counter("speakertag.attribution.committed",
		metric.WithDescription("Line tags auto-committed from engine assignments"),
	); err != nil {
		return nil, fmt.Errorf("observe: committed counter: %w", err)
	}
	return &out, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level Metrics built on the global provider.
// Panics if instrument creation fails
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RunSummary is what one engine run reports
type RunSummary struct {
	Mode     string
	Duration time.Duration
	// Units counts assignments per provenance
	Units map[string]int
	// Mentions counts detections per rule id
	Mentions map[string]int
}

// RecordRun records one engine run
func (m *Metrics) RecordRun(ctx context.Context, s RunSummary) {
	if m == nil {
		return
	}
	mode := metric.WithAttributes(attribute.String("mode", s.Mode))
	m.Runs.Add(ctx, 1, mode)
	m.RunDuration.Record(ctx, s.Duration.Seconds(), mode)
	for prov, n := range s.Units {
		m.Units.Add(ctx, int64(n), metric.WithAttributes(attribute.String("provenance", prov)))
	}
	for rule, n := range s.Mentions {
		m.Mentions.Add(ctx, int64(n), metric.WithAttributes(attribute.String("pattern", rule)))
	}
}

// RecordCommitted counts auto-committed line tags
func (m *Metrics) RecordCommitted(ctx context.Context, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Committed.Add(ctx, int64(n))
}
