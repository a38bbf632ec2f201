// Package sink ships attribution run summaries to the analytics store
package sink

import (
	"context"

	"speakertag/internal/platform/store"
	"speakertag/internal/services/attribution/domain"
)

// Sink records run summaries
type Sink interface {
	Record(ctx context.Context, r domain.RunRecord) error
}

// Nop discards records; used when clickhouse is disabled
type Nop struct{}

// Record implements Sink
func (Nop) Record(context.Context, domain.RunRecord) error { return nil }

// Table is the clickhouse table for run summaries
const Table = "attribution_runs"

const ddl = `CREATE TABLE IF NOT EXISTS ` + Table + ` (
	run_id          String,
	transcript_id   Int64,
	mode            LowCardinality(String),
	dry_run         Bool,
	total_units     Int64,
	assigned        Int64,
	unique_speakers Int64,
	avg_confidence  Float64,
	tier            LowCardinality(String),
	committed       Int64,
	duration_ms     Int64,
	started_at      DateTime64(3, 'UTC')
) ENGINE = MergeTree
ORDER BY (started_at, transcript_id)`

// ClickHouse writes one row per run into attribution_runs
type ClickHouse struct {
	ch store.Clickhouse
}

// NewClickHouse wraps a store clickhouse seam
func NewClickHouse(ch store.Clickhouse) *ClickHouse {
	if ch == nil {
		panic("sink.ClickHouse requires a non nil clickhouse seam")
	}
	return &ClickHouse{ch: ch}
}

// EnsureTable creates attribution_runs when missing
func (c *ClickHouse) EnsureTable(ctx context.Context) error {
	return c.ch.Exec(ctx, ddl)
}

// Record implements Sink
func (c *ClickHouse) Record(ctx context.Context, r domain.RunRecord) error {
	return c.ch.Insert(ctx, Table, [][]any{row(r)})
}

func row(r domain.RunRecord) []any {
	return []any{
		r.RunID,
		r.TranscriptID,
		r.Mode,
		r.DryRun,
		int64(r.TotalUnits),
		int64(r.Assigned),
		int64(r.UniqueSpeakers),
		r.AvgConfidence,
		r.Tier,
		int64(r.Committed),
		r.DurationMS,
		r.StartedAt.UTC(),
	}
}
