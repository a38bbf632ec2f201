package pg

import (
	"context"
	"strings"
	"time"

	"speakertag/internal/platform/logger"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// TracerOptions selects what the query tracer logs
type TracerOptions struct {
	// All logs every statement at debug, regardless of the root level
	All bool
	// Slow logs statements at or above this duration at warn. Zero disables it
	Slow time.Duration
}

type traceKey struct{}

type traceStart struct {
	sql  string
	args []any
	at   time.Time
}

// Tracer is a pgx.QueryTracer that writes statements to a zerolog logger
type Tracer struct {
	log logger.Logger
	opt TracerOptions
	now func() time.Time
}

// NewTracer returns nil when opt logs nothing
func NewTracer(root logger.Logger, opt TracerOptions) *Tracer {
	if !opt.All && opt.Slow <= 0 {
		return nil
	}
	l := root.With().Str("component", "pg").Logger()
	if opt.All {
		l = l.Level(zerolog.DebugLevel)
	}
	return &Tracer{log: l, opt: opt, now: time.Now}
}

// TraceQueryStart implements pgx.QueryTracer
func (t *Tracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, traceKey{}, traceStart{sql: data.SQL, args: data.Args, at: t.now()})
}

// TraceQueryEnd implements pgx.QueryTracer
func (t *Tracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	st, ok := ctx.Value(traceKey{}).(traceStart)
	if !ok {
		return
	}
	elapsed := t.now().Sub(st.at)
	slow := t.opt.Slow > 0 && elapsed >= t.opt.Slow

	var evt *zerolog.Event
	switch {
	case slow:
		evt = t.log.Warn()
	case t.opt.All:
		evt = t.log.Debug()
	default:
		return
	}
	evt.Float64("elapsed_ms", float64(elapsed.Microseconds())/1000).
		Bool("slow", slow).
		Str("sql", compact(st.sql)).
		Int("args", len(st.args)).
		Int64("rows", data.CommandTag.RowsAffected()).
		Err(data.Err).
		Msg("pg query")
}

// compact folds whitespace runs so multi line statements fit one log line
func compact(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
