package store

import (
	"context"
	"errors"
	"time"

	perr "speakertag/internal/platform/errors"
	"speakertag/internal/platform/store/pg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxQuerier is the statement surface shared by *pgxpool.Pool and pgx.Tx
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// sqlQuerier adapts a pgxQuerier to RowQuerier
type sqlQuerier struct{ db pgxQuerier }

func (q sqlQuerier) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	ct, err := q.db.Exec(ctx, sql, args...)
	return ct, err
}

func (q sqlQuerier) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	rs, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return rows{rs}, nil
}

func (q sqlQuerier) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return q.db.QueryRow(ctx, sql, args...)
}

// pgAdapter is the pool backed TxRunner
type pgAdapter struct {
	sqlQuerier
	p *pg.PG

	// retries bounds how often Tx reruns fn after a serialization failure or deadlock
	retries int
	backoff time.Duration
}

func newPGAdapter(p *pg.PG) *pgAdapter {
	return &pgAdapter{sqlQuerier: sqlQuerier{db: p.Pool}, p: p, retries: 3, backoff: 50 * time.Millisecond}
}

func (a *pgAdapter) Ping(ctx context.Context) error {
	if a == nil || a.p == nil {
		return errors.New("pg: nil adapter")
	}
	return a.p.Pool.Ping(ctx)
}

func (a *pgAdapter) Close() error { a.p.Close(); return nil }

// Tx runs fn in a transaction, committing when fn returns nil. Retryable
// conflicts rerun fn from the start, so fn must not keep state across calls
func (a *pgAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	return retryTx(ctx, a.retries, a.backoff, func() error {
		return pgx.BeginFunc(ctx, a.p.Pool, func(tx pgx.Tx) error {
			return fn(sqlQuerier{db: tx})
		})
	})
}

func retryTx(ctx context.Context, retries int, backoff time.Duration, run func() error) error {
	for attempt := 0; ; attempt++ {
		err := run()
		if err == nil || attempt >= retries || !perr.IsRetryable(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(backoff << attempt):
		}
	}
}

type rows struct{ r pgx.Rows }

func (x rows) Next() bool            { return x.r.Next() }
func (x rows) Scan(dst ...any) error { return x.r.Scan(dst...) }
func (x rows) Err() error            { return x.r.Err() }
func (x rows) Close()                { x.r.Close() }
func (x rows) Columns() []string {
	f := x.r.FieldDescriptions()
	out := make([]string, len(f))
	for i := range f {
		out[i] = f[i].Name
	}
	return out
}
