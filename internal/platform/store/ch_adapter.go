package store

import (
	"context"
	"fmt"

	"speakertag/internal/platform/store/ch"
)

// chAdapter narrows *ch.CH to the Clickhouse seam
type chAdapter struct{ *ch.CH }

var _ Clickhouse = chAdapter{}

func newCHAdapter(c *ch.CH) Clickhouse { return chAdapter{c} }

// Insert takes one row as []any or a batch as [][]any
func (a chAdapter) Insert(ctx context.Context, table string, data any) error {
	switch rows := data.(type) {
	case [][]any:
		return a.CH.Insert(ctx, table, rows)
	case []any:
		return a.CH.Insert(ctx, table, [][]any{rows})
	default:
		return fmt.Errorf("store: clickhouse insert into %s: want [][]any, got %T", table, data)
	}
}

func (a chAdapter) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	r, err := a.CH.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return chRows{r}, nil
}

type chRows struct{ ch.Rows }

func (r chRows) Close() { _ = r.Rows.Close() }
