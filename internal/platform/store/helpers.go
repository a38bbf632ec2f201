package store

import (
	"context"
	"errors"

	perr "speakertag/internal/platform/errors"
)

var errManyRows = errors.New("store: query matched more than one row")

// Scalar scans the single column of the first row into T
func Scalar[T any](ctx context.Context, q RowQuerier, sql string, args ...any) (T, error) {
	var v T
	err := q.QueryRow(ctx, sql, args...).Scan(&v)
	return v, err
}

// each runs sql and hands every row to fn until fn fails
func each(ctx context.Context, q RowQuerier, sql string, args []any, fn func(Row) error) error {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// One scans the only row sql returns. No row is perr.ErrNotFound.
func One[T any](ctx context.Context, q RowQuerier, scan func(Row) (T, error), sql string, args ...any) (T, error) {
	var (
		out  T
		seen bool
	)
	err := each(ctx, q, sql, args, func(r Row) error {
		if seen {
			return errManyRows
		}
		seen = true
		var err error
		out, err = scan(r)
		return err
	})
	switch {
	case err != nil:
		var zero T
		return zero, err
	case !seen:
		return out, perr.ErrNotFound
	}
	return out, nil
}

// Many scans every row sql returns. No rows is a nil slice.
func Many[T any](ctx context.Context, q RowQuerier, scan func(Row) (T, error), sql string, args ...any) ([]T, error) {
	var out []T
	err := each(ctx, q, sql, args, func(r Row) error {
		item, err := scan(r)
		if err == nil {
			out = append(out, item)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
