package firebird

import (
	"context"

	"github.com/syssam/velox-firebird/dialect"
	"github.com/syssam/velox-firebird/dialect/sql"
)

type rowCountKey struct{}

// WithRowCount returns a context overriding the dialect's row count setting
// for the statements executed with it.
func WithRowCount(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, rowCountKey{}, enabled)
}

// RowCountFromContext returns the row count override of ctx, if any.
func RowCountFromContext(ctx context.Context) (enabled, ok bool) {
	enabled, ok = ctx.Value(rowCountKey{}).(bool)
	return enabled, ok
}

// rowCount reports whether statements executed with ctx report row counts.
func (d *Dialect) rowCount(ctx context.Context) bool {
	if enabled, ok := RowCountFromContext(ctx); ok {
		return enabled
	}
	return d.opts.EnableRowCount
}

// noRowCount hides the affected row count of a result.
type noRowCount struct {
	sql.Result
}

// RowsAffected always reports -1.
func (noRowCount) RowsAffected() (int64, error) { return -1, nil }

func execRowCount(ctx context.Context, ex dialect.ExecQuerier, d *Dialect, query string, args, v any) error {
	res, ok := v.(*sql.Result)
	if !ok {
		return ex.Exec(ctx, query, args, v)
	}
	if err := ex.Exec(ctx, query, args, res); err != nil {
		return err
	}
	if !d.rowCount(ctx) {
		*res = noRowCount{*res}
	}
	return nil
}
