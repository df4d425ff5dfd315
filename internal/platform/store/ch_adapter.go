package store

import (
	"context"
	"fmt"

	"sentinel/internal/platform/store/ch"
)

// chAdapter exposes *ch.CH through the Clickhouse seam
type chAdapter struct{ c *ch.CH }

var (
	_ Clickhouse = chAdapter{}
	_ Pinger     = chAdapter{}
)

func newCHAdapter(c *ch.CH) Clickhouse { return chAdapter{c: c} }

// Insert batches data into table; data must be row tuples ([][]any)
func (a chAdapter) Insert(ctx context.Context, table string, data any) error {
	rows, ok := data.([][]any)
	if !ok {
		return fmt.Errorf("store: clickhouse insert wants [][]any, got %T", data)
	}
	return a.c.Insert(ctx, table, rows)
}

func (a chAdapter) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	r, err := a.c.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return chRows{r}, nil
}

func (a chAdapter) Ping(ctx context.Context) error { return a.c.Ping(ctx) }

func (a chAdapter) Close() error { return a.c.Close() }

// chRows drops the error from Close so ch.Rows satisfies Rows
type chRows struct{ ch.Rows }

func (r chRows) Close() { _ = r.Rows.Close() }
