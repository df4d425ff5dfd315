package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perr "sentinel/internal/platform/errors"
)

// memRows iterates over in memory records; Scan copies by position
type memRows struct {
	data   [][]any
	i      int
	err    error
	closed bool
}

func (r *memRows) Next() bool {
	if r.i >= len(r.data) {
		return false
	}
	r.i++
	return true
}

func (r *memRows) Scan(dest ...any) error {
	rec := r.data[r.i-1]
	for k, d := range dest {
		switch p := d.(type) {
		case *string:
			s, ok := rec[k].(string)
			if !ok {
				return errors.New("not a string")
			}
			*p = s
		case *float64:
			*p = rec[k].(float64)
		}
	}
	return nil
}

func (r *memRows) Err() error        { return r.err }
func (r *memRows) Close()            { r.closed = true }
func (r *memRows) Columns() []string { return nil }

type valueRow struct {
	v   string
	err error
}

func (r valueRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*string)) = r.v
	return nil
}

type memQuerier struct {
	rows     *memRows
	queryErr error
	row      valueRow
	sql      string
}

func (m *memQuerier) Exec(context.Context, string, ...any) (CommandTag, error) { return nil, nil }

func (m *memQuerier) Query(_ context.Context, sql string, _ ...any) (Rows, error) {
	m.sql = sql
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.rows, nil
}

func (m *memQuerier) QueryRow(_ context.Context, sql string, _ ...any) Row {
	m.sql = sql
	return m.row
}

type tx struct {
	ID    string
	Score float64
}

func scanTx(r Row) (tx, error) {
	var t tx
	err := r.Scan(&t.ID, &t.Score)
	return t, err
}

func TestScalar(t *testing.T) {
	ctx := context.Background()
	id, err := Scalar[string](ctx, &memQuerier{row: valueRow{v: "doc-1"}}, "INSERT ... RETURNING id::text")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", id)

	_, err = Scalar[string](ctx, &memQuerier{row: valueRow{err: errors.New("unique violation")}}, "x")
	assert.EqualError(t, err, "unique violation")
}

func TestOne(t *testing.T) {
	ctx := context.Background()

	q := &memQuerier{rows: &memRows{data: [][]any{{"TX-1", 0.7}}}}
	got, err := One(ctx, q, scanTx, "SELECT id, score FROM alerts")
	require.NoError(t, err)
	assert.Equal(t, tx{ID: "TX-1", Score: 0.7}, got)
	assert.True(t, q.rows.closed)

	_, err = One(ctx, &memQuerier{rows: &memRows{}}, scanTx, "x")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeNotFound))

	_, err = One(ctx, &memQuerier{rows: &memRows{data: [][]any{{"a", 0.1}, {"b", 0.2}}}}, scanTx, "x")
	assert.ErrorContains(t, err, "expected 1 row")

	_, err = One(ctx, &memQuerier{rows: &memRows{err: errors.New("conn reset")}}, scanTx, "x")
	assert.EqualError(t, err, "conn reset")
}

func TestMany(t *testing.T) {
	ctx := context.Background()

	got, err := Many(ctx, &memQuerier{rows: &memRows{data: [][]any{{"a", 0.1}, {"b", 0.9}}}}, scanTx, "x")
	require.NoError(t, err)
	assert.Equal(t, []tx{{"a", 0.1}, {"b", 0.9}}, got)

	got, err = Many(ctx, &memQuerier{rows: &memRows{}}, scanTx, "x")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = Many(ctx, &memQuerier{rows: &memRows{data: [][]any{{1, 0.1}}}}, scanTx, "x")
	assert.EqualError(t, err, "not a string")

	_, err = Many(ctx, &memQuerier{queryErr: errors.New("down")}, scanTx, "x")
	assert.EqualError(t, err, "down")
}

func TestValues(t *testing.T) {
	assert.Equal(t, "($1,$2)", Values(1, 2))
	assert.Equal(t, "($1::uuid,$2,$3),($4::uuid,$5,$6)", Values(2, 3, "::uuid"))
	assert.Equal(t, "($1,$2::jsonb)", Values(1, 2, "", "::jsonb"))
	assert.Equal(t, "", Values(0, 3))
}
