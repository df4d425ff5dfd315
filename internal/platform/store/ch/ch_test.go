package ch

import (
	"context"
	"errors"
	"testing"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/stretchr/testify/assert"
)

type fakeBatch struct {
	driver.Batch
	rows    [][]any
	sent    bool
	aborted bool
	failAt  int
}

func (b *fakeBatch) Append(v ...any) error {
	if b.failAt > 0 && len(b.rows)+1 == b.failAt {
		return errors.New("bad column")
	}
	b.rows = append(b.rows, v)
	return nil
}
func (b *fakeBatch) Abort() error { b.aborted = true; return nil }
func (b *fakeBatch) Send() error  { b.sent = true; return nil }

type fakeRows struct {
	driver.Rows
	n int
}

func (r *fakeRows) Next() bool { r.n--; return r.n >= 0 }
func (r *fakeRows) Scan(dest ...any) error {
	*(dest[0].(*int32)) = 1
	return nil
}
func (r *fakeRows) Err() error        { return nil }
func (r *fakeRows) Close() error      { return nil }
func (r *fakeRows) Columns() []string { return []string{"one"} }

type fakeConn struct {
	batch   *fakeBatch
	query   string
	pingErr error
	closed  bool
}

func (c *fakeConn) PrepareBatch(_ context.Context, q string, _ ...driver.PrepareBatchOption) (driver.Batch, error) {
	c.query = q
	return c.batch, nil
}
func (c *fakeConn) Query(_ context.Context, q string, _ ...any) (driver.Rows, error) {
	c.query = q
	return &fakeRows{n: 1}, nil
}
func (c *fakeConn) Ping(context.Context) error { return c.pingErr }
func (c *fakeConn) Close() error               { c.closed = true; return nil }

// TestOpen_RejectsEmptyURL fails before dialing
func TestOpen_RejectsEmptyURL(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), Config{}); err == nil {
		t.Fatalf("Open expected error for empty url")
	}
}

// TestInsert_BatchesAndSends appends every row then sends once
func TestInsert_BatchesAndSends(t *testing.T) {
	t.Parallel()

	fc := &fakeConn{batch: &fakeBatch{}}
	c := New(fc)
	err := c.Insert(context.Background(), "sentinel_events", [][]any{{"a", 1}, {"b", 2}})
	if err != nil {
		t.Fatalf("Insert err=%v", err)
	}
	if fc.query != "INSERT INTO sentinel_events" {
		t.Fatalf("query=%q", fc.query)
	}
	if len(fc.batch.rows) != 2 || !fc.batch.sent {
		t.Fatalf("rows=%d sent=%v", len(fc.batch.rows), fc.batch.sent)
	}
}

// TestInsert_AbortsOnAppendError does not send a partial batch
func TestInsert_AbortsOnAppendError(t *testing.T) {
	t.Parallel()

	fc := &fakeConn{batch: &fakeBatch{failAt: 2}}
	err := New(fc).Insert(context.Background(), "t", [][]any{{1}, {2}, {3}})
	if err == nil {
		t.Fatalf("Insert expected error")
	}
	if !fc.batch.aborted || fc.batch.sent {
		t.Fatalf("aborted=%v sent=%v", fc.batch.aborted, fc.batch.sent)
	}
}

// TestInsert_EmptyIsNoop never prepares a batch
func TestInsert_EmptyIsNoop(t *testing.T) {
	t.Parallel()

	fc := &fakeConn{}
	if err := New(fc).Insert(context.Background(), "t", nil); err != nil {
		t.Fatalf("Insert err=%v", err)
	}
	if fc.query != "" {
		t.Fatalf("unexpected prepare %q", fc.query)
	}
}

// TestQuery_PassesThrough returns driver rows
func TestQuery_PassesThrough(t *testing.T) {
	t.Parallel()

	rows, err := New(&fakeConn{}).Query(context.Background(), "SELECT toInt32(1)")
	if err != nil {
		t.Fatalf("Query err=%v", err)
	}
	defer rows.Close()
	if !rows.Next() {
		t.Fatalf("expected one row")
	}
	var one int32
	if err := rows.Scan(&one); err != nil || one != 1 {
		t.Fatalf("Scan one=%d err=%v", one, err)
	}
}

// TestNilClient reports not connected
func TestNilClient(t *testing.T) {
	t.Parallel()

	var c *CH
	if err := c.Ping(context.Background()); err == nil {
		t.Fatalf("Ping expected error")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close err=%v", err)
	}
}

func TestBuildClientInfo(t *testing.T) {
	info := BuildClientInfo("api", "")
	names := make([]string, 0, len(info.Products))
	for _, p := range info.Products {
		names = append(names, p.Name)
	}
	assert.Contains(t, names, "sentinel")
	assert.Contains(t, names, "role")
	assert.NotContains(t, names, "tag", "blank products are left out")
}
