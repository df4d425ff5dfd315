// Package repo persists run log rows to postgres and archives them to clickhouse
package repo

import (
	"context"

	"sentinel/internal/modkit/repokit"
	perr "sentinel/internal/platform/errors"
	"sentinel/internal/platform/store"
	"sentinel/internal/services/runlog/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[domain.WriterPort] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) domain.WriterPort { return &pg{q: q} }

// Append implements domain.WriterPort
func (s *pg) Append(ctx context.Context, r domain.Row) error {
	const sql = `
INSERT INTO run_events (run_id, graph, node, type, ts, data)
VALUES ($1, $2, $3, $4, $5, $6::jsonb)`
	var data any
	if len(r.Data) > 0 {
		data = string(r.Data)
	}
	if _, err := s.q.Exec(ctx, sql, r.RunID, r.Graph, r.Node, r.Type, r.TS, data); err != nil {
		return perr.FromPostgresf(err, "append run event %s/%s", r.RunID, r.Type)
	}
	return nil
}

// ArchiveTable is the clickhouse table events are archived to
const ArchiveTable = "sentinel_events"

// Archive writes run log rows to clickhouse, one row per event
type Archive struct {
	ch store.Clickhouse
}

// NewArchive wraps a clickhouse seam
func NewArchive(ch store.Clickhouse) *Archive { return &Archive{ch: ch} }

// Append implements domain.WriterPort
func (a *Archive) Append(ctx context.Context, r domain.Row) error {
	if a == nil || a.ch == nil {
		return perr.NotConfiguredf("clickhouse archive not configured")
	}
	data := string(r.Data)
	if data == "" {
		data = "{}"
	}
	row := []any{r.RunID, r.Graph, r.Node, r.Type, r.TS, data}
	if err := a.ch.Insert(ctx, ArchiveTable, [][]any{row}); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeDB, "archive run event %s", r.RunID)
	}
	return nil
}
