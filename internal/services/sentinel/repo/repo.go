// Package repo provides postgres persistence for transactions and alerts
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"sentinel/internal/core/aml"
	"sentinel/internal/modkit/repokit"
	perr "sentinel/internal/platform/errors"
	"sentinel/internal/platform/store"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// Storage is the sentinel persistence surface
type Storage interface {
	Transaction(ctx context.Context, id string) (aml.Transaction, error)
	List(ctx context.Context, limit int) ([]aml.Transaction, error)
	InsertAlert(ctx context.Context, runID string, a aml.Alert) error
}

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

const txColumns = `id, amount::float8, currency, customer_id, COALESCE(metadata, '{}'::jsonb)::text`

func scanTx(r store.Row) (aml.Transaction, error) {
	var (
		tx   aml.Transaction
		meta string
	)
	if err := r.Scan(&tx.ID, &tx.Amount, &tx.Currency, &tx.CustomerID, &meta); err != nil {
		return aml.Transaction{}, err
	}
	if meta != "" && meta != "{}" {
		dec := json.NewDecoder(strings.NewReader(meta))
		dec.UseNumber()
		if err := dec.Decode(&tx.Metadata); err != nil {
			return aml.Transaction{}, perr.Wrapf(err, perr.ErrorCodeJSON, "transaction %s metadata", tx.ID)
		}
	}
	return tx, nil
}

// Transaction loads one transaction by id
func (s *pg) Transaction(ctx context.Context, id string) (aml.Transaction, error) {
	tx, err := scanTx(s.q.QueryRow(ctx, `SELECT `+txColumns+` FROM transactions WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return aml.Transaction{}, perr.NotFoundf("transaction %s not found", id)
	}
	if err != nil && !perr.IsCode(err, perr.ErrorCodeJSON) {
		return aml.Transaction{}, perr.FromPostgresf(err, "load transaction %s", id)
	}
	return tx, err
}

// List returns up to limit transactions, oldest first
func (s *pg) List(ctx context.Context, limit int) ([]aml.Transaction, error) {
	if limit <= 0 {
		limit = 100
	}
	out, err := store.Many(ctx, s.q, scanTx, `SELECT `+txColumns+` FROM transactions ORDER BY created_at, id LIMIT $1`, limit)
	if err != nil && !perr.IsCode(err, perr.ErrorCodeJSON) {
		return nil, perr.FromPostgresf(err, "list transactions")
	}
	return out, err
}

// InsertAlert stores an alert; a rerun with the same id is a no-op
func (s *pg) InsertAlert(ctx context.Context, runID string, a aml.Alert) error {
	payload, err := json.Marshal(a.Payload)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "encode alert %s", a.ID)
	}
	const sql = `
INSERT INTO alerts (id, run_id, transaction_id, severity, score, payload)
VALUES ($1::uuid, $2, $3, $4, $5, $6::jsonb)
ON CONFLICT (id) DO NOTHING`
	if _, err := s.q.Exec(ctx, sql, a.ID, runID, a.Payload.TransactionID, string(a.Severity), a.Payload.Score, string(payload)); err != nil {
		return perr.FromPostgresf(err, "insert alert %s", a.ID)
	}
	return nil
}
