package repo

import (
	"context"

	"sentinel/internal/core/aml"
	"sentinel/internal/modkit/repokit"
	"sentinel/internal/platform/store"
)

// Store adapts a TxRunner to the transaction source and alert store ports
type Store struct {
	db     repokit.TxRunner
	binder repokit.Binder[Storage]
}

// NewStore constructs a Store; it panics on a nil runner
func NewStore(db repokit.TxRunner, b repokit.Binder[Storage]) *Store {
	if db == nil {
		panic("sentinel.Store requires a non nil TxRunner")
	}
	if b == nil {
		b = NewPG()
	}
	return &Store{db: db, binder: b}
}

// Transaction loads one transaction by id
func (s *Store) Transaction(ctx context.Context, id string) (aml.Transaction, error) {
	return repokit.MustBind(s.binder, s.db).Transaction(ctx, id)
}

// List returns up to limit transactions
func (s *Store) List(ctx context.Context, limit int) ([]aml.Transaction, error) {
	return repokit.MustBind(s.binder, s.db).List(ctx, limit)
}

// InsertAlert writes the alert inside a transaction tagged with the run id
func (s *Store) InsertAlert(ctx context.Context, runID string, a aml.Alert) error {
	return store.RunInTx(ctx, s.db, runID, func(ctx context.Context, q store.RowQuerier) error {
		return s.binder.Bind(q).InsertAlert(ctx, runID, a)
	})
}
