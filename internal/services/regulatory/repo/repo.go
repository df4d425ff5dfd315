// Package repo provides postgres persistence for regulatory documents, chunks and rule versions
package repo

import (
	"context"

	"sentinel/internal/modkit/repokit"
	perr "sentinel/internal/platform/errors"
	"sentinel/internal/platform/store"
	"sentinel/internal/services/regulatory/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage is the regulatory persistence surface
type Storage interface {
	UpsertDocument(ctx context.Context, d domain.DocumentWrite) (string, error)
	InsertChunks(ctx context.Context, documentID string, cs []domain.ChunkWrite) error
	InsertRuleVersion(ctx context.Context, v domain.RuleVersionWrite) (string, error)
}

// UpsertDocument inserts or refreshes a document keyed by url and returns its id
func (s *pg) UpsertDocument(ctx context.Context, d domain.DocumentWrite) (string, error) {
	const sql = `
INSERT INTO regulatory_documents (url, regulator, title, content_type, content, content_hash)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (url) DO UPDATE SET
	regulator = EXCLUDED.regulator,
	title = EXCLUDED.title,
	content_type = EXCLUDED.content_type,
	content = EXCLUDED.content,
	content_hash = EXCLUDED.content_hash,
	updated_at = now()
RETURNING id::text`
	id, err := store.Scalar[string](ctx, s.q, sql, d.URL, d.Regulator, d.Title, d.ContentType, d.Content, d.ContentHash)
	if err != nil {
		return "", perr.FromPostgresf(err, "upsert document %s", d.URL)
	}
	return id, nil
}

// InsertChunks writes chunks for a document; a rerun with the same hash is a no-op
func (s *pg) InsertChunks(ctx context.Context, documentID string, cs []domain.ChunkWrite) error {
	if len(cs) == 0 {
		return nil
	}
	args := make([]any, 0, len(cs)*5)
	for _, c := range cs {
		args = append(args, documentID, c.Ordinal, c.Content, c.SourceURL, c.ContentHash)
	}
	sql := `INSERT INTO document_chunks (document_id, ordinal, content, source_url, content_hash) VALUES ` +
		store.Values(len(cs), 5, "::uuid") +
		` ON CONFLICT (document_id, content_hash, ordinal) DO NOTHING`
	if _, err := s.q.Exec(ctx, sql, args...); err != nil {
		return perr.FromPostgresf(err, "insert %d chunks for %s", len(cs), documentID)
	}
	return nil
}

// InsertRuleVersion appends an immutable rule version and returns its id
// the same rule with the same content hash resolves to the existing row
func (s *pg) InsertRuleVersion(ctx context.Context, v domain.RuleVersionWrite) (string, error) {
	const sql = `
INSERT INTO rule_versions (rule_id, document_id, regulator, status, content_hash, payload)
VALUES ($1, $2::uuid, $3, $4, $5, $6::jsonb)
ON CONFLICT (rule_id, content_hash) DO UPDATE SET rule_id = EXCLUDED.rule_id
RETURNING id::text`
	id, err := store.Scalar[string](ctx, s.q, sql, v.RuleID, v.DocumentID, v.Regulator, v.Status, v.ContentHash, string(v.Payload))
	if err != nil {
		return "", perr.FromPostgresf(err, "insert rule version %s", v.RuleID)
	}
	return id, nil
}

// Store adapts a TxRunner to domain.DocumentStore
// every write runs in its own transaction tagged with the run id from ctx
type Store struct {
	db     repokit.TxRunner
	binder repokit.Binder[Storage]
}

// NewStore constructs a Store; it panics on a nil runner like the other services
func NewStore(db repokit.TxRunner, b repokit.Binder[Storage]) *Store {
	if db == nil {
		panic("regulatory.Store requires a non nil TxRunner")
	}
	if b == nil {
		b = NewPG()
	}
	return &Store{db: db, binder: b}
}

func runID(ctx context.Context) string {
	id, _ := store.RunID(ctx)
	return id
}

// UpsertDocument implements domain.DocumentStore
func (s *Store) UpsertDocument(ctx context.Context, d domain.DocumentWrite) (id string, err error) {
	err = store.RunInTx(ctx, s.db, runID(ctx), func(ctx context.Context, q store.RowQuerier) error {
		id, err = s.binder.Bind(q).UpsertDocument(ctx, d)
		return err
	})
	return id, err
}

// InsertChunks implements domain.DocumentStore
func (s *Store) InsertChunks(ctx context.Context, documentID string, cs []domain.ChunkWrite) error {
	return store.RunInTx(ctx, s.db, runID(ctx), func(ctx context.Context, q store.RowQuerier) error {
		return s.binder.Bind(q).InsertChunks(ctx, documentID, cs)
	})
}

// InsertRuleVersion implements domain.DocumentStore
func (s *Store) InsertRuleVersion(ctx context.Context, v domain.RuleVersionWrite) (id string, err error) {
	err = store.RunInTx(ctx, s.db, runID(ctx), func(ctx context.Context, q store.RowQuerier) error {
		id, err = s.binder.Bind(q).InsertRuleVersion(ctx, v)
		return err
	})
	return id, err
}
