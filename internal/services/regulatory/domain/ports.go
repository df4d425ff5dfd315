// Package domain holds the regulatory pipeline ports and their value types
package domain

import (
	"context"

	"sentinel/internal/core/aml"
	"sentinel/internal/core/events"
)

// Searcher runs one free text query against a web search provider
type Searcher interface {
	Search(ctx context.Context, q SearchQuery) ([]SearchResult, error)
}

// URLExtractor turns a batch of urls into text
type URLExtractor interface {
	Extract(ctx context.Context, urls []string) ([]Extracted, error)
}

// Portal is a regulator portal with a session bootstrapped listing and detail pages
type Portal interface {
	Open(ctx context.Context) (PortalSession, error)
	Detail(ctx context.Context, url string) (PortalDetail, error)
	MaxPages() int
}

// PortalSession posts listing searches inside one bootstrapped session
type PortalSession interface {
	Search(ctx context.Context, l PortalListing) (items []PortalItem, more bool, err error)
}

// PDFParser fetches a pdf and returns its text
type PDFParser interface {
	Parse(ctx context.Context, url string) (string, error)
}

// DocumentStore persists documents, their chunks and rule versions
type DocumentStore interface {
	UpsertDocument(ctx context.Context, d DocumentWrite) (string, error)
	InsertChunks(ctx context.Context, documentID string, cs []ChunkWrite) error
	InsertRuleVersion(ctx context.Context, v RuleVersionWrite) (string, error)
}

// OrchestratorPort runs one regulatory pass; failures are reported through
// snippets and events, never returned
type OrchestratorPort interface {
	Run(ctx context.Context, em events.Emitter, req Request) Result
}

// Request is the input of one orchestrator pass
type Request struct {
	Regulators []string            `json:"regulators,omitempty"`
	State      aml.RegulatoryState `json:"state"`
}

// Result is what one orchestrator pass produced
type Result struct {
	Regulators []string            `json:"regulators"`
	State      aml.RegulatoryState `json:"state"`
	Delta      aml.Delta           `json:"delta"`
}
