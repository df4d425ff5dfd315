// Package aml holds the Sentinel data model shared by the scorer, the regulatory
// sub-pipeline and the runner. Values are passed by copy and merged, never mutated
// in place across stage boundaries
package aml

import "time"

// MaxSnippets caps the narration kept on a run
const MaxSnippets = 50

// Transaction is a single financial transaction under evaluation
type Transaction struct {
	ID         string         `json:"id"`
	Amount     float64        `json:"amount"`
	Currency   string         `json:"currency"`
	CustomerID string         `json:"customer_id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// RuleHit is one catalog rule the scorer judged as triggered
type RuleHit struct {
	RuleID    string  `json:"rule_id"`
	Rationale string  `json:"rationale"`
	Weight    float64 `json:"weight"`
}

// ContentType classifies extracted document text
type ContentType string

// content types
const (
	ContentHTML    ContentType = "html"
	ContentPDF     ContentType = "pdf"
	ContentUnknown ContentType = "unknown"
)

// Source tells where a candidate was discovered
type Source string

// candidate sources
const (
	SourcePortal Source = "portal"
	SourceSearch Source = "search"
)

// Candidate is a discovered, not yet fetched, regulatory source url
type Candidate struct {
	URL         string            `json:"url"`
	Title       string            `json:"title"`
	Summary     string            `json:"summary,omitempty"`
	PublishedAt string            `json:"published_at,omitempty"`
	Regulator   string            `json:"regulator"`
	Source      Source            `json:"source"`
	Listing     map[string]string `json:"listing,omitempty"`
}

// Document is the extracted text of a candidate or of a pdf it links to
type Document struct {
	URL         string      `json:"url"`
	SourceURL   string      `json:"source_url,omitempty"`
	Title       string      `json:"title,omitempty"`
	Content     string      `json:"content"`
	ContentType ContentType `json:"content_type"`
	ExtractedAt time.Time   `json:"extracted_at"`
	Regulator   string      `json:"regulator"`
	DocumentID  string      `json:"document_id,omitempty"`
}

// ProposalStatus is the review lifecycle of a rule proposal
type ProposalStatus string

// proposal statuses
const (
	StatusDraft           ProposalStatus = "draft"
	StatusPendingApproval ProposalStatus = "pending_approval"
	StatusApproved        ProposalStatus = "approved"
	StatusRejected        ProposalStatus = "rejected"
)

// Diff carries change detection data for a proposal
type Diff struct {
	ContentHash string `json:"content_hash"`
}

// Proposal is a draft compliance rule derived from one regulatory document
type Proposal struct {
	ID            string         `json:"id"`
	Regulator     string         `json:"regulator"`
	DocumentURL   string         `json:"document_url"`
	Status        ProposalStatus `json:"status"`
	Summary       string         `json:"summary"`
	Criteria      []string       `json:"criteria"`
	EffectiveDate string         `json:"effective_date,omitempty"`
	Diff          Diff           `json:"diff"`
	RuleVersionID string         `json:"rule_version_id,omitempty"`
	DocumentID    string         `json:"document_id,omitempty"`
}

// Versioned reports whether the proposal has been persisted as a rule version
func (p Proposal) Versioned() bool { return p.RuleVersionID != "" }

// VersionRecord is an append only ledger entry written by the versioner
type VersionRecord struct {
	RuleVersionID string         `json:"rule_version_id"`
	RuleID        string         `json:"rule_id"`
	DocumentID    string         `json:"document_id"`
	Status        ProposalStatus `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Level grades a snippet
type Level string

// snippet levels
const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Snippet is a short human readable narration of pipeline progress
type Snippet struct {
	RuleID    string `json:"rule_id,omitempty"`
	Text      string `json:"text"`
	SourceURL string `json:"source_url,omitempty"`
	Level     Level  `json:"level"`
}

// Severity grades an alert
type Severity string

// alert severities
const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// AlertPayload is the json body of an alert
type AlertPayload struct {
	TransactionID string    `json:"transaction_id"`
	Score         float64   `json:"score"`
	RuleHits      []RuleHit `json:"rule_hits"`
	Snippets      []Snippet `json:"snippets"`
}

// Alert is built once per run from the final state
type Alert struct {
	ID       string       `json:"id"`
	Severity Severity     `json:"severity"`
	Payload  AlertPayload `json:"payload"`
}

// RegulatoryState is the accumulated output of the regulatory sub-pipeline
type RegulatoryState struct {
	Candidates []Candidate     `json:"candidates"`
	Documents  []Document      `json:"documents"`
	Proposals  []Proposal      `json:"proposals"`
	Versions   []VersionRecord `json:"versions"`
	Snippets   []Snippet       `json:"snippets"`
	Cursor     string          `json:"cursor,omitempty"`
}

// SentinelState is the record a run accumulates stage by stage
type SentinelState struct {
	TransactionID string          `json:"transaction_id"`
	Transaction   *Transaction    `json:"transaction,omitempty"`
	RuleHits      []RuleHit       `json:"rule_hits"`
	Score         float64         `json:"score"`
	Regulatory    RegulatoryState `json:"regulatory"`
	Alert         *Alert          `json:"alert,omitempty"`
}
