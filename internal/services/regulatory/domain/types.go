package domain

import "encoding/json"

// SearchQuery is one scoped web search
type SearchQuery struct {
	Text           string
	IncludeDomains []string
	StartDate      string // YYYY-MM-DD
	EndDate        string
	MaxResults     int
}

// SearchResult is one web search hit
type SearchResult struct {
	URL           string
	Title         string
	Content       string
	PublishedDate string
}

// Extracted is the text a url extraction provider returned for one url
type Extracted struct {
	URL      string
	Title    string
	Content  string
	Language string
}

// PortalListing selects one page of a topic x content type slice
type PortalListing struct {
	Topic       string
	ContentType string
	Page        int
}

// PortalItem is one portal listing row
type PortalItem struct {
	URL         string
	Title       string
	Summary     string
	PublishedAt string
	Listing     map[string]string
}

// PortalDetail is what a portal publication page exposes
type PortalDetail struct {
	URL         string
	Title       string
	PublishedAt string
	PDFLinks    []string
}

// DocumentWrite upserts a document by url
type DocumentWrite struct {
	URL         string
	Regulator   string
	Title       string
	ContentType string
	Content     string
	ContentHash string
}

// ChunkWrite is one retrieval chunk of a persisted document
type ChunkWrite struct {
	Ordinal     int
	Content     string
	SourceURL   string
	ContentHash string
}

// RuleVersionWrite is an immutable rule version row
type RuleVersionWrite struct {
	RuleID      string
	DocumentID  string
	Regulator   string
	Status      string
	ContentHash string
	Payload     json.RawMessage
}
