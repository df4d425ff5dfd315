// Package search is a client for a Tavily style web search and url extraction api
package search

import (
	"context"
	"net/http"
	"strings"
	"time"

	"sentinel/internal/adapters/web"
	"sentinel/internal/core/aml"
	perr "sentinel/internal/platform/errors"
)

const (
	baseURLDefault    = "https://api.tavily.com"
	defaultMaxResults = 5
	defaultMaxURLs    = 20
)

// ErrNotConfigured is returned when no api key was provided
var ErrNotConfigured = aml.ErrSearchNotConfigured

// Options configures the Client
type Options struct {
	BaseURL    string
	APIKey     string
	MaxResults int
	MaxURLs    int
	Timeout    time.Duration
}

// Client talks to the search and extract endpoints
type Client struct {
	web  *web.Client
	opts Options
}

// New creates a new Client with sane defaults
func New(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.MaxResults <= 0 {
		o.MaxResults = defaultMaxResults
	}
	if o.MaxURLs <= 0 {
		o.MaxURLs = defaultMaxURLs
	}
	return &Client{web: web.NewClient(web.Options{Timeout: o.Timeout}), opts: o}
}

// Configured reports whether the client holds a credential
func (c *Client) Configured() bool { return c != nil && strings.TrimSpace(c.opts.APIKey) != "" }

// Query is one search request
type Query struct {
	Text           string
	IncludeDomains []string
	ExcludeDomains []string
	StartDate      string // YYYY-MM-DD
	EndDate        string
	MaxResults     int
}

// Result is one search hit
type Result struct {
	URL           string `json:"url"`
	Title         string `json:"title"`
	Content       string `json:"content"`
	PublishedDate string `json:"published_date"`
}

type searchRequest struct {
	Query          string   `json:"query"`
	SearchDepth    string   `json:"search_depth"`
	Topic          string   `json:"topic"`
	IncludeDomains []string `json:"include_domains,omitempty"`
	ExcludeDomains []string `json:"exclude_domains,omitempty"`
	StartDate      string   `json:"start_date,omitempty"`
	EndDate        string   `json:"end_date,omitempty"`
	MaxResults     int      `json:"max_results"`
}

// Search runs one query
func (c *Client) Search(ctx context.Context, q Query) ([]Result, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(q.Text) == "" {
		return nil, perr.InvalidArgf("search query is empty")
	}
	limit := q.MaxResults
	if limit <= 0 || limit > c.opts.MaxResults {
		limit = c.opts.MaxResults
	}
	req := searchRequest{
		Query:          q.Text,
		SearchDepth:    "advanced",
		Topic:          "general",
		IncludeDomains: q.IncludeDomains,
		ExcludeDomains: q.ExcludeDomains,
		StartDate:      q.StartDate,
		EndDate:        q.EndDate,
		MaxResults:     limit,
	}
	var out struct {
		Results []Result `json:"results"`
	}
	if err := c.web.PostJSON(ctx, c.opts.BaseURL+"/search", req, &out, c.auth()); err != nil {
		return nil, perr.Wrapf(err, perr.CodeOf(err), "search %q", q.Text)
	}
	if len(out.Results) > limit {
		out.Results = out.Results[:limit]
	}
	return out.Results, nil
}

// Extracted is the text of one url
type Extracted struct {
	URL      string `json:"url"`
	Content  string `json:"raw_content"`
	Title    string `json:"title,omitempty"`
	Language string `json:"language,omitempty"`
}

// Extract fetches the text of up to MaxURLs urls in one call
func (c *Client) Extract(ctx context.Context, urls []string) ([]Extracted, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if len(urls) == 0 {
		return nil, nil
	}
	if len(urls) > c.opts.MaxURLs {
		urls = urls[:c.opts.MaxURLs]
	}
	var out struct {
		Results []Extracted `json:"results"`
	}
	body := map[string]any{"urls": urls, "extract_depth": "basic"}
	if err := c.web.PostJSON(ctx, c.opts.BaseURL+"/extract", body, &out, c.auth()); err != nil {
		return nil, perr.Wrapf(err, perr.CodeOf(err), "extract %d urls", len(urls))
	}
	return out.Results, nil
}

func (c *Client) auth() http.Header {
	return http.Header{"Authorization": {"Bearer " + c.opts.APIKey}}
}
