package module

import (
	"context"

	"sentinel/internal/adapters/portal"
	"sentinel/internal/adapters/search"
	"sentinel/internal/services/regulatory/domain"
)

// searchPorts adapts the search client to the Searcher and URLExtractor ports
type searchPorts struct{ c *search.Client }

func (s searchPorts) Search(ctx context.Context, q domain.SearchQuery) ([]domain.SearchResult, error) {
	rs, err := s.c.Search(ctx, search.Query{
		Text:           q.Text,
		IncludeDomains: q.IncludeDomains,
		StartDate:      q.StartDate,
		EndDate:        q.EndDate,
		MaxResults:     q.MaxResults,
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.SearchResult, 0, len(rs))
	for _, r := range rs {
		out = append(out, domain.SearchResult{
			URL:           r.URL,
			Title:         r.Title,
			Content:       r.Content,
			PublishedDate: portal.NormalizeDate(r.PublishedDate),
		})
	}
	return out, nil
}

func (s searchPorts) Extract(ctx context.Context, urls []string) ([]domain.Extracted, error) {
	rs, err := s.c.Extract(ctx, urls)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Extracted, 0, len(rs))
	for _, r := range rs {
		out = append(out, domain.Extracted{URL: r.URL, Title: r.Title, Content: r.Content, Language: r.Language})
	}
	return out, nil
}

// portalPort adapts a portal client to the Portal port
type portalPort struct{ c *portal.Client }

func (p portalPort) MaxPages() int { return p.c.MaxPages() }

func (p portalPort) Open(ctx context.Context) (domain.PortalSession, error) {
	s, err := p.c.Bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	return portalSession{c: p.c, s: s}, nil
}

func (p portalPort) Detail(ctx context.Context, url string) (domain.PortalDetail, error) {
	d, err := p.c.Detail(ctx, url)
	if err != nil {
		return domain.PortalDetail{}, err
	}
	return domain.PortalDetail{URL: d.URL, Title: d.Title, PublishedAt: d.PublishedAt, PDFLinks: d.PDFLinks}, nil
}

type portalSession struct {
	c *portal.Client
	s *portal.Session
}

func (ps portalSession) Search(ctx context.Context, l domain.PortalListing) ([]domain.PortalItem, bool, error) {
	items, more, err := ps.c.Search(ctx, ps.s, portal.Listing{Topic: l.Topic, ContentType: l.ContentType, Page: l.Page})
	if err != nil {
		return nil, false, err
	}
	out := make([]domain.PortalItem, 0, len(items))
	for _, it := range items {
		out = append(out, domain.PortalItem{
			URL:         it.URL,
			Title:       it.Title,
			Summary:     it.Summary,
			PublishedAt: it.PublishedAt,
			Listing:     it.Listing,
		})
	}
	return out, more, nil
}
