package service

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"sentinel/internal/core/aml"
	"sentinel/internal/core/events"
	"sentinel/internal/core/regtext"
	"sentinel/internal/core/regulators"
	"sentinel/internal/platform/logger"
	"sentinel/internal/services/regulatory/domain"
)

// Extractor fetches full text for pending candidates
type Extractor struct {
	URLs    domain.URLExtractor
	PDF     domain.PDFParser
	Portals map[string]domain.Portal
	Cfg     Config
}

// NewExtractor constructs an extractor
func NewExtractor(urls domain.URLExtractor, pdf domain.PDFParser, portals map[string]domain.Portal, cfg Config) *Extractor {
	return &Extractor{URLs: urls, PDF: pdf, Portals: portals, Cfg: cfg.norm()}
}

type pdfRef struct {
	url       string
	sourceURL string
	title     string
	regulator string
}

type detailResult struct {
	detail domain.PortalDetail
	err    error
	done   bool
}

// Extract turns pending candidates into documents
// it returns the update and the documents that are new or whose text changed
func (e *Extractor) Extract(ctx context.Context, em events.Emitter, cfgs regulators.Set, pending []aml.Candidate, existing []aml.Document) (aml.RegulatoryState, []aml.Document) {
	if len(pending) == 0 {
		return aml.RegulatoryState{}, nil
	}
	log := logger.C(ctx).With().Str("component", "extractor").Logger()
	now := e.Cfg.Now()

	var (
		snippets []aml.Snippet
		docs     []aml.Document
		enriched []aml.Candidate
	)
	warn := func(src, text string) {
		snippets = append(snippets, aml.Snippet{Text: text, SourceURL: src, Level: aml.LevelWarning})
	}

	// portal detail pages, fanned out, results kept in discovery order
	details := e.fetchDetails(ctx, em, cfgs, pending)

	var pdfs []pdfRef
	seenPDF := map[string]struct{}{}
	for i, c := range pending {
		d := details[i]
		if !d.done {
			continue
		}
		if d.err != nil {
			log.Warn().Err(d.err).Str("url", c.URL).Msg("detail fetch failed")
			em.Error(ctx, NodeExtract, d.err)
			warn(c.URL, fmt.Sprintf("detail page failed: %v", d.err))
			continue
		}
		if (c.Title == "" && d.detail.Title != "") || (c.PublishedAt == "" && d.detail.PublishedAt != "") {
			up := c
			if up.Title == "" {
				up.Title = d.detail.Title
			}
			if up.PublishedAt == "" {
				up.PublishedAt = d.detail.PublishedAt
			}
			enriched = append(enriched, up)
		}
		for _, link := range d.detail.PDFLinks {
			if _, dup := seenPDF[link]; dup {
				continue
			}
			seenPDF[link] = struct{}{}
			title := d.detail.Title
			if title == "" {
				title = c.Title
			}
			pdfs = append(pdfs, pdfRef{url: link, sourceURL: c.URL, title: title, regulator: c.Regulator})
		}
	}

	// pdfs, one at a time
	resolved := map[string]struct{}{}
	for _, ref := range pdfs {
		if ctx.Err() != nil {
			break
		}
		if e.PDF == nil {
			warn(ref.url, "pdf parser is not configured")
			continue
		}
		em.ToolCall(ctx, NodeExtract, "pdf", map[string]any{"url": ref.url})
		text, err := e.PDF.Parse(ctx, ref.url)
		if err != nil {
			log.Warn().Err(err).Str("url", ref.url).Msg("pdf parse failed")
			em.Error(ctx, NodeExtract, err)
			warn(ref.url, fmt.Sprintf("pdf skipped: %v", err))
			continue
		}
		text = regtext.Clean(text)
		if strings.TrimSpace(text) == "" {
			warn(ref.url, "pdf had no text")
			continue
		}
		docs = append(docs, aml.Document{
			URL:         ref.url,
			SourceURL:   ref.sourceURL,
			Title:       ref.title,
			Content:     text,
			ContentType: aml.ContentPDF,
			ExtractedAt: now,
			Regulator:   ref.regulator,
		})
		resolved[ref.sourceURL] = struct{}{}
	}

	// everything not resolved through a pdf goes to the url extractor in one batch
	var batch []aml.Candidate
	for _, c := range pending {
		if _, ok := resolved[c.URL]; ok {
			continue
		}
		batch = append(batch, c)
	}
	if len(batch) > e.Cfg.ExtractMaxURLs {
		warn("", fmt.Sprintf("%d candidates deferred past the %d url extraction cap", len(batch)-e.Cfg.ExtractMaxURLs, e.Cfg.ExtractMaxURLs))
		batch = batch[:e.Cfg.ExtractMaxURLs]
	}
	if len(batch) > 0 && ctx.Err() == nil {
		docs = append(docs, e.extractBatch(ctx, em, batch, now, warn)...)
	}

	attempted := len(pdfs) + len(batch)
	docs = aml.Dedup(docs, aml.DocumentKey)
	fresh := changed(existing, docs)
	snippets = append(snippets, aml.Snippet{
		Text:  fmt.Sprintf("extracted %d of %d", len(docs), attempted),
		Level: aml.LevelInfo,
	})
	log.Info().Int("pending", len(pending)).Int("attempted", attempted).Int("extracted", len(docs)).Int("new", len(fresh)).Msg("extract done")

	return aml.RegulatoryState{Candidates: enriched, Documents: docs, Snippets: snippets}, fresh
}

// fetchDetails fetches portal detail pages with bounded concurrency and waits for all
// the result slice is index aligned with pending; non portal entries stay not done
func (e *Extractor) fetchDetails(ctx context.Context, em events.Emitter, cfgs regulators.Set, pending []aml.Candidate) []detailResult {
	out := make([]detailResult, len(pending))
	portalOf := make(map[string]domain.Portal, len(cfgs))
	for _, c := range cfgs {
		if p, ok := e.Portals[c.Portal]; ok && c.HasPortal() {
			portalOf[c.Code] = p
		}
	}

	sem := make(chan struct{}, e.Cfg.DetailConcurrency)
	var wg sync.WaitGroup
	for i, c := range pending {
		if c.Source != aml.SourcePortal {
			continue
		}
		p, ok := portalOf[c.Regulator]
		if !ok || p == nil {
			continue
		}
		em.ToolCall(ctx, NodeExtract, "portal.detail", map[string]any{"url": c.URL})

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			out[i] = detailResult{err: ctx.Err(), done: true}
			continue
		}
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			defer func() { <-sem }()
			d, err := p.Detail(ctx, u)
			out[i] = detailResult{detail: d, err: err, done: true}
		}(i, c.URL)
	}
	wg.Wait()
	return out
}

// extractBatch sends one capped batch to the url extractor
func (e *Extractor) extractBatch(ctx context.Context, em events.Emitter, batch []aml.Candidate, now time.Time, warn func(src, text string)) []aml.Document {
	if e.URLs == nil {
		warn("", "url extraction is not configured")
		return nil
	}
	byURL := make(map[string]aml.Candidate, len(batch))
	urls := make([]string, 0, len(batch))
	for _, c := range batch {
		byURL[strings.TrimRight(c.URL, "/")] = c
		urls = append(urls, c.URL)
	}
	em.ToolCall(ctx, NodeExtract, "extract", map[string]any{"urls": len(urls)})
	res, err := e.URLs.Extract(ctx, urls)
	if err != nil {
		logger.C(ctx).Warn().Err(err).Int("urls", len(urls)).Msg("url extraction failed")
		em.Error(ctx, NodeExtract, err)
		warn("", fmt.Sprintf("url extraction failed: %v", err))
		return nil
	}

	var out []aml.Document
	for _, r := range res {
		text := regtext.Clean(r.Content)
		if strings.TrimSpace(text) == "" {
			continue
		}
		c, ok := byURL[strings.TrimRight(r.URL, "/")]
		if !ok {
			continue
		}
		title := r.Title
		if title == "" {
			title = c.Title
		}
		out = append(out, aml.Document{
			URL:         r.URL,
			SourceURL:   c.URL,
			Title:       title,
			Content:     text,
			ContentType: contentTypeOf(r.URL),
			ExtractedAt: now,
			Regulator:   c.Regulator,
		})
	}
	return out
}

// changed returns the docs whose url is unseen or whose text differs from existing
// an unchanged doc is replaced in place by its existing record, keeping its DocumentID and ExtractedAt
func changed(existing, docs []aml.Document) []aml.Document {
	prev := make(map[string]aml.Document, len(existing))
	for _, d := range existing {
		prev[d.URL] = d
	}
	var out []aml.Document
	for i, d := range docs {
		if p, ok := prev[d.URL]; ok && regtext.ContentHash(p.Content) == regtext.ContentHash(d.Content) {
			docs[i] = p
			continue
		}
		out = append(out, d)
	}
	return out
}

// contentTypeOf infers a document type from its url
func contentTypeOf(raw string) aml.ContentType {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return aml.ContentUnknown
	}
	if strings.EqualFold(path.Ext(u.Path), ".pdf") {
		return aml.ContentPDF
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return aml.ContentHTML
	}
	return aml.ContentUnknown
}
