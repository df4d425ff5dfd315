package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sentinel/internal/core/aml"
	"sentinel/internal/core/events"
	"sentinel/internal/core/regtext"
	"sentinel/internal/core/regulators"
	"sentinel/internal/platform/logger"
	"sentinel/internal/services/regulatory/domain"
)

// Scanner discovers candidate urls per regulator through portals and web search
type Scanner struct {
	Search  domain.Searcher
	Portals map[string]domain.Portal
	Cfg     Config
}

// NewScanner constructs a scanner; portals are keyed by the config portal name
func NewScanner(search domain.Searcher, portals map[string]domain.Portal, cfg Config) *Scanner {
	return &Scanner{Search: search, Portals: portals, Cfg: cfg.norm()}
}

// Scan sweeps every config and returns the update plus the candidates not seen before
// the update carries every discovered candidate so rediscovered urls refresh
// and its cursor is always now
func (s *Scanner) Scan(ctx context.Context, em events.Emitter, cfgs regulators.Set, st aml.RegulatoryState) (aml.RegulatoryState, []aml.Candidate) {
	log := logger.C(ctx).With().Str("component", "scanner").Logger()
	now := s.Cfg.Now()

	var (
		found    []aml.Candidate
		snippets []aml.Snippet
		noSearch bool
	)
	warn := func(text string) {
		snippets = append(snippets, aml.Snippet{Text: text, Level: aml.LevelWarning})
	}

	for _, c := range cfgs {
		if err := ctx.Err(); err != nil {
			warn("scan cancelled: " + err.Error())
			break
		}

		if c.HasPortal() {
			if p, ok := s.Portals[c.Portal]; ok && p != nil {
				items, err := s.scanPortal(ctx, em, p, c, st.Cursor)
				found = append(found, items...)
				if err != nil {
					log.Warn().Err(err).Str("regulator", c.Code).Msg("portal scan failed")
					em.Error(ctx, NodeScan, err)
					warn(fmt.Sprintf("%s portal: %v", c.Code, err))
				}
			} else {
				warn(fmt.Sprintf("%s portal %q is not wired", c.Code, c.Portal))
			}
		}

		if noSearch {
			continue
		}
		items, err := s.scanSearch(ctx, em, c, st.Cursor, now)
		found = append(found, items...)
		if err != nil {
			if errors.Is(err, aml.ErrSearchNotConfigured) {
				noSearch = true
				em.Error(ctx, NodeScan, err)
				warn("web search is not configured; only portals were scanned")
				continue
			}
			log.Warn().Err(err).Str("regulator", c.Code).Msg("search failed")
			em.Error(ctx, NodeScan, err)
			warn(fmt.Sprintf("%s search: %v", c.Code, err))
		}
	}

	found = aml.Dedup(found, aml.CandidateKey)
	fresh := aml.Unseen(st.Candidates, found, aml.CandidateKey)
	snippets = append(snippets, aml.Snippet{
		Text:  fmt.Sprintf("scanned %d regulators: %d candidates, %d new", len(cfgs), len(found), len(fresh)),
		Level: aml.LevelInfo,
	})
	log.Info().Int("regulators", len(cfgs)).Int("found", len(found)).Int("new", len(fresh)).Msg("scan done")

	return aml.RegulatoryState{
		Candidates: found,
		Snippets:   snippets,
		Cursor:     now.Format(time.RFC3339),
	}, fresh
}

// scanPortal walks topic x content type listings, page by page, inside one session
// items already collected are returned alongside a failure
func (s *Scanner) scanPortal(ctx context.Context, em events.Emitter, p domain.Portal, c regulators.Config, cursor string) ([]aml.Candidate, error) {
	em.ToolCall(ctx, NodeScan, "portal.session", map[string]any{"regulator": c.Code, "portal": c.Portal})
	sess, err := p.Open(ctx)
	if err != nil {
		return nil, err
	}

	since, hasSince := cursorDate(cursor)
	topics := orBlank(c.PortalTopics)
	types := orBlank(c.PortalContentTypes)
	maxPages := p.MaxPages()
	if maxPages <= 0 {
		maxPages = 1
	}

	var out []aml.Candidate
	for _, topic := range topics {
		for _, ct := range types {
			for page := 1; page <= maxPages; page++ {
				if err := ctx.Err(); err != nil {
					return out, err
				}
				l := domain.PortalListing{Topic: topic, ContentType: ct, Page: page}
				em.ToolCall(ctx, NodeScan, "portal.search", l)
				items, more, err := sess.Search(ctx, l)
				if err != nil {
					return out, err
				}
				for _, it := range items {
					if it.URL == "" {
						continue
					}
					if hasSince && it.PublishedAt != "" && it.PublishedAt < since {
						continue
					}
					out = append(out, aml.Candidate{
						URL:         it.URL,
						Title:       it.Title,
						Summary:     regtext.Summary(it.Summary, 400),
						PublishedAt: it.PublishedAt,
						Regulator:   c.Code,
						Source:      aml.SourcePortal,
						Listing:     it.Listing,
					})
				}
				if !more {
					break
				}
			}
		}
	}
	return out, nil
}

// scanSearch runs every configured query scoped to the regulator's domains
func (s *Scanner) scanSearch(ctx context.Context, em events.Emitter, c regulators.Config, cursor string, now time.Time) ([]aml.Candidate, error) {
	if s.Search == nil {
		return nil, aml.ErrSearchNotConfigured
	}
	start, ok := cursorDate(cursor)
	if !ok {
		start = now.AddDate(0, 0, -s.Cfg.LookbackDays).Format(dateLayout)
	}
	end := now.Format(dateLayout)

	var out []aml.Candidate
	for _, text := range c.Queries {
		q := domain.SearchQuery{
			Text:           text,
			IncludeDomains: c.IncludeDomains,
			StartDate:      start,
			EndDate:        end,
			MaxResults:     s.Cfg.SearchMaxResults,
		}
		em.ToolCall(ctx, NodeScan, "search", map[string]any{"regulator": c.Code, "query": text, "start": start, "end": end})
		res, err := s.Search.Search(ctx, q)
		if err != nil {
			return out, err
		}
		for _, r := range res {
			if r.URL == "" {
				continue
			}
			out = append(out, aml.Candidate{
				URL:         r.URL,
				Title:       r.Title,
				Summary:     regtext.Summary(r.Content, 400),
				PublishedAt: r.PublishedDate,
				Regulator:   c.Code,
				Source:      aml.SourceSearch,
			})
		}
	}
	return out, nil
}

func orBlank(xs []string) []string {
	if len(xs) == 0 {
		return []string{""}
	}
	return xs
}
