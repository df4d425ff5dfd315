package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"sentinel/internal/core/aml"
	"sentinel/internal/core/regulators"
	"sentinel/internal/services/regulatory/domain"
)

var clock = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func testConfig() Config {
	return Config{
		LookbackDays:      30,
		SearchMaxResults:  5,
		ExtractMaxURLs:    20,
		DetailConcurrency: 2,
		Now:               func() time.Time { return clock },
	}
}

func testRegs() regulators.Set {
	return regulators.Set{
		{
			Code:               "MAS",
			Regulator:          "Monetary Authority of Singapore",
			Active:             true,
			Portal:             "mas",
			IncludeDomains:     []string{"mas.gov.sg"},
			Queries:            []string{"mas aml notice"},
			PortalTopics:       []string{"AML"},
			PortalContentTypes: []string{"Notices"},
		},
		{
			Code:           "HKMA",
			Regulator:      "Hong Kong Monetary Authority",
			Active:         true,
			IncludeDomains: []string{"hkma.gov.hk"},
			Queries:        []string{"hkma aml circular"},
		},
		{Code: "FCA", Active: false, Queries: []string{"fca"}},
	}
}

type fakeSearch struct {
	mu      sync.Mutex
	results map[string][]domain.SearchResult
	err     error
	queries []domain.SearchQuery
}

func (f *fakeSearch) Search(_ context.Context, q domain.SearchQuery) ([]domain.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	return f.results[q.Text], nil
}

type fakeExtract struct {
	mu    sync.Mutex
	text  map[string]string
	err   error
	calls [][]string
}

func (f *fakeExtract) Extract(_ context.Context, urls []string) ([]domain.Extracted, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]string(nil), urls...))
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Extracted
	for _, u := range urls {
		out = append(out, domain.Extracted{URL: u, Content: f.text[u]})
	}
	return out, nil
}

type fakePortal struct {
	mu       sync.Mutex
	items    []domain.PortalItem
	details  map[string]domain.PortalDetail
	openErr  error
	opens    int
	searches []domain.PortalListing
	inflight int
	peak     int
}

func (p *fakePortal) Open(context.Context) (domain.PortalSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opens++
	if p.openErr != nil {
		return nil, p.openErr
	}
	return p, nil
}

func (p *fakePortal) Search(_ context.Context, l domain.PortalListing) ([]domain.PortalItem, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.searches = append(p.searches, l)
	if l.Page > 1 {
		return nil, false, nil
	}
	return p.items, true, nil
}

func (p *fakePortal) Detail(_ context.Context, u string) (domain.PortalDetail, error) {
	p.mu.Lock()
	p.inflight++
	if p.inflight > p.peak {
		p.peak = p.inflight
	}
	p.mu.Unlock()
	time.Sleep(5 * time.Millisecond)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inflight--
	d, ok := p.details[u]
	if !ok {
		return domain.PortalDetail{}, fmt.Errorf("detail %s: 404", u)
	}
	return d, nil
}

func (p *fakePortal) MaxPages() int { return 3 }

type fakePDF struct {
	text  map[string]string
	calls []string
}

func (f *fakePDF) Parse(_ context.Context, u string) (string, error) {
	f.calls = append(f.calls, u)
	t, ok := f.text[u]
	if !ok {
		return "", errors.New("not a pdf")
	}
	return t, nil
}

type fakeStore struct {
	mu         sync.Mutex
	docs       map[string]string // url -> id
	chunks     map[string]int
	versions   []domain.RuleVersionWrite
	failDocs   map[string]bool
	failRules  map[string]bool
	failChunks bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: map[string]string{}, chunks: map[string]int{}, failDocs: map[string]bool{}, failRules: map[string]bool{}}
}

func (s *fakeStore) UpsertDocument(_ context.Context, d domain.DocumentWrite) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDocs[d.URL] {
		return "", errors.New("db down")
	}
	if id, ok := s.docs[d.URL]; ok {
		return id, nil
	}
	id := fmt.Sprintf("doc-%d", len(s.docs)+1)
	s.docs[d.URL] = id
	return id, nil
}

func (s *fakeStore) InsertChunks(_ context.Context, id string, cs []domain.ChunkWrite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failChunks {
		return errors.New("chunks rejected")
	}
	s.chunks[id] += len(cs)
	return nil
}

func (s *fakeStore) InsertRuleVersion(_ context.Context, v domain.RuleVersionWrite) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failRules[v.RuleID] {
		return "", errors.New("constraint violation")
	}
	s.versions = append(s.versions, v)
	return fmt.Sprintf("rv-%d", len(s.versions)), nil
}

const (
	masListing = "https://www.mas.gov.sg/regulation/notices/notice-626"
	masPDF     = "https://www.mas.gov.sg/-/media/notice-626.pdf"
	hkmaURL    = "https://www.hkma.gov.hk/eng/circular-2024-01"
	masSearch  = "https://www.mas.gov.sg/news/aml-speech"
)

const masText = "Notice 626 on Prevention of Money Laundering.\n\n" +
	"A bank must perform customer due diligence before opening an account. " +
	"Banks shall report suspicious transactions within 15 business days. " +
	"This notice is effective 1 May 2024 for all banks."

const hkmaText = "Guideline on AML/CFT. Authorized institutions should screen every wire transfer. " +
	"Effective 2024-07-01."

const speechText = "Speech by the Managing Director. We welcome the industry to the forum. Thank you."

type fixture struct {
	search  *fakeSearch
	extract *fakeExtract
	portal  *fakePortal
	pdf     *fakePDF
	store   *fakeStore
	orch    *Orchestrator
}

func newFixture() *fixture {
	f := &fixture{
		search: &fakeSearch{results: map[string][]domain.SearchResult{
			"mas aml notice":    {{URL: masSearch, Title: "AML speech", Content: "speech", PublishedDate: "2024-05-20"}},
			"hkma aml circular": {{URL: hkmaURL, Title: "AML circular", Content: "circular"}},
		}},
		extract: &fakeExtract{text: map[string]string{
			hkmaURL:   hkmaText,
			masSearch: speechText,
		}},
		portal: &fakePortal{
			items: []domain.PortalItem{
				{URL: masListing, Title: "Notice 626", PublishedAt: "2024-05-02", Listing: map[string]string{"topic": "AML"}},
				{URL: "https://www.mas.gov.sg/old", Title: "Old", PublishedAt: "2019-01-01"},
			},
			details: map[string]domain.PortalDetail{
				masListing: {URL: masListing, Title: "Notice 626", PDFLinks: []string{masPDF, masPDF}},
			},
		},
		pdf:   &fakePDF{text: map[string]string{masPDF: masText}},
		store: newFakeStore(),
	}
	cfg := testConfig()
	portals := map[string]domain.Portal{"mas": f.portal}
	f.orch = NewOrchestrator(
		testRegs(),
		NewScanner(f.search, portals, cfg),
		NewExtractor(f.extract, f.pdf, portals, cfg),
		NewGenerator(),
		NewVersioner(f.store, cfg),
	)
	return f
}

// seeded returns a state whose cursor keeps the 2019 portal item out
func seeded() aml.RegulatoryState {
	return aml.RegulatoryState{Cursor: "2024-01-01T00:00:00Z"}
}
