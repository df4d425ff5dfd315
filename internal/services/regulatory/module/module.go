// Package module wires the regulatory pipeline into the API using modkit
package module

import (
	"sentinel/internal/adapters/pdf"
	"sentinel/internal/adapters/portal"
	"sentinel/internal/adapters/search"
	"sentinel/internal/core/chunk"
	"sentinel/internal/core/events"
	"sentinel/internal/core/regulators"
	modkit "sentinel/internal/modkit"
	"sentinel/internal/modkit/httpkit"
	str "sentinel/internal/platform/strings"
	"sentinel/internal/services/regulatory/domain"
	reghttp "sentinel/internal/services/regulatory/http"
	"sentinel/internal/services/regulatory/repo"
	"sentinel/internal/services/regulatory/service"
)

// Deps lets callers replace any external collaborator; nil fields are built from config
type Deps struct {
	Regulators  regulators.Set
	Search      domain.Searcher
	URLs        domain.URLExtractor
	Portals     map[string]domain.Portal
	PDF         domain.PDFParser
	Store       domain.DocumentStore
	Subscribers []events.Subscriber
	Config      *service.Config
}

// Ports exposed by the regulatory module
type Ports struct {
	Orchestrator domain.OrchestratorPort
	Regulators   regulators.Set
}

// Module implements the regulatory module
type Module struct {
	b     modkit.Built
	ports Ports
	h     reghttp.Handlers
}

// New constructs the regulatory module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("regulatory"), modkit.WithPrefix("/regulatory")}, opts...)...)

	var in Deps
	if b.Ports != nil {
		p, ok := b.Ports.(Deps)
		if !ok {
			panic("regulatory module: expected WithPorts(regulatory/module.Deps)")
		}
		in = p
	}
	o := FromConfig(deps.Cfg)
	orch, regs := build(deps, o, in)

	return &Module{
		b:     b,
		ports: Ports{Orchestrator: orch, Regulators: regs},
		h:     reghttp.Handlers{Orchestrator: orch, Subscribers: in.Subscribers, Timeout: o.ScrapeTimeout},
	}
}

// build assembles the orchestrator, filling every unset collaborator from config
func build(deps modkit.Deps, o Options, in Deps) (*service.Orchestrator, regulators.Set) {
	regs := in.Regulators
	if regs == nil {
		var err error
		if regs, err = regulators.Default(); err != nil {
			panic(err)
		}
	}

	if in.Search == nil || in.URLs == nil {
		sc := search.New(search.Options{
			BaseURL:    o.SearchBaseURL,
			APIKey:     o.SearchAPIKey,
			MaxResults: o.SearchMaxResults,
			MaxURLs:    o.ExtractMaxURLs,
			Timeout:    o.FetchTimeout,
		})
		if !sc.Configured() {
			deps.Log.Warn().Msg("regulatory: CORE_REGULATORY_SEARCH_API_KEY not set; only portals will be scanned")
		}
		if in.Search == nil {
			in.Search = searchPorts{c: sc}
		}
		if in.URLs == nil {
			in.URLs = searchPorts{c: sc}
		}
	}

	if in.Portals == nil {
		in.Portals = map[string]domain.Portal{}
		pc, err := portal.New(portal.Options{
			BaseURL:    o.PortalBaseURL,
			MaxPages:   o.PortalMaxPages,
			RatePerSec: o.PortalRatePerSec,
			Timeout:    o.FetchTimeout,
		})
		if err != nil {
			deps.Log.Warn().Err(err).Msg("regulatory: portal disabled")
		} else {
			in.Portals["mas"] = portalPort{c: pc}
		}
	}

	if in.PDF == nil {
		in.PDF = pdf.New(pdf.Options{Timeout: o.FetchTimeout, MaxBytes: o.PDFMaxBytes})
	}

	if in.Store == nil && deps.PG != nil {
		in.Store = repo.NewStore(deps.PG, repo.NewPG())
	}

	cfg := service.Config{
		LookbackDays:      o.LookbackDays,
		SearchMaxResults:  o.SearchMaxResults,
		ExtractMaxURLs:    o.ExtractMaxURLs,
		DetailConcurrency: o.DetailConcurrency,
		Chunk:             chunk.Options{Size: o.ChunkSize, Overlap: o.ChunkOverlap, Max: o.MaxChunks},
	}
	if in.Config != nil {
		cfg = *in.Config
	}

	return service.NewOrchestrator(
		regs,
		service.NewScanner(in.Search, in.Portals, cfg),
		service.NewExtractor(in.URLs, in.PDF, in.Portals, cfg),
		service.NewGenerator(),
		service.NewVersioner(in.Store, cfg),
	), regs
}

// MountRoutes mounts /scrape and /stream under the module prefix
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) { reghttp.Register(rr, m.h) })
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.b.Name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.b.Prefix) }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Orchestrator returns the wired orchestrator for in process callers
func (m *Module) Orchestrator() domain.OrchestratorPort { return m.ports.Orchestrator }
