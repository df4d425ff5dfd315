// Package module implements the scorer module
package module

import (
	"sentinel/internal/adapters/llm"
	"sentinel/internal/core/catalog"
	"sentinel/internal/modkit"
	"sentinel/internal/modkit/httpkit"
	"sentinel/internal/services/scorer/domain"
	"sentinel/internal/services/scorer/service"
)

// Ports exposed by the scorer module
type Ports struct {
	Scorer domain.ScorerPort
}

// Module implements module.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the scorer module; overrides win over env for non-zero fields
func New(deps modkit.Deps, overrides Options, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("scorer"),
	}, opts...)...)

	var in domain.Deps
	if b.Ports != nil {
		p, ok := b.Ports.(domain.Deps)
		if !ok {
			panic("scorer module: expected WithPorts(scorer/domain.Deps)")
		}
		in = p
	}

	cfg := FromConfig(deps.Cfg)
	if overrides.APIKey != "" {
		cfg.APIKey = overrides.APIKey
	}
	if overrides.BaseURL != "" {
		cfg.BaseURL = overrides.BaseURL
	}
	if overrides.Model != "" {
		cfg.Model = overrides.Model
	}
	if overrides.RatePerSec != 0 {
		cfg.RatePerSec = overrides.RatePerSec
	}
	if overrides.Timeout != 0 {
		cfg.Timeout = overrides.Timeout
	}

	completer := in.LLM
	if completer == nil {
		c, err := llm.New(llm.Options{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			RatePerSec: cfg.RatePerSec,
			Timeout:    cfg.Timeout,
		})
		if err != nil {
			panic(err)
		}
		if !c.Configured() {
			deps.Log.Warn().Msg("scorer: CORE_SCORER_LLM_API_KEY not set; scoring will fail until configured")
		}
		completer = c
	}

	return &Module{
		deps:  deps,
		ports: Ports{Scorer: service.New(completer, in.Transactions, catalog.MustDefault())},
	}
}

// Name satisfies module.Module
func (m *Module) Name() string { return "scorer" }

// Ports satisfies module.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies module.Module; the scorer has no routes of its own
func (m *Module) MountRoutes(_ httpkit.Router) {}
