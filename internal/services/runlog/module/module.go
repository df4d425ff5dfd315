// Package module implements the run log module: the sinks every run channel fans out to
package module

import (
	"sentinel/internal/adapters/bus"
	"sentinel/internal/core/events"
	"sentinel/internal/modkit"
	"sentinel/internal/modkit/httpkit"
	"sentinel/internal/services/runlog/domain"
	"sentinel/internal/services/runlog/repo"
)

// Module implements module.Module
type Module struct {
	deps  modkit.Deps
	ports domain.Ports
}

// New builds the subscriber set from whichever backends deps carry
// metrics are always on; postgres, clickhouse and nats join when present
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	modkit.Build(append([]modkit.Option{modkit.WithName("runlog")}, opts...)...)
	cfg := FromConfig(deps.Cfg)

	subs := []events.Subscriber{events.Metrics()}
	if deps.PG != nil && cfg.Persist {
		subs = append(subs, domain.Subscriber(repo.NewPG().Bind(deps.PG)))
	}
	if deps.CH != nil && cfg.Archive {
		subs = append(subs, domain.Subscriber(repo.NewArchive(deps.CH)))
	}
	if deps.Bus != nil {
		subs = append(subs, bus.NewSubscriber(deps.Bus, cfg.Subject))
	}
	deps.Log.Debug().Int("subscribers", len(subs)).Msg("runlog: sinks wired")

	return &Module{deps: deps, ports: domain.Ports{Subscribers: subs}}
}

// Name satisfies module.Module
func (m *Module) Name() string { return "runlog" }

// Ports satisfies module.Module
func (m *Module) Ports() any { return m.ports }

// Subscribers returns the wired sinks
func (m *Module) Subscribers() []events.Subscriber {
	return append([]events.Subscriber(nil), m.ports.Subscribers...)
}

// MountRoutes satisfies module.Module; the run log is write only
func (m *Module) MountRoutes(_ httpkit.Router) {}
