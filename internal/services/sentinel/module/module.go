// Package module wires the sentinel runner and its monitor route using modkit
package module

import (
	"sentinel/internal/core/events"
	modkit "sentinel/internal/modkit"
	"sentinel/internal/modkit/httpkit"
	str "sentinel/internal/platform/strings"
	"sentinel/internal/services/sentinel/domain"
	sentinelhttp "sentinel/internal/services/sentinel/http"
	"sentinel/internal/services/sentinel/repo"
	"sentinel/internal/services/sentinel/service"
)

// Deps are the ports the runner is composed from
// Scorer is required; the rest degrade when nil
type Deps struct {
	Scorer       domain.ScorerPort
	Regulatory   domain.RegulatoryPort
	Alerts       domain.AlertStore
	Transactions domain.TransactionSource
	Subscribers  []events.Subscriber
}

// Ports exposed by the sentinel module
type Ports struct {
	Runner *service.Runner
	Batch  *service.Batch
	CSV    *repo.CSV
}

// Module implements the sentinel module
type Module struct {
	b     modkit.Built
	ports Ports
	h     sentinelhttp.Handlers
}

// New constructs the sentinel module; ports come in through modkit.WithPorts(Deps{...})
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("sentinel")}, opts...)...)

	in, ok := b.Ports.(Deps)
	if !ok || in.Scorer == nil {
		panic("sentinel module: expected WithPorts(sentinel/module.Deps) with a Scorer")
	}
	o := FromConfig(deps.Cfg)

	if deps.PG != nil {
		st := repo.NewStore(deps.PG, repo.NewPG())
		if in.Alerts == nil {
			in.Alerts = st
		}
		if in.Transactions == nil {
			in.Transactions = st
		}
	}
	if in.Regulatory == nil {
		deps.Log.Warn().Msg("sentinel: regulatory pipeline not wired; high scores will report on_error")
	}

	csv := repo.NewCSV(o.DemoCSV)
	runner := service.NewRunner(in.Scorer, in.Regulatory, in.Alerts, o.Threshold, o.Regulators)

	h := sentinelhttp.Handlers{
		Runner:       runner,
		Subscribers:  in.Subscribers,
		CSV:          csv,
		DefaultLimit: o.DefaultLimit,
	}
	if in.Transactions != nil {
		h.Transactions = in.Transactions
	}
	return &Module{
		b:     b,
		ports: Ports{Runner: runner, Batch: service.NewBatch(runner), CSV: csv},
		h:     h,
	}
}

// MountRoutes mounts /monitor at the api root
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) { sentinelhttp.Register(rr, m.h) })
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.b.Name, "module name") }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
