// Package api provides the HTTP API for the application
package api

import (
	"sentinel/internal/platform/config"
	"sentinel/internal/platform/logger"
	"sentinel/internal/platform/metrics"
	phttp "sentinel/internal/platform/net/http"
	"sentinel/internal/platform/store"

	"sentinel/internal/modkit"
	"sentinel/internal/modkit/httpkit"
	"sentinel/internal/modkit/module"
	"sentinel/internal/modkit/swaggerkit"

	metamod "sentinel/internal/services/api/meta/module"
	regmod "sentinel/internal/services/regulatory/module"
	runlogmod "sentinel/internal/services/runlog/module"
	scorerdomain "sentinel/internal/services/scorer/domain"
	scorermod "sentinel/internal/services/scorer/module"
	sentinelmod "sentinel/internal/services/sentinel/module"
	sentinelrepo "sentinel/internal/services/sentinel/repo"
)

// Options are the API options
type Options struct {
	// Config is the root config; modules apply their own prefixes
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
	EnableMetrics  bool
	CORSOrigins    []string
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	deps := modkit.Deps{Cfg: opt.Config}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}
	if opt.Store != nil {
		deps.PG = opt.Store.PG
		deps.CH = opt.Store.CH
		deps.Bus = opt.Store.Bus
	}

	// run log first: every pipeline channel fans out to its sinks
	runlog := runlogmod.New(deps)
	subs := runlog.Subscribers()

	sentinelOpts := sentinelmod.FromConfig(deps.Cfg)

	// the scorer resolves ids against postgres when present, the demo csv otherwise
	var txs scorerdomain.TransactionSource = sentinelrepo.NewCSV(sentinelOpts.DemoCSV)
	if deps.PG != nil {
		txs = sentinelrepo.NewStore(deps.PG, sentinelrepo.NewPG())
	}
	scorer := scorermod.New(deps, scorermod.Options{}, modkit.WithPorts(scorerdomain.Deps{Transactions: txs}))

	regulatory := regmod.New(deps, modkit.WithPorts(regmod.Deps{Subscribers: subs}))

	sentinel := sentinelmod.New(deps, modkit.WithPorts(sentinelmod.Deps{
		Scorer:      module.MustPortsOf[scorermod.Ports](scorer).Scorer,
		Regulatory:  regulatory.Orchestrator(),
		Subscribers: subs,
	}))

	regs := sentinelOpts.Regulators
	if len(regs) == 0 {
		regs = module.MustPortsOf[regmod.Ports](regulatory).Regulators.Codes()
	}
	meta := metamod.New(deps, modkit.WithPorts(metamod.Info{
		Regulators: regs,
		Threshold:  sentinel.Ports().(sentinelmod.Ports).Runner.Threshold,
	}))

	mods := []module.Module{
		runlog,
		scorer,
		meta,
		regulatory,
		sentinel,
	}

	if opt.EnableMetrics {
		r.Handle("/metrics", metrics.Handler())
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(opt.CORSOrigins...), func(api httpkit.Router) {
		// Swagger + profiler
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			m.MountRoutes(api)
		}
	})
}
