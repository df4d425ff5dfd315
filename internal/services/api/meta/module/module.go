// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"time"

	modkit "sentinel/internal/modkit"
	"sentinel/internal/modkit/httpkit"
	str "sentinel/internal/platform/strings"

	metahttp "sentinel/internal/services/api/meta/http"
)

// Module serves liveness, readiness and pipeline facts
type Module struct {
	b modkit.Built
	d metahttp.Deps
}

// Info carries the pipeline facts the meta routes report
type Info struct {
	Regulators []string
	Threshold  float64
}

// New constructs the meta module; pipeline facts come in through modkit.WithPorts(Info{...})
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	d := metahttp.Deps{
		ServiceName: "sentinel-api",
		StartedAt:   time.Now(),
		PG:          deps.PG,
		CH:          deps.CH,
		Bus:         deps.Bus,
	}
	if in, ok := b.Ports.(Info); ok {
		d.Regulators, d.Threshold = in.Regulators, in.Threshold
	}
	return &Module{b: b, d: d}
}

// MountRoutes mounts the meta routes under the module prefix
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) { metahttp.Register(rr, m.d) })
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.b.Name, "meta") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.b.Prefix) }

// Ports is nil; nothing consumes meta
func (m *Module) Ports() any { return nil }
