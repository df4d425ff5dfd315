package modkit

import (
	"net/http"
	"slices"

	"sentinel/internal/modkit/httpkit"
	str "sentinel/internal/platform/strings"
)

// Router is the seam modules mount on
type Router = httpkit.Router

// Built is the resolved option set a module constructor works from
type Built struct {
	Name   string
	Prefix string
	Mw     []func(http.Handler) http.Handler
	Ports  any

	register []func(Router)
}

// Build applies opts in order, later options win
func Build(opts ...Option) Built {
	var c buildCfg
	for _, o := range opts {
		o(&c)
	}
	return Built{
		Name:     c.name,
		Prefix:   c.prefix,
		Mw:       slices.Clone(c.mw),
		Ports:    c.ports,
		register: slices.Clone(c.register),
	}
}

// Mount attaches own and any WithRegister routes under Prefix, or in a root group when Prefix is empty
// module middleware wraps all of them
func (b Built) Mount(r Router, own func(Router)) {
	attach := func(rr Router) {
		for _, mw := range b.Mw {
			rr.Use(mw)
		}
		if own != nil {
			own(rr)
		}
		for _, fn := range b.register {
			fn(rr)
		}
	}
	if b.Prefix == "" {
		r.Group(attach)
		return
	}
	r.Route(str.MustPrefix(b.Prefix), attach)
}
