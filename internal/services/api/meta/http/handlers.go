// Package http serves the meta routes: liveness, readiness, build and pipeline facts
package http

import (
	"context"
	"net/http"
	"time"

	"sentinel/internal/core/catalog"
	"sentinel/internal/core/version"
	"sentinel/internal/modkit/httpkit"
)

// readyTimeout bounds all dependency probes of one readiness call
const readyTimeout = 2 * time.Second

// Pinger is implemented by the postgres and clickhouse adapters
type Pinger interface {
	Ping(context.Context) error
}

// Connected is implemented by the nats bus
type Connected interface {
	IsConnected() bool
}

// Deps are the handler dependencies; a nil backend is reported as skipped
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	PG          any
	CH          any
	Bus         any
	Regulators  []string
	Threshold   float64
}

type handlers struct {
	deps Deps
	now  func() time.Time
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d, now: time.Now}

	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
	httpkit.Get(r, "/pipeline", h.pipeline)
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	OK      bool   `json:"ok"      example:"true"`
	Service string `json:"service" example:"sentinel-api"`
	Started string `json:"started" example:"2025-09-03T13:00:00Z"`
	Now     string `json:"now"     example:"2025-09-03T13:05:00Z"`
}

// ReadyCheck is the outcome of probing one backend
type ReadyCheck struct {
	Name   string `json:"name"            example:"pg"`
	Status string `json:"status"          example:"ok"` // ok fail skipped unknown
	Error  string `json:"error,omitempty" example:"dial tcp 127.0.0.1:5432: connect: connection refused"`
}

// ReadyResponse rolls the checks up; fail answers 503
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"` // ok degraded fail
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"    example:"2025-09-03T13:05:00Z"`
}

// ServiceResponse is the service identity and uptime in seconds
type ServiceResponse struct {
	Name    string `json:"name"    example:"sentinel-api"`
	Started string `json:"started" example:"2025-09-03T13:00:00Z"`
	Uptime  int64  `json:"uptime"  example:"300"`
}

// PipelineResponse reports what the pipeline runs with
type PipelineResponse struct {
	CatalogRules int               `json:"catalog_rules" example:"16"`
	Regulators   []string          `json:"regulators"    example:"MAS,HKMA"`
	Threshold    float64           `json:"threshold"     example:"0.65"`
	Build        version.BuildInfo `json:"build"`
}

func stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// @Summary Health check
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /meta/health [get]
func (h *handlers) health(*http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: stamp(h.deps.StartedAt),
		Now:     stamp(h.now()),
	}, nil
}

func probe(ctx context.Context, name string, backend any) ReadyCheck {
	c := ReadyCheck{Name: name, Status: "ok"}
	switch b := backend.(type) {
	case nil:
		c.Status = "skipped"
	case Pinger:
		if err := b.Ping(ctx); err != nil {
			c.Status, c.Error = "fail", err.Error()
		}
	case Connected:
		if !b.IsConnected() {
			c.Status, c.Error = "fail", "not connected"
		}
	default:
		c.Status = "unknown"
	}
	return c
}

// @Summary Readiness probe with dependency checks
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse
// @Failure 503 {object} ReadyResponse
// @Router /meta/ready [get]
func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	res := ReadyResponse{
		Status: "ok",
		Checks: []ReadyCheck{
			probe(ctx, "pg", h.deps.PG),
			probe(ctx, "ch", h.deps.CH),
			probe(ctx, "nats", h.deps.Bus),
		},
		Now: stamp(h.now()),
	}
	for _, c := range res.Checks {
		switch {
		case c.Status == "fail":
			res.Status = "fail"
		case c.Status != "ok" && res.Status == "ok":
			res.Status = "degraded"
		}
	}
	if res.Status == "fail" {
		return httpkit.Response{Status: http.StatusServiceUnavailable, Body: res}, nil
	}
	return res, nil
}

// @Summary Build and version info
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo
// @Router /meta/version [get]
func (h *handlers) version(*http.Request) (any, error) {
	return version.Info(h.deps.ServiceName), nil
}

// @Summary Service info and uptime
// @Tags Meta
// @Produce json
// @Success 200 {object} ServiceResponse
// @Router /meta/service [get]
func (h *handlers) service(*http.Request) (any, error) {
	return ServiceResponse{
		Name:    h.deps.ServiceName,
		Started: stamp(h.deps.StartedAt),
		Uptime:  int64(h.now().Sub(h.deps.StartedAt) / time.Second),
	}, nil
}

// @Summary Rule catalog size, regulators and the regulatory threshold
// @Tags Meta
// @Produce json
// @Success 200 {object} PipelineResponse
// @Router /meta/pipeline [get]
func (h *handlers) pipeline(*http.Request) (any, error) {
	n := 0
	if cat, err := catalog.Default(); err == nil {
		n = len(cat.IDs())
	}
	return PipelineResponse{
		CatalogRules: n,
		Regulators:   h.deps.Regulators,
		Threshold:    h.deps.Threshold,
		Build:        version.Info(h.deps.ServiceName),
	}, nil
}
