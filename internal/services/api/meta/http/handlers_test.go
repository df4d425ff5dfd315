package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sentinel/internal/modkit/httpkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type bus bool

func (b bus) IsConnected() bool { return bool(b) }

func newHandlers(d Deps) *handlers {
	now := time.Date(2025, 9, 3, 13, 5, 0, 0, time.UTC)
	return &handlers{deps: d, now: func() time.Time { return now }}
}

func TestReady(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/meta/ready", nil)

	out, err := newHandlers(Deps{PG: pinger{}, CH: pinger{}, Bus: bus(true)}).ready(req)
	require.NoError(t, err)
	assert.Equal(t, "ok", out.(ReadyResponse).Status)

	out, _ = newHandlers(Deps{PG: pinger{}, CH: struct{}{}}).ready(req)
	res := out.(ReadyResponse)
	assert.Equal(t, "degraded", res.Status)
	assert.Equal(t, "unknown", res.Checks[1].Status)
	assert.Equal(t, "skipped", res.Checks[2].Status)

	out, _ = newHandlers(Deps{PG: pinger{err: errors.New("refused")}, Bus: bus(false)}).ready(req)
	resp, ok := out.(httpkit.Response)
	require.True(t, ok, "failing readiness answers with an explicit status")
	assert.Equal(t, http.StatusServiceUnavailable, resp.Status)
	res = resp.Body.(ReadyResponse)
	assert.Equal(t, "fail", res.Status)
	assert.Equal(t, "refused", res.Checks[0].Error)
	assert.Equal(t, "not connected", res.Checks[2].Error)
}

func TestServiceUptime(t *testing.T) {
	h := newHandlers(Deps{ServiceName: "sentinel-api", StartedAt: time.Date(2025, 9, 3, 13, 0, 0, 0, time.UTC)})
	out, err := h.service(nil)
	require.NoError(t, err)
	assert.Equal(t, ServiceResponse{Name: "sentinel-api", Started: "2025-09-03T13:00:00Z", Uptime: 300}, out)
}

func TestPipeline(t *testing.T) {
	h := newHandlers(Deps{Regulators: []string{"MAS", "HKMA"}, Threshold: 0.65})
	out, err := h.pipeline(nil)
	require.NoError(t, err)
	res := out.(PipelineResponse)
	assert.Equal(t, 16, res.CatalogRules)
	assert.Equal(t, []string{"MAS", "HKMA"}, res.Regulators)
	assert.Equal(t, 0.65, res.Threshold)
}
