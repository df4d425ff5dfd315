package httpkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perr "sentinel/internal/platform/errors"
	phttp "sentinel/internal/platform/net/http"
)

func TestMountAPIV1AndGet(t *testing.T) {
	m := chi.NewRouter()
	var seen bool
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = true
			next.ServeHTTP(w, r)
		})
	}

	MountAPIV1(phttp.AdaptChi(m), []func(http.Handler) http.Handler{mw}, func(api Router) {
		api.Route("/meta", func(r Router) {
			Get(r, "/pipeline", func(*http.Request) (any, error) {
				return map[string]float64{"threshold": 0.65}, nil
			})
			Get(r, "/ready", func(*http.Request) (any, error) {
				return nil, perr.Newf(perr.ErrorCodeUnavailable, "nats: not connected")
			})
			Get(r, "/raw", func(*http.Request) (any, error) {
				return Response{Status: http.StatusAccepted, Body: "raw"}, nil
			})
		})
	})

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/meta/pipeline", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, seen)
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, map[string]any{"threshold": 0.65}, env.Data)

	rec = httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/meta/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/meta/raw", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v2/meta/pipeline", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
