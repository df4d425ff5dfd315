package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	perr "sentinel/internal/platform/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ReadsBodyAndContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ua-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "yes", r.Header.Get("X-Extra"))
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(Options{UserAgent: "ua-test"})
	resp, err := c.Get(context.Background(), srv.URL, http.Header{"X-Extra": {"yes"}})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(resp.Body))
	assert.Equal(t, "application/json", resp.ContentType())
	assert.True(t, resp.IsJSON())
}

func TestDo_MapsStatuses(t *testing.T) {
	cases := map[int]perr.ErrorCode{
		http.StatusTooManyRequests:     perr.ErrorCodeTooManyRequests,
		http.StatusNotFound:            perr.ErrorCodeNotFound,
		http.StatusBadGateway:          perr.ErrorCodeUnavailable,
		http.StatusInternalServerError: perr.ErrorCodeUnavailable,
	}
	for status, code := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "3")
			w.WriteHeader(status)
		}))
		_, err := NewClient(Options{}).Get(context.Background(), srv.URL, nil)
		srv.Close()

		require.Error(t, err, status)
		assert.Equal(t, code, perr.CodeOf(err), status)
		assert.Equal(t, status, StatusOf(err))
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()
	_, err := NewClient(Options{}).Get(context.Background(), srv.URL, nil)
	assert.True(t, IsRateLimited(err))
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 3*time.Second, se.RetryAfter)
}

func TestDo_SingleAttempt(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(Options{}).Get(context.Background(), srv.URL, nil)
	require.Error(t, err)
	assert.Equal(t, 1, hits)
}

func TestDo_EnforcesMaxBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	_, err := NewClient(Options{MaxBytes: 16}).Get(context.Background(), srv.URL, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds 16 bytes")
}

func TestPostFormAndJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/form":
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "aml", r.PostForm.Get("topic"))
			_, _ = w.Write([]byte("ok"))
		case "/json":
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"n":2}`))
		}
	}))
	defer srv.Close()

	c := NewClient(Options{})
	resp, err := c.PostForm(context.Background(), srv.URL+"/form", url.Values{"topic": {"aml"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(resp.Body))

	var out struct{ N int }
	require.NoError(t, c.PostJSON(context.Background(), srv.URL+"/json", map[string]int{"a": 1}, &out, nil))
	assert.Equal(t, 2, out.N)
}

func TestSession_KeepsCookies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/start" {
			http.SetCookie(w, &http.Cookie{Name: "sid", Value: "abc", Path: "/"})
			return
		}
		ck, err := r.Cookie("sid")
		if err != nil {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(ck.Value))
	}))
	defer srv.Close()

	base := NewClient(Options{})
	s := base.Session()
	_, err := s.Get(context.Background(), srv.URL+"/start", nil)
	require.NoError(t, err)
	resp, err := s.Get(context.Background(), srv.URL+"/next", nil)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(resp.Body))

	_, err = base.Get(context.Background(), srv.URL+"/next", nil)
	assert.Equal(t, perr.ErrorCodeForbidden, perr.CodeOf(err))
}

func TestDo_RateLimitHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	c := NewClient(Options{RatePerSec: 0.001, Burst: 1})
	_, err := c.Get(context.Background(), srv.URL, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = c.Get(ctx, srv.URL, nil)
	require.Error(t, err)
}
