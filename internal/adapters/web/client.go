// Package web provides the rate limited http client every regulatory fetcher shares
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	perr "sentinel/internal/platform/errors"
	"sentinel/internal/platform/logger"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout  = 20 * time.Second
	defaultUA       = "sentinel-regulatory/1.0"
	defaultMaxBytes = 8 << 20
)

// Options configures the Client
type Options struct {
	UserAgent string
	Timeout   time.Duration

	// RatePerSec <= 0 disables client side throttling
	RatePerSec float64
	Burst      int

	// MaxBytes caps how much of a response body is read
	MaxBytes int64
}

// Client issues single attempt requests; callers decide what a failure means
type Client struct {
	http    *http.Client
	opts    Options
	limiter *rate.Limiter
	log     logger.Logger
	now     func() time.Time
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxBytes <= 0 {
		o.MaxBytes = defaultMaxBytes
	}
	var lim *rate.Limiter
	if o.RatePerSec > 0 {
		b := o.Burst
		if b <= 0 {
			b = 1
		}
		lim = rate.NewLimiter(rate.Limit(o.RatePerSec), b)
	}
	return &Client{
		http:    &http.Client{Timeout: o.Timeout},
		opts:    o,
		limiter: lim,
		log:     *logger.Named("web"),
		now:     time.Now,
	}
}

// Session returns a client sharing the limiter but holding its own cookie jar
func (c *Client) Session() *Client {
	jar, _ := cookiejar.New(nil)
	cp := *c
	cp.http = &http.Client{Timeout: c.opts.Timeout, Jar: jar}
	return &cp
}

// Response is a fully read http response
type Response struct {
	URL    string
	Status int
	Header http.Header
	Body   []byte
}

// ContentType returns the media type without parameters
func (r *Response) ContentType() string {
	ct := r.Header.Get("Content-Type")
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

// IsJSON reports whether the response declares a json body
func (r *Response) IsJSON() bool {
	ct := r.ContentType()
	return ct == "application/json" || strings.HasSuffix(ct, "+json")
}

// Do sends req once, reads the body and maps non 2xx statuses to errors
func (c *Client) Do(ctx context.Context, req *http.Request) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "web rate wait")
		}
	}
	req = req.WithContext(ctx)
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}

	start := c.now()
	resp, err := c.http.Do(req)
	lat := c.now().Sub(start)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "web %s %s failed", req.Method, req.URL.Redacted())
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("method", req.Method).
		Str("url", req.URL.Redacted()).
		Int("status", resp.StatusCode).
		Dur("latency", lat).
		Msg("web http response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, statusError(req, resp, body)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.opts.MaxBytes+1))
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "web read %s", req.URL.Redacted())
	}
	if int64(len(body)) > c.opts.MaxBytes {
		return nil, perr.Newf(perr.ErrorCodeUnavailable, "web body of %s exceeds %d bytes", req.URL.Redacted(), c.opts.MaxBytes)
	}
	return &Response{URL: resp.Request.URL.String(), Status: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

// Get fetches rawURL
func (c *Client) Get(ctx context.Context, rawURL string, hdr http.Header) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "web new request")
	}
	copyHeader(req.Header, hdr)
	return c.Do(ctx, req)
}

// PostForm posts url encoded form values
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values, hdr http.Header) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "web new request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	copyHeader(req.Header, hdr)
	return c.Do(ctx, req)
}

// PostJSON posts body as json and decodes a json reply into out when out is non nil
func (c *Client) PostJSON(ctx context.Context, rawURL string, body, out any, hdr http.Header) error {
	b, err := json.Marshal(body)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "web encode body")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(b))
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "web new request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	copyHeader(req.Header, hdr)

	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "web decode %s", req.URL.Redacted())
	}
	return nil
}

func copyHeader(dst, src http.Header) {
	for k, vs := range src {
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
}
