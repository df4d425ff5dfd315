package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	perr "sentinel/internal/platform/errors"
)

// StatusError wraps non-2xx HTTP responses
type StatusError struct {
	Status     int
	Body       string
	RetryAfter time.Duration
	Err        error
}

// Error interface
func (e *StatusError) Error() string { return e.Err.Error() }

// Unwrap interface
func (e *StatusError) Unwrap() error { return e.Err }

// HTTPStatus interface
func (e *StatusError) HTTPStatus() int { return e.Status }

func statusError(req *http.Request, resp *http.Response, body []byte) error {
	code := perr.ErrorCodeUnavailable
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		code = perr.ErrorCodeTooManyRequests
	case resp.StatusCode == http.StatusNotFound:
		code = perr.ErrorCodeNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		code = perr.ErrorCodeUnauthorized
	case resp.StatusCode == http.StatusForbidden:
		code = perr.ErrorCodeForbidden
	}
	return &StatusError{
		Status:     resp.StatusCode,
		Body:       string(body),
		RetryAfter: time.Duration(atoi(resp.Header.Get("Retry-After"))) * time.Second,
		Err:        perr.Newf(code, "web %s %s status %d", req.Method, req.URL.Redacted(), resp.StatusCode),
	}
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	i, _ := strconv.Atoi(s)
	return i
}

// StatusOf returns the http status carried by err, 0 when none
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

// IsRateLimited reports whether err is a 429 response
func IsRateLimited(err error) bool { return StatusOf(err) == http.StatusTooManyRequests }
