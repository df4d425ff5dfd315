package httpkit

import "net/http"

// Get registers a body-less GET handler wrapped in the envelope adapter
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, Call(h))
}
