// Package bind decodes and validates request bodies into project errors
package bind

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	perr "sentinel/internal/platform/errors"
	"sentinel/internal/platform/logger"
)

// JSONOptions tunes ParseJSON; the zero value allows unknown fields and has no size cap
type JSONOptions struct {
	MaxBytes        int64
	DisallowUnknown bool
	AllowEmptyBody  bool
}

// DefaultJSON caps bodies at 1MB and rejects unknown fields
var DefaultJSON = JSONOptions{MaxBytes: 1 << 20, DisallowUnknown: true}

// ParseJSON decodes one JSON document into T and validates it.
// Decode problems are ErrorCodeJSON, rule violations ErrorCodeValidation
func ParseJSON[T any](r *http.Request, opts ...JSONOptions) (T, error) {
	var out T
	o := DefaultJSON
	if len(opts) > 0 {
		o = opts[0]
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			logger.C(r.Context()).Warn().Err(err).Msg("closing request body")
		}
	}()

	var src io.Reader = r.Body
	if o.MaxBytes > 0 {
		src = io.LimitReader(src, o.MaxBytes)
	}
	br := bufio.NewReader(src)
	if _, err := br.Peek(1); errors.Is(err, io.EOF) {
		if !o.AllowEmptyBody {
			return out, perr.JSONErrf("empty body")
		}
		return out, Validator().Check(out)
	}

	dec := json.NewDecoder(br)
	if o.DisallowUnknown {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(&out); err != nil {
		var zero T
		return zero, perr.JSONErrf("invalid JSON: %v", err)
	}
	if dec.More() {
		var zero T
		return zero, perr.JSONErrf("unexpected trailing data")
	}
	if err := Validator().Check(out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
