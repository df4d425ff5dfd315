package middleware

import (
	stdhttp "net/http"
	"runtime/debug"

	perr "sentinel/internal/platform/errors"
	"sentinel/internal/platform/logger"
	phttp "sentinel/internal/platform/net/http"
)

// RecoverJSON converts panics into the standard 500 envelope and logs the stack
func RecoverJSON(next stdhttp.Handler) stdhttp.Handler {
	return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == stdhttp.ErrAbortHandler {
				panic(v)
			}
			logger.C(r.Context()).Error().
				Interface("panic", v).
				Bytes("stack", debug.Stack()).
				Str("path", r.URL.Path).
				Msg("panic recovered")

			if reqID := w.Header().Get("X-Request-ID"); reqID == "" {
				if id := r.Header.Get("X-Request-ID"); id != "" {
					w.Header().Set("X-Request-ID", id)
				}
			}
			phttp.RespondError(w, r, perr.PanicErrf("panic recovered"))
		}()
		next.ServeHTTP(w, r)
	})
}
