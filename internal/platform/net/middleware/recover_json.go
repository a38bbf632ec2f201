package middleware

import (
	"net/http"
	"runtime/debug"

	perr "speakertag/internal/platform/errors"
	"speakertag/internal/platform/logger"
	pnet "speakertag/internal/platform/net"
	phttp "speakertag/internal/platform/net/http"
)

// RecoverJSON answers a panicking handler with the standard 500 envelope.
// http.ErrAbortHandler is re-raised so the server can drop the connection.
func RecoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			reqID := pnet.RequestID(r.Context())
			logger.C(r.Context()).Error().
				Str("request_id", reqID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Interface("panic", v).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			if reqID != "" {
				w.Header().Set("X-Request-ID", reqID)
			}
			phttp.RespondError(w, r, perr.PanicErrf("panic recovered"))
		}()
		next.ServeHTTP(w, r)
	})
}
