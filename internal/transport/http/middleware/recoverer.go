package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/imlinkk/QLNS/internal/requestctx"
	"github.com/imlinkk/QLNS/internal/transport/http/api"
)

// Recoverer converts panics into generic 500 responses. The stack goes to the
// log only, never to the client.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic recovered",
					"panic", rec,
					"path", r.URL.Path,
					"request_id", requestctx.GetRequestID(r.Context()),
					"stack", string(debug.Stack()),
				)
				api.ServerError(w, "Internal server error", requestctx.GetRequestID(r.Context()))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
