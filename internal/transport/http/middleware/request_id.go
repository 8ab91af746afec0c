package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/imlinkk/QLNS/internal/requestctx"
)

// RequestID tags every request with an identifier, honoring an incoming
// X-Request-ID so upstream proxies can correlate logs.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		ctx := requestctx.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
