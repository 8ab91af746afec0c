package middleware

import (
	"net/http"

	"github.com/imlinkk/QLNS/internal/requestctx"
	"github.com/imlinkk/QLNS/internal/transport/http/api"
)

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); !ok {
			api.Unauthorized(w, "Unauthorized", requestctx.GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole gates a route to the listed roles. It implies RequireAuth.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r.Context())
			if !ok {
				api.Unauthorized(w, "Unauthorized", requestctx.GetRequestID(r.Context()))
				return
			}
			if !allowed[user.Role] {
				api.Forbidden(w, "Insufficient permissions", requestctx.GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
