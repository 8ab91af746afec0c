package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/imlinkk/QLNS/internal/domain/auth"
)

type ctxKey string

const ctxKeyUser ctxKey = "user"

// SessionCookie is the name of the HttpOnly cookie carrying the session token.
const SessionCookie = "qlns_session"

// SessionChecker verifies the token still maps to a live server-side session,
// so logout and expiry revoke access even while the token itself is valid.
type SessionChecker interface {
	SessionValid(ctx context.Context, userID int64, tokenHash string) (bool, error)
}

// Session resolves the authenticated user from the session cookie or, for API
// clients, an Authorization bearer token. Unauthenticated requests pass
// through without a user; RequireAuth decides whether that is an error.
func Session(secret string, sessions SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			valid, err := sessions.SessionValid(r.Context(), claims.UserID, auth.HashToken(token))
			if err != nil {
				slog.Warn("session lookup failed", "err", err, "user_id", claims.UserID)
				next.ServeHTTP(w, r)
				return
			}
			if !valid {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyUser, auth.UserContext{
				UserID:    claims.UserID,
				Username:  claims.Username,
				Role:      claims.Role,
				FullName:  claims.FullName,
				SessionID: claims.SessionID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func GetUser(ctx context.Context) (auth.UserContext, bool) {
	user, ok := ctx.Value(ctxKeyUser).(auth.UserContext)
	return user, ok
}

// WithUser is a test hook for handlers that read the authenticated user.
func WithUser(ctx context.Context, user auth.UserContext) context.Context {
	return context.WithValue(ctx, ctxKeyUser, user)
}
