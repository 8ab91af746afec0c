package authhandler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/imlinkk/QLNS/internal/domain/auth"
	"github.com/imlinkk/QLNS/internal/requestctx"
	"github.com/imlinkk/QLNS/internal/transport/http/api"
	"github.com/imlinkk/QLNS/internal/transport/http/middleware"
	"github.com/imlinkk/QLNS/internal/transport/http/shared"
)

type Handler struct {
	Store      *auth.Store
	Secret     string
	SessionTTL time.Duration
	Secure     bool
}

func NewHandler(store *auth.Store, secret string, ttl time.Duration, secure bool) *Handler {
	return &Handler{Store: store, Secret: secret, SessionTTL: ttl, Secure: secure}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/register", h.handleRegister)
	r.Post("/logout", h.handleLogout)
	r.Get("/auth/check", h.handleCheck)
	r.Post("/auth/check", h.handleCheck)
	r.Get("/auth/user", h.handleCurrentUser)
	r.Put("/auth/profile", h.handleUpdateProfile)
	r.Put("/auth/password", h.handleChangePassword)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	data, err := shared.DecodeBody(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "Invalid request body", rid)
		return
	}
	if missing := shared.RequireFields(data, "username", "password"); len(missing) > 0 {
		api.Fail(w, http.StatusUnprocessableEntity, "Missing required fields: "+strings.Join(missing, ", "), rid)
		return
	}

	username := shared.StringField(data, "username")
	password := shared.StringField(data, "password")

	user, err := h.Store.FindByUsername(r.Context(), username)
	if err != nil {
		if !errors.Is(err, auth.ErrUserNotFound) {
			slog.Error("login lookup failed", "err", err, "request_id", rid)
			api.ServerError(w, "An error occurred during login", rid)
			return
		}
		api.Unauthorized(w, "Invalid username or password", rid)
		return
	}
	if err := auth.CheckPassword(user.Password, password); err != nil {
		api.Unauthorized(w, "Invalid username or password", rid)
		return
	}

	sessionID := uuid.NewString()
	token, err := auth.GenerateToken(h.Secret, auth.Claims{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		FullName:  user.FullName,
		SessionID: sessionID,
	}, h.SessionTTL)
	if err != nil {
		slog.Error("token generation failed", "err", err, "request_id", rid)
		api.ServerError(w, "An error occurred during login", rid)
		return
	}

	expires := time.Now().Add(h.SessionTTL)
	if err := h.Store.CreateSession(r.Context(), user.ID, auth.HashToken(token), expires); err != nil {
		slog.Error("session insert failed", "err", err, "request_id", rid)
		api.ServerError(w, "An error occurred during login", rid)
		return
	}

	h.setSessionCookie(w, token, expires)
	api.Success(w, map[string]any{
		"user":       user,
		"token":      token,
		"session_id": sessionID,
		"expires_at": expires.UTC().Format(time.RFC3339),
	}, "Login successful", rid)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	data, err := shared.DecodeBody(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "Invalid request body", rid)
		return
	}
	if missing := shared.RequireFields(data, "username", "password"); len(missing) > 0 {
		api.Fail(w, http.StatusUnprocessableEntity, "Missing required fields: "+strings.Join(missing, ", "), rid)
		return
	}

	username := shared.StringField(data, "username")
	password := shared.StringField(data, "password")
	if len(password) < 6 {
		api.Fail(w, http.StatusBadRequest, "Password must be at least 6 characters long", rid)
		return
	}

	if _, err := h.Store.FindByUsername(r.Context(), username); err == nil {
		api.Fail(w, http.StatusBadRequest, "Username already exists", rid)
		return
	} else if !errors.Is(err, auth.ErrUserNotFound) {
		slog.Error("register lookup failed", "err", err, "request_id", rid)
		api.ServerError(w, "An error occurred during registration", rid)
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		slog.Error("password hash failed", "err", err, "request_id", rid)
		api.ServerError(w, "An error occurred during registration", rid)
		return
	}

	role := shared.StringField(data, "role")
	if role == "" {
		role = "employee"
	}

	id, err := h.Store.CreateUser(r.Context(), username, hash, role,
		shared.StringField(data, "full_name"), shared.StringField(data, "email"))
	if err != nil {
		slog.Error("user insert failed", "err", err, "request_id", rid)
		api.Fail(w, http.StatusBadRequest, "Registration failed", rid)
		return
	}

	api.Success(w, map[string]any{"id": id}, "Registration successful", rid)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	if user, ok := middleware.GetUser(r.Context()); ok {
		token := bearerOrCookieToken(r)
		if token != "" {
			if err := h.Store.RevokeSession(r.Context(), user.UserID, auth.HashToken(token)); err != nil {
				slog.Warn("session revoke failed", "err", err, "request_id", rid)
			}
		}
	}

	h.clearSessionCookie(w)
	api.Success(w, nil, "Logout successful", rid)
}

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Success(w, map[string]any{"authenticated": false}, "", rid)
		return
	}
	api.Success(w, map[string]any{
		"authenticated": true,
		"user": map[string]any{
			"id":        user.UserID,
			"username":  user.Username,
			"role":      user.Role,
			"full_name": user.FullName,
		},
	}, "", rid)
}

func (h *Handler) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	session, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Unauthorized(w, "User not logged in", rid)
		return
	}

	user, err := h.Store.FindByID(r.Context(), session.UserID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			api.NotFound(w, "User not found", rid)
			return
		}
		slog.Error("user lookup failed", "err", err, "request_id", rid)
		api.ServerError(w, "Failed to fetch user", rid)
		return
	}
	api.Success(w, user, "", rid)
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	session, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Unauthorized(w, "User not logged in", rid)
		return
	}

	data, err := shared.DecodeBody(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "Invalid request body", rid)
		return
	}

	updated, err := h.Store.UpdateProfile(r.Context(), session.UserID,
		shared.StringField(data, "full_name"), shared.StringField(data, "email"))
	if err != nil || !updated {
		if err != nil {
			slog.Error("profile update failed", "err", err, "request_id", rid)
		}
		api.Fail(w, http.StatusBadRequest, "Failed to update profile", rid)
		return
	}
	api.Success(w, nil, "Profile updated successfully", rid)
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	session, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Unauthorized(w, "User not logged in", rid)
		return
	}

	data, err := shared.DecodeBody(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "Invalid request body", rid)
		return
	}
	if missing := shared.RequireFields(data, "old_password", "new_password"); len(missing) > 0 {
		api.Fail(w, http.StatusUnprocessableEntity, "Missing required fields: "+strings.Join(missing, ", "), rid)
		return
	}

	newPassword := shared.StringField(data, "new_password")
	if len(newPassword) < 6 {
		api.Fail(w, http.StatusBadRequest, "Password must be at least 6 characters long", rid)
		return
	}

	user, err := h.Store.FindByID(r.Context(), session.UserID)
	if err != nil {
		slog.Error("user lookup failed", "err", err, "request_id", rid)
		api.ServerError(w, "Failed to change password", rid)
		return
	}
	if err := auth.CheckPassword(user.Password, shared.StringField(data, "old_password")); err != nil {
		api.Fail(w, http.StatusBadRequest, "Invalid old password", rid)
		return
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		slog.Error("password hash failed", "err", err, "request_id", rid)
		api.ServerError(w, "Failed to change password", rid)
		return
	}
	if updated, err := h.Store.UpdatePassword(r.Context(), session.UserID, hash); err != nil || !updated {
		if err != nil {
			slog.Error("password update failed", "err", err, "request_id", rid)
		}
		api.Fail(w, http.StatusBadRequest, "Failed to change password", rid)
		return
	}
	api.Success(w, nil, "Password changed successfully", rid)
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func bearerOrCookieToken(r *http.Request) string {
	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
