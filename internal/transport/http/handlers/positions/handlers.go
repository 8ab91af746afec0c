package positionhandler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/imlinkk/QLNS/internal/domain/position"
	"github.com/imlinkk/QLNS/internal/platform/crud"
	"github.com/imlinkk/QLNS/internal/requestctx"
	"github.com/imlinkk/QLNS/internal/transport/http/api"
	"github.com/imlinkk/QLNS/internal/transport/http/shared"
)

type Handler struct {
	Store *position.Store
}

func NewHandler(store *position.Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/positions", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Route("/{id:[0-9]+}", func(r chi.Router) {
			r.Get("/", h.handleShow)
			r.Put("/", h.handleUpdate)
			r.Delete("/", h.handleDelete)
		})
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	records, err := h.Store.AllWithCount(r.Context())
	if err != nil {
		slog.Error("position list failed", "err", err, "request_id", rid)
		api.ServerError(w, "Failed to fetch positions", rid)
		return
	}
	api.Success(w, records, "", rid)
}

func (h *Handler) handleShow(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	id, err := shared.URLID(r)
	if err != nil {
		api.NotFound(w, "Position not found", rid)
		return
	}

	record, err := h.Store.Find(r.Context(), id)
	if err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			api.NotFound(w, "Position not found", rid)
			return
		}
		slog.Error("position lookup failed", "err", err, "id", id, "request_id", rid)
		api.ServerError(w, "Failed to fetch position", rid)
		return
	}
	api.Success(w, record, "", rid)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	data, err := shared.DecodeBody(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "Invalid request body", rid)
		return
	}
	if missing := shared.RequireFields(data, "title"); len(missing) > 0 {
		api.Fail(w, http.StatusUnprocessableEntity, "Missing required fields: "+strings.Join(missing, ", "), rid)
		return
	}
	delete(data, "id")

	id, err := h.Store.Create(r.Context(), data)
	if err != nil {
		if errors.Is(err, crud.ErrUnknownColumn) || errors.Is(err, crud.ErrEmptyData) {
			api.Fail(w, http.StatusBadRequest, "Invalid request body", rid)
			return
		}
		slog.Error("position insert failed", "err", err, "request_id", rid)
		api.Fail(w, http.StatusBadRequest, "Failed to create position", rid)
		return
	}
	api.Success(w, map[string]any{"id": id}, "Position created", rid)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	id, err := shared.URLID(r)
	if err != nil {
		api.NotFound(w, "Position not found", rid)
		return
	}
	if _, err := h.Store.Find(r.Context(), id); err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			api.NotFound(w, "Position not found", rid)
			return
		}
		slog.Error("position lookup failed", "err", err, "id", id, "request_id", rid)
		api.ServerError(w, "Failed to update position", rid)
		return
	}

	data, err := shared.DecodeBody(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "Invalid request body", rid)
		return
	}
	delete(data, "id")

	updated, err := h.Store.Update(r.Context(), id, data)
	if err != nil || !updated {
		if err != nil && !errors.Is(err, crud.ErrUnknownColumn) && !errors.Is(err, crud.ErrEmptyData) {
			slog.Error("position update failed", "err", err, "id", id, "request_id", rid)
		}
		api.Fail(w, http.StatusBadRequest, "Failed to update position", rid)
		return
	}
	api.Success(w, nil, "Position updated", rid)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	id, err := shared.URLID(r)
	if err != nil {
		api.NotFound(w, "Position not found", rid)
		return
	}
	if _, err := h.Store.Find(r.Context(), id); err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			api.NotFound(w, "Position not found", rid)
			return
		}
		slog.Error("position lookup failed", "err", err, "id", id, "request_id", rid)
		api.ServerError(w, "Failed to delete position", rid)
		return
	}

	deleted, err := h.Store.Delete(r.Context(), id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			api.Fail(w, http.StatusBadRequest, "Cannot delete position with employees", rid)
			return
		}
		slog.Error("position delete failed", "err", err, "id", id, "request_id", rid)
		api.Fail(w, http.StatusBadRequest, "Failed to delete position", rid)
		return
	}
	if !deleted {
		api.Fail(w, http.StatusBadRequest, "Failed to delete position", rid)
		return
	}
	api.Success(w, nil, "Position deleted", rid)
}
