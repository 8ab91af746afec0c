package performancehandler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/imlinkk/QLNS/internal/domain/performance"
	"github.com/imlinkk/QLNS/internal/platform/crud"
	"github.com/imlinkk/QLNS/internal/requestctx"
	"github.com/imlinkk/QLNS/internal/transport/http/api"
	"github.com/imlinkk/QLNS/internal/transport/http/shared"
)

type Handler struct {
	Store *performance.Store
}

func NewHandler(store *performance.Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/performance", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/statistics", h.handleStatistics)
		r.Get("/employee/{id:[0-9]+}", h.handleByEmployee)
		r.Get("/rating/{id:[0-9]+}", h.handleAverageRating)
		r.Post("/", h.handleCreate)
		r.Route("/{id:[0-9]+}", func(r chi.Router) {
			r.Get("/", h.handleShow)
			r.Put("/", h.handleUpdate)
		})
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	records, err := h.Store.AllWithDetails(r.Context())
	if err != nil {
		slog.Error("performance list failed", "err", err, "request_id", rid)
		api.ServerError(w, "Failed to fetch performance reviews", rid)
		return
	}
	api.Success(w, records, "", rid)
}

func (h *Handler) handleByEmployee(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	id, err := shared.URLID(r)
	if err != nil {
		api.NotFound(w, "Employee not found", rid)
		return
	}

	records, err := h.Store.ByEmployee(r.Context(), id)
	if err != nil {
		slog.Error("employee review query failed", "err", err, "id", id, "request_id", rid)
		api.ServerError(w, "Failed to fetch employee reviews", rid)
		return
	}
	api.Success(w, records, "", rid)
}

func (h *Handler) handleAverageRating(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	id, err := shared.URLID(r)
	if err != nil {
		api.NotFound(w, "Employee not found", rid)
		return
	}

	rating, err := h.Store.AverageRating(r.Context(), id)
	if err != nil {
		slog.Error("average rating query failed", "err", err, "id", id, "request_id", rid)
		api.ServerError(w, "Failed to fetch average rating", rid)
		return
	}
	api.Success(w, map[string]any{"average_rating": rating}, "", rid)
}

func (h *Handler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	stats, err := h.Store.Statistics(r.Context())
	if err != nil {
		slog.Error("performance statistics failed", "err", err, "request_id", rid)
		api.ServerError(w, "Failed to fetch statistics", rid)
		return
	}
	api.Success(w, stats, "", rid)
}

func (h *Handler) handleShow(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	id, err := shared.URLID(r)
	if err != nil {
		api.NotFound(w, "Review not found", rid)
		return
	}

	record, err := h.Store.Find(r.Context(), id)
	if err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			api.NotFound(w, "Review not found", rid)
			return
		}
		slog.Error("review lookup failed", "err", err, "id", id, "request_id", rid)
		api.ServerError(w, "Failed to fetch review", rid)
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
	if missing := shared.RequireFields(data, performance.Required...); len(missing) > 0 {
		api.Fail(w, http.StatusUnprocessableEntity, "Missing required fields: "+strings.Join(missing, ", "), rid)
		return
	}

	rating, ok := shared.FloatField(data, "rating")
	if !ok || rating < 0 || rating > 5 {
		api.Fail(w, http.StatusBadRequest, "Rating must be between 0 and 5", rid)
		return
	}

	delete(data, "id")
	shared.CoerceInts(data, "employee_id", "reviewer_id")
	if _, present := data["status"]; !present {
		data["status"] = "draft"
	}

	id, err := h.Store.Create(r.Context(), data)
	if err != nil {
		if errors.Is(err, crud.ErrUnknownColumn) || errors.Is(err, crud.ErrEmptyData) {
			api.Fail(w, http.StatusBadRequest, "Invalid request body", rid)
			return
		}
		slog.Error("review insert failed", "err", err, "request_id", rid)
		api.Fail(w, http.StatusBadRequest, "Failed to create review", rid)
		return
	}
	api.Success(w, map[string]any{"id": id}, "Performance review created", rid)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	id, err := shared.URLID(r)
	if err != nil {
		api.NotFound(w, "Review not found", rid)
		return
	}
	if _, err := h.Store.Find(r.Context(), id); err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			api.NotFound(w, "Review not found", rid)
			return
		}
		slog.Error("review lookup failed", "err", err, "id", id, "request_id", rid)
		api.ServerError(w, "Failed to update review", rid)
		return
	}

	data, err := shared.DecodeBody(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "Invalid request body", rid)
		return
	}
	if _, present := data["rating"]; present {
		rating, ok := shared.FloatField(data, "rating")
		if !ok || rating < 0 || rating > 5 {
			api.Fail(w, http.StatusBadRequest, "Rating must be between 0 and 5", rid)
			return
		}
	}
	delete(data, "id")
	shared.CoerceInts(data, "employee_id", "reviewer_id")

	updated, err := h.Store.Update(r.Context(), id, data)
	if err != nil || !updated {
		if err != nil && !errors.Is(err, crud.ErrUnknownColumn) && !errors.Is(err, crud.ErrEmptyData) {
			slog.Error("review update failed", "err", err, "id", id, "request_id", rid)
		}
		api.Fail(w, http.StatusBadRequest, "Failed to update review", rid)
		return
	}
	api.Success(w, nil, "Review updated", rid)
}
