package leavehandler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/imlinkk/QLNS/internal/domain/leave"
	"github.com/imlinkk/QLNS/internal/platform/crud"
	"github.com/imlinkk/QLNS/internal/requestctx"
	"github.com/imlinkk/QLNS/internal/transport/http/api"
	"github.com/imlinkk/QLNS/internal/transport/http/middleware"
	"github.com/imlinkk/QLNS/internal/transport/http/shared"
)

type Handler struct {
	Store *leave.Store
}

func NewHandler(store *leave.Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leaves", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/pending", h.handlePending)
		r.Get("/employee/{id:[0-9]+}", h.handleByEmployee)
		r.Get("/statistics/{id:[0-9]+}", h.handleStatistics)
		r.Post("/", h.handleCreate)
		r.Post("/approve/{id:[0-9]+}", h.handleApprove)
		r.Post("/reject/{id:[0-9]+}", h.handleReject)
		r.Get("/{id:[0-9]+}", h.handleShow)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	records, err := h.Store.AllWithDetails(r.Context())
	if err != nil {
		slog.Error("leave list failed", "err", err, "request_id", rid)
		api.ServerError(w, "Failed to fetch leave requests", rid)
		return
	}
	api.Success(w, records, "", rid)
}

func (h *Handler) handlePending(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	records, err := h.Store.Pending(r.Context())
	if err != nil {
		slog.Error("pending leave query failed", "err", err, "request_id", rid)
		api.ServerError(w, "Failed to fetch pending requests", rid)
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
		slog.Error("employee leave query failed", "err", err, "id", id, "request_id", rid)
		api.ServerError(w, "Failed to fetch employee leaves", rid)
		return
	}
	api.Success(w, records, "", rid)
}

func (h *Handler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	id, err := shared.URLID(r)
	if err != nil {
		api.NotFound(w, "Employee not found", rid)
		return
	}

	year := shared.QueryInt(r, "year", time.Now().Year())
	records, err := h.Store.Statistics(r.Context(), id, year)
	if err != nil {
		slog.Error("leave statistics failed", "err", err, "id", id, "request_id", rid)
		api.ServerError(w, "Failed to fetch statistics", rid)
		return
	}
	api.Success(w, records, "", rid)
}

func (h *Handler) handleShow(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	id, err := shared.URLID(r)
	if err != nil {
		api.NotFound(w, "Leave request not found", rid)
		return
	}

	record, err := h.Store.Find(r.Context(), id)
	if err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			api.NotFound(w, "Leave request not found", rid)
			return
		}
		slog.Error("leave lookup failed", "err", err, "id", id, "request_id", rid)
		api.ServerError(w, "Failed to fetch leave request", rid)
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
	if missing := shared.RequireFields(data, leave.Required...); len(missing) > 0 {
		api.Fail(w, http.StatusUnprocessableEntity, "Missing required fields: "+strings.Join(missing, ", "), rid)
		return
	}

	delete(data, "id")
	shared.CoerceInts(data, "employee_id")
	// Requests always enter the workflow as pending, whatever the client sent.
	data["status"] = "pending"
	delete(data, "approved_by")
	delete(data, "approved_at")

	id, err := h.Store.Create(r.Context(), data)
	if err != nil {
		if errors.Is(err, crud.ErrUnknownColumn) || errors.Is(err, crud.ErrEmptyData) {
			api.Fail(w, http.StatusBadRequest, "Invalid request body", rid)
			return
		}
		slog.Error("leave insert failed", "err", err, "request_id", rid)
		api.Fail(w, http.StatusBadRequest, "Failed to submit leave request", rid)
		return
	}
	api.Success(w, map[string]any{"id": id}, "Leave request submitted", rid)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.handleDecision(w, r, "approved", "Leave request approved", "Failed to approve request")
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.handleDecision(w, r, "rejected", "Leave request rejected", "Failed to reject request")
}

func (h *Handler) handleDecision(w http.ResponseWriter, r *http.Request, status, okMsg, failMsg string) {
	rid := requestctx.GetRequestID(r.Context())

	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Unauthorized(w, "Unauthorized", rid)
		return
	}

	id, err := shared.URLID(r)
	if err != nil {
		api.NotFound(w, "Leave request not found", rid)
		return
	}
	if _, err := h.Store.Find(r.Context(), id); err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			api.NotFound(w, "Leave request not found", rid)
			return
		}
		slog.Error("leave lookup failed", "err", err, "id", id, "request_id", rid)
		api.ServerError(w, failMsg, rid)
		return
	}

	decided, err := h.Store.Decide(r.Context(), id, user.UserID, status)
	if err != nil {
		slog.Error("leave decision failed", "err", err, "id", id, "request_id", rid)
		api.Fail(w, http.StatusBadRequest, failMsg, rid)
		return
	}
	if !decided {
		// Exists but is no longer pending.
		api.Fail(w, http.StatusBadRequest, failMsg, rid)
		return
	}
	api.Success(w, nil, okMsg, rid)
}
