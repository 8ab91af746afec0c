package attendancehandler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/imlinkk/QLNS/internal/domain/attendance"
	"github.com/imlinkk/QLNS/internal/platform/crud"
	"github.com/imlinkk/QLNS/internal/requestctx"
	"github.com/imlinkk/QLNS/internal/transport/http/api"
	"github.com/imlinkk/QLNS/internal/transport/http/shared"
)

type Handler struct {
	Store *attendance.Store
}

func NewHandler(store *attendance.Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.Get("/", h.handleToday)
		r.Get("/employee/{id:[0-9]+}", h.handleByEmployee)
		r.Get("/summary/{id:[0-9]+}", h.handleSummary)
		r.Post("/", h.handleCreate)
		r.Route("/{id:[0-9]+}", func(r chi.Router) {
			r.Get("/", h.handleShow)
			r.Put("/", h.handleUpdate)
		})
	})
}

func (h *Handler) handleToday(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	records, err := h.Store.Today(r.Context())
	if err != nil {
		slog.Error("attendance list failed", "err", err, "request_id", rid)
		api.ServerError(w, "Failed to fetch attendance", rid)
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

	records, err := h.Store.ByEmployee(r.Context(), id,
		shared.QueryInt(r, "month", 0), shared.QueryInt(r, "year", 0))
	if err != nil {
		slog.Error("employee attendance query failed", "err", err, "id", id, "request_id", rid)
		api.ServerError(w, "Failed to fetch attendance", rid)
		return
	}
	api.Success(w, records, "", rid)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	id, err := shared.URLID(r)
	if err != nil {
		api.NotFound(w, "Employee not found", rid)
		return
	}

	month := shared.QueryInt(r, "month", 0)
	year := shared.QueryInt(r, "year", 0)
	if month < 1 || month > 12 || year <= 0 {
		api.Fail(w, http.StatusBadRequest, "Valid month and year are required", rid)
		return
	}

	summary, err := h.Store.Summary(r.Context(), id, month, year)
	if err != nil {
		slog.Error("attendance summary failed", "err", err, "id", id, "request_id", rid)
		api.ServerError(w, "Failed to fetch summary", rid)
		return
	}
	api.Success(w, summary, "", rid)
}

func (h *Handler) handleShow(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	id, err := shared.URLID(r)
	if err != nil {
		api.NotFound(w, "Attendance record not found", rid)
		return
	}

	record, err := h.Store.Find(r.Context(), id)
	if err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			api.NotFound(w, "Attendance record not found", rid)
			return
		}
		slog.Error("attendance lookup failed", "err", err, "id", id, "request_id", rid)
		api.ServerError(w, "Failed to fetch attendance", rid)
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
	if missing := shared.RequireFields(data, attendance.Required...); len(missing) > 0 {
		api.Fail(w, http.StatusUnprocessableEntity, "Missing required fields: "+strings.Join(missing, ", "), rid)
		return
	}
	if _, err := shared.ParseDate(shared.StringField(data, "date")); err != nil {
		api.Fail(w, http.StatusBadRequest, "date must be a valid date in YYYY-MM-DD format", rid)
		return
	}
	delete(data, "id")
	shared.CoerceInts(data, "employee_id")

	// The unique (employee_id, date) constraint closes the
	// check-then-insert race; the conflict surfaces as 23505.
	id, err := h.Store.Create(r.Context(), data)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			api.Fail(w, http.StatusBadRequest, "Attendance already recorded for this date", rid)
			return
		}
		if errors.Is(err, crud.ErrUnknownColumn) || errors.Is(err, crud.ErrEmptyData) {
			api.Fail(w, http.StatusBadRequest, "Invalid request body", rid)
			return
		}
		slog.Error("attendance insert failed", "err", err, "request_id", rid)
		api.Fail(w, http.StatusBadRequest, "Failed to record attendance", rid)
		return
	}
	api.Success(w, map[string]any{"id": id}, "Attendance recorded", rid)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	id, err := shared.URLID(r)
	if err != nil {
		api.NotFound(w, "Attendance record not found", rid)
		return
	}
	if _, err := h.Store.Find(r.Context(), id); err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			api.NotFound(w, "Attendance record not found", rid)
			return
		}
		slog.Error("attendance lookup failed", "err", err, "id", id, "request_id", rid)
		api.ServerError(w, "Failed to update attendance", rid)
		return
	}

	data, err := shared.DecodeBody(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "Invalid request body", rid)
		return
	}
	delete(data, "id")
	shared.CoerceInts(data, "employee_id")

	updated, err := h.Store.Update(r.Context(), id, data)
	if err != nil || !updated {
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				api.Fail(w, http.StatusBadRequest, "Attendance already recorded for this date", rid)
				return
			}
			if !errors.Is(err, crud.ErrUnknownColumn) && !errors.Is(err, crud.ErrEmptyData) {
				slog.Error("attendance update failed", "err", err, "id", id, "request_id", rid)
			}
		}
		api.Fail(w, http.StatusBadRequest, "Failed to update attendance", rid)
		return
	}
	api.Success(w, nil, "Attendance updated", rid)
}
