package employeehandler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/imlinkk/QLNS/internal/domain/employee"
	"github.com/imlinkk/QLNS/internal/platform/crud"
	"github.com/imlinkk/QLNS/internal/requestctx"
	"github.com/imlinkk/QLNS/internal/transport/http/api"
	"github.com/imlinkk/QLNS/internal/transport/http/shared"
)

type Handler struct {
	Store *employee.Store
}

func NewHandler(store *employee.Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/search", h.handleSearch)
		r.Get("/statistics", h.handleStatistics)
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

	records, err := h.Store.AllWithDetails(r.Context())
	if err != nil {
		slog.Error("employee list failed", "err", err, "request_id", rid)
		api.ServerError(w, "Failed to fetch employees", rid)
		return
	}
	api.Success(w, records, "", rid)
}

func (h *Handler) handleShow(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	id, err := shared.URLID(r)
	if err != nil {
		api.NotFound(w, "Employee not found", rid)
		return
	}

	record, err := h.Store.FindWithDetails(r.Context(), id)
	if err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			api.NotFound(w, "Employee not found", rid)
			return
		}
		slog.Error("employee lookup failed", "err", err, "id", id, "request_id", rid)
		api.ServerError(w, "Failed to fetch employee", rid)
		return
	}
	api.Success(w, record, "", rid)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())
	query := r.URL.Query()

	filter := employee.Filter{
		Name:         strings.TrimSpace(query.Get("name")),
		DepartmentID: int64(shared.QueryInt(r, "department_id", 0)),
		PositionID:   int64(shared.QueryInt(r, "position_id", 0)),
		Status:       strings.TrimSpace(query.Get("status")),
	}
	filter.MinSalary = shared.QueryFloat(r, "min_salary")
	filter.MaxSalary = shared.QueryFloat(r, "max_salary")

	records, err := h.Store.Search(r.Context(), filter)
	if err != nil {
		slog.Error("employee search failed", "err", err, "request_id", rid)
		api.ServerError(w, "Failed to search employees", rid)
		return
	}
	api.Success(w, records, "", rid)
}

func (h *Handler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	stats, err := h.Store.Statistics(r.Context())
	if err != nil {
		slog.Error("employee statistics failed", "err", err, "request_id", rid)
		api.ServerError(w, "Failed to fetch statistics", rid)
		return
	}
	api.Success(w, stats, "", rid)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	data, err := shared.DecodeBody(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "Invalid request body", rid)
		return
	}
	if missing := shared.RequireFields(data, employee.Required...); len(missing) > 0 {
		api.Fail(w, http.StatusUnprocessableEntity, "Missing required fields: "+strings.Join(missing, ", "), rid)
		return
	}

	delete(data, "id")
	shared.CoerceInts(data, "department_id", "position_id")
	if _, ok := data["status"]; !ok {
		data["status"] = "active"
	}

	id, err := h.Store.Create(r.Context(), data)
	if err != nil {
		if errors.Is(err, crud.ErrUnknownColumn) || errors.Is(err, crud.ErrEmptyData) {
			api.Fail(w, http.StatusBadRequest, "Invalid request body", rid)
			return
		}
		slog.Error("employee insert failed", "err", err, "request_id", rid)
		api.Fail(w, http.StatusBadRequest, "Failed to create employee", rid)
		return
	}
	api.Success(w, map[string]any{"id": id}, "Employee created successfully", rid)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	id, err := shared.URLID(r)
	if err != nil {
		api.NotFound(w, "Employee not found", rid)
		return
	}
	if _, err := h.Store.Find(r.Context(), id); err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			api.NotFound(w, "Employee not found", rid)
			return
		}
		slog.Error("employee lookup failed", "err", err, "id", id, "request_id", rid)
		api.ServerError(w, "Failed to update employee", rid)
		return
	}

	data, err := shared.DecodeBody(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "Invalid request body", rid)
		return
	}
	delete(data, "id")
	shared.CoerceInts(data, "department_id", "position_id")

	updated, err := h.Store.Update(r.Context(), id, data)
	if err != nil {
		if errors.Is(err, crud.ErrUnknownColumn) || errors.Is(err, crud.ErrEmptyData) {
			api.Fail(w, http.StatusBadRequest, "Invalid request body", rid)
			return
		}
		slog.Error("employee update failed", "err", err, "id", id, "request_id", rid)
		api.Fail(w, http.StatusBadRequest, "Failed to update employee", rid)
		return
	}
	if !updated {
		api.Fail(w, http.StatusBadRequest, "Failed to update employee", rid)
		return
	}
	api.Success(w, nil, "Employee updated successfully", rid)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	id, err := shared.URLID(r)
	if err != nil {
		api.NotFound(w, "Employee not found", rid)
		return
	}
	if _, err := h.Store.Find(r.Context(), id); err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			api.NotFound(w, "Employee not found", rid)
			return
		}
		slog.Error("employee lookup failed", "err", err, "id", id, "request_id", rid)
		api.ServerError(w, "Failed to delete employee", rid)
		return
	}

	deleted, err := h.Store.Delete(r.Context(), id)
	if err != nil || !deleted {
		if err != nil {
			slog.Error("employee delete failed", "err", err, "id", id, "request_id", rid)
		}
		api.Fail(w, http.StatusBadRequest, "Failed to delete employee", rid)
		return
	}
	api.Success(w, nil, "Employee deleted successfully", rid)
}
