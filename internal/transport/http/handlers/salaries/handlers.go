package salaryhandler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/imlinkk/QLNS/internal/domain/salary"
	"github.com/imlinkk/QLNS/internal/platform/crud"
	"github.com/imlinkk/QLNS/internal/requestctx"
	"github.com/imlinkk/QLNS/internal/transport/http/api"
	"github.com/imlinkk/QLNS/internal/transport/http/shared"
)

type Handler struct {
	Store *salary.Store
}

func NewHandler(store *salary.Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/salaries", func(r chi.Router) {
		r.Get("/", h.handleCurrentMonth)
		r.Get("/period", h.handleByPeriod)
		r.Get("/statistics", h.handleStatistics)
		r.Get("/employee/{id:[0-9]+}", h.handleByEmployee)
		r.Post("/", h.handleCreate)
		r.Route("/{id:[0-9]+}", func(r chi.Router) {
			r.Get("/", h.handleShow)
			r.Put("/", h.handleUpdate)
			r.Get("/payslip", h.handlePayslip)
		})
	})
}

func (h *Handler) handleCurrentMonth(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	records, err := h.Store.CurrentMonth(r.Context())
	if err != nil {
		slog.Error("salary list failed", "err", err, "request_id", rid)
		api.ServerError(w, "Failed to fetch salaries", rid)
		return
	}
	api.Success(w, records, "", rid)
}

func (h *Handler) handleByPeriod(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	month := shared.QueryInt(r, "month", 0)
	year := shared.QueryInt(r, "year", 0)
	if month < 1 || month > 12 || year <= 0 {
		api.Fail(w, http.StatusBadRequest, "Valid month and year are required", rid)
		return
	}

	records, err := h.Store.ByPeriod(r.Context(), month, year)
	if err != nil {
		slog.Error("salary period query failed", "err", err, "request_id", rid)
		api.ServerError(w, "Failed to fetch salaries", rid)
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
		slog.Error("employee salary query failed", "err", err, "id", id, "request_id", rid)
		api.ServerError(w, "Failed to fetch employee salaries", rid)
		return
	}
	api.Success(w, records, "", rid)
}

func (h *Handler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	stats, err := h.Store.Statistics(r.Context(), shared.QueryInt(r, "month", 0), shared.QueryInt(r, "year", 0))
	if err != nil {
		slog.Error("salary statistics failed", "err", err, "request_id", rid)
		api.ServerError(w, "Failed to fetch statistics", rid)
		return
	}
	api.Success(w, stats, "", rid)
}

func (h *Handler) handleShow(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	id, err := shared.URLID(r)
	if err != nil {
		api.NotFound(w, "Salary record not found", rid)
		return
	}

	record, err := h.Store.FindWithEmployee(r.Context(), id)
	if err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			api.NotFound(w, "Salary record not found", rid)
			return
		}
		slog.Error("salary lookup failed", "err", err, "id", id, "request_id", rid)
		api.ServerError(w, "Failed to fetch salary record", rid)
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
	if missing := shared.RequireFields(data, salary.Required...); len(missing) > 0 {
		api.Fail(w, http.StatusUnprocessableEntity, "Missing required fields: "+strings.Join(missing, ", "), rid)
		return
	}
	delete(data, "id")
	shared.CoerceInts(data, "employee_id", "month", "year")

	base, ok := shared.FloatField(data, "base_salary")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "base_salary must be numeric", rid)
		return
	}
	bonus, _ := shared.FloatField(data, "bonus")
	deduction, _ := shared.FloatField(data, "deduction")
	data["bonus"] = bonus
	data["deduction"] = deduction
	data["total_salary"] = salary.Total(base, bonus, deduction)

	id, err := h.Store.Create(r.Context(), data)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			api.Fail(w, http.StatusBadRequest, "Salary record already exists for this period", rid)
			return
		}
		if errors.Is(err, crud.ErrUnknownColumn) || errors.Is(err, crud.ErrEmptyData) {
			api.Fail(w, http.StatusBadRequest, "Invalid request body", rid)
			return
		}
		slog.Error("salary insert failed", "err", err, "request_id", rid)
		api.Fail(w, http.StatusBadRequest, "Failed to create salary record", rid)
		return
	}
	api.Success(w, map[string]any{"id": id}, "Salary record created", rid)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	id, err := shared.URLID(r)
	if err != nil {
		api.NotFound(w, "Salary record not found", rid)
		return
	}

	existing, err := h.Store.Find(r.Context(), id)
	if err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			api.NotFound(w, "Salary record not found", rid)
			return
		}
		slog.Error("salary lookup failed", "err", err, "id", id, "request_id", rid)
		api.ServerError(w, "Failed to update salary record", rid)
		return
	}

	data, err := shared.DecodeBody(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "Invalid request body", rid)
		return
	}
	delete(data, "id")
	shared.CoerceInts(data, "employee_id", "month", "year")

	// Recompute the total from the merged record so a partial update of one
	// component keeps the stored total consistent.
	merged := func(key string) float64 {
		if value, ok := shared.FloatField(data, key); ok {
			return value
		}
		value, _ := shared.FloatField(existing, key)
		return value
	}
	data["total_salary"] = salary.Total(merged("base_salary"), merged("bonus"), merged("deduction"))

	updated, err := h.Store.Update(r.Context(), id, data)
	if err != nil || !updated {
		if err != nil && !errors.Is(err, crud.ErrUnknownColumn) && !errors.Is(err, crud.ErrEmptyData) {
			slog.Error("salary update failed", "err", err, "id", id, "request_id", rid)
		}
		api.Fail(w, http.StatusBadRequest, "Failed to update salary record", rid)
		return
	}
	api.Success(w, nil, "Salary record updated", rid)
}

func (h *Handler) handlePayslip(w http.ResponseWriter, r *http.Request) {
	rid := requestctx.GetRequestID(r.Context())

	id, err := shared.URLID(r)
	if err != nil {
		api.NotFound(w, "Salary record not found", rid)
		return
	}

	record, err := h.Store.FindWithEmployee(r.Context(), id)
	if err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			api.NotFound(w, "Salary record not found", rid)
			return
		}
		slog.Error("salary lookup failed", "err", err, "id", id, "request_id", rid)
		api.ServerError(w, "Failed to generate payslip", rid)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename=payslip.pdf")
	if err := salary.RenderPayslip(w, record); err != nil {
		slog.Error("payslip render failed", "err", err, "id", id, "request_id", rid)
	}
}
