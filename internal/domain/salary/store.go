package salary

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/imlinkk/QLNS/internal/platform/crud"
)

var Columns = []string{
	"employee_id", "base_salary", "bonus", "deduction", "total_salary",
	"month", "year", "notes",
}

var Required = []string{"employee_id", "base_salary", "month", "year"}

type Store struct {
	*crud.Table
}

func NewStore(db crud.DB) *Store {
	return &Store{Table: crud.New(db, "salaries", Columns...)}
}

// Total computes base + bonus - deduction with exact decimal arithmetic, so
// repeated updates cannot accumulate float drift.
func Total(base, bonus, deduction float64) float64 {
	total := decimal.NewFromFloat(base).
		Add(decimal.NewFromFloat(bonus)).
		Sub(decimal.NewFromFloat(deduction))
	result, _ := total.Float64()
	return result
}

func (s *Store) ByEmployee(ctx context.Context, employeeID int64) ([]map[string]any, error) {
	return s.Query(ctx, `
    SELECT s.*, e.name AS employee_name
    FROM salaries s
    LEFT JOIN employees e ON s.employee_id = e.id
    WHERE s.employee_id = $1
    ORDER BY s.year DESC, s.month DESC`, employeeID)
}

func (s *Store) ByPeriod(ctx context.Context, month, year int) ([]map[string]any, error) {
	return s.Query(ctx, `
    SELECT s.*, e.name AS employee_name, e.department_id, d.name AS department_name
    FROM salaries s
    LEFT JOIN employees e ON s.employee_id = e.id
    LEFT JOIN departments d ON e.department_id = d.id
    WHERE s.month = $1 AND s.year = $2
    ORDER BY e.name ASC`, month, year)
}

func (s *Store) CurrentMonth(ctx context.Context) ([]map[string]any, error) {
	now := time.Now()
	return s.ByPeriod(ctx, int(now.Month()), now.Year())
}

// Statistics aggregates payroll totals, optionally scoped to one period.
// month and year are both zero or both set.
func (s *Store) Statistics(ctx context.Context, month, year int) (map[string]any, error) {
	sql := `
    SELECT
      COUNT(*) AS total_records,
      COALESCE(SUM(base_salary), 0) AS total_base_salary,
      COALESCE(SUM(bonus), 0) AS total_bonus,
      COALESCE(SUM(deduction), 0) AS total_deduction,
      COALESCE(SUM(total_salary), 0) AS total_payroll,
      AVG(total_salary) AS average_salary
    FROM salaries`
	var args []any
	if month > 0 && year > 0 {
		sql += " WHERE month = $1 AND year = $2"
		args = append(args, month, year)
	}

	records, err := s.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("statistics query returned no row")
	}
	return records[0], nil
}

// FindWithEmployee loads one salary record joined with employee and
// department details, used by the payslip renderer.
func (s *Store) FindWithEmployee(ctx context.Context, id int64) (map[string]any, error) {
	records, err := s.Query(ctx, `
    SELECT s.*, e.name AS employee_name, d.name AS department_name, p.title AS position_title
    FROM salaries s
    LEFT JOIN employees e ON s.employee_id = e.id
    LEFT JOIN departments d ON e.department_id = d.id
    LEFT JOIN positions p ON e.position_id = p.id
    WHERE s.id = $1
    LIMIT 1`, id)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, crud.ErrNotFound
	}
	return records[0], nil
}
