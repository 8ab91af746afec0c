package attendance

import (
	"context"
	"fmt"

	"github.com/imlinkk/QLNS/internal/platform/crud"
)

var Columns = []string{
	"employee_id", "date", "check_in", "check_out", "status", "notes",
}

var Required = []string{"employee_id", "date", "status"}

type Store struct {
	*crud.Table
}

func NewStore(db crud.DB) *Store {
	return &Store{Table: crud.New(db, "attendance", Columns...)}
}

// Today lists the current day's records with employee and department names.
func (s *Store) Today(ctx context.Context) ([]map[string]any, error) {
	return s.Query(ctx, `
    SELECT a.*, e.name AS employee_name, d.name AS department_name
    FROM attendance a
    LEFT JOIN employees e ON a.employee_id = e.id
    LEFT JOIN departments d ON e.department_id = d.id
    WHERE a.date = CURRENT_DATE
    ORDER BY e.name ASC`)
}

// ByEmployee lists an employee's records, optionally scoped to a month/year.
func (s *Store) ByEmployee(ctx context.Context, employeeID int64, month, year int) ([]map[string]any, error) {
	sql := `
    SELECT a.*, e.name AS employee_name
    FROM attendance a
    LEFT JOIN employees e ON a.employee_id = e.id
    WHERE a.employee_id = $1`
	args := []any{employeeID}

	if month > 0 && year > 0 {
		sql += " AND EXTRACT(MONTH FROM a.date) = $2 AND EXTRACT(YEAR FROM a.date) = $3"
		args = append(args, month, year)
	}
	sql += " ORDER BY a.date DESC"

	return s.Query(ctx, sql, args...)
}

// Summary counts an employee's days per status for one month.
func (s *Store) Summary(ctx context.Context, employeeID int64, month, year int) (map[string]any, error) {
	records, err := s.Query(ctx, `
    SELECT
      COUNT(*) AS total_days,
      COUNT(*) FILTER (WHERE status = 'present') AS present_days,
      COUNT(*) FILTER (WHERE status = 'absent') AS absent_days,
      COUNT(*) FILTER (WHERE status = 'late') AS late_days,
      COUNT(*) FILTER (WHERE status = 'on_leave') AS leave_days
    FROM attendance
    WHERE employee_id = $1
      AND EXTRACT(MONTH FROM date) = $2
      AND EXTRACT(YEAR FROM date) = $3`, employeeID, month, year)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("summary query returned no row")
	}
	return records[0], nil
}
