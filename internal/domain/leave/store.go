package leave

import (
	"context"
	"time"

	"github.com/imlinkk/QLNS/internal/platform/crud"
)

var Columns = []string{
	"employee_id", "leave_type", "start_date", "end_date", "days_count",
	"reason", "status", "approved_by", "approved_at",
}

var Required = []string{"employee_id", "leave_type", "start_date", "end_date", "days_count"}

type Store struct {
	*crud.Table
}

func NewStore(db crud.DB) *Store {
	return &Store{Table: crud.New(db, "leaves", Columns...)}
}

func (s *Store) AllWithDetails(ctx context.Context) ([]map[string]any, error) {
	return s.Query(ctx, `
    SELECT l.*, e.name AS employee_name, d.name AS department_name, u.username AS approved_by_name
    FROM leaves l
    LEFT JOIN employees e ON l.employee_id = e.id
    LEFT JOIN departments d ON e.department_id = d.id
    LEFT JOIN users u ON l.approved_by = u.id
    ORDER BY l.created_at DESC`)
}

// Pending lists open requests oldest first, the review queue order.
func (s *Store) Pending(ctx context.Context) ([]map[string]any, error) {
	return s.Query(ctx, `
    SELECT l.*, e.name AS employee_name, d.name AS department_name
    FROM leaves l
    LEFT JOIN employees e ON l.employee_id = e.id
    LEFT JOIN departments d ON e.department_id = d.id
    WHERE l.status = 'pending'
    ORDER BY l.created_at ASC`)
}

func (s *Store) ByEmployee(ctx context.Context, employeeID int64) ([]map[string]any, error) {
	return s.Query(ctx, `
    SELECT l.*, e.name AS employee_name, u.username AS approved_by_name
    FROM leaves l
    LEFT JOIN employees e ON l.employee_id = e.id
    LEFT JOIN users u ON l.approved_by = u.id
    WHERE l.employee_id = $1
    ORDER BY l.created_at DESC`, employeeID)
}

// Decide transitions a pending request to approved or rejected, recording the
// deciding user and time. Only pending requests transition; the boolean
// reports whether a row changed.
func (s *Store) Decide(ctx context.Context, leaveID, decidedBy int64, status string) (bool, error) {
	affected, err := s.Exec(ctx, `
    UPDATE leaves
    SET status = $1, approved_by = $2, approved_at = $3
    WHERE id = $4 AND status = 'pending'`,
		status, decidedBy, time.Now(), leaveID)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Statistics breaks down an employee's approved leave days per type for one
// year.
func (s *Store) Statistics(ctx context.Context, employeeID int64, year int) ([]map[string]any, error) {
	return s.Query(ctx, `
    SELECT leave_type, COUNT(*) AS count, COALESCE(SUM(days_count), 0) AS total_days
    FROM leaves
    WHERE employee_id = $1
      AND EXTRACT(YEAR FROM start_date) = $2
      AND status = 'approved'
    GROUP BY leave_type`, employeeID, year)
}
