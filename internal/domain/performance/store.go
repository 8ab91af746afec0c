package performance

import (
	"context"
	"fmt"

	"github.com/imlinkk/QLNS/internal/platform/crud"
)

var Columns = []string{
	"employee_id", "reviewer_id", "review_period_start", "review_period_end",
	"rating", "strengths", "weaknesses", "goals", "comments", "status",
}

var Required = []string{"employee_id", "reviewer_id", "review_period_start", "review_period_end", "rating"}

type Store struct {
	*crud.Table
}

func NewStore(db crud.DB) *Store {
	return &Store{Table: crud.New(db, "performance_reviews", Columns...)}
}

func (s *Store) AllWithDetails(ctx context.Context) ([]map[string]any, error) {
	return s.Query(ctx, `
    SELECT p.*, e.name AS employee_name, d.name AS department_name, u.username AS reviewer_name
    FROM performance_reviews p
    LEFT JOIN employees e ON p.employee_id = e.id
    LEFT JOIN departments d ON e.department_id = d.id
    LEFT JOIN users u ON p.reviewer_id = u.id
    ORDER BY p.created_at DESC`)
}

func (s *Store) ByEmployee(ctx context.Context, employeeID int64) ([]map[string]any, error) {
	return s.Query(ctx, `
    SELECT p.*, e.name AS employee_name, u.username AS reviewer_name
    FROM performance_reviews p
    LEFT JOIN employees e ON p.employee_id = e.id
    LEFT JOIN users u ON p.reviewer_id = u.id
    WHERE p.employee_id = $1
    ORDER BY p.review_period_end DESC`, employeeID)
}

// AverageRating averages completed reviews only; nil when none exist.
func (s *Store) AverageRating(ctx context.Context, employeeID int64) (any, error) {
	records, err := s.Query(ctx, `
    SELECT AVG(rating) AS avg_rating
    FROM performance_reviews
    WHERE employee_id = $1 AND status = 'completed'`, employeeID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0]["avg_rating"], nil
}

func (s *Store) Statistics(ctx context.Context) (map[string]any, error) {
	records, err := s.Query(ctx, `
    SELECT
      COUNT(*) AS total_reviews,
      AVG(rating) AS average_rating,
      MAX(rating) AS highest_rating,
      MIN(rating) AS lowest_rating,
      COUNT(*) FILTER (WHERE status = 'completed') AS completed_reviews
    FROM performance_reviews`)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("statistics query returned no row")
	}
	return records[0], nil
}
