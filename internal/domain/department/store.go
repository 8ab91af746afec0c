package department

import (
	"context"

	"github.com/imlinkk/QLNS/internal/platform/crud"
)

var Columns = []string{"name", "description", "manager_id"}

type Store struct {
	*crud.Table
}

func NewStore(db crud.DB) *Store {
	return &Store{Table: crud.New(db, "departments", Columns...)}
}

// AllWithCount lists departments with a derived headcount and the manager name.
func (s *Store) AllWithCount(ctx context.Context) ([]map[string]any, error) {
	return s.Query(ctx, `
    SELECT d.*, m.name AS manager_name, COUNT(e.id) AS employee_count
    FROM departments d
    LEFT JOIN employees m ON d.manager_id = m.id
    LEFT JOIN employees e ON d.id = e.department_id
    GROUP BY d.id, m.name
    ORDER BY d.name ASC`)
}

func (s *Store) FindWithCount(ctx context.Context, id int64) (map[string]any, error) {
	records, err := s.Query(ctx, `
    SELECT d.*, m.name AS manager_name, COUNT(e.id) AS employee_count
    FROM departments d
    LEFT JOIN employees m ON d.manager_id = m.id
    LEFT JOIN employees e ON d.id = e.department_id
    WHERE d.id = $1
    GROUP BY d.id, m.name
    LIMIT 1`, id)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, crud.ErrNotFound
	}
	return records[0], nil
}
