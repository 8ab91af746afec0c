package position

import (
	"context"

	"github.com/imlinkk/QLNS/internal/platform/crud"
)

var Columns = []string{"title", "description", "min_salary", "max_salary"}

type Store struct {
	*crud.Table
}

func NewStore(db crud.DB) *Store {
	return &Store{Table: crud.New(db, "positions", Columns...)}
}

func (s *Store) AllWithCount(ctx context.Context) ([]map[string]any, error) {
	return s.Query(ctx, `
    SELECT p.*, COUNT(e.id) AS employee_count
    FROM positions p
    LEFT JOIN employees e ON p.id = e.position_id
    GROUP BY p.id
    ORDER BY p.title ASC`)
}
