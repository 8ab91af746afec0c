package employee

import (
	"context"
	"fmt"
	"strconv"

	"github.com/imlinkk/QLNS/internal/platform/crud"
)

// Columns is the writable column allow-list for the employees table.
var Columns = []string{
	"name", "email", "phone", "department_id", "position_id",
	"salary", "hire_date", "birth_date", "address", "status",
}

// Required lists the fields a create must carry; status defaults to active.
var Required = []string{"name", "department_id", "position_id", "salary", "hire_date"}

type Store struct {
	*crud.Table
}

func NewStore(db crud.DB) *Store {
	return &Store{Table: crud.New(db, "employees", Columns...)}
}

const detailSelect = `
  SELECT
    e.id, e.name, e.email, e.phone, e.department_id, e.position_id,
    e.salary, e.hire_date, e.birth_date, e.address, e.status,
    d.name AS department_name,
    p.title AS position_title
  FROM employees e
  LEFT JOIN departments d ON e.department_id = d.id
  LEFT JOIN positions p ON e.position_id = p.id`

func (s *Store) AllWithDetails(ctx context.Context) ([]map[string]any, error) {
	return s.Query(ctx, detailSelect+" ORDER BY e.id ASC")
}

func (s *Store) FindWithDetails(ctx context.Context, id int64) (map[string]any, error) {
	records, err := s.Query(ctx, detailSelect+" WHERE e.id = $1 LIMIT 1", id)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, crud.ErrNotFound
	}
	return records[0], nil
}

// Filter carries the /employees/search criteria. Zero values mean "not set";
// salary bounds are pointers so 0 is a usable bound.
type Filter struct {
	Name         string
	DepartmentID int64
	PositionID   int64
	MinSalary    *float64
	MaxSalary    *float64
	Status       string
}

// Search applies the filter criteria, most highly paid first.
func (s *Store) Search(ctx context.Context, filter Filter) ([]map[string]any, error) {
	sql := detailSelect + " WHERE 1=1"
	var args []any

	next := func() string {
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Name != "" {
		args = append(args, "%"+filter.Name+"%")
		sql += " AND e.name ILIKE " + next()
	}
	if filter.DepartmentID > 0 {
		args = append(args, filter.DepartmentID)
		sql += " AND e.department_id = " + next()
	}
	if filter.PositionID > 0 {
		args = append(args, filter.PositionID)
		sql += " AND e.position_id = " + next()
	}
	if filter.MinSalary != nil {
		args = append(args, *filter.MinSalary)
		sql += " AND e.salary >= " + next()
	}
	if filter.MaxSalary != nil {
		args = append(args, *filter.MaxSalary)
		sql += " AND e.salary <= " + next()
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		sql += " AND e.status = " + next()
	}

	sql += " ORDER BY e.salary DESC"
	return s.Query(ctx, sql, args...)
}

func (s *Store) Statistics(ctx context.Context) (map[string]any, error) {
	records, err := s.Query(ctx, `
    SELECT
      COUNT(*) AS total_employees,
      COUNT(*) FILTER (WHERE status = 'active') AS active_employees,
      COUNT(*) FILTER (WHERE status = 'inactive') AS inactive_employees,
      AVG(salary) AS average_salary,
      MAX(salary) AS max_salary,
      MIN(salary) AS min_salary
    FROM employees`)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("statistics query returned no row")
	}
	return records[0], nil
}
