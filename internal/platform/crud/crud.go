// Package crud provides the table-agnostic persistence primitives shared by
// every resource store. Statements are always parameterized; only identifiers
// from the per-table column allow-list are interpolated.
package crud

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrUnknownColumn = errors.New("unknown column")
	ErrEmptyData     = errors.New("no columns to write")
)

// DB is satisfied by both *pgxpool.Pool and pgx.Tx, so Table methods work
// inside and outside transactions.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Table struct {
	db      DB
	name    string
	pk      string
	columns map[string]bool
}

// New builds a Table bound to an explicit column allow-list. Data maps passed
// to Create/Update and condition maps passed to All/Count are rejected when
// they reference a column outside the list.
func New(db DB, name string, columns ...string) *Table {
	allowed := make(map[string]bool, len(columns))
	for _, col := range columns {
		allowed[col] = true
	}
	return &Table{db: db, name: name, pk: "id", columns: allowed}
}

func (t *Table) Find(ctx context.Context, id int64) (map[string]any, error) {
	sql := fmt.Sprintf("SELECT * FROM %s WHERE %s = $1 LIMIT 1", t.name, t.pk)
	rows, err := t.db.Query(ctx, sql, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records, err := collectRows(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return records[0], nil
}

// All returns rows matching the equality-condition map, AND'ed together. An
// empty map scans the whole table. orderBy must name allow-listed columns.
func (t *Table) All(ctx context.Context, conditions map[string]any, orderBy string, limit int) ([]map[string]any, error) {
	where, args, err := t.buildWhere(conditions, 1)
	if err != nil {
		return nil, err
	}

	sql := "SELECT * FROM " + t.name
	if where != "" {
		sql += " WHERE " + where
	}
	if orderBy != "" {
		clause, err := t.buildOrderBy(orderBy)
		if err != nil {
			return nil, err
		}
		sql += " ORDER BY " + clause
	}
	if limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := t.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRows(rows)
}

// Create inserts the field map and returns the generated primary key.
func (t *Table) Create(ctx context.Context, data map[string]any) (int64, error) {
	fields, args, err := t.writableFields(data)
	if err != nil {
		return 0, err
	}

	placeholders := make([]string, len(fields))
	for i := range fields {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	sql := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		t.name,
		strings.Join(fields, ", "),
		strings.Join(placeholders, ", "),
		t.pk,
	)

	var id int64
	if err := t.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// Update writes exactly the fields present in data. The boolean reports
// whether a row was actually updated, so callers can tell a missing id from a
// successful no-op write.
func (t *Table) Update(ctx context.Context, id int64, data map[string]any) (bool, error) {
	fields, args, err := t.writableFields(data)
	if err != nil {
		return false, err
	}

	assignments := make([]string, len(fields))
	for i, field := range fields {
		assignments[i] = fmt.Sprintf("%s = $%d", field, i+1)
	}
	args = append(args, id)

	sql := fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s = $%d",
		t.name,
		strings.Join(assignments, ", "),
		t.pk,
		len(args),
	)

	tag, err := t.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (t *Table) Delete(ctx context.Context, id int64) (bool, error) {
	sql := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", t.name, t.pk)
	tag, err := t.db.Exec(ctx, sql, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (t *Table) Count(ctx context.Context, conditions map[string]any) (int64, error) {
	where, args, err := t.buildWhere(conditions, 1)
	if err != nil {
		return 0, err
	}

	sql := "SELECT COUNT(*) FROM " + t.name
	if where != "" {
		sql += " WHERE " + where
	}

	var count int64
	if err := t.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Query is the escape hatch for resource-specific joins and aggregates. The
// SQL text is fixed by the caller; values travel as bind parameters.
func (t *Table) Query(ctx context.Context, sql string, args ...any) ([]map[string]any, error) {
	rows, err := t.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRows(rows)
}

func (t *Table) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := t.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// WithTx runs fn inside a transaction, committing on nil error and rolling
// back otherwise.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// writableFields filters the data map through the allow-list and returns the
// columns in deterministic order alongside their bind arguments.
func (t *Table) writableFields(data map[string]any) ([]string, []any, error) {
	if len(data) == 0 {
		return nil, nil, ErrEmptyData
	}

	fields := make([]string, 0, len(data))
	for field := range data {
		if field == t.pk {
			continue
		}
		if !t.columns[field] {
			return nil, nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, t.name, field)
		}
		fields = append(fields, field)
	}
	if len(fields) == 0 {
		return nil, nil, ErrEmptyData
	}
	sort.Strings(fields)

	args := make([]any, len(fields))
	for i, field := range fields {
		args[i] = data[field]
	}
	return fields, args, nil
}

func (t *Table) buildWhere(conditions map[string]any, firstArg int) (string, []any, error) {
	if len(conditions) == 0 {
		return "", nil, nil
	}

	fields := make([]string, 0, len(conditions))
	for field := range conditions {
		if field != t.pk && !t.columns[field] {
			return "", nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, t.name, field)
		}
		fields = append(fields, field)
	}
	sort.Strings(fields)

	clauses := make([]string, len(fields))
	args := make([]any, len(fields))
	for i, field := range fields {
		clauses[i] = fmt.Sprintf("%s = $%d", field, firstArg+i)
		args[i] = conditions[field]
	}
	return strings.Join(clauses, " AND "), args, nil
}

func (t *Table) buildOrderBy(orderBy string) (string, error) {
	parts := strings.Split(orderBy, ",")
	clauses := make([]string, 0, len(parts))
	for _, part := range parts {
		tokens := strings.Fields(strings.TrimSpace(part))
		if len(tokens) == 0 || len(tokens) > 2 {
			return "", fmt.Errorf("invalid order by clause: %q", orderBy)
		}
		column := tokens[0]
		if column != t.pk && !t.columns[column] {
			return "", fmt.Errorf("%w: %s.%s", ErrUnknownColumn, t.name, column)
		}
		clause := column
		if len(tokens) == 2 {
			direction := strings.ToUpper(tokens[1])
			if direction != "ASC" && direction != "DESC" {
				return "", fmt.Errorf("invalid order direction: %q", tokens[1])
			}
			clause += " " + direction
		}
		clauses = append(clauses, clause)
	}
	return strings.Join(clauses, ", "), nil
}

func collectRows(rows pgx.Rows) ([]map[string]any, error) {
	var out []map[string]any
	descriptions := rows.FieldDescriptions()
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		record := make(map[string]any, len(descriptions))
		for i, desc := range descriptions {
			record[desc.Name] = values[i]
		}
		out = append(out, record)
	}
	return out, rows.Err()
}
