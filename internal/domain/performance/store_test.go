package performance

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type recordingDB struct {
	sql  string
	args []any
}

func (db *recordingDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not used")
}

func (db *recordingDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	db.sql = sql
	db.args = args
	return insertedRow{}
}

func (db *recordingDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	db.sql = sql
	db.args = args
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

type insertedRow struct{}

func (insertedRow) Scan(dest ...any) error {
	if id, ok := dest[0].(*int64); ok {
		*id = 1
	}
	return nil
}

func TestCreateAcceptsReviewNarrative(t *testing.T) {
	db := &recordingDB{}
	store := NewStore(db)

	if _, err := store.Create(context.Background(), map[string]any{
		"employee_id":         int64(2),
		"reviewer_id":         int64(1),
		"review_period_start": "2026-01-01",
		"review_period_end":   "2026-06-30",
		"rating":              4.5,
		"strengths":           "delivers",
		"weaknesses":          "estimates",
		"goals":               "lead a project",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, column := range []string{"strengths", "weaknesses", "goals"} {
		if !strings.Contains(db.sql, column) {
			t.Fatalf("%s missing from insert: %q", column, db.sql)
		}
	}
}
