package position

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

func TestCreateAcceptsSalaryBand(t *testing.T) {
	db := &recordingDB{}
	store := NewStore(db)

	id, err := store.Create(context.Background(), map[string]any{
		"title":      "Developer",
		"min_salary": 1000.0,
		"max_salary": 3000.0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 1 {
		t.Fatalf("expected inserted id 1, got %d", id)
	}
	if !strings.Contains(db.sql, "min_salary") || !strings.Contains(db.sql, "max_salary") {
		t.Fatalf("salary band columns missing from insert: %q", db.sql)
	}
}
