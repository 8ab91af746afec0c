package department

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

func TestCreateAcceptsManager(t *testing.T) {
	db := &recordingDB{}
	store := NewStore(db)

	if _, err := store.Create(context.Background(), map[string]any{
		"name":       "Engineering",
		"manager_id": int64(5),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(db.sql, "manager_id") {
		t.Fatalf("manager_id missing from insert: %q", db.sql)
	}
}

func TestUpdateAcceptsManager(t *testing.T) {
	db := &recordingDB{}
	store := NewStore(db)

	updated, err := store.Update(context.Background(), 3, map[string]any{
		"manager_id": int64(5),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated {
		t.Fatal("expected update to report a written row")
	}
	if !strings.Contains(db.sql, "manager_id") {
		t.Fatalf("manager_id missing from update: %q", db.sql)
	}
}
