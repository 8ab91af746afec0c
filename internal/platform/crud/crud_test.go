package crud

import (
	"errors"
	"testing"
)

func testTable() *Table {
	return New(nil, "employees", "name", "email", "salary", "status", "department_id")
}

func TestWritableFields(t *testing.T) {
	tests := []struct {
		name       string
		data       map[string]any
		wantFields []string
		wantErr    error
	}{
		{
			name:       "sorted deterministic order",
			data:       map[string]any{"salary": 1000, "email": "a@b.c", "name": "An"},
			wantFields: []string{"email", "name", "salary"},
		},
		{
			name:       "primary key stripped",
			data:       map[string]any{"id": 7, "name": "An"},
			wantFields: []string{"name"},
		},
		{
			name:    "unknown column rejected",
			data:    map[string]any{"name": "An", "is_admin": true},
			wantErr: ErrUnknownColumn,
		},
		{
			name:    "empty data rejected",
			data:    map[string]any{},
			wantErr: ErrEmptyData,
		},
		{
			name:    "only primary key rejected",
			data:    map[string]any{"id": 3},
			wantErr: ErrEmptyData,
		},
	}

	table := testTable()
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			fields, args, err := table.writableFields(tc.data)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(fields) != len(tc.wantFields) {
				t.Fatalf("expected fields %v, got %v", tc.wantFields, fields)
			}
			for i, field := range tc.wantFields {
				if fields[i] != field {
					t.Fatalf("expected fields %v, got %v", tc.wantFields, fields)
				}
				if args[i] != tc.data[field] {
					t.Fatalf("argument %d does not match field %s", i, field)
				}
			}
		})
	}
}

func TestBuildWhere(t *testing.T) {
	table := testTable()

	clause, args, err := table.buildWhere(map[string]any{"status": "active", "department_id": 2}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clause != "department_id = $1 AND status = $2" {
		t.Fatalf("unexpected clause: %q", clause)
	}
	if len(args) != 2 || args[0] != 2 || args[1] != "active" {
		t.Fatalf("unexpected args: %v", args)
	}

	clause, args, err = table.buildWhere(nil, 1)
	if err != nil || clause != "" || args != nil {
		t.Fatalf("empty conditions should produce empty clause, got %q %v %v", clause, args, err)
	}

	if _, _, err := table.buildWhere(map[string]any{"password": "x"}, 1); !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("expected ErrUnknownColumn, got %v", err)
	}
}

func TestBuildOrderBy(t *testing.T) {
	tests := []struct {
		name    string
		orderBy string
		want    string
		wantErr bool
	}{
		{name: "single column", orderBy: "name", want: "name"},
		{name: "with direction", orderBy: "salary DESC", want: "salary DESC"},
		{name: "multiple columns", orderBy: "status ASC, name", want: "status ASC, name"},
		{name: "primary key allowed", orderBy: "id DESC", want: "id DESC"},
		{name: "unknown column", orderBy: "password", wantErr: true},
		{name: "injection attempt", orderBy: "name; DROP TABLE employees", wantErr: true},
		{name: "bad direction", orderBy: "name SIDEWAYS", wantErr: true},
	}

	table := testTable()
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := table.buildOrderBy(tc.orderBy)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.orderBy)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
