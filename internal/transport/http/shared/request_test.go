package shared

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDecodeBodyJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/employees", strings.NewReader(`{"name":"An","salary":1200.5}`))
	req.Header.Set("Content-Type", "application/json")

	data, err := DecodeBody(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data["name"] != "An" {
		t.Fatalf("expected name, got %v", data["name"])
	}
	if salary, ok := FloatField(data, "salary"); !ok || salary != 1200.5 {
		t.Fatalf("expected salary 1200.5, got %v %v", salary, ok)
	}
}

func TestDecodeBodyForm(t *testing.T) {
	req := httptest.NewRequest("POST", "/employees?status=active", strings.NewReader("name=An&department_id=3"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	data, err := DecodeBody(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data["name"] != "An" || data["status"] != "active" {
		t.Fatalf("expected form and query merged, got %v", data)
	}
	if id, ok := IntField(data, "department_id"); !ok || id != 3 {
		t.Fatalf("expected department_id 3, got %v %v", id, ok)
	}
}

func TestDecodeBodyBadJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/employees", strings.NewReader(`{"name":`))
	req.Header.Set("Content-Type", "application/json")
	if _, err := DecodeBody(req); err == nil {
		t.Fatal("expected invalid json to error")
	}
}

func TestRequireFields(t *testing.T) {
	tests := []struct {
		name    string
		data    map[string]any
		fields  []string
		missing []string
	}{
		{
			name:    "all present",
			data:    map[string]any{"name": "An", "email": "a@b.c"},
			fields:  []string{"name", "email"},
			missing: nil,
		},
		{
			name:    "absent and blank",
			data:    map[string]any{"name": "  "},
			fields:  []string{"name", "email"},
			missing: []string{"email", "name"},
		},
		{
			name:    "zero number counts as present",
			data:    map[string]any{"bonus": float64(0)},
			fields:  []string{"bonus"},
			missing: nil,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := RequireFields(tc.data, tc.fields...)
			if len(got) != len(tc.missing) {
				t.Fatalf("expected %v, got %v", tc.missing, got)
			}
			for i := range got {
				if got[i] != tc.missing[i] {
					t.Fatalf("expected %v, got %v", tc.missing, got)
				}
			}
		})
	}
}

func TestCoerceInts(t *testing.T) {
	data := map[string]any{
		"employee_id": float64(12),
		"month":       "3",
		"notes":       "keep",
	}
	CoerceInts(data, "employee_id", "month", "year")

	if data["employee_id"] != int64(12) {
		t.Fatalf("expected employee_id coerced to int64, got %T", data["employee_id"])
	}
	if data["month"] != int64(3) {
		t.Fatalf("expected month coerced to int64, got %v", data["month"])
	}
	if data["notes"] != "keep" {
		t.Fatalf("unrelated fields must not change, got %v", data["notes"])
	}
	if _, present := data["year"]; present {
		t.Fatal("absent fields must not be created")
	}
}

func TestParseDate(t *testing.T) {
	if _, err := ParseDate("2026-02-30"); err == nil {
		t.Fatal("expected invalid date to error")
	}
	parsed, err := ParseDate("2026-08-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.Year() != 2026 || parsed.Month() != 8 || parsed.Day() != 15 {
		t.Fatalf("unexpected parse result: %v", parsed)
	}
	parsed, err = ParseDate("2026-08-15T09:30:00Z")
	if err != nil || parsed.Hour() != 9 {
		t.Fatalf("expected RFC 3339 accepted, got %v %v", parsed, err)
	}
}
