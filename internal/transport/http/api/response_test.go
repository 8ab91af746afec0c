package api

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
)

func TestSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, map[string]any{"id": 7}, "Created thing", "req-1")

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["success"] != true || body["message"] != "Created thing" || body["request_id"] != "req-1" {
		t.Fatalf("unexpected envelope: %v", body)
	}
	if _, present := body["error"]; present {
		t.Fatal("error key must be omitted on success")
	}
}

func TestFailEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, 404, "Employee not found", "req-2")

	if rec.Code != 404 {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["success"] != false || body["message"] != "Employee not found" {
		t.Fatalf("unexpected envelope: %v", body)
	}
	if _, present := body["data"]; present {
		t.Fatal("data key must be omitted on failure")
	}
}
