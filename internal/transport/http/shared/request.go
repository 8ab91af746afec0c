package shared

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// DecodeBody reads the request payload into a generic map. JSON bodies are
// preferred; anything else falls back to form fields merged with query
// parameters, so simple clients can post either way.
func DecodeBody(r *http.Request) (map[string]any, error) {
	contentType := strings.ToLower(r.Header.Get("Content-Type"))
	if strings.Contains(contentType, "application/json") {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		data := map[string]any{}
		if len(raw) == 0 {
			return data, nil
		}
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("invalid json body: %w", err)
		}
		return data, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	data := map[string]any{}
	for key, values := range r.Form {
		if len(values) > 0 {
			data[key] = values[0]
		}
	}
	return data, nil
}

// RequireFields returns the names of fields that are absent or blank, sorted
// for a stable error message.
func RequireFields(data map[string]any, fields ...string) []string {
	var missing []string
	for _, field := range fields {
		value, ok := data[field]
		if !ok || value == nil {
			missing = append(missing, field)
			continue
		}
		if s, isString := value.(string); isString && strings.TrimSpace(s) == "" {
			missing = append(missing, field)
		}
	}
	sort.Strings(missing)
	return missing
}

func StringField(data map[string]any, key string) string {
	switch value := data[key].(type) {
	case string:
		return strings.TrimSpace(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		return ""
	}
}

// IntField coerces JSON numbers and numeric strings; form submissions always
// arrive as strings.
func IntField(data map[string]any, key string) (int64, bool) {
	switch value := data[key].(type) {
	case float64:
		return int64(value), true
	case int64:
		return value, true
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func FloatField(data map[string]any, key string) (float64, bool) {
	switch value := data[key].(type) {
	case float64:
		return value, true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// URLID parses the {id} route parameter. Routes constrain it to digits, so a
// failure here means the route was mounted without the pattern.
func URLID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// CoerceInts rewrites the named fields as int64 where possible. JSON numbers
// arrive as float64 and form values as strings; integer database columns
// want neither.
func CoerceInts(data map[string]any, keys ...string) {
	for _, key := range keys {
		if _, present := data[key]; !present {
			continue
		}
		if value, ok := IntField(data, key); ok {
			data[key] = value
		}
	}
}

// QueryFloat returns nil when the parameter is absent or malformed, so zero
// remains a usable value.
func QueryFloat(r *http.Request, key string) *float64 {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &parsed
}

func QueryInt(r *http.Request, key string, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
