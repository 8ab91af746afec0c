package shared

import "time"

// dateLayouts are the shapes date fields arrive in: plain calendar dates from
// the web forms, RFC 3339 timestamps from API clients.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

// ParseDate parses a date field; an empty value yields the zero time.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	var err error
	for _, layout := range dateLayouts {
		var parsed time.Time
		if parsed, err = time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, err
}
