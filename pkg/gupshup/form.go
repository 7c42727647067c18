package gupshup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

const dateLayout = "2006-01-02"

// formValues flattens a JSON-tagged struct into form fields. Strings are sent as is,
// numbers and booleans as their JSON text, objects and arrays as compact JSON. Null
// fields are dropped.
func formValues(v any) (url.Values, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("gupshup: encode form: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("gupshup: encode form: %w", err)
	}

	form := url.Values{}
	for key, raw := range fields {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || string(raw) == "null" {
			continue
		}
		if raw[0] == '"' {
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return nil, fmt.Errorf("gupshup: encode form field %s: %w", key, err)
			}
			form.Set(key, s)
			continue
		}
		form.Set(key, string(raw))
	}
	return form, nil
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func formatMonth(month time.Month) string {
	return fmt.Sprintf("%02d", int(month))
}

func formatYear(year int) string {
	return fmt.Sprintf("%04d", year)
}
