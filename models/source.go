package models

import (
	"encoding/json"
	"fmt"
)

// Source is a configured news feed as exposed by the news API.
// Name is the unique key. Fields the UI does not use (url, contentType,
// apiKey, ...) are kept in extra and written back untouched.
type Source struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Enabled  bool   `json:"enabled"`

	extra map[string]json.RawMessage
}

var sourceKnownFields = []string{"name", "category", "enabled"}

func (s *Source) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode source: %w", err)
	}

	type plain Source
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to decode source fields: %w", err)
	}

	for _, k := range sourceKnownFields {
		delete(raw, k)
	}
	*s = Source(p)
	s.extra = raw
	return nil
}

func (s Source) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.extra)+len(sourceKnownFields))
	for k, v := range s.extra {
		out[k] = v
	}
	out["name"] = s.Name
	out["category"] = s.Category
	out["enabled"] = s.Enabled
	return json.Marshal(out)
}

// WithEnabled returns a copy of s with the enabled flag replaced.
func (s Source) WithEnabled(enabled bool) Source {
	s.Enabled = enabled
	return s
}
