package models

import (
	"encoding/json"
	"fmt"
)

// Preferences is the full user configuration exchanged wholesale with the
// news API. Only Sources is interpreted here; every other top-level field
// (interests, categories, tags, ...) is passed through on write.
type Preferences struct {
	Sources []Source `json:"sources"`

	extra map[string]json.RawMessage
}

func (p *Preferences) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode preferences: %w", err)
	}

	var sources []Source
	if rawSources, ok := raw["sources"]; ok {
		if err := json.Unmarshal(rawSources, &sources); err != nil {
			return fmt.Errorf("failed to decode preference sources: %w", err)
		}
		delete(raw, "sources")
	}

	p.Sources = sources
	p.extra = raw
	return nil
}

func (p Preferences) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.extra)+1)
	for k, v := range p.extra {
		out[k] = v
	}
	sources := p.Sources
	if sources == nil {
		sources = []Source{}
	}
	out["sources"] = sources
	return json.Marshal(out)
}

// WithSources returns a copy of p carrying the given sources and the same
// pass-through fields.
func (p Preferences) WithSources(sources []Source) Preferences {
	p.Sources = sources
	return p
}
