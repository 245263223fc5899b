package models

import (
	"encoding/json"
	"time"
)

// TrendingTopic is a term and the frequency score driving its emphasis.
type TrendingTopic struct {
	Topic     string  `json:"topic"`
	Frequency float64 `json:"frequency"`
}

// TrendingResponse is the payload of GET /api/news/trending. Time is zero
// when the payload's time is missing or not RFC3339.
type TrendingResponse struct {
	Time   time.Time       `json:"time"`
	Topics []TrendingTopic `json:"topics"`
	Count  int             `json:"count,omitempty"`
}

// UnmarshalJSON decodes the payload leniently: a bad time only loses the
// timestamp, never the topics.
func (r *TrendingResponse) UnmarshalJSON(data []byte) error {
	type plain TrendingResponse
	aux := struct {
		*plain
		Time json.RawMessage `json:"time"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.Time = time.Time{}
	var raw string
	if len(aux.Time) > 0 && json.Unmarshal(aux.Time, &raw) == nil {
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			r.Time = t
		}
	}
	return nil
}

// HasTopics reports whether the response carries a topics field.
// A missing or null field is malformed; an empty list is not.
func (r *TrendingResponse) HasTopics() bool {
	return r != nil && r.Topics != nil
}
