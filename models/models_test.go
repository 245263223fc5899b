package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferencesPassThroughUnknownFields(t *testing.T) {
	in := `{"sources":[{"name":"TED Talks","url":"https://feeds.feedburner.com/tedtalks_video","category":"Education","contentType":"video","enabled":true}],"interests":["science"],"tags":[{"id":"x"}]}`

	var prefs Preferences
	require.NoError(t, json.Unmarshal([]byte(in), &prefs))
	require.Len(t, prefs.Sources, 1)

	prefs.Sources[0] = prefs.Sources[0].WithEnabled(false)
	out, err := json.Marshal(prefs)
	require.NoError(t, err)

	assert.JSONEq(t,
		`{"sources":[{"name":"TED Talks","url":"https://feeds.feedburner.com/tedtalks_video","category":"Education","contentType":"video","enabled":false}],"interests":["science"],"tags":[{"id":"x"}]}`,
		string(out))
}

func TestPreferencesWithoutSourcesMarshalsEmptyList(t *testing.T) {
	var prefs Preferences
	require.NoError(t, json.Unmarshal([]byte(`{"interests":[]}`), &prefs))
	assert.Nil(t, prefs.Sources)

	out, err := json.Marshal(prefs)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sources":[],"interests":[]}`, string(out))
}

func TestWithSourcesKeepsExtras(t *testing.T) {
	var prefs Preferences
	require.NoError(t, json.Unmarshal([]byte(`{"sources":[],"categories":["General"]}`), &prefs))

	next := prefs.WithSources([]Source{{Name: "IGN", Category: "Entertainment", Enabled: true}})
	out, err := json.Marshal(next)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sources":[{"name":"IGN","category":"Entertainment","enabled":true}],"categories":["General"]}`, string(out))
	assert.Empty(t, prefs.Sources)
}

func TestTrendingHasTopics(t *testing.T) {
	cases := map[string]bool{
		`{"time":"2026-10-18T10:00:00Z","topics":[{"topic":"ai","frequency":3}]}`: true,
		`{"time":"2026-10-18T10:00:00Z","topics":[]}`:                             true,
		`{"time":"2026-10-18T10:00:00Z","topics":null}`:                           false,
		`{"time":"2026-10-18T10:00:00Z"}`:                                         false,
	}
	for body, want := range cases {
		var resp TrendingResponse
		require.NoError(t, json.Unmarshal([]byte(body), &resp))
		assert.Equal(t, want, resp.HasTopics(), body)
	}

	var nilResp *TrendingResponse
	assert.False(t, nilResp.HasTopics())
}

func TestTrendingResponseLenientTime(t *testing.T) {
	cases := map[string]struct {
		body string
		want time.Time
	}{
		"rfc3339":      {`{"time":"2024-03-01T12:30:00Z","topics":[{"topic":"go","frequency":2}]}`, time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)},
		"missing time": {`{"topics":[{"topic":"go","frequency":2}]}`, time.Time{}},
		"not a date":   {`{"time":"yesterday","topics":[{"topic":"go","frequency":2}]}`, time.Time{}},
		"wrong type":   {`{"time":1709296200,"topics":[{"topic":"go","frequency":2}]}`, time.Time{}},
		"null time":    {`{"time":null,"topics":[{"topic":"go","frequency":2}]}`, time.Time{}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var resp TrendingResponse
			require.NoError(t, json.Unmarshal([]byte(tc.body), &resp))
			assert.True(t, tc.want.Equal(resp.Time), "got %v", resp.Time)
			require.True(t, resp.HasTopics())
			assert.Equal(t, "go", resp.Topics[0].Topic)
		})
	}
}

func TestTrendingResponseMalformedTopicsStillFails(t *testing.T) {
	var resp TrendingResponse
	assert.Error(t, json.Unmarshal([]byte(`{"time":"2024-03-01T12:30:00Z","topics":"go"}`), &resp))
}

func TestVersionBuiltAt(t *testing.T) {
	built, ok := VersionInfo{BuildTime: "2026-10-01T12:00:00Z"}.BuiltAt()
	require.True(t, ok)
	assert.Equal(t, 2026, built.Year())

	_, ok = VersionInfo{BuildTime: "yesterday"}.BuiltAt()
	assert.False(t, ok)
}
