package models

import "time"

// VersionInfo is the build metadata reported by the news API.
type VersionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildTime string `json:"buildTime"` // RFC3339
}

// BuiltAt parses BuildTime. ok is false when the value is not RFC3339.
func (v VersionInfo) BuiltAt() (t time.Time, ok bool) {
	t, err := time.Parse(time.RFC3339, v.BuildTime)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
