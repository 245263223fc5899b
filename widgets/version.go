package widgets

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/coreybb/newsdash/models"
)

const (
	msgVersionUnavailable = "Version info unavailable"
	buildTimeLayout       = "2006-01-02 15:04:05"
)

var versionTmpl = template.Must(template.New("version").Parse(
	`<div id="{{.ContainerID}}" class="version-info"><span>v{{.Version}}</span> <span class="git-commit">{{.GitCommit}}</span> <span>Built: {{.Built}}</span></div>`))

// FormatBuildTime renders the build time in loc. Values that are not
// RFC3339 are shown as received.
func FormatBuildTime(info models.VersionInfo, loc *time.Location) string {
	built, ok := info.BuiltAt()
	if !ok {
		return info.BuildTime
	}
	return localTime(built, loc).Format(buildTimeLayout)
}

// RenderVersion writes the version badge. A nil info renders only the
// unavailable message.
func RenderVersion(w io.Writer, containerID string, info *models.VersionInfo, loc *time.Location) error {
	if info == nil {
		return RenderVersionError(w, containerID)
	}

	data := struct {
		ContainerID string
		Version     string
		GitCommit   string
		Built       string
	}{containerID, info.Version, info.GitCommit, FormatBuildTime(*info, loc)}

	if err := versionTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render version: %w", err)
	}
	return nil
}

// RenderVersionError writes the badge shown when version info is unavailable.
func RenderVersionError(w io.Writer, containerID string) error {
	return renderError(w, containerID, "version-info", true, msgVersionUnavailable)
}
