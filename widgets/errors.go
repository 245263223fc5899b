package widgets

import (
	"fmt"
	"html/template"
	"io"
)

var errorTmpl = template.Must(template.New("error").Parse(
	`<div id="{{.ContainerID}}" class="{{.Class}}">` +
		`{{if .Inline}}<span class="error">{{.Message}}</span>{{else}}<div class="error">{{.Message}}</div>{{end}}` +
		`</div>`))

// renderError writes a container holding only a fixed error message.
func renderError(w io.Writer, containerID, class string, inline bool, message string) error {
	data := struct {
		ContainerID string
		Class       string
		Inline      bool
		Message     string
	}{containerID, class, inline, message}

	if err := errorTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render %s error: %w", class, err)
	}
	return nil
}
