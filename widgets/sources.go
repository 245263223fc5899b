package widgets

import (
	"fmt"
	"html/template"
	"io"
	"regexp"

	"github.com/coreybb/newsdash/models"
)

// SourcesContainerID is the element id the sources panel renders into.
const SourcesContainerID = "sources-container"

const msgSourcesUnavailable = "News sources unavailable"

var whitespaceRun = regexp.MustCompile(`\s+`)

// CategoryGroup is one category section of the sources panel.
type CategoryGroup struct {
	Category string
	Sources  []models.Source
}

// GroupByCategory groups sources by category. Categories appear in the
// order they are first seen and sources keep their input order inside a
// category.
func GroupByCategory(sources []models.Source) []CategoryGroup {
	index := make(map[string]int)
	var groups []CategoryGroup
	for _, s := range sources {
		i, ok := index[s.Category]
		if !ok {
			i = len(groups)
			index[s.Category] = i
			groups = append(groups, CategoryGroup{Category: s.Category})
		}
		groups[i].Sources = append(groups[i].Sources, s)
	}
	return groups
}

// SourceCheckboxID derives the checkbox element id for a source name.
// Names that differ only in whitespace map to the same id.
func SourceCheckboxID(name string) string {
	return "source-" + whitespaceRun.ReplaceAllString(name, "-")
}

var sourcesTmpl = template.Must(template.New("sources").Funcs(template.FuncMap{
	"checkboxID": SourceCheckboxID,
}).Parse(`<div id="{{.ContainerID}}" class="sources">
{{- range .Groups}}
<div class="source-category">
<h3>{{.Category}}</h3>
{{- range .Sources}}
<div class="source-item"><input type="checkbox" id="{{checkboxID .Name}}" data-source="{{.Name}}"{{if .Enabled}} checked{{end}}><label for="{{checkboxID .Name}}">{{.Name}}</label></div>
{{- end}}
</div>
{{- end}}
</div>`))

// RenderSources writes the sources panel for a snapshot of sources.
func RenderSources(w io.Writer, containerID string, sources []models.Source) error {
	data := struct {
		ContainerID string
		Groups      []CategoryGroup
	}{containerID, GroupByCategory(sources)}

	if err := sourcesTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render sources: %w", err)
	}
	return nil
}

// RenderSourcesError writes the panel shown when sources cannot be loaded.
func RenderSourcesError(w io.Writer, containerID string) error {
	return renderError(w, containerID, "sources", false, msgSourcesUnavailable)
}
