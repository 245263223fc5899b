package widgets

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/coreybb/newsdash/models"
)

var (
	colorAccent = lipgloss.Color("#58a6ff")
	colorMuted  = lipgloss.Color("241")
	colorError  = lipgloss.Color("#f85149")
	colorOn     = lipgloss.Color("#7ee787")

	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	headerStyle   = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	categoryStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)
	enabledStyle  = lipgloss.NewStyle().Foreground(colorOn)
	hotTopicStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
)

// hotTopicSize is the font size from which a topic is emphasized in the
// terminal, where sizes cannot be shown.
const hotTopicSize = 1.2

// ConsoleRenderer renders widget snapshots as terminal text.
type ConsoleRenderer struct {
	Location *time.Location
}

// NewConsoleRenderer creates a ConsoleRenderer formatting times in loc.
func NewConsoleRenderer(loc *time.Location) *ConsoleRenderer {
	return &ConsoleRenderer{Location: loc}
}

// Sources renders the category-grouped source list. A nil slice with a
// non-nil err renders the unavailable message.
func (c *ConsoleRenderer) Sources(sources []models.Source, err error) string {
	if err != nil {
		return panelStyle.Render(errorStyle.Render(msgSourcesUnavailable))
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("News Sources"))
	for _, g := range GroupByCategory(sources) {
		b.WriteString("\n")
		b.WriteString(categoryStyle.Render(g.Category))
		for _, s := range g.Sources {
			b.WriteString("\n")
			if s.Enabled {
				b.WriteString(enabledStyle.Render("[x] ") + s.Name)
			} else {
				b.WriteString(mutedStyle.Render("[ ] " + s.Name))
			}
		}
	}
	return panelStyle.Render(b.String())
}

// Trending renders the topic cloud as a list, emphasizing frequent topics.
func (c *ConsoleRenderer) Trending(resp *models.TrendingResponse) string {
	if !resp.HasTopics() {
		return panelStyle.Render(errorStyle.Render(msgNoTrendingTopics))
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Trending Topics"))
	b.WriteString("  ")
	b.WriteString(mutedStyle.Render("Updated: " + updatedAt(resp.Time, c.Location)))
	for _, t := range resp.Topics {
		b.WriteString("\n")
		text := t.Topic
		if FontSize(t.Frequency) >= hotTopicSize {
			text = hotTopicStyle.Render(text)
		}
		b.WriteString(text + " " + mutedStyle.Render(strconv.FormatFloat(t.Frequency, 'f', -1, 64)))
	}
	return panelStyle.Render(b.String())
}

// Version renders the version badge on one line.
func (c *ConsoleRenderer) Version(info *models.VersionInfo) string {
	if info == nil {
		return errorStyle.Render(msgVersionUnavailable)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		"v"+info.Version+" ",
		mutedStyle.Render(info.GitCommit)+" ",
		"Built: "+FormatBuildTime(*info, c.Location),
	)
}

// Dashboard stacks the three widgets the way the page lays them out.
func (c *ConsoleRenderer) Dashboard(sources, trending, version string) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, sources, " ", trending),
		version,
	)
}
