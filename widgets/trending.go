package widgets

import (
	"fmt"
	"html/template"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/coreybb/newsdash/models"
)

const (
	minFontSize  = 0.8
	maxFontSize  = 1.5
	maxFrequency = 10.0

	msgNoTrendingTopics = "No trending topics available"
	msgInvalidDate      = "Invalid Date"
	trendingTimeLayout  = "15:04:05"
)

// FontSize maps a topic frequency to a font size in em. The mapping is
// linear over [0, 10] -> [0.8, 1.5] and is not clamped: frequencies above
// 10 give sizes above 1.5em, negative ones sizes below 0.8em.
func FontSize(frequency float64) float64 {
	return minFontSize + (frequency/maxFrequency)*(maxFontSize-minFontSize)
}

// FontSizeEm formats FontSize as a CSS length, e.g. "1.15em".
func FontSizeEm(frequency float64) string {
	size := math.Round(FontSize(frequency)*1e4) / 1e4
	return strconv.FormatFloat(size, 'f', -1, 64) + "em"
}

type topicView struct {
	Topic     string
	Frequency string
	Style     template.CSS
}

var trendingTmpl = template.Must(template.New("trending").Parse(`<div id="{{.ContainerID}}" class="trending">
<div class="trending-header"><h3>Trending Topics</h3><span class="update-time">Updated: {{.Updated}}</span></div>
<div class="trending-cloud">
{{- range .Topics}}
<div class="trending-topic" style="{{.Style}}" data-topic="{{.Topic}}" role="button" tabindex="0"><span class="topic-text">{{.Topic}}</span> <span class="topic-frequency">{{.Frequency}}</span></div>
{{- end}}
</div>
</div>`))

// RenderTrending writes the trending topics cloud. A nil response or one
// without a topics field renders the fixed error message instead.
func RenderTrending(w io.Writer, containerID string, resp *models.TrendingResponse, loc *time.Location) error {
	if !resp.HasTopics() {
		return RenderTrendingError(w, containerID)
	}

	topics := make([]topicView, 0, len(resp.Topics))
	for _, t := range resp.Topics {
		topics = append(topics, topicView{
			Topic:     t.Topic,
			Frequency: strconv.FormatFloat(t.Frequency, 'f', -1, 64),
			Style:     template.CSS("font-size: " + FontSizeEm(t.Frequency)),
		})
	}

	data := struct {
		ContainerID string
		Updated     string
		Topics      []topicView
	}{containerID, updatedAt(resp.Time, loc), topics}

	if err := trendingTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render trending topics: %w", err)
	}
	return nil
}

// RenderTrendingError writes the container with only the fixed error message.
func RenderTrendingError(w io.Writer, containerID string) error {
	return renderError(w, containerID, "trending", false, msgNoTrendingTopics)
}

// updatedAt formats the header timestamp. A response without a usable
// time still renders its topics.
func updatedAt(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return msgInvalidDate
	}
	return localTime(t, loc).Format(trendingTimeLayout)
}

func localTime(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc)
}
