package panels

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/coreybb/newsdash/message"
	"github.com/coreybb/newsdash/models"
	"github.com/coreybb/newsdash/widgets"
)

// SourcesPanel lists news sources grouped by category and persists
// enabled toggles back to the news API.
type SourcesPanel struct {
	api         PreferencesAPI
	events      Publisher
	containerID string

	// toggleMu serializes this process's read-modify-write cycles. Writes
	// from other clients still follow last-write-wins.
	toggleMu sync.Mutex
}

func NewSourcesPanel(api PreferencesAPI, events Publisher, containerID string) *SourcesPanel {
	if containerID == "" {
		containerID = widgets.SourcesContainerID
	}
	return &SourcesPanel{api: api, events: events, containerID: containerID}
}

// ContainerID is the element id the panel renders into.
func (p *SourcesPanel) ContainerID() string {
	return p.containerID
}

// Load fetches the current sources.
func (p *SourcesPanel) Load(ctx context.Context) ([]models.Source, error) {
	prefs, err := p.api.GetPreferences(ctx)
	if err != nil {
		slog.Error("Error loading news sources", "error", err)
		return nil, fmt.Errorf("failed to load news sources: %w", err)
	}
	return prefs.Sources, nil
}

// Render loads the sources and writes the panel. A load failure renders
// the unavailable message; only write failures are returned.
func (p *SourcesPanel) Render(ctx context.Context, w io.Writer) error {
	sources, err := p.Load(ctx)
	if err != nil {
		return widgets.RenderSourcesError(w, p.containerID)
	}
	return widgets.RenderSources(w, p.containerID, sources)
}

// Fragment renders the panel into a byte slice.
func (p *SourcesPanel) Fragment(ctx context.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.Render(ctx, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ApplyToggle returns a copy of sources with the enabled flag of every
// source named name set to enabled. found is false when no source matched,
// in which case the copy equals the input.
func ApplyToggle(sources []models.Source, name string, enabled bool) (updated []models.Source, found bool) {
	updated = make([]models.Source, len(sources))
	for i, s := range sources {
		if s.Name == name {
			s = s.WithEnabled(enabled)
			found = true
		}
		updated[i] = s
	}
	return updated, found
}

// Toggle sets one source's enabled flag: it re-reads the preferences,
// flips the flag and writes the full object back, then asks the page to
// reload its news. Toggling an unknown source is a no-op.
func (p *SourcesPanel) Toggle(ctx context.Context, name string, enabled bool) error {
	p.toggleMu.Lock()
	defer p.toggleMu.Unlock()

	prefs, err := p.api.GetPreferences(ctx)
	if err != nil {
		slog.Error("Error updating source status", "source", name, "error", err)
		return fmt.Errorf("failed to read preferences: %w", err)
	}

	updated, found := ApplyToggle(prefs.Sources, name, enabled)
	if !found {
		slog.Info("Ignoring toggle for unknown source", "source", name)
		return nil
	}

	next := prefs.WithSources(updated)
	if err := p.api.UpdatePreferences(ctx, &next); err != nil {
		slog.Error("Error updating source status", "source", name, "error", err)
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	slog.Info("Source status updated", "source", name, "enabled", enabled)

	if err := p.events.Broadcast(message.New(message.KindNewsRefresh)); err != nil {
		slog.Warn("Could not request news refresh", "error", err)
	}
	return nil
}
