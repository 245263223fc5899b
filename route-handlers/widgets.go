package routehandlers

import (
	"bytes"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/coreybb/newsdash/panels"
	"github.com/coreybb/newsdash/webutil"
	"github.com/coreybb/newsdash/widgets"
)

// WidgetHandler serves the page shell and the three widget fragments.
type WidgetHandler struct {
	Sources  *panels.SourcesPanel
	Trending *panels.TrendingTopics
	Version  *panels.VersionBadge

	Title      string
	AppVersion string
}

func NewWidgetHandler(sources *panels.SourcesPanel, trending *panels.TrendingTopics, version *panels.VersionBadge, title, appVersion string) *WidgetHandler {
	return &WidgetHandler{
		Sources:    sources,
		Trending:   trending,
		Version:    version,
		Title:      title,
		AppVersion: appVersion,
	}
}

func (h *WidgetHandler) HandleGetPage(w http.ResponseWriter, r *http.Request) error {
	sourcesHTML, err := h.Sources.Fragment(r.Context())
	if err != nil {
		return webutil.ErrInternalServerWrap("Failed to render sources", err)
	}
	trendingHTML, err := h.Trending.Fragment()
	if err != nil {
		return webutil.ErrInternalServerWrap("Failed to render trending topics", err)
	}
	versionHTML, err := h.Version.Fragment(r.Context())
	if err != nil {
		return webutil.ErrInternalServerWrap("Failed to render version", err)
	}

	var buf bytes.Buffer
	err = widgets.RenderPage(&buf, widgets.Page{
		Title:        h.Title,
		PageID:       uuid.NewString(),
		Version:      h.AppVersion,
		SourcesID:    h.Sources.ContainerID(),
		TrendingID:   h.Trending.ContainerID(),
		VersionID:    h.Version.ContainerID(),
		SourcesHTML:  template.HTML(sourcesHTML),
		TrendingHTML: template.HTML(trendingHTML),
		VersionHTML:  template.HTML(versionHTML),
	})
	if err != nil {
		return webutil.ErrInternalServerWrap("Failed to render page", err)
	}

	webutil.RespondWithHTML(w, r, http.StatusOK, buf.Bytes())
	return nil
}

func (h *WidgetHandler) HandleGetSources(w http.ResponseWriter, r *http.Request) error {
	fragment, err := h.Sources.Fragment(r.Context())
	if err != nil {
		return webutil.ErrInternalServerWrap("Failed to render sources", err)
	}
	webutil.RespondWithHTML(w, r, http.StatusOK, fragment)
	return nil
}

// HandleToggleSource expects form fields name and enabled. It answers 204,
// or the re-rendered panel when the client accepts HTML.
func (h *WidgetHandler) HandleToggleSource(w http.ResponseWriter, r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return webutil.ErrBadRequest("Invalid form payload: " + err.Error())
	}

	name := r.PostFormValue("name")
	if name == "" {
		return webutil.ErrBadRequest("Missing required field (name)")
	}
	enabled, err := strconv.ParseBool(r.PostFormValue("enabled"))
	if err != nil {
		return webutil.ErrBadRequest("Field enabled must be a boolean")
	}

	if err := h.Sources.Toggle(r.Context(), name, enabled); err != nil {
		return webutil.ErrBadGatewayWrap("Failed to update source status", err)
	}

	if !webutil.WantsHTML(r) {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}
	return h.HandleGetSources(w, r)
}

// HandleGetTrending serves the last committed cloud. With ?refresh=1 it
// first runs a refresh unless one is already in flight. The refresh is
// shared with every page, so it completes even if this request goes away.
func (h *WidgetHandler) HandleGetTrending(w http.ResponseWriter, r *http.Request) error {
	if refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh")); refresh {
		if _, err := h.Trending.Scheduler().TickDetached(r.Context()); err != nil {
			slog.Warn("Forced trending refresh failed", "error", err)
		}
	}

	fragment, err := h.Trending.Fragment()
	if err != nil {
		return webutil.ErrInternalServerWrap("Failed to render trending topics", err)
	}
	webutil.RespondWithHTML(w, r, http.StatusOK, fragment)
	return nil
}

// HandleSelectTopic publishes filter-by-topic for the form field topic,
// addressed to the page named by the form field page. Without a page the
// selection reaches no browser.
func (h *WidgetHandler) HandleSelectTopic(w http.ResponseWriter, r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return webutil.ErrBadRequest("Invalid form payload: " + err.Error())
	}

	if err := h.Trending.SelectTopic(r.Context(), r.PostFormValue("topic"), r.PostFormValue("page")); err != nil {
		if errors.Is(err, panels.ErrEmptyTopic) {
			return webutil.ErrBadRequest("Missing required field (topic)")
		}
		return webutil.ErrInternalServerWrap("Failed to publish topic", err)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *WidgetHandler) HandleGetVersion(w http.ResponseWriter, r *http.Request) error {
	fragment, err := h.Version.Fragment(r.Context())
	if err != nil {
		return webutil.ErrInternalServerWrap("Failed to render version", err)
	}
	webutil.RespondWithHTML(w, r, http.StatusOK, fragment)
	return nil
}
