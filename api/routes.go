package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	rh "github.com/coreybb/newsdash/route-handlers"
	"github.com/coreybb/newsdash/scheduler"
	"github.com/coreybb/newsdash/webutil"
)

const (
	widgetsBasePath   = "/widgets"
	eventsPath        = "/events"
	schedulerTickPath = "/scheduler/tick"
	healthPath        = "/healthz"
)

const (
	sourcesSubPath  = "/sources"
	trendingSubPath = "/trending"
	versionSubPath  = "/version"
	toggleSubPath   = "/toggle"
	selectSubPath   = "/select"
)

const widgetTimeout = 30 * time.Second

// SetupRoutes builds the router. appVersion is sent on every response in
// the X-Newsdash-Version header.
func SetupRoutes(
	widgetHandler *rh.WidgetHandler,
	eventsHandler *rh.EventsHandler,
	trendingScheduler *scheduler.Scheduler,
	appVersion string,
) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(RequestID)
	r.Use(RealIP)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(SetHeader(webutil.HeaderVersion, appVersion))

	r.Get("/", webutil.MakeHandler(widgetHandler.HandleGetPage))

	r.Route(widgetsBasePath, func(r chi.Router) {
		// The events socket is long-lived, so only fragment routes get a deadline.
		r.Use(Timeout(widgetTimeout))
		configureSourceRoutes(r, widgetHandler)
		configureTrendingRoutes(r, widgetHandler)
		r.Get(versionSubPath, webutil.MakeHandler(widgetHandler.HandleGetVersion))
	})

	r.Get(eventsPath, eventsHandler.HandleEvents)
	r.Post(schedulerTickPath, trendingScheduler.HandleTick)
	r.Get(healthPath, handleHealthCheck)

	r.NotFound(webutil.MakeHandler(func(w http.ResponseWriter, r *http.Request) error {
		return webutil.ErrNotFound("No route for " + r.URL.Path)
	}))

	return r
}

// --- Sources Routes ---
func configureSourceRoutes(r chi.Router, handler *rh.WidgetHandler) {
	r.Route(sourcesSubPath, func(r chi.Router) {
		r.Get("/", webutil.MakeHandler(handler.HandleGetSources))
		r.Post(toggleSubPath, webutil.MakeHandler(handler.HandleToggleSource)) // POST /widgets/sources/toggle
	})
}

// --- Trending Routes ---
func configureTrendingRoutes(r chi.Router, handler *rh.WidgetHandler) {
	r.Route(trendingSubPath, func(r chi.Router) {
		r.Get("/", webutil.MakeHandler(handler.HandleGetTrending))            // ?refresh=1 forces a run
		r.Post(selectSubPath, webutil.MakeHandler(handler.HandleSelectTopic)) // POST /widgets/trending/select
	})
}

// handleHealthCheck responds to a health check request.
func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(webutil.HeaderContentType, webutil.ContentTypeTextPlainUTF8)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
