package routehandlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/coreybb/newsdash/apiclient"
	"github.com/coreybb/newsdash/bus"
	"github.com/coreybb/newsdash/message"
	"github.com/coreybb/newsdash/panels"
)

const initialPreferences = `{
	"interests": ["tech"],
	"sources": [
		{"name": "BBC News", "category": "World", "enabled": true, "url": "https://bbc.example"},
		{"name": "Hacker News", "category": "Tech", "enabled": false}
	]
}`

const trendingBody = `{
	"time": "2024-03-01T12:30:00Z",
	"topics": [{"topic": "golang", "frequency": 5}],
	"count": 1
}`

const versionBody = `{"version": "2.1.0", "gitCommit": "abc1234", "buildTime": "2024-03-01T08:00:00Z"}`

// newsBackend fakes the external news API.
type newsBackend struct {
	mu          sync.Mutex
	preferences []byte
	puts        int
	trendingUp  bool

	// When set, trending requests signal trendingHit and then wait on trendingGate.
	trendingHit  chan struct{}
	trendingGate chan struct{}
}

func newNewsBackend(t *testing.T) (*newsBackend, *httptest.Server) {
	t.Helper()
	b := &newsBackend{preferences: []byte(initialPreferences), trendingUp: true}
	srv := httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(srv.Close)
	return b, srv
}

func (b *newsBackend) serve(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/news/trending" {
		b.mu.Lock()
		hit, gate := b.trendingHit, b.trendingGate
		b.mu.Unlock()
		if hit != nil {
			hit <- struct{}{}
			<-gate
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/api/preferences" && r.Method == http.MethodGet:
		_, _ = w.Write(b.preferences)
	case r.URL.Path == "/api/preferences" && r.Method == http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		if !json.Valid(body) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		b.preferences = body
		b.puts++
		w.WriteHeader(http.StatusNoContent)
	case r.URL.Path == "/api/news/trending":
		if !b.trendingUp {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(trendingBody))
	case r.URL.Path == "/api/version":
		_, _ = w.Write([]byte(versionBody))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (b *newsBackend) putCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.puts
}

func (b *newsBackend) storedPreferences() map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out map[string]any
	_ = json.Unmarshal(b.preferences, &out)
	return out
}

// holdTrending makes trending requests block. hit receives once per
// request; closing gate lets them all through.
func (b *newsBackend) holdTrending() (hit <-chan struct{}, gate chan<- struct{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trendingHit = make(chan struct{}, 1)
	b.trendingGate = make(chan struct{})
	return b.trendingHit, b.trendingGate
}

func (b *newsBackend) setTrendingUp(up bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trendingUp = up
}

type fixture struct {
	backend  *newsBackend
	events   *bus.MemoryBus[message.Event]
	trending *panels.TrendingTopics
	widgets  *WidgetHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend, srv := newNewsBackend(t)
	client := apiclient.New(srv.URL, 2*time.Second)
	events := bus.NewMemoryBus[message.Event](16)
	t.Cleanup(events.Close)

	sources := panels.NewSourcesPanel(client, events, "")
	trending := panels.NewTrendingTopics(client, events, "trending-topics", time.UTC, time.Hour)
	version := panels.NewVersionBadge(client, "version-info", time.UTC)

	return &fixture{
		backend:  backend,
		events:   events,
		trending: trending,
		widgets:  NewWidgetHandler(sources, trending, version, "News", "test"),
	}
}
