package routehandlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreybb/newsdash/message"
)

// eventsURL serves h and returns its websocket URL.
func eventsURL(t *testing.T, h *EventsHandler) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(h.HandleEvents))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

// dialPage opens an events socket for page; an empty page omits the id.
func dialPage(t *testing.T, wsURL, page string) *websocket.Conn {
	t.Helper()
	if page != "" {
		wsURL += "?page=" + url.QueryEscape(page)
	}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) message.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev message.Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func waitSubscribers(t *testing.T, f *fixture, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return f.events.Len() == n }, 2*time.Second, 5*time.Millisecond)
}

func TestEventsForwardsBusEvents(t *testing.T) {
	f := newFixture(t)
	conn := dialPage(t, eventsURL(t, NewEventsHandler(f.events, f.trending)), "page-1")
	waitSubscribers(t, f, 1)

	require.NoError(t, f.events.Broadcast(message.New(message.KindNewsRefresh)))

	ev := readEvent(t, conn)
	assert.Equal(t, message.KindNewsRefresh, ev.Kind)
	assert.NotEmpty(t, ev.ID)
}

func TestEventsTopicSelectionReachesOnlyItsPage(t *testing.T) {
	f := newFixture(t)
	wsURL := eventsURL(t, NewEventsHandler(f.events, f.trending))
	alice := dialPage(t, wsURL, "alice")
	bob := dialPage(t, wsURL, "bob")
	waitSubscribers(t, f, 2)

	w := serve(f.widgets.HandleSelectTopic, formRequest("/widgets/trending/select", url.Values{
		"topic": {"golang"},
		"page":  {"alice"},
	}))
	require.Equal(t, http.StatusNoContent, w.Code)
	require.NoError(t, f.events.Broadcast(message.New(message.KindNewsRefresh)))

	ev := readEvent(t, alice)
	assert.Equal(t, message.KindFilterByTopic, ev.Kind)
	assert.Equal(t, "golang", ev.Topic)
	assert.Equal(t, message.KindNewsRefresh, readEvent(t, alice).Kind)

	// Events arrive in order, so bob seeing the refresh first means the
	// selection was never sent to him.
	assert.Equal(t, message.KindNewsRefresh, readEvent(t, bob).Kind)
}

func TestEventsClientSelectionComesBackOnlyToSender(t *testing.T) {
	f := newFixture(t)
	wsURL := eventsURL(t, NewEventsHandler(f.events, f.trending))
	sender := dialPage(t, wsURL, "")
	other := dialPage(t, wsURL, "other")
	waitSubscribers(t, f, 2)

	require.NoError(t, sender.WriteJSON(map[string]string{"kind": "unknown", "topic": "x"}))
	require.NoError(t, sender.WriteJSON(map[string]string{"kind": "news-refresh"}))
	require.NoError(t, sender.WriteJSON(map[string]string{"kind": "filter-by-topic", "topic": "golang"}))

	ev := readEvent(t, sender)
	assert.Equal(t, message.KindFilterByTopic, ev.Kind)
	assert.Equal(t, "golang", ev.Topic)

	require.NoError(t, f.events.Broadcast(message.New(message.KindTrendingUpdated)))
	assert.Equal(t, message.KindTrendingUpdated, readEvent(t, other).Kind)
}

func TestEventsSelectionWithoutPageReachesNobody(t *testing.T) {
	f := newFixture(t)
	conn := dialPage(t, eventsURL(t, NewEventsHandler(f.events, f.trending)), "page-1")
	waitSubscribers(t, f, 1)

	w := serve(f.widgets.HandleSelectTopic, formRequest("/widgets/trending/select", url.Values{"topic": {"golang"}}))
	require.Equal(t, http.StatusNoContent, w.Code)
	require.NoError(t, f.events.Broadcast(message.New(message.KindNewsRefresh)))

	assert.Equal(t, message.KindNewsRefresh, readEvent(t, conn).Kind)
}

func TestEventsUnsubscribesOnDisconnect(t *testing.T) {
	f := newFixture(t)
	conn := dialPage(t, eventsURL(t, NewEventsHandler(f.events, f.trending)), "page-1")
	waitSubscribers(t, f, 1)

	require.NoError(t, conn.Close())
	waitSubscribers(t, f, 0)
}

func TestEventsClosesWhenBusCloses(t *testing.T) {
	f := newFixture(t)
	conn := dialPage(t, eventsURL(t, NewEventsHandler(f.events, f.trending)), "page-1")
	waitSubscribers(t, f, 1)

	f.events.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}
