package routehandlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/coreybb/newsdash/bus"
	"github.com/coreybb/newsdash/message"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// pageParam names the query parameter carrying the page id on /events.
const pageParam = "page"

// TopicSelector publishes a topic selection made on one page.
type TopicSelector interface {
	SelectTopic(ctx context.Context, topic, page string) error
}

// clientMessage is what browsers may send on the events socket.
type clientMessage struct {
	Kind  message.Kind `json:"kind"`
	Topic string       `json:"topic"`
}

// EventsHandler streams bus events to browsers over a websocket.
type EventsHandler struct {
	Bus    bus.Bus[message.Event]
	Topics TopicSelector

	upgrader websocket.Upgrader
}

func NewEventsHandler(b bus.Bus[message.Event], topics TopicSelector) *EventsHandler {
	return &EventsHandler{
		Bus:    b,
		Topics: topics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// HandleEvents upgrades the request and forwards bus events as JSON until
// the client goes away or the bus is closed. The socket belongs to the page
// named by ?page=; events addressed to other pages are not forwarded. A
// socket without a page id gets its own, so selections it sends still
// come back only to it.
func (h *EventsHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the client.
		slog.Warn("Websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sub := h.Bus.Subscribe()
	defer h.Bus.Unsubscribe(sub.ID)

	page := r.URL.Query().Get(pageParam)
	if page == "" {
		page = sub.ID.String()
	}
	slog.Debug("Events client connected", "subscriber", sub.ID, "page", page, "remote", r.RemoteAddr)

	clientGone := make(chan struct{})
	go h.readLoop(conn, page, clientGone)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case ev, ok := <-sub.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
				return
			}
			if !ev.DeliverableTo(page) {
				continue
			}
			if err := conn.WriteJSON(ev); err != nil {
				slog.Debug("Events client write failed", "subscriber", sub.ID, "error", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-clientGone:
			slog.Debug("Events client disconnected", "subscriber", sub.ID)
			return
		}
	}
}

// readLoop consumes client messages. Topic selections are published for
// page; anything else is ignored.
func (h *EventsHandler) readLoop(conn *websocket.Conn, page string, clientGone chan<- struct{}) {
	defer close(clientGone)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("Events client read failed", "error", err)
			}
			return
		}
		switch {
		case !msg.Kind.IsValid():
			slog.Debug("Ignoring client message", "kind", msg.Kind)
		case msg.Kind != message.KindFilterByTopic:
			slog.Debug("Clients may only publish topic selections", "kind", msg.Kind)
		default:
			if err := h.Topics.SelectTopic(context.Background(), msg.Topic, page); err != nil {
				slog.Warn("Client topic selection rejected", "topic", msg.Topic, "error", err)
			}
		}
	}
}
