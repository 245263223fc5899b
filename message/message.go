package message

import (
	"time"

	"github.com/google/uuid"
)

// Event is a typed notification exchanged between widgets and their
// collaborators. Topic is only set for KindFilterByTopic.
type Event struct {
	ID    string    `json:"id"`
	Kind  Kind      `json:"kind"`
	At    time.Time `json:"at"`
	Topic string    `json:"topic,omitempty"`
	// Page addresses the event to a single browser page. Empty means all pages.
	Page string `json:"page,omitempty"`
}

// New stamps a new event of the given kind.
func New(kind Kind) Event {
	return Event{
		ID:   uuid.NewString(),
		Kind: kind,
		At:   time.Now().UTC(),
	}
}

// FilterByTopic builds the event emitted when a topic is clicked on page.
func FilterByTopic(topic, page string) Event {
	e := New(KindFilterByTopic)
	e.Topic = topic
	e.Page = page
	return e
}

// DeliverableTo reports whether page should receive e. A topic selection
// only ever reaches the page it was made on; an unaddressed one reaches
// no page at all.
func (e Event) DeliverableTo(page string) bool {
	if e.Kind == KindFilterByTopic {
		return e.Page != "" && e.Page == page
	}
	return e.Page == "" || e.Page == page
}
