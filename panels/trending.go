package panels

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coreybb/newsdash/message"
	"github.com/coreybb/newsdash/models"
	"github.com/coreybb/newsdash/scheduler"
	"github.com/coreybb/newsdash/widgets"
)

// DefaultTrendingInterval is how often the trending cloud is refreshed.
const DefaultTrendingInterval = 5 * time.Minute

// ErrEmptyTopic is returned when selecting a blank topic.
var ErrEmptyTopic = errors.New("topic must not be empty")

// TrendingTopics keeps a periodically refreshed trending-topics cloud.
//
// Every refresh takes a sequence number before fetching, and its render is
// committed only if no newer refresh has committed already. Together with
// the scheduler's skip-if-busy guard this means an older response can
// never overwrite a newer one.
type TrendingTopics struct {
	api         TrendingAPI
	events      Publisher
	containerID string
	loc         *time.Location
	scheduler   *scheduler.Scheduler

	issued atomic.Uint64

	mu        sync.RWMutex
	committed uint64
	fragment  []byte
	latest    *models.TrendingResponse
}

func NewTrendingTopics(api TrendingAPI, events Publisher, containerID string, loc *time.Location, interval time.Duration) *TrendingTopics {
	if interval <= 0 {
		interval = DefaultTrendingInterval
	}
	t := &TrendingTopics{
		api:         api,
		events:      events,
		containerID: containerID,
		loc:         loc,
	}
	t.scheduler = scheduler.New("trending", interval, t.Refresh)
	return t
}

// ContainerID is the element id the cloud renders into.
func (t *TrendingTopics) ContainerID() string {
	return t.containerID
}

// Scheduler exposes the refresh loop, e.g. for manual ticks or interval
// changes.
func (t *TrendingTopics) Scheduler() *scheduler.Scheduler {
	return t.scheduler
}

// Fetch returns the current trending topics, or nil on any failure.
// Failures are logged, not returned.
func (t *TrendingTopics) Fetch(ctx context.Context) *models.TrendingResponse {
	resp, err := t.api.GetTrending(ctx)
	if err != nil {
		slog.Error("Error fetching trending topics", "error", err)
		return nil
	}
	return resp
}

// Refresh fetches and re-renders the cloud. A failed or malformed fetch
// renders the fixed error message. Nothing is committed once ctx is done.
func (t *TrendingTopics) Refresh(ctx context.Context) error {
	seq := t.issued.Add(1)
	resp := t.Fetch(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := widgets.RenderTrending(&buf, t.containerID, resp, t.loc); err != nil {
		return fmt.Errorf("failed to render trending topics: %w", err)
	}

	if !t.commit(seq, buf.Bytes(), resp) {
		slog.Info("Discarding stale trending render", "seq", seq)
		return nil
	}

	if err := t.events.Broadcast(message.New(message.KindTrendingUpdated)); err != nil {
		slog.Warn("Could not announce trending update", "error", err)
	}
	return nil
}

func (t *TrendingTopics) commit(seq uint64, fragment []byte, resp *models.TrendingResponse) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if seq <= t.committed {
		return false
	}
	t.committed = seq
	t.fragment = fragment
	if resp.HasTopics() {
		t.latest = resp
	} else {
		t.latest = nil
	}
	return true
}

// Fragment returns the last committed render. Before the first refresh
// completes it is the error message.
func (t *TrendingTopics) Fragment() ([]byte, error) {
	t.mu.RLock()
	fragment := t.fragment
	t.mu.RUnlock()
	if fragment != nil {
		return fragment, nil
	}

	var buf bytes.Buffer
	if err := widgets.RenderTrendingError(&buf, t.containerID); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Latest returns the response behind the last committed render, or nil
// when that render was the error message.
func (t *TrendingTopics) Latest() *models.TrendingResponse {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.latest
}

// SelectTopic publishes a filter-by-topic notification for topic,
// addressed to the page the selection was made on.
func (t *TrendingTopics) SelectTopic(ctx context.Context, topic, page string) error {
	if topic == "" {
		return ErrEmptyTopic
	}
	if err := t.events.Broadcast(message.FilterByTopic(topic, page)); err != nil {
		return fmt.Errorf("failed to publish topic selection: %w", err)
	}
	slog.Debug("Topic selected", "topic", topic, "page", page)
	return nil
}

// StartAutoUpdate renders immediately and then once per interval until
// the returned handle is stopped or ctx is cancelled.
func (t *TrendingTopics) StartAutoUpdate(ctx context.Context) *scheduler.Handle {
	return t.scheduler.Start(ctx)
}
