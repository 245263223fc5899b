package panels

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/coreybb/newsdash/message"
	"github.com/coreybb/newsdash/models"
)

var errAPIDown = errors.New("api down")

type recordingPublisher struct {
	mu     sync.Mutex
	events []message.Event
}

func (p *recordingPublisher) Broadcast(m message.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, m)
	return nil
}

func (p *recordingPublisher) kinds() []message.Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	var kinds []message.Kind
	for _, e := range p.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func (p *recordingPublisher) last() message.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

// fakePreferences stores preferences as JSON so each read returns a fresh
// copy, like a real server would.
type fakePreferences struct {
	mu       sync.Mutex
	stored   []byte
	getErr   error
	putErr   error
	gets     int
	puts     int
	lastSent []byte
}

func newFakePreferences(body string) *fakePreferences {
	return &fakePreferences{stored: []byte(body)}
}

func (f *fakePreferences) GetPreferences(ctx context.Context) (*models.Preferences, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	var prefs models.Preferences
	if err := json.Unmarshal(f.stored, &prefs); err != nil {
		return nil, err
	}
	return &prefs, nil
}

func (f *fakePreferences) UpdatePreferences(ctx context.Context, prefs *models.Preferences) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	if f.putErr != nil {
		return f.putErr
	}
	body, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	f.stored = body
	f.lastSent = body
	return nil
}

// trendingCall is one pending GetTrending call; the test decides when and
// how it resolves.
type trendingCall struct {
	resolve chan trendingResult
}

type trendingResult struct {
	resp *models.TrendingResponse
	err  error
}

type scriptedTrending struct {
	calls chan trendingCall
}

func newScriptedTrending() *scriptedTrending {
	return &scriptedTrending{calls: make(chan trendingCall, 8)}
}

func (s *scriptedTrending) GetTrending(ctx context.Context) (*models.TrendingResponse, error) {
	call := trendingCall{resolve: make(chan trendingResult, 1)}
	s.calls <- call
	select {
	case r := <-call.resolve:
		return r.resp, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type staticTrending struct {
	resp *models.TrendingResponse
	err  error
}

func (s staticTrending) GetTrending(ctx context.Context) (*models.TrendingResponse, error) {
	return s.resp, s.err
}

type countingVersion struct {
	mu    sync.Mutex
	calls int
	info  *models.VersionInfo
	err   error
}

func (c *countingVersion) GetVersion(ctx context.Context) (*models.VersionInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.info, c.err
}

func (c *countingVersion) set(info *models.VersionInfo, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.info, c.err = info, err
}

func (c *countingVersion) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
