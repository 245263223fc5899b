package panels

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/coreybb/newsdash/models"
	"github.com/coreybb/newsdash/widgets"
)

var errNoVersion = errors.New("version response was empty")

// VersionBadge shows the news API build metadata. The first successful
// fetch is kept for the life of the process. A failed fetch renders the
// unavailable message for that render only, so the next page load asks
// again.
type VersionBadge struct {
	api         VersionAPI
	containerID string
	loc         *time.Location

	mu       sync.Mutex
	info     *models.VersionInfo
	fragment []byte
}

func NewVersionBadge(api VersionAPI, containerID string, loc *time.Location) *VersionBadge {
	return &VersionBadge{api: api, containerID: containerID, loc: loc}
}

// ContainerID is the element id the badge renders into.
func (b *VersionBadge) ContainerID() string {
	return b.containerID
}

// load returns the cached badge, fetching it if there is none yet. The
// fetch is detached from ctx's cancellation: its result is shared by every
// later visitor, so one caller hanging up must not decide it.
func (b *VersionBadge) load(ctx context.Context) (*models.VersionInfo, []byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.fragment != nil {
		return b.info, b.fragment, nil
	}

	info, err := b.api.GetVersion(context.WithoutCancel(ctx))
	if err == nil && info == nil {
		err = errNoVersion
	}
	if err != nil {
		slog.Error("Error fetching version", "error", err)
		var buf bytes.Buffer
		if err := widgets.RenderVersionError(&buf, b.containerID); err != nil {
			return nil, nil, err
		}
		return nil, buf.Bytes(), nil
	}

	var buf bytes.Buffer
	if err := widgets.RenderVersion(&buf, b.containerID, info, b.loc); err != nil {
		return nil, nil, err
	}
	b.info, b.fragment = info, buf.Bytes()
	return b.info, b.fragment, nil
}

// Info returns the fetched version, or nil when it is unavailable.
func (b *VersionBadge) Info(ctx context.Context) *models.VersionInfo {
	info, _, _ := b.load(ctx)
	return info
}

// Fragment returns the rendered badge.
func (b *VersionBadge) Fragment(ctx context.Context) ([]byte, error) {
	_, fragment, err := b.load(ctx)
	return fragment, err
}

// Render writes the badge to w.
func (b *VersionBadge) Render(ctx context.Context, w io.Writer) error {
	fragment, err := b.Fragment(ctx)
	if err != nil {
		return err
	}
	_, err = w.Write(fragment)
	return err
}
