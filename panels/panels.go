// Package panels holds the stateful widget components. Each one pulls a
// snapshot from the news API and hands it to a pure renderer in widgets.
package panels

import (
	"context"

	"github.com/coreybb/newsdash/message"
	"github.com/coreybb/newsdash/models"
)

// PreferencesAPI reads and replaces the user's preferences.
type PreferencesAPI interface {
	GetPreferences(ctx context.Context) (*models.Preferences, error)
	UpdatePreferences(ctx context.Context, prefs *models.Preferences) error
}

// TrendingAPI reads the current trending topics.
type TrendingAPI interface {
	GetTrending(ctx context.Context) (*models.TrendingResponse, error)
}

// VersionAPI reads the news API build metadata.
type VersionAPI interface {
	GetVersion(ctx context.Context) (*models.VersionInfo, error)
}

// Publisher receives widget notifications. bus.Bus[message.Event]
// satisfies it.
type Publisher interface {
	Broadcast(m message.Event) error
}
