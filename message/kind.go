package message

// Kind identifies what an Event announces. The string values double as the
// names browsers see on the /events stream.
type Kind string

const (
	// KindFilterByTopic is emitted when a trending topic is selected.
	KindFilterByTopic Kind = "filter-by-topic"
	// KindNewsRefresh asks the page to reload its news list.
	KindNewsRefresh Kind = "news-refresh"
	// KindTrendingUpdated announces a freshly rendered trending fragment.
	KindTrendingUpdated Kind = "trending-updated"
)

// IsValid reports whether k is one of the known kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindFilterByTopic, KindNewsRefresh, KindTrendingUpdated:
		return true
	default:
		return false
	}
}
