// Package foxypack provides a handler chain that turns social-media URLs into
// classifications and statistics by trying pluggable handlers in order.
package foxypack

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ContentCategory classifies what a URL points at. The set is open: handlers may
// return categories beyond the constants below.
type ContentCategory string

const (
	CategoryChannel  ContentCategory = "channel"
	CategoryVideo    ContentCategory = "video"
	CategoryImage    ContentCategory = "image"
	CategoryText     ContentCategory = "text"
	CategoryAudio    ContentCategory = "audio"
	CategoryDocument ContentCategory = "document"
	CategoryPlaylist ContentCategory = "playlist"
	CategoryHomepage ContentCategory = "homepage"
	CategoryUnknown  ContentCategory = "unknown"
)

// Analysis is the classification of a single URL. It is shared read-only by every
// Statistics value built from it.
type Analysis struct {
	URL      string          `json:"url"`
	Platform string          `json:"platform"`
	Category ContentCategory `json:"category"`
}

// Statistics is the enriched result of a collector. Concrete variants embed
// StatisticsBase.
type Statistics interface {
	// ID is unique per collection call.
	ID() uuid.UUID
	// Analysis returns the classification the statistics were collected for.
	Analysis() *Analysis
	CollectedAt() time.Time
}

// StatisticsBase carries the fields shared by all statistics variants.
type StatisticsBase struct {
	StatID    uuid.UUID `json:"id"`
	Source    *Analysis `json:"analysis"`
	Collected time.Time `json:"collected_at"`
}

// NewStatisticsBase returns a base with a freshly generated identifier.
func NewStatisticsBase(a *Analysis) StatisticsBase {
	return StatisticsBase{
		StatID:    uuid.New(),
		Source:    a,
		Collected: time.Now().UTC(),
	}
}

func (b StatisticsBase) ID() uuid.UUID          { return b.StatID }
func (b StatisticsBase) Analysis() *Analysis    { return b.Source }
func (b StatisticsBase) CollectedAt() time.Time { return b.Collected }

// ContainerStats describes a container of content such as a channel or profile.
type ContainerStats struct {
	StatisticsBase
	SystemID    string    `json:"system_id"`
	Title       string    `json:"title"`
	Subscribers int64     `json:"subscribers"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
}

// ContentItemStats describes a single piece of content such as a video or post.
type ContentItemStats struct {
	StatisticsBase
	SystemID    string    `json:"system_id"`
	Title       string    `json:"title"`
	Views       int64     `json:"views"`
	Likes       int64     `json:"likes"`
	PublishedAt time.Time `json:"published_at,omitzero"`
}

// Analyzer classifies URLs.
type Analyzer interface {
	// Analyze classifies url. It returns a *DeclinedError when the URL is empty,
	// malformed or not handled by this analyzer.
	Analyze(url string) (*Analysis, error)
}

// Collector produces statistics for a classified URL. A collector may support
// only one execution mode; the other entry point must then fail immediately with
// ErrSyncUnsupported or ErrAsyncUnsupported.
type Collector interface {
	Statistics(a *Analysis) (Statistics, error)
	StatisticsAsync(ctx context.Context, a *Analysis) (Statistics, error)
}

// Named is implemented by handlers that want a stable name in errors and
// observer callbacks. Unnamed handlers are reported by their Go type.
type Named interface {
	Name() string
}

// SyncOnly can be embedded by collectors that have no asynchronous mode.
type SyncOnly struct {
	Handler string
}

// StatisticsAsync always fails with ErrAsyncUnsupported.
func (s SyncOnly) StatisticsAsync(context.Context, *Analysis) (Statistics, error) {
	return nil, NewAsyncUnsupported(s.Handler)
}

// AsyncOnly can be embedded by collectors that have no synchronous mode.
type AsyncOnly struct {
	Handler string
}

// Statistics always fails with ErrSyncUnsupported.
func (a AsyncOnly) Statistics(*Analysis) (Statistics, error) {
	return nil, NewSyncUnsupported(a.Handler)
}
