// Package reporting delivers watch-progress reports to the remote collector.
// Delivery is best effort: callers submit a report and move on, and a failed
// report is logged by the caller, never retried.
package reporting

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ContentKind identifies what is being watched.
type ContentKind string

const (
	KindReel  ContentKind = "reel"
	KindVideo ContentKind = "video"
)

// Valid reports whether k is a known content kind.
func (k ContentKind) Valid() bool {
	return k == KindReel || k == KindVideo
}

// WatchReport is one progress delivery for a piece of content.
type WatchReport struct {
	EventID        string      `json:"eventId"`
	ContentID      string      `json:"contentId"`
	Kind           ContentKind `json:"kind"`
	WatchedSeconds int         `json:"watchedSeconds"`
	CompletionRate float64     `json:"completionRate"` // percent, [0,100]
	DeviceID       string      `json:"deviceId"`
	OccurredAt     time.Time   `json:"occurredAt"`
}

// NewWatchReport stamps a report with a fresh event id so the collector can
// deduplicate redeliveries.
func NewWatchReport(contentID string, kind ContentKind, watchedSeconds int, completionRate float64, deviceID string) WatchReport {
	return WatchReport{
		EventID:        uuid.NewString(),
		ContentID:      contentID,
		Kind:           kind,
		WatchedSeconds: watchedSeconds,
		CompletionRate: completionRate,
		DeviceID:       deviceID,
		OccurredAt:     time.Now().UTC(),
	}
}

// Result is what the collector hands back for an accepted report.
type Result struct {
	UpdatedScore *float64 `json:"updatedScore,omitempty"`
}

// Reporter persists a watch event remotely.
type Reporter interface {
	ReportWatch(ctx context.Context, r WatchReport) (Result, error)
}
