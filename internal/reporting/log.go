package reporting

import (
	"context"

	"go.uber.org/zap"
)

// LogReporter is a dry-run Reporter that only logs what would be sent.
type LogReporter struct {
	Log *zap.Logger
}

func (l *LogReporter) ReportWatch(ctx context.Context, r WatchReport) (Result, error) {
	log := l.Log
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("watch report",
		zap.String("event_id", r.EventID),
		zap.String("content_id", r.ContentID),
		zap.String("kind", string(r.Kind)),
		zap.Int("watched_seconds", r.WatchedSeconds),
		zap.Float64("completion_rate", r.CompletionRate),
		zap.String("device_id", r.DeviceID),
	)
	return Result{}, nil
}
