// Package tracker turns play/pause signals from a player into an accurate
// watched-duration metric and reports progress to a remote collector.
//
// A Tracker owns one watch session. Start arms a periodic timer that lives
// until Stop; every tick folds the running interval into the total and
// reports once enough unreported time has built up. Stop folds the remaining
// interval, cancels the timer and issues one final report. Reports are fire
// and forget: they run on their own goroutines, failures are logged and the
// session never waits on the network.
package tracker

import (
	"context"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fakeyudi/reelwatch/internal/deviceid"
	"github.com/fakeyudi/reelwatch/internal/reporting"
)

const (
	DefaultTickInterval   = 5 * time.Second
	DefaultFlushThreshold = 5 * time.Second
	DefaultReportTimeout  = 10 * time.Second
)

// State is the lifecycle position of a watch session.
type State int

const (
	StateIdle    State = iota // created, never started
	StateActive               // accumulating
	StatePaused               // started, not accumulating
	StateStopped              // terminal
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Options configures a Tracker. Zero durations take the package defaults.
type Options struct {
	ContentID string
	Kind      reporting.ContentKind
	Duration  time.Duration // known content length; <= 0 means unknown

	Disabled       bool // Start and Resume become no-ops
	TickInterval   time.Duration
	FlushThreshold time.Duration
	ReportTimeout  time.Duration

	Clock  Clock
	Logger *zap.Logger

	// OnResult, if set, receives the collector's answer to each successful
	// report. It is called from the report goroutine.
	OnResult func(reporting.Result)
}

// Snapshot is a point-in-time copy of the session state.
type Snapshot struct {
	ContentID     string
	Kind          reporting.ContentKind
	State         State
	Accumulated   time.Duration // folded time only
	LastFlushed   time.Duration
	IntervalStart time.Time // zero unless Active
	Reports       int
}

// Tracker is the watch-session state machine. It is safe for concurrent use.
type Tracker struct {
	opts     Options
	reporter reporting.Reporter
	identity deviceid.Provider
	clock    Clock
	log      *zap.Logger

	mu            sync.Mutex
	state         State
	accumulated   time.Duration
	lastFlushed   time.Duration
	intervalStart time.Time
	reports       int
	ticker        Ticker
	done          chan struct{}

	inflight sync.WaitGroup
}

// New builds a Tracker in the Idle state. A nil reporter falls back to a
// LogReporter.
func New(reporter reporting.Reporter, identity deviceid.Provider, opts Options) *Tracker {
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.FlushThreshold <= 0 {
		opts.FlushThreshold = DefaultFlushThreshold
	}
	if opts.ReportTimeout <= 0 {
		opts.ReportTimeout = DefaultReportTimeout
	}
	if opts.Kind == "" {
		opts.Kind = reporting.KindVideo
	}
	clock := opts.Clock
	if clock == nil {
		clock = realClock{}
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("content_id", opts.ContentID), zap.String("kind", string(opts.Kind)))
	if reporter == nil {
		reporter = &reporting.LogReporter{Log: log}
	}
	return &Tracker{
		opts:     opts,
		reporter: reporter,
		identity: identity,
		clock:    clock,
		log:      log,
	}
}

// Start begins accumulating and arms the session timer. It only acts on a
// fresh session.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.opts.Disabled || t.state != StateIdle {
		t.log.Debug("start ignored", zap.Stringer("state", t.state), zap.Bool("disabled", t.opts.Disabled))
		return
	}
	t.intervalStart = t.clock.Now()
	t.state = StateActive
	t.ticker = t.clock.NewTicker(t.opts.TickInterval)
	t.done = make(chan struct{})
	go t.run(t.ticker, t.done)
}

// Pause folds the running interval into the total. The timer keeps running.
func (t *Tracker) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateActive {
		return
	}
	t.foldLocked(t.clock.Now())
	t.state = StatePaused
	t.intervalStart = time.Time{}
}

// Resume restarts accumulation after Pause. The timer armed by Start is reused.
func (t *Tracker) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.opts.Disabled || t.state != StatePaused {
		return
	}
	t.intervalStart = t.clock.Now()
	t.state = StateActive
}

// Stop ends the session: it folds any running interval, cancels the timer
// and issues a final report when any time was watched. Later calls are no-ops.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == StateStopped {
		return
	}
	if t.state == StateActive {
		t.foldLocked(t.clock.Now())
	}
	t.state = StateStopped
	t.intervalStart = time.Time{}
	if t.ticker != nil {
		t.ticker.Stop()
		close(t.done)
		t.ticker = nil
	}
	if t.accumulated > 0 {
		t.reportLocked()
	}
}

// Close is the teardown hook for the owning surface. It stops the session if
// that has not happened yet.
func (t *Tracker) Close() error {
	t.Stop()
	return nil
}

// Wait blocks until every report issued so far has completed or failed.
func (t *Tracker) Wait() {
	t.inflight.Wait()
}

// IsTracking reports whether time is currently being accumulated.
func (t *Tracker) IsTracking() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == StateActive
}

// TotalWatchTime returns the watched time including the running interval.
func (t *Tracker) TotalWatchTime() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	total := t.accumulated
	if t.state == StateActive {
		total += t.clock.Now().Sub(t.intervalStart)
	}
	return total
}

// Snapshot returns a copy of the session state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{
		ContentID:     t.opts.ContentID,
		Kind:          t.opts.Kind,
		State:         t.state,
		Accumulated:   t.accumulated,
		LastFlushed:   t.lastFlushed,
		IntervalStart: t.intervalStart,
		Reports:       t.reports,
	}
}

func (t *Tracker) run(ticker Ticker, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-ticker.C():
			t.tick()
		}
	}
}

// tick is the timer callback. It must observe the current state because the
// timer outlives pauses.
func (t *Tracker) tick() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateActive {
		return
	}
	t.foldLocked(t.clock.Now())
	if t.accumulated-t.lastFlushed >= t.opts.FlushThreshold {
		t.reportLocked()
	}
}

// foldLocked adds the running interval to the total and restarts it at now.
func (t *Tracker) foldLocked(now time.Time) {
	if elapsed := now.Sub(t.intervalStart); elapsed > 0 {
		t.accumulated += elapsed
	}
	t.intervalStart = now
}

// reportLocked issues a report for the current total and marks it flushed
// without waiting for the outcome.
func (t *Tracker) reportLocked() {
	watched := int(math.Round(t.accumulated.Seconds()))
	rate := CompletionRate(t.accumulated, t.opts.Duration)
	t.lastFlushed = t.accumulated
	t.reports++

	t.inflight.Add(1)
	go t.deliver(watched, rate)
}

func (t *Tracker) deliver(watched int, rate float64) {
	defer t.inflight.Done()

	ctx, cancel := context.WithTimeout(context.Background(), t.opts.ReportTimeout)
	defer cancel()

	var deviceID string
	if t.identity != nil {
		deviceID = t.identity.DeviceID(ctx)
	}

	report := reporting.NewWatchReport(t.opts.ContentID, t.opts.Kind, watched, rate, deviceID)
	res, err := t.reporter.ReportWatch(ctx, report)
	if err != nil {
		t.log.Warn("watch report failed",
			zap.String("event_id", report.EventID),
			zap.Int("watched_seconds", watched),
			zap.Error(err))
		return
	}
	t.log.Debug("watch report sent",
		zap.String("event_id", report.EventID),
		zap.Int("watched_seconds", watched),
		zap.Float64("completion_rate", rate))
	if t.opts.OnResult != nil {
		t.opts.OnResult(res)
	}
}

// CompletionRate is watched as a percentage of duration, clamped to [0,100]
// and rounded to two decimals. An unknown duration yields 0.
func CompletionRate(watched, duration time.Duration) float64 {
	if duration <= 0 {
		return 0
	}
	rate := watched.Seconds() / duration.Seconds() * 100
	rate = math.Max(0, math.Min(100, rate))
	return math.Round(rate*100) / 100
}
