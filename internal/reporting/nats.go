package reporting

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultSubject is the JetStream subject watch reports are published on.
const DefaultSubject = "watch.reported"

// NATSOptions configures the NATS connection behaviour.
// Zero values fall back to env vars or built-in defaults.
type NATSOptions struct {
	URL           string
	MaxReconnects int           // default 5
	ReconnectWait time.Duration // default 2s
}

// ConnectNATS dials NATS and fails fast when the server is unreachable.
func ConnectNATS(opts NATSOptions) (*nats.Conn, error) {
	if opts.URL == "" {
		opts.URL = strings.TrimSpace(os.Getenv("NATS_URL"))
		if opts.URL == "" {
			opts.URL = nats.DefaultURL
		}
	}
	if opts.MaxReconnects == 0 {
		opts.MaxReconnects = 5
	}
	if opts.ReconnectWait == 0 {
		opts.ReconnectWait = 2 * time.Second
	}

	nc, err := nats.Connect(opts.URL,
		nats.Name("reelwatch"),
		nats.MaxReconnects(opts.MaxReconnects),
		nats.ReconnectWait(opts.ReconnectWait),
		nats.RetryOnFailedConnect(false),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect %s (max_reconnects=%d, wait=%s): %w",
			opts.URL, opts.MaxReconnects, opts.ReconnectWait, err)
	}
	return nc, nil
}

// NATSReporter publishes watch reports to JetStream without waiting for the
// server ack. Collectors consume the subject and deduplicate on EventID.
type NATSReporter struct {
	js      nats.JetStreamContext
	subject string
}

// NewNATSReporter wraps an existing JetStream context. An empty subject means
// DefaultSubject.
func NewNATSReporter(js nats.JetStreamContext, subject string) *NATSReporter {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSReporter{js: js, subject: subject}
}

// ReportWatch enqueues r for asynchronous publish. The returned Result never
// carries a score because nothing is read back.
func (p *NATSReporter) ReportWatch(ctx context.Context, r WatchReport) (Result, error) {
	if p == nil || p.js == nil {
		return Result{}, fmt.Errorf("nats reporter not configured")
	}
	data, err := json.Marshal(r)
	if err != nil {
		return Result{}, fmt.Errorf("marshal watch report: %w", err)
	}
	if _, err := p.js.PublishAsync(p.subject, data, nats.MsgId(r.EventID)); err != nil {
		return Result{}, fmt.Errorf("publish %s: %w", p.subject, err)
	}
	return Result{}, nil
}
