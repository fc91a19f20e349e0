package cmd

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fakeyudi/reelwatch/internal/config"
	"github.com/fakeyudi/reelwatch/internal/deviceid"
	"github.com/fakeyudi/reelwatch/internal/reporting"
)

// newReporter builds the Reporter selected by c.Transport. The returned close
// func flushes pending publishes and releases connections.
func newReporter(c config.Config, log *zap.Logger) (reporting.Reporter, func(), error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}

	switch c.Transport {
	case config.TransportHTTP:
		client := reporting.NewHTTPClient(c.APIBaseURL, c.APIToken)
		client.HTTPClient.Timeout = c.ReportTimeout()
		return client, func() {}, nil

	case config.TransportNATS:
		nc, err := reporting.ConnectNATS(reporting.NATSOptions{URL: c.NATSURL})
		if err != nil {
			return nil, nil, err
		}
		js, err := nc.JetStream()
		if err != nil {
			nc.Close()
			return nil, nil, fmt.Errorf("jetstream: %w", err)
		}
		closeFn := func() {
			select {
			case <-js.PublishAsyncComplete():
			case <-time.After(c.ReportTimeout()):
				log.Warn("nats: pending watch reports not acknowledged before shutdown")
			}
			if err := nc.Drain(); err != nil {
				log.Warn("nats: drain failed", zap.Error(err))
			}
		}
		return reporting.NewNATSReporter(js, c.NATSSubject), closeFn, nil
	}

	return &reporting.LogReporter{Log: log}, func() {}, nil
}

// newIdentity opens the on-disk identity store. When the data directory is
// unusable the identity degrades to fallback ids instead of failing.
func newIdentity(log *zap.Logger) *deviceid.Identity {
	store, err := deviceid.NewDiskStore()
	if err != nil {
		log.Warn("device id: store unavailable", zap.Error(err))
		return deviceid.New(nil, log)
	}
	return deviceid.New(store, log)
}
