package simlink

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opensquawk/opensquawk/internal/atc"
)

// TelemetrySource is what the poller reads from. *Client satisfies it;
// tests substitute a canned source.
type TelemetrySource interface {
	Poll() (atc.TelemetrySample, error)
}

// Poller feeds fresh samples into the session on a fixed tick. A source
// reporting ErrUnavailable just skips the tick.
type Poller struct {
	source   TelemetrySource
	session  *atc.Session
	interval time.Duration
	log      *logrus.Entry
}

func NewPoller(source TelemetrySource, session *atc.Session, interval time.Duration, log *logrus.Logger) *Poller {
	if interval == 0 {
		interval = time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Poller{
		source:   source,
		session:  session,
		interval: interval,
		log:      log.WithField("role", "poller"),
	}
}

// Run blocks until the context ends.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sample, err := p.source.Poll()
			if err != nil {
				if !errors.Is(err, ErrUnavailable) {
					p.log.WithError(err).Warn("telemetry poll failed")
				}
				continue
			}
			p.session.ReconcileTelemetry(sample)
		}
	}
}
