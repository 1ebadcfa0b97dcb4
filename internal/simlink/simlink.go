// Package simlink maintains the WebSocket connection to the simulator
// adapter and exposes the most recent telemetry frame. Manual mode, where
// no adapter is running, is the normal disconnected state rather than a
// failure.
package simlink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/opensquawk/opensquawk/internal/atc"
)

// ErrUnavailable means no fresh sample exists: the link is down or the
// adapter stopped sending.
var ErrUnavailable = errors.New("simlink: telemetry unavailable")

type Config struct {
	URL            string        `yaml:"url"`
	StaleAfter     time.Duration `yaml:"stale_after"`
	ReconnectEvery time.Duration `yaml:"reconnect_every"`
}

// Client dials the adapter and keeps the latest decoded frame in a
// guarded slot. Reconnects are paced by a rate limiter so a dead adapter
// is not hammered.
type Client struct {
	cfg   Config
	log   *logrus.Entry
	limit *rate.Limiter

	mu     sync.Mutex
	latest atc.TelemetrySample
	fresh  bool
}

func NewClient(cfg Config, log *logrus.Logger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if cfg.StaleAfter == 0 {
		cfg.StaleAfter = 5 * time.Second
	}
	if cfg.ReconnectEvery == 0 {
		cfg.ReconnectEvery = 5 * time.Second
	}
	return &Client{
		cfg:   cfg,
		log:   log.WithField("role", "simlink"),
		limit: rate.NewLimiter(rate.Every(cfg.ReconnectEvery), 1),
	}
}

// Run dials, reads frames and redials until the context ends.
func (c *Client) Run(ctx context.Context) {
	for {
		if err := c.limit.Wait(ctx); err != nil {
			return
		}
		if err := c.readLoop(ctx); err != nil {
			c.log.WithError(err).Debug("link lost, will redial")
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (c *Client) readLoop(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.cfg.URL, err)
	}
	defer conn.Close()
	c.log.WithField("url", c.cfg.URL).Info("telemetry link established")

	// the watcher ends with its connection, not with the context
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		var sample atc.TelemetrySample
		if err := json.Unmarshal(message, &sample); err != nil {
			c.log.WithError(err).Debug("bad telemetry frame dropped")
			continue
		}
		if sample.Time.IsZero() {
			sample.Time = time.Now()
		}
		c.mu.Lock()
		c.latest = sample
		c.fresh = true
		c.mu.Unlock()
	}
}

// Poll returns the latest sample, or ErrUnavailable when nothing fresh
// has arrived within the staleness window.
func (c *Client) Poll() (atc.TelemetrySample, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.fresh || time.Since(c.latest.Time) > c.cfg.StaleAfter {
		return atc.TelemetrySample{}, ErrUnavailable
	}
	return c.latest, nil
}
