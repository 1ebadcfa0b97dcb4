// Package mockserver is a stand-in simulator adapter. It serves the same
// WebSocket endpoint a real adapter would and streams a scripted flight
// profile, which is enough to drive every telemetry gate end to end.
package mockserver

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/opensquawk/opensquawk/internal/atc"
	"github.com/opensquawk/opensquawk/pkg/util"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Script returns a canned Heathrow to Frankfurt profile: takeoff roll,
// climb, cruise, descent onto final, rollout and taxi to stand.
func Script() []atc.TelemetrySample {
	return []atc.TelemetrySample{
		{Latitude: 51.4700, Longitude: -0.4543, AltitudeMSL: 80, AltitudeAGL: 0, Groundspeed: 0, OnGround: true},
		{Latitude: 51.4700, Longitude: -0.4543, AltitudeMSL: 80, AltitudeAGL: 0, Groundspeed: 140, OnGround: true},
		{Latitude: 51.4800, Longitude: -0.4000, AltitudeMSL: 900, AltitudeAGL: 820, Groundspeed: 180, VerticalSpeed: 2500},
		{Latitude: 51.6000, Longitude: 0.2000, AltitudeMSL: 12000, AltitudeAGL: 11900, Groundspeed: 290, VerticalSpeed: 2200},
		{Latitude: 51.2000, Longitude: 2.8000, AltitudeMSL: 36500, AltitudeAGL: 36400, Groundspeed: 450},
		{Latitude: 50.4000, Longitude: 7.1000, AltitudeMSL: 36500, AltitudeAGL: 36400, Groundspeed: 450},
		{Latitude: 50.2000, Longitude: 7.9000, AltitudeMSL: 18500, AltitudeAGL: 18300, Groundspeed: 320, VerticalSpeed: -2400},
		{Latitude: 50.1000, Longitude: 8.3000, AltitudeMSL: 8000, AltitudeAGL: 7700, Groundspeed: 250, VerticalSpeed: -1800},
		{Latitude: 50.0500, Longitude: 8.5000, AltitudeMSL: 2500, AltitudeAGL: 2100, Groundspeed: 160, VerticalSpeed: -900},
		{Latitude: 50.0379, Longitude: 8.5622, AltitudeMSL: 400, AltitudeAGL: 0, Groundspeed: 45, OnGround: true},
		{Latitude: 50.0379, Longitude: 8.5622, AltitudeMSL: 400, AltitudeAGL: 0, Groundspeed: 12, OnGround: true},
		{Latitude: 50.0379, Longitude: 8.5622, AltitudeMSL: 400, AltitudeAGL: 0, Groundspeed: 0, OnGround: true},
	}
}

// Start serves the scripted profile at ws://:<port>/telemetry, one frame
// per interval, looping the final parked frame. The returned server is
// shut down by the caller.
func Start(port string, interval time.Duration, log *logrus.Logger) *http.Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if interval == 0 {
		interval = 2 * time.Second
	}
	entry := log.WithField("role", "mockserver")

	mux := http.NewServeMux()
	mux.HandleFunc("/telemetry", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			entry.WithError(err).Warn("upgrade failed")
			return
		}
		defer conn.Close()
		entry.Info("adapter client connected")

		script := Script()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			idx := i
			if idx >= len(script) {
				idx = len(script) - 1
			}
			sample := script[idx]
			sample.Time = time.Now()
			if err := util.SendJSON(conn, sample); err != nil {
				entry.WithError(err).Debug("client gone")
				return
			}
			<-ticker.C
		}
	})

	srv := &http.Server{Addr: ":" + port, Handler: mux}
	go func() {
		entry.WithField("addr", srv.Addr).Info("mock adapter listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			entry.WithError(err).Warn("mock adapter stopped")
		}
	}()
	return srv
}
