package atc

import (
	"testing"
)

func TestReconcileTelemetryGates(t *testing.T) {
	t.Run("takeoff gate", func(t *testing.T) {
		s := newTestSession(t)
		advanceTo(t, s, TowerDeparture)

		s.ReconcileTelemetry(TelemetrySample{AltitudeAGL: 50, AltitudeMSL: 130})
		if got := s.Snapshot().Phase; got != TowerDeparture {
			t.Fatalf("gate fired below threshold, phase %s", got)
		}

		s.ReconcileTelemetry(TelemetrySample{AltitudeAGL: 150, AltitudeMSL: 230})
		if got := s.Snapshot().Phase; got != Departure {
			t.Fatalf("phase %s, want Departure", got)
		}
	})

	t.Run("cruise gate", func(t *testing.T) {
		s := newTestSession(t)
		advanceTo(t, s, Departure)

		s.ReconcileTelemetry(TelemetrySample{AltitudeMSL: 30000})
		if got := s.Snapshot().Phase; got != Departure {
			t.Fatalf("gate fired early, phase %s", got)
		}

		s.ReconcileTelemetry(TelemetrySample{AltitudeMSL: 36500})
		if got := s.Snapshot().Phase; got != CenterCruise {
			t.Fatalf("phase %s, want CenterCruise", got)
		}
	})

	t.Run("tod advisory fires once", func(t *testing.T) {
		s := newTestSession(t)
		advanceTo(t, s, CenterCruise)

		var advisories []InstructionKind
		s.Subscribe(func(_ FlightSession, instr Instruction) {
			if instr.Kind == KindTOD {
				advisories = append(advisories, instr.Kind)
			}
		})

		// near Frankfurt at cruise, well inside the descent distance
		near := TelemetrySample{Latitude: 50.4, Longitude: 7.5, AltitudeMSL: 36500}
		s.ReconcileTelemetry(near)
		s.ReconcileTelemetry(near)

		if len(advisories) != 1 {
			t.Fatalf("tod advisory fired %d times", len(advisories))
		}
		if got := s.Snapshot().Phase; got != CenterCruise {
			t.Fatalf("advisory moved the phase to %s", got)
		}
	})

	t.Run("final gate hands tower the flight", func(t *testing.T) {
		s := newTestSession(t)
		advanceTo(t, s, Approach)

		var sawILS bool
		s.Subscribe(func(_ FlightSession, instr Instruction) {
			if instr.Kind == KindILS {
				sawILS = true
			}
		})

		s.ReconcileTelemetry(TelemetrySample{AltitudeMSL: 8000, AltitudeAGL: 7800})
		if !sawILS {
			t.Fatal("no ILS advisory below ten thousand")
		}
		if got := s.Snapshot().Phase; got != Approach {
			t.Fatalf("advisory altitude already advanced to %s", got)
		}

		s.ReconcileTelemetry(TelemetrySample{AltitudeMSL: 2500, AltitudeAGL: 2300})
		if got := s.Snapshot().Phase; got != TowerArrival {
			t.Fatalf("phase %s, want TowerArrival", got)
		}
	})

	t.Run("rollout and parking", func(t *testing.T) {
		s := newTestSession(t)
		advanceTo(t, s, TowerArrival)

		s.ReconcileTelemetry(TelemetrySample{OnGround: true, Groundspeed: 120})
		if got := s.Snapshot().Phase; got != TowerArrival {
			t.Fatalf("gate fired during rollout, phase %s", got)
		}

		s.ReconcileTelemetry(TelemetrySample{OnGround: true, Groundspeed: 30})
		if got := s.Snapshot().Phase; got != GroundIn {
			t.Fatalf("phase %s, want GroundIn", got)
		}

		s.ReconcileTelemetry(TelemetrySample{OnGround: true, Groundspeed: 0.5})
		snap := s.Snapshot()
		if snap.Phase != Parked || !snap.Complete {
			t.Fatalf("phase %s complete=%v, want Parked and complete", snap.Phase, snap.Complete)
		}

		// further samples are ignored once parked
		s.ReconcileTelemetry(TelemetrySample{OnGround: true, Groundspeed: 0})
		if got := len(s.Snapshot().History); got != 10 {
			t.Fatalf("history grew after completion: %d", got)
		}
	})
}

func TestAirspaceMonitor(t *testing.T) {
	m := NewAirspaceMonitor()

	tests := []struct {
		name   string
		sample TelemetrySample
		want   AirspaceClass
	}{
		{"on the ground at Heathrow", TelemetrySample{Latitude: 51.47, Longitude: -0.4543, AltitudeMSL: 80}, ClassB},
		{"enroute low", TelemetrySample{Latitude: 51.0, Longitude: 3.0, AltitudeMSL: 9000}, ClassE},
		{"flight levels", TelemetrySample{Latitude: 50.5, Longitude: 5.0, AltitudeMSL: 36000}, ClassA},
		{"low and remote", TelemetrySample{Latitude: 45.0, Longitude: 20.0, AltitudeMSL: 800}, ClassG},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, _ := m.Check(tc.sample)
			if got != tc.want {
				t.Fatalf("classified as %s, want %s", got, tc.want)
			}
		})
	}

	t.Run("transition reported once", func(t *testing.T) {
		m := NewAirspaceMonitor()
		s := TelemetrySample{Latitude: 50.5, Longitude: 5.0, AltitudeMSL: 36000}
		if _, changed := m.Check(s); !changed {
			t.Fatal("first classification not reported as a change")
		}
		if _, changed := m.Check(s); changed {
			t.Fatal("steady state reported as a change")
		}
	})
}
