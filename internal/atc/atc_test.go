package atc

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testPlan() FlightPlan {
	return FlightPlan{
		Callsign:      "SPEEDBIRD123",
		Origin:        "EGLL",
		OriginRunway:  "27R",
		Destination:   "EDDF",
		ArrivalRunway: "25C",
		SID:           "BUZAD2G",
		STAR:          "TEKTU1A",
		Route:         "BUZAD L9 KONAN",
		CruiseAlt:     37000,
		DistanceNM:    420,
	}
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := New(testPlan(), DefaultConfig(), testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

// advanceTo walks the sequential edges until the session sits at the
// wanted phase.
func advanceTo(t *testing.T, s *Session, target Phase) {
	t.Helper()
	next := map[Phase]TriggerKind{
		Preflight:         TriggerClearance,
		ClearanceDelivery: TriggerPushback,
		Pushback:          TriggerTaxi,
		GroundOut:         TriggerTakeoff,
		TowerDeparture:    TriggerAirborne,
		Departure:         TriggerAtCruise,
		CenterCruise:      TriggerDescent,
		Approach:          TriggerLanding,
		TowerArrival:      TriggerLanded,
		GroundIn:          TriggerPark,
	}
	for s.Snapshot().Phase != target {
		kind, ok := next[s.Snapshot().Phase]
		if !ok {
			t.Fatalf("no forward edge from %s", s.Snapshot().Phase)
		}
		if _, err := s.Advance(ManualTrigger(kind)); err != nil {
			t.Fatalf("advance (%s): %v", kind, err)
		}
	}
}

func TestNewRejectsIncompletePlan(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*FlightPlan)
	}{
		{"no origin", func(p *FlightPlan) { p.Origin = "" }},
		{"no destination", func(p *FlightPlan) { p.Destination = "" }},
		{"no route", func(p *FlightPlan) { p.Route = "" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			plan := testPlan()
			tc.mutate(&plan)
			if _, err := New(plan, DefaultConfig(), testLogger()); !errors.Is(err, ErrInvalidPlan) {
				t.Fatalf("got %v, want ErrInvalidPlan", err)
			}
		})
	}
}

func TestFullFlightSequence(t *testing.T) {
	s := newTestSession(t)

	if got := s.Snapshot().Phase; got != Preflight {
		t.Fatalf("new session at %s, want Preflight", got)
	}

	advanceTo(t, s, Parked)

	snap := s.Snapshot()
	if !snap.Complete {
		t.Fatal("session not complete after parking")
	}
	if len(snap.History) != 10 {
		t.Fatalf("history has %d records, want 10", len(snap.History))
	}
	for i, rec := range snap.History {
		if rec.Forced {
			t.Fatalf("record %d flagged forced on a normal flight", i)
		}
		if rec.To.Index() != rec.From.Index()+1 {
			t.Fatalf("record %d skips from %s to %s", i, rec.From, rec.To)
		}
	}

	if _, err := s.Advance(ManualTrigger(TriggerClearance)); !errors.Is(err, ErrSessionComplete) {
		t.Fatalf("advance from Parked: got %v, want ErrSessionComplete", err)
	}
}

func TestAdvanceRejectsWrongTrigger(t *testing.T) {
	s := newTestSession(t)
	advanceTo(t, s, TowerDeparture)

	// takeoff already consumed entering TowerDeparture
	if _, err := s.Advance(ManualTrigger(TriggerTakeoff)); !errors.Is(err, ErrPhaseOrder) {
		t.Fatalf("repeated takeoff trigger: got %v, want ErrPhaseOrder", err)
	}
	if got := s.Snapshot().Phase; got != TowerDeparture {
		t.Fatalf("phase moved to %s on rejected trigger", got)
	}
}

func TestClearanceImmutable(t *testing.T) {
	s := newTestSession(t)
	advanceTo(t, s, ClearanceDelivery)

	first := s.Snapshot().Clearance
	if first == nil {
		t.Fatal("no clearance after delivery")
	}
	if first.Squawk == "" || reservedSquawks[first.Squawk] {
		t.Fatalf("bad squawk %q", first.Squawk)
	}

	advanceTo(t, s, CenterCruise)

	second := s.Snapshot().Clearance
	if *first != *second {
		t.Fatalf("clearance changed mid-flight: %+v != %+v", first, second)
	}
}

func TestForcedTransitionFlagged(t *testing.T) {
	s := newTestSession(t)

	if _, err := s.ForceTransition(Approach); err != nil {
		t.Fatalf("force: %v", err)
	}
	snap := s.Snapshot()
	if snap.Phase != Approach {
		t.Fatalf("phase %s, want Approach", snap.Phase)
	}
	last := snap.History[len(snap.History)-1]
	if !last.Forced {
		t.Fatal("forced transition not flagged in history")
	}
	if snap.Sector.Kind != SectorApproach {
		t.Fatalf("sector kind %s, want approach", snap.Sector.Kind)
	}
}

func TestParkedReopensAsNewLeg(t *testing.T) {
	s := newTestSession(t)
	advanceTo(t, s, Parked)
	oldSquawk := s.Snapshot().Squawk

	if _, err := s.ForceTransition(Preflight); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	snap := s.Snapshot()
	if snap.Complete {
		t.Fatal("still complete after reopen")
	}
	if snap.Clearance != nil || snap.Squawk != "" {
		t.Fatalf("old clearance survived reopen: %+v squawk=%q", snap.Clearance, snap.Squawk)
	}

	advanceTo(t, s, ClearanceDelivery)
	if got := s.Snapshot().Squawk; got == "" {
		t.Fatal("no squawk on second leg")
	} else if got == oldSquawk {
		t.Logf("second leg drew the same squawk %q, allowed but unusual", got)
	}
}

func TestHandoff(t *testing.T) {
	t.Run("rejected on the ground", func(t *testing.T) {
		s := newTestSession(t)
		if _, err := s.Handoff(""); !errors.Is(err, ErrHandoffNotAllowed) {
			t.Fatalf("got %v, want ErrHandoffNotAllowed", err)
		}
	})

	t.Run("departure to center", func(t *testing.T) {
		s := newTestSession(t)
		advanceTo(t, s, Departure)
		before := s.Snapshot().Sector

		instr, err := s.Handoff("")
		if err != nil {
			t.Fatalf("handoff: %v", err)
		}
		snap := s.Snapshot()
		if snap.Phase != CenterCruise {
			t.Fatalf("phase %s, want CenterCruise", snap.Phase)
		}
		if instr.Params["OLDFREQ"] != before.Frequency {
			t.Fatalf("old frequency %q not named, got %q", before.Frequency, instr.Params["OLDFREQ"])
		}
		if instr.Params["NEWFREQ"] != snap.Sector.Frequency {
			t.Fatalf("new frequency mismatch: %q vs %q", instr.Params["NEWFREQ"], snap.Sector.Frequency)
		}
		for _, f := range []string{instr.Params["OLDFREQ"], instr.Params["NEWFREQ"]} {
			if _, frac, ok := strings.Cut(f, "."); !ok || len(frac) != 3 {
				t.Fatalf("frequency %q not in ###.### form", f)
			}
		}
		for _, f := range s.ActiveFrequencies() {
			if f == before.Frequency {
				t.Fatalf("retired frequency %q still active", f)
			}
		}
	})

	t.Run("lateral center handoff keeps phase", func(t *testing.T) {
		s := newTestSession(t)
		advanceTo(t, s, CenterCruise)
		old := s.Snapshot().Sector.Frequency

		if _, err := s.Handoff("Maastricht Center"); err != nil {
			t.Fatalf("handoff: %v", err)
		}
		snap := s.Snapshot()
		if snap.Phase != CenterCruise {
			t.Fatalf("lateral handoff moved phase to %s", snap.Phase)
		}
		if snap.Sector.Name != "Maastricht Center" {
			t.Fatalf("facility name %q", snap.Sector.Name)
		}
		if snap.Sector.Frequency == old {
			t.Fatal("lateral handoff kept the old frequency")
		}
	})
}

func TestClearanceDepartureFrequencyHonored(t *testing.T) {
	s := newTestSession(t)
	ci, err := s.Advance(ManualTrigger(TriggerClearance))
	if err != nil {
		t.Fatalf("clearance: %v", err)
	}
	depFreq := ci.Params["DEPFREQ"]
	if depFreq == "" {
		t.Fatal("clearance readback names no departure frequency")
	}

	advanceTo(t, s, TowerDeparture)

	hi, err := s.Handoff("")
	if err != nil {
		t.Fatalf("handoff: %v", err)
	}
	if hi.Params["NEWFREQ"] != depFreq {
		t.Fatalf("clearance promised departure on %s, handoff sent the flight to %s", depFreq, hi.Params["NEWFREQ"])
	}
	snap := s.Snapshot()
	if snap.Phase != Departure || snap.Sector.Frequency != depFreq {
		t.Fatalf("at %s on %s, want Departure on %s", snap.Phase, snap.Sector.Frequency, depFreq)
	}

	active := s.ActiveFrequencies()
	if len(active) != 1 || active[0] != depFreq {
		t.Fatalf("active frequencies %v, want only %s", active, depFreq)
	}
}

func TestSkippedDepartureReservationReleased(t *testing.T) {
	s := newTestSession(t)
	ci, err := s.Advance(ManualTrigger(TriggerClearance))
	if err != nil {
		t.Fatalf("clearance: %v", err)
	}
	depFreq := ci.Params["DEPFREQ"]

	if _, err := s.ForceTransition(Approach); err != nil {
		t.Fatalf("force: %v", err)
	}

	active := s.ActiveFrequencies()
	if len(active) != 1 {
		t.Fatalf("active frequencies %v, want exactly the approach sector", active)
	}
	if active[0] == depFreq {
		t.Fatalf("skipped departure reservation %s still on the air", depFreq)
	}
}

func TestForceToPreflightIssuesRadioCheck(t *testing.T) {
	s := newTestSession(t)
	advanceTo(t, s, Pushback)

	instr, err := s.ForceTransition(Preflight)
	if err != nil {
		t.Fatalf("force: %v", err)
	}
	if instr.Kind != KindRadioCheck {
		t.Fatalf("instruction kind %q, want %q", instr.Kind, KindRadioCheck)
	}
	if _, err := Render(instr, formalPersonality()); err != nil {
		t.Fatalf("preflight instruction not renderable: %v", err)
	}
	snap := s.Snapshot()
	if last := snap.History[len(snap.History)-1]; last.Kind != KindRadioCheck {
		t.Fatalf("history records kind %q", last.Kind)
	}
}

func TestTODThresholdIndependentOfFinalGate(t *testing.T) {
	base, err := New(testPlan(), DefaultConfig(), testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := base.todThresholdNM()

	cfg := DefaultConfig()
	cfg.FinalMSLFt = 9000
	raised, err := New(testPlan(), cfg, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := raised.todThresholdNM(); got != want {
		t.Fatalf("raising the final gate moved top of descent from %.0f to %.0f nm", want, got)
	}

	cfg = DefaultConfig()
	cfg.TODFloorFt = 13000
	lowered, err := New(testPlan(), cfg, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := lowered.todThresholdNM(); got >= want {
		t.Fatalf("tod floor ignored: %.0f nm not below %.0f nm", got, want)
	}
}

func TestNoDuplicateActiveFrequencies(t *testing.T) {
	s := newTestSession(t)
	advanceTo(t, s, CenterCruise)
	for i := 0; i < 5; i++ {
		if _, err := s.Handoff(""); err != nil {
			t.Fatalf("handoff %d: %v", i, err)
		}
		seen := map[string]bool{}
		for _, f := range s.ActiveFrequencies() {
			if seen[f] {
				t.Fatalf("duplicate active frequency %q", f)
			}
			seen[f] = true
		}
	}
}

func TestSubscribeNotified(t *testing.T) {
	s := newTestSession(t)
	var kinds []InstructionKind
	s.Subscribe(func(_ FlightSession, instr Instruction) {
		kinds = append(kinds, instr.Kind)
	})

	advanceTo(t, s, Pushback)

	if len(kinds) != 2 || kinds[0] != KindClearance || kinds[1] != KindPushback {
		t.Fatalf("notifications %v", kinds)
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	s := newTestSession(t)
	advanceTo(t, s, ClearanceDelivery)

	snap := s.Snapshot()
	snap.Clearance.Squawk = "7700"
	snap.Sector.Frequency = "999.999"

	live := s.Snapshot()
	if live.Clearance.Squawk == "7700" || live.Sector.Frequency == "999.999" {
		t.Fatal("snapshot mutation leaked into session state")
	}
}
