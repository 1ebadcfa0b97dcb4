package atc

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mohae/deepcopy"
	"github.com/sirupsen/logrus"

	"github.com/opensquawk/opensquawk/pkg/geometry"
	"github.com/opensquawk/opensquawk/pkg/util"
)

// Session owns one flight from cold and dark through parking. All
// mutation entry points take the session mutex; subscribers are handed
// value copies and must not call back into the session.
type Session struct {
	mu  sync.Mutex
	cfg Config
	log *logrus.Entry

	state    FlightSession
	airspace *AirspaceMonitor

	// activeFreqs guards frequency uniqueness among live sectors only.
	// Retired sectors keep their frequency for history reads.
	activeFreqs map[string]bool
	instances   map[SectorKind]int
	// departure frequency is reserved at clearance delivery so the
	// readback can name it before the sector goes active.
	pending map[SectorKind]*Sector

	subs []func(FlightSession, Instruction)

	todAnnounced bool
	ilsAnnounced bool
}

// New validates the plan and builds a session sitting at preflight with
// the delivery position already staffed. No clearance exists yet.
func New(plan FlightPlan, cfg Config, log *logrus.Logger) (*Session, error) {
	if plan.Origin == "" || plan.Destination == "" || plan.Route == "" {
		return nil, fmt.Errorf("%w (origin=%q dest=%q)", ErrInvalidPlan, plan.Origin, plan.Destination)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	s := &Session{
		cfg:         cfg.withDefaults(),
		airspace:    NewAirspaceMonitor(),
		activeFreqs: make(map[string]bool),
		instances:   make(map[SectorKind]int),
		pending:     make(map[SectorKind]*Sector),
		state: FlightSession{
			ID:            uuid.NewString(),
			Callsign:      plan.Callsign,
			Origin:        plan.Origin,
			OriginRunway:  plan.OriginRunway,
			Destination:   plan.Destination,
			ArrivalRunway: plan.ArrivalRunway,
			SID:           plan.SID,
			STAR:          plan.STAR,
			Route:         plan.Route,
			CruiseAlt:     plan.CruiseAlt,
			CruiseFL:      fmt.Sprintf("%03d", plan.CruiseAlt/100),
			DistanceNM:    plan.DistanceNM,
			Phase:         Preflight,
			Created:       time.Now(),
		},
	}
	s.log = util.LogWithLabel(log, plan.Callsign, "session")
	s.state.Sector = s.allocateSector(SectorClearance, "")
	s.log.WithField("session", s.state.ID).Info("session opened at preflight")
	return s, nil
}

// Subscribe registers a control-surface callback invoked after every
// mutation with a read-only snapshot and the instruction that caused it.
func (s *Session) Subscribe(fn func(FlightSession, Instruction)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Snapshot returns a deep copy of the session aggregate.
func (s *Session) Snapshot() FlightSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() FlightSession {
	return deepcopy.Copy(s.state).(FlightSession)
}

// Advance moves the flight along its sequential edge. The trigger must be
// one the current phase accepts, so a stale repeat of an already consumed
// trigger fails instead of skipping ahead.
func (s *Session) Advance(trig Trigger) (Instruction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advanceLocked(trig)
}

func (s *Session) advanceLocked(trig Trigger) (Instruction, error) {
	if s.state.Complete {
		return Instruction{}, ErrSessionComplete
	}
	edge, ok := advanceEdges[s.state.Phase]
	if !ok {
		return Instruction{}, ErrSessionComplete
	}
	if !edge.triggers[trig.Kind] {
		return Instruction{}, fmt.Errorf("%w: %s does not accept %s", ErrPhaseOrder, s.state.Phase, trig.Kind)
	}
	return s.enterPhase(edge.next, trig, false), nil
}

// ForceTransition jumps to any phase, flagged in history. Forcing back to
// preflight, or reopening a parked session, starts a new leg and voids the
// old clearance and squawk.
func (s *Session) ForceTransition(target Phase) (Instruction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if target < Preflight || target > Parked {
		return Instruction{}, fmt.Errorf("%w: index %d", ErrUnknownPhase, int(target))
	}
	if target == Preflight || s.state.Phase == Parked {
		s.state.Clearance = nil
		s.state.Squawk = ""
		s.state.Complete = false
		s.todAnnounced = false
		s.ilsAnnounced = false
	}
	s.log.WithFields(logrus.Fields{
		"from": s.state.Phase.String(), "to": target.String(),
	}).Warn("forced phase transition")
	return s.enterPhase(target, ManualTrigger("force"), true), nil
}

// Handoff retires the current sector and tunes the next one along the
// handoff chain. name overrides the new facility's display name, center
// to center being the usual case.
func (s *Session) Handoff(name string) (Instruction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handoffLocked(name)
}

func (s *Session) handoffLocked(name string) (Instruction, error) {
	target, ok := handoffEdges[s.state.Phase]
	if !ok {
		return Instruction{}, fmt.Errorf("%w: %s", ErrHandoffNotAllowed, s.state.Phase)
	}

	old := s.state.Sector
	next := s.nextSectorFor(sectorKindByPhase[target], name, target)
	s.retireSector(old)
	s.state.Sector = next
	s.dropStalePending(target)

	instr := Instruction{
		Phase: target,
		Kind:  KindHandoff,
		Params: map[string]string{
			"CALLSIGN": s.state.Callsign,
			"FACILITY": next.Name,
			"NEWFREQ":  next.Frequency,
			"OLDFREQ":  old.Frequency,
		},
		Time: time.Now(),
	}

	from := s.state.Phase
	s.state.Phase = target
	s.state.History = append(s.state.History, TransitionRecord{
		From: from, To: target, Kind: KindHandoff,
		Trigger: ManualTrigger("handoff"), Time: instr.Time,
	})
	s.log.WithFields(logrus.Fields{
		"facility": next.Name, "frequency": next.Frequency, "leaving": old.Frequency,
	}).Info("handoff")
	s.notify(instr)
	return instr, nil
}

// ReconcileTelemetry applies the configured gates to a live sample. It
// never returns an error; a gate that cannot fire is logged and dropped.
func (s *Session) ReconcileTelemetry(sample TelemetrySample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Complete {
		return
	}

	switch s.state.Phase {
	case TowerDeparture:
		if sample.AltitudeAGL > s.cfg.TakeoffAGLFt {
			s.reconcileAdvance(TriggerAirborne, sample)
		}
	case Departure:
		if sample.AltitudeMSL > float64(s.state.CruiseAlt)-s.cfg.CruiseWithinFt {
			s.reconcileAdvance(TriggerAtCruise, sample)
		}
	case CenterCruise:
		if !s.todAnnounced {
			if d, ok := s.distanceToDestination(sample); ok && d <= s.todThresholdNM() {
				s.todAnnounced = true
				s.advisory(KindTOD, map[string]string{
					"CALLSIGN": s.state.Callsign,
					"DIST":     fmt.Sprintf("%.0f", d),
				})
			}
		}
	case Approach:
		if !s.ilsAnnounced && sample.AltitudeMSL < s.cfg.ApproachAdvisoryMSL {
			s.ilsAnnounced = true
			s.advisory(KindILS, map[string]string{
				"CALLSIGN": s.state.Callsign,
				"RUNWAY":   s.state.ArrivalRunway,
			})
		}
		if sample.AltitudeMSL < s.cfg.FinalMSLFt {
			s.reconcileAdvance(TriggerLanding, sample)
		}
	case TowerArrival:
		if sample.OnGround && sample.Groundspeed < s.cfg.LandingSpeedKt {
			s.reconcileAdvance(TriggerLanded, sample)
		}
	case GroundIn:
		if sample.Groundspeed < s.cfg.ParkSpeedKt {
			s.reconcileAdvance(TriggerPark, sample)
		}
	}

	if class, changed := s.airspace.Check(sample); changed {
		s.advisory(KindAirspace, map[string]string{
			"CALLSIGN": s.state.Callsign,
			"AIRSPACE": EntryAdvisory(class),
		})
	}
}

func (s *Session) reconcileAdvance(kind TriggerKind, sample TelemetrySample) {
	if _, err := s.advanceLocked(telemetryTrigger(kind)); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"trigger": string(kind), "altitude_msl": sample.AltitudeMSL,
		}).Debug("telemetry gate dropped")
	}
}

func (s *Session) todThresholdNM() float64 {
	return (float64(s.state.CruiseAlt)-s.cfg.TODFloorFt)/1000*s.cfg.TODPerThousandFtNM + s.cfg.TODBaseNM
}

func (s *Session) distanceToDestination(sample TelemetrySample) (float64, bool) {
	ap, ok := airportDB[s.state.Destination]
	if !ok {
		return 0, false
	}
	return geometry.DistNM(sample.Latitude, sample.Longitude, ap.Lat, ap.Lon), true
}

// enterPhase performs the bookkeeping common to advances and forces:
// clearance issue, sector retune, history append, subscriber notify.
func (s *Session) enterPhase(to Phase, trig Trigger, forced bool) Instruction {
	from := s.state.Phase

	if to == ClearanceDelivery && s.state.Clearance == nil {
		s.issueClearance()
	}
	s.retuneFor(to)
	s.dropStalePending(to)

	kind := entryKindByPhase[to]
	instr := Instruction{
		Phase:  to,
		Kind:   kind,
		Params: s.entryParams(to, kind),
		Forced: forced,
		Time:   time.Now(),
	}

	s.state.Phase = to
	if to == Parked {
		s.state.Complete = true
	}
	s.state.History = append(s.state.History, TransitionRecord{
		From: from, To: to, Kind: kind, Trigger: trig, Forced: forced, Time: instr.Time,
	})
	s.log.WithFields(logrus.Fields{
		"from": from.String(), "to": to.String(), "trigger": string(trig.Kind), "forced": forced,
	}).Info("phase transition")
	s.notify(instr)
	return instr
}

// issueClearance fixes the squawk and reserves the departure frequency so
// the readback can name it. The bundle never changes afterwards.
func (s *Session) issueClearance() {
	// a reservation left over from an earlier leg is released first
	if old, ok := s.pending[SectorDeparture]; ok {
		s.retireSector(old)
		delete(s.pending, SectorDeparture)
	}
	s.state.Squawk = GenerateSquawk(s.state.ID, s.cfg.Seed)
	dep := s.allocateSector(SectorDeparture, "")
	dep.Active = false
	s.pending[SectorDeparture] = dep
	s.state.Clearance = &Clearance{
		Route:     s.state.Route,
		CruiseAlt: s.state.CruiseAlt,
		Squawk:    s.state.Squawk,
	}
}

// retuneFor swaps the active sector when the target phase is worked by a
// different position.
func (s *Session) retuneFor(to Phase) {
	kind := sectorKindByPhase[to]
	if s.state.Sector != nil && s.state.Sector.Kind == kind && s.state.Sector.Active {
		return
	}
	old := s.state.Sector
	next := s.nextSectorFor(kind, "", to)
	s.retireSector(old)
	s.state.Sector = next
}

// nextSectorFor promotes a sector reserved at clearance time, so the
// frequency promised in the readback is the one the flight is sent to,
// on the advance and handoff paths alike. Anything not reserved is drawn
// fresh.
func (s *Session) nextSectorFor(kind SectorKind, name string, at Phase) *Sector {
	if p, ok := s.pending[kind]; ok {
		delete(s.pending, kind)
		p.Active = true
		if name != "" {
			p.Name = name
		}
		return p
	}
	return s.allocateSectorFor(kind, name, at)
}

// dropStalePending releases reserved frequencies whose position no phase
// from here on will use, so a skipped sector never stays on the air.
func (s *Session) dropStalePending(at Phase) {
	for kind, sec := range s.pending {
		reachable := false
		for p := at; p <= Parked; p++ {
			if sectorKindByPhase[p] == kind {
				reachable = true
				break
			}
		}
		if !reachable {
			s.retireSector(sec)
			delete(s.pending, kind)
		}
	}
}

func (s *Session) allocateSector(kind SectorKind, name string) *Sector {
	return s.allocateSectorFor(kind, name, s.state.Phase)
}

func (s *Session) allocateSectorFor(kind SectorKind, name string, at Phase) *Sector {
	s.instances[kind]++
	inst := s.instances[kind]
	freq := GenerateFrequency(s.state.ID, kind, inst, s.cfg.Seed, s.activeFreqs)
	s.activeFreqs[freq] = true
	if name == "" {
		name = s.sectorName(kind, at)
	}
	return &Sector{
		Name:        name,
		Kind:        kind,
		Frequency:   freq,
		Personality: NewPersonality(s.state.ID, kind, inst, s.cfg.Seed),
		Instance:    inst,
		Active:      true,
	}
}

func (s *Session) retireSector(sec *Sector) {
	if sec == nil {
		return
	}
	sec.Active = false
	delete(s.activeFreqs, sec.Frequency)
}

// sectorName builds a display name like "EGLL Tower". Positions past the
// top of descent belong to the arrival field.
func (s *Session) sectorName(kind SectorKind, at Phase) string {
	if kind == SectorCenter {
		return "Center"
	}
	icao := s.state.Origin
	if at >= Approach {
		icao = s.state.Destination
	}
	p, ok := traitTable[kind]
	if !ok {
		return icao
	}
	return icao + " " + p.Name
}

func (s *Session) entryParams(to Phase, kind InstructionKind) map[string]string {
	p := map[string]string{"CALLSIGN": s.state.Callsign}
	switch kind {
	case KindClearance:
		p["DEST"] = s.state.Destination
		p["SID"] = s.state.SID
		p["ROUTE"] = s.state.Route
		p["FL"] = s.state.CruiseFL
		p["SQUAWK"] = s.state.Squawk
		if dep, ok := s.pending[SectorDeparture]; ok {
			p["DEPFREQ"] = dep.Frequency
		}
	case KindTaxiOut, KindTakeoff:
		p["RUNWAY"] = s.state.OriginRunway
	case KindClimb, KindCruise:
		p["FL"] = s.state.CruiseFL
	case KindDescend:
		p["ALT"] = "10000"
		p["STAR"] = s.state.STAR
		p["RUNWAY"] = s.state.ArrivalRunway
	case KindLanding:
		p["RUNWAY"] = s.state.ArrivalRunway
	}
	return p
}

// advisory emits an in-phase instruction without a phase transition.
func (s *Session) advisory(kind InstructionKind, params map[string]string) {
	instr := Instruction{Phase: s.state.Phase, Kind: kind, Params: params, Time: time.Now()}
	s.log.WithField("kind", string(kind)).Info("advisory")
	s.notify(instr)
}

func (s *Session) notify(instr Instruction) {
	if len(s.subs) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, fn := range s.subs {
		fn(snap, instr)
	}
}

// ActiveFrequencies lists the frequencies currently staffed, sorted output
// not guaranteed.
func (s *Session) ActiveFrequencies() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.activeFreqs))
	for f := range s.activeFreqs {
		out = append(out, f)
	}
	return out
}

// DescribeSector formats the active sector for the control surface.
func (s *Session) DescribeSector() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	sec := s.state.Sector
	if sec == nil {
		return "unstaffed"
	}
	return fmt.Sprintf("%s %s (%s)", sec.Name, sec.Frequency, sec.Personality.Style())
}
