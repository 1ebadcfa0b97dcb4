package atc

import (
	"fmt"
	"strings"
)

type Phase int

const (
	Preflight Phase = iota
	ClearanceDelivery
	Pushback
	GroundOut
	TowerDeparture
	Departure
	CenterCruise
	Approach
	TowerArrival
	GroundIn
	Parked
)

func (p Phase) String() string {
	if p < Preflight || p > Parked {
		return "Unknown"
	}
	return [...]string{
		"Preflight",
		"Clearance Delivery",
		"Pushback",
		"Taxi Out",
		"Tower Departure",
		"Departure",
		"Center Cruise",
		"Approach",
		"Tower Arrival",
		"Taxi In",
		"Parked",
	}[p]
}

func (p Phase) Index() int {
	return int(p)
}

// ParsePhase resolves a phase from a command-surface name such as
// "approach" or "center cruise".
func ParsePhase(name string) (Phase, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for p := Preflight; p <= Parked; p++ {
		if strings.ToLower(p.String()) == key {
			return p, nil
		}
	}
	// common command aliases used by the control surface
	aliases := map[string]Phase{
		"clearance": ClearanceDelivery,
		"taxi":      GroundOut,
		"takeoff":   TowerDeparture,
		"climb":     Departure,
		"cruise":    CenterCruise,
		"descent":   Approach,
		"landing":   TowerArrival,
		"taxi_in":   GroundIn,
		"parking":   Parked,
	}
	if p, ok := aliases[key]; ok {
		return p, nil
	}
	return Preflight, fmt.Errorf("%w: %q", ErrUnknownPhase, name)
}

type SectorKind string

const (
	SectorClearance SectorKind = "clearance"
	SectorGround    SectorKind = "ground"
	SectorTower     SectorKind = "tower"
	SectorDeparture SectorKind = "departure"
	SectorCenter    SectorKind = "center"
	SectorApproach  SectorKind = "approach"
)

// sectorKindByPhase maps each phase to the ATC position that works it.
var sectorKindByPhase = map[Phase]SectorKind{
	Preflight:         SectorClearance,
	ClearanceDelivery: SectorClearance,
	Pushback:          SectorGround,
	GroundOut:         SectorGround,
	TowerDeparture:    SectorTower,
	Departure:         SectorDeparture,
	CenterCruise:      SectorCenter,
	Approach:          SectorApproach,
	TowerArrival:      SectorTower,
	GroundIn:          SectorGround,
	Parked:            SectorGround,
}

type InstructionKind string

const (
	KindRadioCheck InstructionKind = "radio-check"
	KindClearance  InstructionKind = "clearance"
	KindPushback  InstructionKind = "pushback"
	KindTaxiOut   InstructionKind = "taxi-out"
	KindTakeoff   InstructionKind = "takeoff-clearance"
	KindClimb     InstructionKind = "climb"
	KindCruise    InstructionKind = "cruise-check"
	KindHandoff   InstructionKind = "handoff"
	KindDescend   InstructionKind = "descend"
	KindILS       InstructionKind = "ils-assignment"
	KindLanding   InstructionKind = "landing-clearance"
	KindTaxiIn    InstructionKind = "taxi-in"
	KindParking   InstructionKind = "parking"
	KindTOD       InstructionKind = "tod-advisory"
	KindAirspace  InstructionKind = "airspace-advisory"
)

// entryKindByPhase is the instruction spoken when a phase is entered.
// Preflight is only ever re-entered on a forced reset, as a fresh leg.
var entryKindByPhase = map[Phase]InstructionKind{
	Preflight:         KindRadioCheck,
	ClearanceDelivery: KindClearance,
	Pushback:          KindPushback,
	GroundOut:         KindTaxiOut,
	TowerDeparture:    KindTakeoff,
	Departure:         KindClimb,
	CenterCruise:      KindCruise,
	Approach:          KindDescend,
	TowerArrival:      KindLanding,
	GroundIn:          KindTaxiIn,
	Parked:            KindParking,
}

type TriggerKind string

const (
	TriggerClearance TriggerKind = "clearance-request"
	TriggerPushback  TriggerKind = "pushback-request"
	TriggerTaxi      TriggerKind = "taxi-request"
	TriggerTakeoff   TriggerKind = "takeoff-request"
	TriggerAirborne  TriggerKind = "airborne"
	TriggerAtCruise  TriggerKind = "at-cruise"
	TriggerDescent   TriggerKind = "descent-request"
	TriggerLanding   TriggerKind = "landing-request"
	TriggerLanded    TriggerKind = "landed"
	TriggerPark      TriggerKind = "park"
)

// Trigger identifies what asked for a transition: a control-surface
// command or a telemetry gate crossing.
type Trigger struct {
	Kind   TriggerKind
	Source string // "manual" or "telemetry"
}

func ManualTrigger(kind TriggerKind) Trigger {
	return Trigger{Kind: kind, Source: "manual"}
}

func telemetryTrigger(kind TriggerKind) Trigger {
	return Trigger{Kind: kind, Source: "telemetry"}
}

type forwardEdge struct {
	next     Phase
	triggers map[TriggerKind]bool
}

// advanceEdges defines the sequential edges of the phase graph. Force
// transitions and handoffs are separate edge types and bypass this table.
var advanceEdges = map[Phase]forwardEdge{
	Preflight:         {ClearanceDelivery, set(TriggerClearance)},
	ClearanceDelivery: {Pushback, set(TriggerPushback)},
	Pushback:          {GroundOut, set(TriggerTaxi)},
	GroundOut:         {TowerDeparture, set(TriggerTakeoff)},
	TowerDeparture:    {Departure, set(TriggerAirborne)},
	Departure:         {CenterCruise, set(TriggerAtCruise)},
	CenterCruise:      {Approach, set(TriggerDescent)},
	Approach:          {TowerArrival, set(TriggerLanding)},
	TowerArrival:      {GroundIn, set(TriggerLanded, TriggerTaxi)},
	GroundIn:          {Parked, set(TriggerPark)},
}

// handoffEdges defines which phases may hand the flight to another sector
// and where the handoff lands. Center-to-center is the only lateral move.
var handoffEdges = map[Phase]Phase{
	TowerDeparture: Departure,
	Departure:      CenterCruise,
	CenterCruise:   CenterCruise,
	Approach:       TowerArrival,
}

func set(kinds ...TriggerKind) map[TriggerKind]bool {
	m := make(map[TriggerKind]bool, len(kinds))
	for _, k := range kinds {
		m[k] = true
	}
	return m
}
