package atc

import (
	"errors"
	"time"
)

var (
	ErrInvalidPlan            = errors.New("atc: flight plan missing origin, destination or route")
	ErrPhaseOrder             = errors.New("atc: no forward transition from current phase for this trigger")
	ErrUnknownPhase           = errors.New("atc: unknown phase")
	ErrHandoffNotAllowed      = errors.New("atc: handoff not allowed in current phase")
	ErrSessionComplete        = errors.New("atc: session complete")
	ErrUnknownInstructionKind = errors.New("atc: no template for instruction kind")
)

// FlightPlan is the imported plan the session is started from.
type FlightPlan struct {
	Callsign      string
	Origin        string
	OriginRunway  string
	Destination   string
	ArrivalRunway string
	SID           string
	STAR          string
	Route         string
	CruiseAlt     int // feet
	DistanceNM    float64
}

// Clearance is the route/altitude/squawk bundle issued once at clearance
// delivery. It is never mutated after issue.
type Clearance struct {
	Route     string
	CruiseAlt int
	Squawk    string
}

// Sector is one controller identity. A fresh instance (and frequency) is
// drawn on every handoff; retired instances keep their frequency so reads
// of old sectors stay truthful but inactive.
type Sector struct {
	Name        string
	Kind        SectorKind
	Frequency   string // MHz, ###.###
	Personality Personality
	Instance    int
	Active      bool
}

// Instruction is one ATC transmission, parameterized for the formatter.
type Instruction struct {
	Phase  Phase
	Kind   InstructionKind
	Params map[string]string
	Forced bool
	Time   time.Time
}

// TransitionRecord is one append-only history entry.
type TransitionRecord struct {
	From    Phase
	To      Phase
	Kind    InstructionKind
	Trigger Trigger
	Forced  bool
	Time    time.Time
}

// TelemetrySample is a read-only observation from the live link.
type TelemetrySample struct {
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	AltitudeMSL   float64   `json:"altitude_msl"`
	AltitudeAGL   float64   `json:"altitude_agl"`
	Groundspeed   float64   `json:"groundspeed"`
	Heading       float64   `json:"heading"`
	VerticalSpeed float64   `json:"vertical_speed"`
	OnGround      bool      `json:"on_ground"`
	Time          time.Time `json:"time"`
}

// FlightSession is the aggregate owned by one Session for the life of a
// flight. Snapshot returns deep copies; callers never see live state.
type FlightSession struct {
	ID            string
	Callsign      string
	Origin        string
	OriginRunway  string
	Destination   string
	ArrivalRunway string
	SID           string
	STAR          string
	Route         string
	CruiseAlt     int
	CruiseFL      string
	DistanceNM    float64
	Phase         Phase
	Sector        *Sector
	Squawk        string
	Clearance     *Clearance
	History       []TransitionRecord
	Complete      bool
	Created       time.Time
}
