package atc

// natoMap contains the ICAO spelling alphabet plus spoken digits, used for
// phonetic expansion of callsigns, squawks and runway designators.
var natoMap = map[rune]string{
	'A': "Alpha", 'B': "Bravo", 'C': "Charlie", 'D': "Delta", 'E': "Echo",
	'F': "Foxtrot", 'G': "Golf", 'H': "Hotel", 'I': "India", 'J': "Juliet",
	'K': "Kilo", 'L': "Lima", 'M': "Mike", 'N': "November", 'O': "Oscar",
	'P': "Papa", 'Q': "Quebec", 'R': "Romeo", 'S': "Sierra", 'T': "Tango",
	'U': "Uniform", 'V': "Victor", 'W': "Whiskey", 'X': "X-ray", 'Y': "Yankee",
	'Z': "Zulu",
	'0': "Zero", '1': "One", '2': "Two", '3': "Three", '4': "Four",
	'5': "Five", '6': "Six", '7': "Seven", '8': "Eight", '9': "Niner",
}

// telephonyPrefixes are airline callsign prefixes spoken as words rather
// than letter by letter.
var telephonyPrefixes = []string{
	"SPEEDBIRD", "LUFTHANSA", "UNITED", "DELTA", "AMERICAN",
}

// reservedSquawks are transponder codes that must never be auto-assigned.
var reservedSquawks = map[string]bool{
	"0000": true, // non-discrete
	"7500": true, // unlawful interference
	"7600": true, // radio failure
	"7700": true, // emergency
}

type freqBand struct {
	base   int // whole MHz
	minKHz int
	maxKHz int
}

// freqBands gives the plausible band for each sector kind. Drawn values
// are snapped to 25 kHz channel spacing.
var freqBands = map[SectorKind]freqBand{
	SectorClearance: {121, 700, 900},
	SectorGround:    {121, 600, 900},
	SectorTower:     {118, 100, 900},
	SectorDeparture: {119, 100, 900},
	SectorApproach:  {120, 100, 900},
	SectorCenter:    {132, 100, 900},
}

// voicePool holds the Piper voice model names a controller identity can be
// assigned. Selection is deterministic per sector seed.
var voicePool = []string{
	"en_US-lessac-medium",
	"en_GB-alan-medium",
	"en_US-ryan-high",
	"en_GB-jenny_dioco-medium",
	"en_US-joe-medium",
	"en_GB-alba-medium",
}

type AirportInfo struct {
	Name string
	Lat  float64
	Lon  float64
}

// airportDB is the static airport table the airspace monitor and TOD
// distance checks run against.
var airportDB = map[string]AirportInfo{
	"EGLL": {"London Heathrow", 51.4700, -0.4543},
	"EDDF": {"Frankfurt", 50.0379, 8.5622},
	"KJFK": {"Kennedy", 40.6413, -73.7781},
	"KLAX": {"Los Angeles", 33.9416, -118.4085},
	"LFPG": {"Paris CDG", 49.0097, 2.5479},
}

// phraseTemplates renders each instruction kind. Placeholders are
// substituted by the formatter; unknown kinds are a hard error, never a
// blank transmission.
var phraseTemplates = map[InstructionKind]string{
	KindRadioCheck: "{CALLSIGN}, readability five, advise ready to copy clearance.",
	KindClearance:  "{CALLSIGN}, Clearance Delivery, cleared to {DEST} via {SID} departure, flight planned route {ROUTE}, climb and maintain FL{FL}, departure frequency {DEPFREQ}, squawk {SQUAWK}.",
	KindPushback:  "{CALLSIGN}, pushback approved, tail north, advise ready to taxi.",
	KindTaxiOut:   "{CALLSIGN}, taxi to runway {RUNWAY} via taxiway Alpha, hold short.",
	KindTakeoff:   "{CALLSIGN}, runway {RUNWAY}, wind calm, cleared for takeoff.",
	KindClimb:     "{CALLSIGN}, radar contact, climb and maintain FL{FL}.",
	KindCruise:    "{CALLSIGN}, radar contact, maintain FL{FL}.",
	KindHandoff:   "{CALLSIGN}, contact {FACILITY} on {NEWFREQ}, leaving {OLDFREQ}. Good day.",
	KindDescend:   "{CALLSIGN}, descend and maintain {ALT} feet, expect {STAR} arrival runway {RUNWAY}.",
	KindILS:       "{CALLSIGN}, cleared ILS approach runway {RUNWAY}.",
	KindLanding:   "{CALLSIGN}, runway {RUNWAY}, wind calm, cleared to land.",
	KindTaxiIn:    "{CALLSIGN}, exit next taxiway, taxi to gate via taxiway Bravo.",
	KindParking:   "{CALLSIGN}, parking complete, good day.",
	KindTOD:       "{CALLSIGN}, top of descent in {DIST} miles.",
	KindAirspace:  "{CALLSIGN}, {AIRSPACE}.",
}
