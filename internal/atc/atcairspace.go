package atc

import (
	"github.com/opensquawk/opensquawk/pkg/geometry"
)

type AirspaceClass string

const (
	ClassA AirspaceClass = "Class Alpha"
	ClassB AirspaceClass = "Class Bravo"
	ClassE AirspaceClass = "Class Echo"
	ClassG AirspaceClass = "Class Golf"
)

type airspaceVolume struct {
	name       string
	class      AirspaceClass
	lat, lon   float64
	radiusNM   float64
	floorFt    float64
	ceilingFt  float64
	everywhere bool
}

// AirspaceMonitor tracks which airspace class the aircraft occupies and
// reports transitions. Terminal Class Bravo cylinders are built around
// every airport in the static table.
type AirspaceMonitor struct {
	current AirspaceClass
	volumes []airspaceVolume
}

func NewAirspaceMonitor() *AirspaceMonitor {
	m := &AirspaceMonitor{current: ClassG}
	for icao, ap := range airportDB {
		m.volumes = append(m.volumes, airspaceVolume{
			name: icao + " " + string(ClassB), class: ClassB,
			lat: ap.Lat, lon: ap.Lon, radiusNM: 30, floorFt: 0, ceilingFt: 10000,
		})
	}
	m.volumes = append(m.volumes, airspaceVolume{
		name: "controlled airspace", class: ClassE,
		floorFt: 1200, ceilingFt: 17999, everywhere: true,
	})
	return m
}

// Check classifies the sample and reports whether the class changed since
// the previous call.
func (m *AirspaceMonitor) Check(s TelemetrySample) (AirspaceClass, bool) {
	class := m.classify(s)
	changed := class != m.current
	m.current = class
	return class, changed
}

func (m *AirspaceMonitor) classify(s TelemetrySample) AirspaceClass {
	// Class Alpha wins on altitude alone, FL180 and above.
	if s.AltitudeMSL >= 18000 {
		return ClassA
	}
	for _, v := range m.volumes {
		if s.AltitudeMSL < v.floorFt || s.AltitudeMSL > v.ceilingFt {
			continue
		}
		if v.everywhere || geometry.DistNM(s.Latitude, s.Longitude, v.lat, v.lon) <= v.radiusNM {
			return v.class
		}
	}
	return ClassG
}

// EntryAdvisory returns the {AIRSPACE} parameter text for an airspace
// transition announcement.
func EntryAdvisory(class AirspaceClass) string {
	switch class {
	case ClassA:
		return "entering Class Alpha airspace, flight level one eight zero and above"
	case ClassB:
		return "entering Class Bravo airspace, maintain assigned altitude"
	case ClassE:
		return "controlled airspace"
	default:
		return "uncontrolled airspace, VFR advisories available"
	}
}
