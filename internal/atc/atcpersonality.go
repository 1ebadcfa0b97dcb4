package atc

import "strings"

// Personality describes the speaking habits of one controller identity.
// All trait values are on a 0..1 scale.
type Personality struct {
	Name         string  `json:"name"`
	Formality    float64 `json:"formality"`
	Friendliness float64 `json:"friendliness"`
	Verbosity    float64 `json:"verbosity"`
	Strictness   float64 `json:"strictness"`
	VoiceTag     string  `json:"voice_tag"`
}

var traitTable = map[SectorKind]Personality{
	SectorClearance: {Name: "Clearance Delivery", Formality: 0.9, Friendliness: 0.5, Verbosity: 0.8, Strictness: 0.7},
	SectorGround:    {Name: "Ground Control", Formality: 0.8, Friendliness: 0.4, Verbosity: 0.3, Strictness: 0.9},
	SectorTower:     {Name: "Tower", Formality: 0.8, Friendliness: 0.6, Verbosity: 0.5, Strictness: 0.8},
	SectorDeparture: {Name: "Departure", Formality: 0.7, Friendliness: 0.6, Verbosity: 0.6, Strictness: 0.6},
	SectorCenter:    {Name: "Center", Formality: 0.6, Friendliness: 0.7, Verbosity: 0.7, Strictness: 0.5},
	SectorApproach:  {Name: "Approach", Formality: 0.7, Friendliness: 0.7, Verbosity: 0.6, Strictness: 0.7},
}

var friendlySignoffs = []string{"safe flight", "have a good one", "fly safe"}

// NewPersonality returns the controller identity for a sector. Voice and
// phrasing quirks are drawn deterministically from the session and sector,
// so re-tuning the same frequency reaches the same controller.
func NewPersonality(sessionID string, kind SectorKind, instance int, seed int64) Personality {
	p, ok := traitTable[kind]
	if !ok {
		p = traitTable[SectorCenter]
	}
	rng := radioRand(sessionID, kind, instance, seed, 1)
	p.VoiceTag = voicePool[rng.Intn(len(voicePool))]
	return p
}

// Style classifies the personality for display and logging.
func (p Personality) Style() string {
	switch {
	case p.Strictness > 0.7 && p.Verbosity < 0.4:
		return "terse"
	case p.Friendliness > 0.6 && p.Verbosity > 0.6:
		return "chatty"
	default:
		return "formal"
	}
}

// ApplyTo rewrites a rendered phrase according to the controller's habits.
// The same personality and phrase always produce the same output.
func (p Personality) ApplyTo(phrase string) string {
	if p.Friendliness >= 0.7 {
		idx := int(p.Friendliness*10+p.Verbosity*100) % len(friendlySignoffs)
		for _, lit := range []string{"Good day", "good day"} {
			if strings.Contains(phrase, lit) {
				phrase = strings.Replace(phrase, lit, friendlySignoffs[idx], 1)
				break
			}
		}
	}
	if p.Strictness > 0.7 && p.Verbosity < 0.4 {
		phrase = strings.ReplaceAll(phrase, ", advise ready to taxi", "")
		phrase = strings.ReplaceAll(phrase, " please", "")
	}
	if p.Verbosity > 0.7 && strings.Contains(strings.ToLower(phrase), "maintain") {
		phrase = strings.TrimSuffix(phrase, ".") + ", thank you."
	}
	return phrase
}
