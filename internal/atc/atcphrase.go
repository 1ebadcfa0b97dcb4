package atc

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Utterance is one rendered transmission. Text is the display form shown
// in the transcript, Spoken is the phonetic form fed to the voice engine.
type Utterance struct {
	Text     string
	Spoken   string
	VoiceTag string
	Priority InstructionKind
}

// spokenKeys marks parameters that get phonetic expansion in the spoken
// form. Everything else is substituted verbatim in both forms.
var spokenKeys = map[string]func(string) string{
	"CALLSIGN": SpeakCallsign,
	"SQUAWK":   speakDigits,
	"FL":       speakDigits,
	"ALT":      speakDigits,
	"DIST":     speakDigits,
	"RUNWAY":   speakRunway,
	"DEPFREQ":  SpeakFrequency,
	"NEWFREQ":  SpeakFrequency,
	"OLDFREQ":  SpeakFrequency,
}

// Render expands the template for an instruction into display and spoken
// forms, applying the controller's personality to both.
func Render(instr Instruction, p Personality) (Utterance, error) {
	tmpl, ok := phraseTemplates[instr.Kind]
	if !ok {
		return Utterance{}, fmt.Errorf("render %q: %w", instr.Kind, ErrUnknownInstructionKind)
	}

	text := tmpl
	spoken := strings.ReplaceAll(tmpl, "FL{FL}", "flight level {FL}")
	for key, val := range instr.Params {
		ph := "{" + key + "}"
		text = strings.ReplaceAll(text, ph, val)
		sv := val
		if fn, ok := spokenKeys[key]; ok {
			sv = fn(val)
		}
		spoken = strings.ReplaceAll(spoken, ph, sv)
	}

	return Utterance{
		Text:     p.ApplyTo(text),
		Spoken:   p.ApplyTo(spoken),
		VoiceTag: p.VoiceTag,
		Priority: instr.Kind,
	}, nil
}

// SpeakCallsign converts a callsign like SPEEDBIRD123 into telephony form,
// speaking known airline prefixes as words and the rest phonetically.
func SpeakCallsign(callsign string) string {
	// cases.Caser is stateful, one per call
	titler := cases.Title(language.English)
	up := strings.ToUpper(callsign)
	for _, prefix := range telephonyPrefixes {
		if rest, ok := strings.CutPrefix(up, prefix); ok {
			if rest == "" {
				return titler.String(strings.ToLower(prefix))
			}
			return titler.String(strings.ToLower(prefix)) + " " + speakDigits(rest)
		}
	}
	return speakDigits(up)
}

// SpeakFrequency expands "121.725" into "One Two One Decimal Seven Two Five".
func SpeakFrequency(freq string) string {
	whole, frac, found := strings.Cut(freq, ".")
	if !found {
		return speakDigits(freq)
	}
	return speakDigits(whole) + " Decimal " + speakDigits(frac)
}

func speakRunway(rwy string) string {
	rwy = strings.ToUpper(rwy)
	switch {
	case strings.HasSuffix(rwy, "L"):
		return speakDigits(rwy[:len(rwy)-1]) + " Left"
	case strings.HasSuffix(rwy, "R"):
		return speakDigits(rwy[:len(rwy)-1]) + " Right"
	case strings.HasSuffix(rwy, "C"):
		return speakDigits(rwy[:len(rwy)-1]) + " Center"
	}
	return speakDigits(rwy)
}

func speakDigits(s string) string {
	var words []string
	for _, r := range strings.ToUpper(s) {
		if w, ok := natoMap[r]; ok {
			words = append(words, w)
		} else if r != ' ' {
			words = append(words, string(r))
		}
	}
	return strings.Join(words, " ")
}
