package atc

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func formalPersonality() Personality {
	return Personality{Name: "Test", Formality: 0.7, Friendliness: 0.5, Verbosity: 0.5, Strictness: 0.5, VoiceTag: "en_GB-alan-medium"}
}

func TestRenderClearance(t *testing.T) {
	instr := Instruction{
		Phase: ClearanceDelivery,
		Kind:  KindClearance,
		Params: map[string]string{
			"CALLSIGN": "SPEEDBIRD123",
			"DEST":     "EDDF",
			"SID":      "BUZAD2G",
			"ROUTE":    "BUZAD L9 KONAN",
			"FL":       "370",
			"DEPFREQ":  "119.725",
			"SQUAWK":   "4217",
		},
		Time: time.Now(),
	}
	utt, err := Render(instr, formalPersonality())
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{"FL370", "BUZAD L9 KONAN", "4217", "119.725", "BUZAD2G"} {
		if !strings.Contains(utt.Text, want) {
			t.Errorf("text missing %q: %s", want, utt.Text)
		}
	}
	for _, want := range []string{"Speedbird One Two Three", "flight level Three Seven Zero", "Four Two One Seven", "One One Niner Decimal Seven Two Five"} {
		if !strings.Contains(utt.Spoken, want) {
			t.Errorf("spoken missing %q: %s", want, utt.Spoken)
		}
	}
	if utt.VoiceTag != "en_GB-alan-medium" {
		t.Errorf("voice tag %q", utt.VoiceTag)
	}
}

func TestRenderHandoffNamesBothFrequencies(t *testing.T) {
	instr := Instruction{
		Phase: CenterCruise,
		Kind:  KindHandoff,
		Params: map[string]string{
			"CALLSIGN": "SPEEDBIRD123",
			"FACILITY": "Center",
			"NEWFREQ":  "132.450",
			"OLDFREQ":  "132.125",
		},
	}
	utt, err := Render(instr, formalPersonality())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(utt.Text, "132.450") || !strings.Contains(utt.Text, "132.125") {
		t.Fatalf("handoff text missing a frequency: %s", utt.Text)
	}
	if !strings.Contains(utt.Spoken, "One Three Two Decimal Four Five Zero") {
		t.Fatalf("spoken handoff frequency wrong: %s", utt.Spoken)
	}
}

func TestRenderUnknownKind(t *testing.T) {
	_, err := Render(Instruction{Kind: "weather-brief"}, formalPersonality())
	if !errors.Is(err, ErrUnknownInstructionKind) {
		t.Fatalf("got %v, want ErrUnknownInstructionKind", err)
	}
}

func TestRenderTotalOverTemplates(t *testing.T) {
	for kind := range phraseTemplates {
		if _, err := Render(Instruction{Kind: kind, Params: map[string]string{"CALLSIGN": "UNITED1"}}, formalPersonality()); err != nil {
			t.Errorf("kind %q: %v", kind, err)
		}
	}
}

func TestSpeakCallsign(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SPEEDBIRD123", "Speedbird One Two Three"},
		{"LUFTHANSA9", "Lufthansa Niner"},
		{"DELTA42", "Delta Four Two"},
		{"N123AB", "November One Two Three Alpha Bravo"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			if got := SpeakCallsign(tc.in); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSpeakFrequency(t *testing.T) {
	if got := SpeakFrequency("121.700"); got != "One Two One Decimal Seven Zero Zero" {
		t.Fatalf("got %q", got)
	}
}

func TestSpeakRunway(t *testing.T) {
	tests := []struct{ in, want string }{
		{"27R", "Two Seven Right"},
		{"25C", "Two Five Center"},
		{"09L", "Zero Niner Left"},
		{"36", "Three Six"},
	}
	for _, tc := range tests {
		if got := speakRunway(tc.in); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.in, got, tc.want)
		}
	}
}
