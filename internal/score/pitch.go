package score

import (
	"fmt"
	"math"
	"strconv"
)

var stepSemitones = map[string]int{
	"C": 0, "D": 2, "E": 4, "F": 5, "G": 7, "A": 9, "B": 11,
}

// ValidStep reports whether s is a diatonic step letter.
func ValidStep(s string) bool {
	_, ok := stepSemitones[s]
	return ok
}

// Pitch is a written pitch. Alteration is in semitones and may be fractional
// for microtones.
type Pitch struct {
	Step       string  `json:"step"`
	Alteration float64 `json:"alteration,omitempty"`
	Octave     int     `json:"octave"`
}

// String renders the pitch as step, accidental and octave, e.g. "F#4" or "Bb3".
func (p Pitch) String() string {
	acc := ""
	switch p.Alteration {
	case 0:
	case 1:
		acc = "#"
	case 2:
		acc = "##"
	case -1:
		acc = "b"
	case -2:
		acc = "bb"
	default:
		acc = "(" + strconv.FormatFloat(p.Alteration, 'f', -1, 64) + ")"
	}
	return fmt.Sprintf("%s%s%d", p.Step, acc, p.Octave)
}

// MIDINumber returns the MIDI key number, rounding microtonal alterations.
// Middle C (C4) is 60.
func (p Pitch) MIDINumber() int {
	return (p.Octave+1)*12 + stepSemitones[p.Step] + int(math.Round(p.Alteration))
}
