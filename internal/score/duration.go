package score

import "math"

// noteTypeLengths maps MusicXML note types to their length in quarter notes.
var noteTypeLengths = map[string]float64{
	"maxima":  32,
	"long":    16,
	"breve":   8,
	"whole":   4,
	"half":    2,
	"quarter": 1,
	"eighth":  0.5,
	"16th":    0.25,
	"32nd":    0.125,
	"64th":    1.0 / 16,
	"128th":   1.0 / 32,
	"256th":   1.0 / 64,
	"512th":   1.0 / 128,
	"1024th":  1.0 / 256,
}

// noteTypesByLength lists note types from longest to shortest.
var noteTypesByLength = []string{
	"maxima", "long", "breve", "whole", "half", "quarter", "eighth",
	"16th", "32nd", "64th", "128th", "256th", "512th", "1024th",
}

// ValidNoteType reports whether t is a MusicXML note type name.
func ValidNoteType(t string) bool {
	_, ok := noteTypeLengths[t]
	return ok
}

// Ratio is a tuplet ratio: Actual written notes occupy the time of Normal notes.
type Ratio struct {
	Actual int `json:"actual"`
	Normal int `json:"normal"`
}

// Valid reports whether the ratio describes a real tuplet.
func (r Ratio) Valid() bool {
	return r.Actual > 0 && r.Normal > 0 && r.Actual != r.Normal
}

// Scale returns the factor applied to written lengths.
func (r Ratio) Scale() float64 {
	return float64(r.Normal) / float64(r.Actual)
}

// Duration is a written note value with optional tuplet scaling.
type Duration struct {
	Type   string `json:"type"`
	Dots   int    `json:"dots,omitempty"`
	Tuplet *Ratio `json:"tuplet,omitempty"`
}

// WrittenLength returns the dotted length in quarter notes, ignoring tuplets.
func (d Duration) WrittenLength() float64 {
	return noteTypeLengths[d.Type] * DotFactor(d.Dots)
}

// TrueLength returns the performed length in quarter notes.
func (d Duration) TrueLength() float64 {
	l := d.WrittenLength()
	if d.Tuplet != nil && d.Tuplet.Valid() {
		l *= d.Tuplet.Scale()
	}
	return l
}

// Equal compares two durations by value.
func (d Duration) Equal(o Duration) bool {
	if d.Type != o.Type || d.Dots != o.Dots {
		return false
	}
	if d.Tuplet == nil || o.Tuplet == nil {
		return d.Tuplet == nil && o.Tuplet == nil
	}
	return *d.Tuplet == *o.Tuplet
}

// DurationFromLength finds the note type and dot count whose true length is
// length quarter notes under the given tuplet ratio (nil for none).
func DurationFromLength(length float64, tuplet *Ratio) (Duration, bool) {
	written := length
	if tuplet != nil && tuplet.Valid() {
		written = length / tuplet.Scale()
	}
	for dots := 0; dots <= 3; dots++ {
		for _, t := range noteTypesByLength {
			if math.Abs(noteTypeLengths[t]*DotFactor(dots)-written) < 1e-9 {
				return Duration{Type: t, Dots: dots, Tuplet: tuplet}, true
			}
		}
	}
	return Duration{}, false
}

// DotFactor is the length multiplier for n dots: (2^(n+1)-1)/2^n.
func DotFactor(dots int) float64 {
	if dots <= 0 {
		return 1
	}
	return float64(int(1)<<(dots+1)-1) / float64(int(1)<<dots)
}
