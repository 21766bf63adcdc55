package score

// TimeSignature is a meter. Beats is the sum of additive numerators ("3+2").
type TimeSignature struct {
	Beats    int    `json:"beats"`
	BeatType int    `json:"beat_type"`
	Symbol   string `json:"symbol,omitempty"`
}

// Length returns the bar length in quarter notes.
func (t TimeSignature) Length() float64 {
	if t.BeatType == 0 {
		return 0
	}
	return float64(t.Beats) * 4 / float64(t.BeatType)
}

// KeyAlteration is one step of a non-traditional key signature.
type KeyAlteration struct {
	Step       string  `json:"step"`
	Alter      float64 `json:"alter"`
	Accidental string  `json:"accidental,omitempty"`
}

// KeySignature is either traditional (Fifths, Mode) or non-traditional
// (Alterations).
type KeySignature struct {
	Fifths      int             `json:"fifths"`
	Mode        string          `json:"mode,omitempty"`
	Alterations []KeyAlteration `json:"alterations,omitempty"`
}

// Traditional reports whether the key is expressed in fifths.
func (k KeySignature) Traditional() bool { return len(k.Alterations) == 0 }

// Clef applies to one staff, numbered from 1.
type Clef struct {
	Sign         string `json:"sign"`
	Line         int    `json:"line,omitempty"`
	OctaveChange int    `json:"octave_change,omitempty"`
	Staff        int    `json:"staff"`
}

// Transpose describes a transposing instrument.
type Transpose struct {
	Chromatic int  `json:"chromatic"`
	Diatonic  *int `json:"diatonic,omitempty"`
	Octave    int  `json:"octave,omitempty"`
}

// Barline is the style and repeat sign at the end of a measure.
type Barline struct {
	Style  string `json:"style,omitempty"`
	Repeat string `json:"repeat,omitempty"`
}

// Measure is one bar of one part. Voices holds one content list per distinct
// voice number, sorted ascending; VoiceNumbers is index-aligned with it.
type Measure struct {
	Number       string
	Pickup       bool
	Divisions    float64
	Time         *TimeSignature
	Key          *KeySignature
	Clefs        []Clef
	Transpose    *Transpose
	Barline      *Barline
	RepeatStart  bool
	VoiceNumbers []int
	Voices       []Items
	Directions   []Placed
}

// SingleVoice reports whether the measure has at most one voice.
func (m *Measure) SingleVoice() bool { return len(m.Voices) <= 1 }

// Contents returns the flat content list of a single-voice measure, or nil
// when the measure has several voices.
func (m *Measure) Contents() Items {
	switch len(m.Voices) {
	case 0:
		return Items{}
	case 1:
		return m.Voices[0]
	}
	return nil
}

// Voice returns the content of voice n, or nil.
func (m *Measure) Voice(n int) Items {
	for i, v := range m.VoiceNumbers {
		if v == n {
			return m.Voices[i]
		}
	}
	return nil
}

// Length is the length of the longest voice in quarter notes.
func (m *Measure) Length() float64 {
	var longest float64
	for _, v := range m.Voices {
		if l := v.Length(); l > longest {
			longest = l
		}
	}
	return longest
}
