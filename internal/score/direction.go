package score

import "fmt"

// DirectionKind enumerates the recognised direction shapes. The order is the
// dispatch priority used when one direction-type could match several shapes.
type DirectionKind int

const (
	DirectionDashes DirectionKind = iota
	DirectionHairpin
	DirectionPedal
	DirectionDynamic
	DirectionMetronome
	DirectionBracket
	DirectionText
	DirectionHarmony
)

func (k DirectionKind) String() string {
	switch k {
	case DirectionDashes:
		return "dashes"
	case DirectionHairpin:
		return "hairpin"
	case DirectionPedal:
		return "pedal"
	case DirectionDynamic:
		return "dynamic"
	case DirectionMetronome:
		return "metronome"
	case DirectionBracket:
		return "bracket"
	case DirectionText:
		return "text"
	case DirectionHarmony:
		return "harmony"
	}
	return fmt.Sprintf("DirectionKind(%d)", int(k))
}

// Direction is the parsed content of a direction or harmony element.
type Direction interface {
	DirectionKind() DirectionKind
	Anchored() Anchor
}

// Directions is an ordered list of directions.
type Directions []Direction

// Anchor says where a direction is drawn. Staff is 0 when unspecified.
type Anchor struct {
	Placement string `json:"placement,omitempty"`
	Staff     int    `json:"staff,omitempty"`
	Voice     int    `json:"voice"`
}

// Anchored returns the anchor itself so embedding types satisfy Direction.
func (a Anchor) Anchored() Anchor { return a }

// Placed pairs a direction with its displacement in quarter notes from the
// start of the measure.
type Placed struct {
	Content      Direction
	Displacement float64
}

// TextAnnotation is free text (MusicXML words).
type TextAnnotation struct {
	Anchor
	Text     string   `json:"text"`
	FontSize *float64 `json:"font_size,omitempty"`
	Italic   bool     `json:"italic,omitempty"`
	Bold     bool     `json:"bold,omitempty"`
}

func (*TextAnnotation) DirectionKind() DirectionKind { return DirectionText }

// Dashes is one end of a dashed line, optionally labelled with text.
type Dashes struct {
	Anchor
	Type        string          `json:"type"`
	Number      string          `json:"number"`
	DashLength  *float64        `json:"dash_length,omitempty"`
	SpaceLength *float64        `json:"space_length,omitempty"`
	Text        *TextAnnotation `json:"text,omitempty"`
}

func (*Dashes) DirectionKind() DirectionKind { return DirectionDashes }

// Hairpin types.
const (
	HairpinCrescendo  = "crescendo"
	HairpinDiminuendo = "diminuendo"
	HairpinStop       = "stop"
)

// Hairpin is a crescendo/diminuendo wedge start or a wedge stop.
type Hairpin struct {
	Anchor
	Type   string   `json:"type"`
	Number string   `json:"number"`
	Spread *float64 `json:"spread,omitempty"`
	Niente bool     `json:"niente,omitempty"`
}

func (*Hairpin) DirectionKind() DirectionKind { return DirectionHairpin }

// Pedal is a pedal start, stop or change.
type Pedal struct {
	Anchor
	Type   string `json:"type"`
	Number string `json:"number"`
	Sign   bool   `json:"sign"`
	Line   bool   `json:"line"`
}

func (*Pedal) DirectionKind() DirectionKind { return DirectionPedal }

// Dynamic is a dynamic mark. Other is set for other-dynamics text.
type Dynamic struct {
	Anchor
	Mark  string `json:"mark"`
	Other bool   `json:"other,omitempty"`
}

func (*Dynamic) DirectionKind() DirectionKind { return DirectionDynamic }

// MetronomeMark is a tempo indication. BeatLength is in quarter notes.
type MetronomeMark struct {
	Anchor
	BeatUnit    string  `json:"beat_unit"`
	Dots        int     `json:"dots,omitempty"`
	BeatLength  float64 `json:"beat_length"`
	BPM         float64 `json:"bpm"`
	Parentheses bool    `json:"parentheses,omitempty"`
}

func (*MetronomeMark) DirectionKind() DirectionKind { return DirectionMetronome }

// QuarterBPM converts the mark to quarter notes per minute.
func (m *MetronomeMark) QuarterBPM() float64 { return m.BPM * m.BeatLength }

// Bracket is one end of a bracket line, optionally labelled with text.
type Bracket struct {
	Anchor
	Type      string          `json:"type"`
	Number    string          `json:"number"`
	LineType  string          `json:"line_type,omitempty"`
	LineEnd   string          `json:"line_end,omitempty"`
	EndLength *float64        `json:"end_length,omitempty"`
	Text      *TextAnnotation `json:"text,omitempty"`
}

func (*Bracket) DirectionKind() DirectionKind { return DirectionBracket }

// Degree is a chord-symbol alteration (add, alter or subtract).
type Degree struct {
	Value       int    `json:"value"`
	Alter       int    `json:"alter"`
	Type        string `json:"type"`
	PrintObject bool   `json:"print_object"`
}

// Harmony is a chord symbol.
type Harmony struct {
	Anchor
	Root        string   `json:"root"`
	RootAlter   int      `json:"root_alter,omitempty"`
	Kind        string   `json:"chord_kind"`
	KindText    string   `json:"chord_kind_text,omitempty"`
	UseSymbols  bool     `json:"use_symbols,omitempty"`
	Degrees     []Degree `json:"degrees,omitempty"`
	PrintObject bool     `json:"print_object"`
}

func (*Harmony) DirectionKind() DirectionKind { return DirectionHarmony }
