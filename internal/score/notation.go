package score

// Spanner and event type values shared by notations and directions.
const (
	TypeStart    = "start"
	TypeStop     = "stop"
	TypeChange   = "change"
	TypeContinue = "continue"
)

// Notation is a mark attached to a note or chord.
type Notation interface {
	NotationKind() string
}

// Notations is an ordered list of notations.
type Notations []Notation

// Fermata is a pause mark.
type Fermata struct {
	Inverted bool `json:"inverted,omitempty"`
}

func (*Fermata) NotationKind() string { return "fermata" }

// Arpeggiate is a rolled-chord sign. Non marks a non-arpeggiate bracket.
type Arpeggiate struct {
	Direction string `json:"direction,omitempty"`
	Non       bool   `json:"non,omitempty"`
}

func (a *Arpeggiate) NotationKind() string {
	if a.Non {
		return "non-arpeggiate"
	}
	return "arpeggiate"
}

// Ornament is a mordent, turn, trill mark or similar.
type Ornament struct {
	Type      string `json:"type"`
	Placement string `json:"placement"`
}

func (*Ornament) NotationKind() string { return "ornament" }

// Tremolo is a tremolo ornament with a number of strokes.
type Tremolo struct {
	Type      string `json:"type,omitempty"`
	Lines     int    `json:"lines"`
	Placement string `json:"placement"`
}

func (*Tremolo) NotationKind() string { return "tremolo" }

// Technical is a technical indication such as up-bow or harmonic.
type Technical struct {
	Type string `json:"type"`
}

func (*Technical) NotationKind() string { return "technical" }

// Articulation is an accent, staccato or similar mark.
type Articulation struct {
	Type      string `json:"type"`
	Placement string `json:"placement,omitempty"`
}

func (*Articulation) NotationKind() string { return "articulation" }

// Glissando is one end of a glissando or slide line.
type Glissando struct {
	Type   string `json:"type"`
	Number string `json:"number"`
	Slide  bool   `json:"slide,omitempty"`
}

func (*Glissando) NotationKind() string { return "glissando" }

// MultiGlissando is one end of several simultaneous glissando lines on a
// chord, keyed by their spanner numbers in document order.
type MultiGlissando struct {
	Type    string   `json:"type"`
	Numbers []string `json:"numbers"`
	Slide   bool     `json:"slide,omitempty"`
}

func (*MultiGlissando) NotationKind() string { return "multi-glissando" }

// Slur is one end of a slur.
type Slur struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

func (*Slur) NotationKind() string { return "slur" }
