package score

import "fmt"

// EventKind distinguishes the leaf variants of a musical event.
type EventKind int

const (
	KindNote EventKind = iota
	KindRest
	KindGrace
	KindBarRest
)

func (k EventKind) String() string {
	switch k {
	case KindNote:
		return "note"
	case KindRest:
		return "rest"
	case KindGrace:
		return "grace"
	case KindBarRest:
		return "bar-rest"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Tie is the tie state of a note.
type Tie int

const (
	TieNone Tie = iota
	TieStart
	TieStop
	TieBoth
)

func (t Tie) String() string {
	switch t {
	case TieStart:
		return "start"
	case TieStop:
		return "stop"
	case TieBoth:
		return "both"
	}
	return "none"
}

// MarshalText implements encoding.TextMarshaler.
func (t Tie) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Starts reports whether a tie begins on this note.
func (t Tie) Starts() bool { return t == TieStart || t == TieBoth }

// Stops reports whether a tie ends on this note.
func (t Tie) Stops() bool { return t == TieStop || t == TieBoth }

// Combine merges a start/stop marker into t.
func (t Tie) Combine(o Tie) Tie {
	starts := t.Starts() || o.Starts()
	stops := t.Stops() || o.Stops()
	switch {
	case starts && stops:
		return TieBoth
	case starts:
		return TieStart
	case stops:
		return TieStop
	}
	return TieNone
}

var noteheadTypes = map[string]struct{}{
	"normal": {}, "diamond": {}, "triangle": {}, "slash": {}, "cross": {}, "x": {},
	"circle-x": {}, "inverted triangle": {}, "square": {}, "arrow down": {}, "arrow up": {},
	"circled": {}, "slashed": {}, "back slashed": {}, "cluster": {}, "circle dot": {},
	"left triangle": {}, "rectangle": {}, "do": {}, "re": {}, "mi": {}, "fa": {},
	"fa up": {}, "so": {}, "la": {}, "ti": {}, "none": {},
}

// ValidNotehead reports whether s is a recognised notehead name.
func ValidNotehead(s string) bool {
	_, ok := noteheadTypes[s]
	return ok
}

// Notehead describes the drawn notehead. Filled is nil when unspecified.
type Notehead struct {
	Type   string `json:"type"`
	Filled *bool  `json:"filled,omitempty"`
}

// Item is one node of a measure's voice content: *Event, *Chord,
// *BeamedGroup or *Tuplet.
type Item interface {
	// VoiceNumber is the voice the item belongs to.
	VoiceNumber() int
	// Length is the performed length in quarter notes.
	Length() float64
	// ItemKind names the variant.
	ItemKind() string
}

// Event is a single note, rest, grace note or whole-bar rest.
type Event struct {
	Kind       EventKind  `json:"-"`
	Pitch      *Pitch     `json:"pitch,omitempty"`
	Duration   Duration   `json:"duration"`
	BarLength  float64    `json:"bar_length,omitempty"`
	Voice      int        `json:"voice"`
	Staff      int        `json:"staff"`
	Tie        Tie        `json:"tie"`
	Notehead   Notehead   `json:"notehead"`
	Notations  Notations  `json:"notations,omitempty"`
	Directions Directions `json:"directions,omitempty"`
	Stemless   bool       `json:"stemless,omitempty"`
	Slashed    bool       `json:"slashed,omitempty"`
}

func (e *Event) VoiceNumber() int { return e.Voice }
func (e *Event) ItemKind() string { return e.Kind.String() }

// Length is zero for grace notes and the bar length for whole-bar rests.
func (e *Event) Length() float64 {
	switch e.Kind {
	case KindGrace:
		return 0
	case KindBarRest:
		return e.BarLength
	}
	return e.Duration.TrueLength()
}

// IsRest reports whether the event sounds nothing.
func (e *Event) IsRest() bool { return e.Kind == KindRest || e.Kind == KindBarRest }

// Chord is a group of simultaneous pitches sharing one duration. Notes[0] is
// the lead; every note carries the lead's Duration and Voice. Notations holds
// the merged notations of all notes.
type Chord struct {
	Notes     []Event   `json:"notes"`
	Notations Notations `json:"notations,omitempty"`
	Tie       Tie       `json:"tie"`
	Grace     bool      `json:"grace,omitempty"`
	Slashed   bool      `json:"slashed,omitempty"`
}

func (c *Chord) VoiceNumber() int { return c.Notes[0].Voice }

func (c *Chord) ItemKind() string {
	if c.Grace {
		return "grace-chord"
	}
	return "chord"
}

func (c *Chord) Length() float64 {
	if c.Grace {
		return 0
	}
	return c.Notes[0].Duration.TrueLength()
}

// Lead returns the first note of the chord.
func (c *Chord) Lead() *Event { return &c.Notes[0] }

// Duration returns the shared duration.
func (c *Chord) Duration() Duration { return c.Notes[0].Duration }

// Pitches returns the chord's pitches in document order.
func (c *Chord) Pitches() []Pitch {
	out := make([]Pitch, 0, len(c.Notes))
	for _, n := range c.Notes {
		if n.Pitch != nil {
			out = append(out, *n.Pitch)
		}
	}
	return out
}

// BeamedGroup is a run of events and chords drawn under one beam.
type BeamedGroup struct {
	Contents Items `json:"contents"`
}

func (g *BeamedGroup) VoiceNumber() int { return g.Contents.voice() }
func (g *BeamedGroup) ItemKind() string { return "beamed-group" }
func (g *BeamedGroup) Length() float64  { return g.Contents.Length() }

// Tuplet is a run of events and chords played at Ratio. Every event directly
// inside carries the same ratio in its duration.
type Tuplet struct {
	Ratio    Ratio `json:"ratio"`
	Contents Items `json:"contents"`
}

func (t *Tuplet) VoiceNumber() int { return t.Contents.voice() }
func (t *Tuplet) ItemKind() string { return "tuplet" }
func (t *Tuplet) Length() float64  { return t.Contents.Length() }

// Items is an ordered list of content nodes.
type Items []Item

func (it Items) voice() int {
	if len(it) == 0 {
		return 1
	}
	return it[0].VoiceNumber()
}

// Length sums the performed lengths of the items.
func (it Items) Length() float64 {
	var total float64
	for _, i := range it {
		total += i.Length()
	}
	return total
}

// Leaves calls fn for every *Event and *Chord in order, descending into
// beamed groups and tuplets.
func (it Items) Leaves(fn func(Item)) {
	for _, i := range it {
		switch v := i.(type) {
		case *BeamedGroup:
			v.Contents.Leaves(fn)
		case *Tuplet:
			v.Contents.Leaves(fn)
		default:
			fn(v)
		}
	}
}
