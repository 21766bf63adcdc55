package musicxml

import (
	"strings"

	xmldom "github.com/subchen/go-xmldom"

	"github.com/starford/partitura/internal/score"
)

// pitch reads <pitch>, falling back to the display position of <unpitched>.
// It returns nil when the note has neither.
func (b *builder) pitch(el *xmldom.Node) *score.Pitch {
	stepTag, octaveTag := "step", "octave"
	p := child(el, "pitch")
	if p == nil {
		p = child(el, "unpitched")
		stepTag, octaveTag = "display-step", "display-octave"
	}
	if p == nil {
		return nil
	}

	step := strings.ToUpper(childText(p, stepTag))
	switch {
	case step == "":
		step = "C"
	case !score.ValidStep(step):
		b.rep.warn(CodeUnknownValue, "unknown step %q, using C", step)
		step = "C"
	}
	alter, _ := b.rep.number(childText(p, "alter"), "alter")
	return &score.Pitch{
		Step:       step,
		Alteration: alter,
		Octave:     b.rep.integerOr(childText(p, octaveTag), "octave", 4),
	}
}

// rawRatio returns the time-modification ratio of a note as written, whether
// or not it describes a real tuplet.
func (b *builder) rawRatio(el *xmldom.Node) (score.Ratio, bool) {
	tm := child(el, "time-modification")
	if tm == nil {
		return score.Ratio{}, false
	}
	actual, ok1 := b.rep.integer(childText(tm, "actual-notes"), "actual-notes")
	normal, ok2 := b.rep.integer(childText(tm, "normal-notes"), "normal-notes")
	if !ok1 || !ok2 {
		return score.Ratio{}, false
	}
	return score.Ratio{Actual: actual, Normal: normal}, true
}

// duration reads the written value of a note. A non-nil tuplet overrides the
// note's own time-modification.
func (b *builder) duration(el *xmldom.Node, divisions float64, tuplet *score.Ratio) score.Duration {
	if tuplet == nil {
		if r, ok := b.rawRatio(el); ok && r.Valid() {
			tuplet = &r
		}
	} else {
		t := *tuplet
		tuplet = &t
	}
	dots := len(children(el, "dot"))

	typ := childText(el, "type")
	switch {
	case typ == "":
		if ticks, ok := b.rep.number(childText(el, "duration"), "duration"); ok && divisions > 0 {
			if d, ok := score.DurationFromLength(ticks/divisions, tuplet); ok {
				return d
			}
			b.rep.warn(CodeUnknownValue, "no note type matches duration %v, using quarter", ticks)
		}
		typ = "quarter"
	case !score.ValidNoteType(typ):
		b.rep.warn(CodeUnknownValue, "unknown note type %q, using quarter", typ)
		typ = "quarter"
	}
	return score.Duration{Type: typ, Dots: dots, Tuplet: tuplet}
}

func (b *builder) notehead(el *xmldom.Node) score.Notehead {
	nh := child(el, "notehead")
	if nh == nil {
		return score.Notehead{Type: "normal"}
	}
	typ := strings.ToLower(text(nh))
	switch {
	case typ == "":
		typ = "normal"
	case !score.ValidNotehead(typ):
		b.rep.warn(CodeUnknownValue, "unknown notehead %q, using normal", typ)
		typ = "normal"
	}
	out := score.Notehead{Type: typ}
	switch strings.ToLower(attr(nh, "filled")) {
	case "yes":
		filled := true
		out.Filled = &filled
	case "no":
		filled := false
		out.Filled = &filled
	}
	return out
}

// tie combines the note's <tie> elements, or its <tied> notations when it has
// none.
func tie(el *xmldom.Node) score.Tie {
	marks := children(el, "tie")
	if len(marks) == 0 {
		for _, n := range children(el, "notations") {
			marks = append(marks, children(n, "tied")...)
		}
	}
	t := score.TieNone
	for _, m := range marks {
		switch attr(m, "type") {
		case score.TypeStart:
			t = t.Combine(score.TieStart)
		case score.TypeStop:
			t = t.Combine(score.TieStop)
		}
	}
	return t
}

func graceSlashed(el *xmldom.Node) bool {
	return attr(child(el, "grace"), "slash") == "yes"
}

// event builds the leaf for a single <note>. It returns nil when a sounding
// note has no pitch.
func (b *builder) event(el *xmldom.Node, divisions float64, tuplet *score.Ratio) *score.Event {
	ev := &score.Event{
		Voice:    b.rep.integerOr(childText(el, "voice"), "voice", 1),
		Staff:    b.rep.integerOr(childText(el, "staff"), "staff", 1),
		Duration: b.duration(el, divisions, tuplet),
		Notehead: b.notehead(el),
		Stemless: childText(el, "stem") == "none",
	}

	if rest := child(el, "rest"); rest != nil {
		ev.Kind = score.KindRest
		if attr(rest, "measure") == "yes" {
			ev.Kind = score.KindBarRest
			ev.BarLength = ev.Duration.TrueLength()
			if ticks, ok := b.rep.number(childText(el, "duration"), "duration"); ok && divisions > 0 {
				ev.BarLength = ticks / divisions
			}
		}
		ev.Notations = b.notations(el)
		return ev
	}

	ev.Pitch = b.pitch(el)
	if ev.Pitch == nil {
		b.rep.warn(CodeMissingPitch, "note without pitch skipped")
		return nil
	}
	ev.Kind = score.KindNote
	if has(el, "grace") {
		ev.Kind = score.KindGrace
		ev.Slashed = graceSlashed(el)
	}
	ev.Tie = tie(el)
	ev.Notations = b.notations(el)
	return ev
}
