package musicxml

import (
	"strings"

	xmldom "github.com/subchen/go-xmldom"

	"github.com/starford/partitura/internal/score"
)

var dynamicMarks = set("p", "pp", "ppp", "pppp", "ppppp", "pppppp",
	"f", "ff", "fff", "ffff", "fffff", "ffffff", "mp", "mf", "sf", "sfp",
	"sfpp", "fp", "rf", "rfz", "sfz", "sffz", "fz", "n", "pf", "sfzp")

var beatUnitLengths = map[string]float64{
	"whole":   4,
	"half":    2,
	"quarter": 1,
	"eighth":  0.5,
	"16th":    0.25,
	"32nd":    0.125,
	"64th":    0.0625,
	"128th":   0.03125,
}

// placeDirections parses every direction and harmony child and pairs it with
// the displacement recorded for it, in document order.
func (b *builder) placeDirections(elems []*xmldom.Node, tl *timeline) []score.Placed {
	var out []score.Placed
	for i, el := range elems {
		var d score.Direction
		switch el.Name {
		case "direction":
			d = b.direction(el)
		case "harmony":
			d = b.direction(harmonyShell(el))
		default:
			continue
		}
		if d == nil {
			continue
		}
		pos, _ := tl.at(i)
		out = append(out, score.Placed{Content: d, Displacement: pos})
	}
	return out
}

// harmonyShell wraps a harmony element in a synthetic direction so it goes
// through the same dispatch as real directions.
func harmonyShell(h *xmldom.Node) *xmldom.Node {
	return &xmldom.Node{
		Name: "direction",
		Children: []*xmldom.Node{
			{Name: "direction-type", Children: []*xmldom.Node{h}},
		},
	}
}

// direction dispatches each direction-type over the recognised shapes in
// priority order and returns the first match. Words seen along the way label
// a following dashes or bracket start; otherwise the last words found become
// a text annotation. An unusable dynamic or metronome mark ends the dispatch.
func (b *builder) direction(el *xmldom.Node) score.Direction {
	var words *score.TextAnnotation
	for _, dt := range children(el, "direction-type") {
		for _, w := range children(dt, "words") {
			words = b.words(w, b.anchor(el, "above"))
		}
		d, abort := b.shape(el, dt, words)
		if abort {
			return nil
		}
		if d != nil {
			return d
		}
	}
	if words != nil {
		return words
	}
	b.rep.warn(CodeUnknownDirection, "direction with no recognised content")
	return nil
}

func (b *builder) shape(el, dt *xmldom.Node, words *score.TextAnnotation) (score.Direction, bool) {
	if n := child(dt, "dashes"); n != nil {
		if d := b.dashes(el, n, words); d != nil {
			return d, false
		}
	}
	if n := child(dt, "wedge"); n != nil {
		if d := b.wedge(el, n); d != nil {
			return d, false
		}
	}
	if n := child(dt, "pedal"); n != nil {
		if d := b.pedal(el, n); d != nil {
			return d, false
		}
	}
	if n := child(dt, "dynamics"); n != nil {
		if d := b.dynamic(el, n); d != nil {
			return d, false
		}
		return nil, true
	}
	if n := child(dt, "metronome"); n != nil {
		if d := b.metronome(el, n); d != nil {
			return d, false
		}
		return nil, true
	}
	if n := child(dt, "bracket"); n != nil {
		if d := b.bracket(el, n, words); d != nil {
			return d, false
		}
	}
	if n := child(dt, "harmony"); n != nil {
		if d := b.harmony(n); d != nil {
			return d, false
		}
		return nil, true
	}
	return nil, false
}

// anchor reads placement, staff and voice from a direction or harmony.
func (b *builder) anchor(el *xmldom.Node, def string) score.Anchor {
	return score.Anchor{
		Placement: b.placement(el, def),
		Staff:     b.rep.integerOr(childText(el, "staff"), "staff", 0),
		Voice:     b.rep.integerOr(childText(el, "voice"), "voice", 1),
	}
}

func (b *builder) words(w *xmldom.Node, a score.Anchor) *score.TextAnnotation {
	return &score.TextAnnotation{
		Anchor:   a,
		Text:     text(w),
		FontSize: b.rep.numberPtr(attr(w, "font-size"), "font-size"),
		Italic:   attr(w, "font-style") == "italic",
		Bold:     attr(w, "font-weight") == "bold",
	}
}

// spannerType validates a start/stop type attribute, also accepting the
// extra values in allowed.
func (b *builder) spannerType(n *xmldom.Node, allowed ...string) (string, bool) {
	typ := attr(n, "type")
	if typ == score.TypeStart || typ == score.TypeStop {
		return typ, true
	}
	for _, a := range allowed {
		if typ == a {
			return typ, true
		}
	}
	if typ != score.TypeContinue {
		b.rep.warn(CodeUnknownValue, "unknown %s type %q", n.Name, typ)
	}
	return "", false
}

func (b *builder) dashes(el, n *xmldom.Node, words *score.TextAnnotation) *score.Dashes {
	typ, ok := b.spannerType(n)
	if !ok {
		return nil
	}
	d := &score.Dashes{
		Anchor:      b.anchor(el, "above"),
		Type:        typ,
		Number:      attrOr(n, "number", "1"),
		DashLength:  b.rep.numberPtr(attr(n, "dash-length"), "dash-length"),
		SpaceLength: b.rep.numberPtr(attr(n, "space-length"), "space-length"),
	}
	if typ == score.TypeStart {
		d.Text = words
	}
	return d
}

func (b *builder) wedge(el, n *xmldom.Node) *score.Hairpin {
	typ := attr(n, "type")
	switch typ {
	case score.HairpinCrescendo, score.HairpinDiminuendo, score.HairpinStop:
	case score.TypeContinue:
		return nil
	default:
		b.rep.warn(CodeUnknownValue, "unknown wedge type %q", typ)
		return nil
	}
	return &score.Hairpin{
		Anchor: b.anchor(el, "below"),
		Type:   typ,
		Number: attrOr(n, "number", "1"),
		Spread: b.rep.numberPtr(attr(n, "spread"), "spread"),
		Niente: attr(n, "niente") == "yes",
	}
}

func (b *builder) pedal(el, n *xmldom.Node) *score.Pedal {
	typ, ok := b.spannerType(n, score.TypeChange)
	if !ok {
		return nil
	}
	return &score.Pedal{
		Anchor: b.anchor(el, "below"),
		Type:   typ,
		Number: attrOr(n, "number", "1"),
		Sign:   attrOr(n, "sign", "yes") == "yes",
		Line:   attrOr(n, "line", "yes") == "yes",
	}
}

// dynamic reads the first mark of a dynamics element. An unrecognised mark
// is reported and yields nil.
func (b *builder) dynamic(el, n *xmldom.Node) *score.Dynamic {
	if len(n.Children) == 0 {
		b.rep.warn(CodeUnknownValue, "empty dynamics")
		return nil
	}
	m := n.Children[0]
	a := b.anchor(el, "below")
	if m.Name == "other-dynamics" {
		return &score.Dynamic{Anchor: a, Mark: text(m), Other: true}
	}
	if _, ok := dynamicMarks[m.Name]; !ok {
		b.rep.warn(CodeUnknownValue, "unknown dynamic %q", m.Name)
		return nil
	}
	return &score.Dynamic{Anchor: a, Mark: m.Name}
}

func (b *builder) metronome(el, n *xmldom.Node) *score.MetronomeMark {
	unit := childText(n, "beat-unit")
	bpm, ok := b.rep.number(childText(n, "per-minute"), "per-minute")
	if unit == "" || !ok {
		b.rep.warn(CodeUnknownValue, "metronome mark without beat-unit and per-minute")
		return nil
	}
	length, known := beatUnitLengths[unit]
	if !known {
		b.rep.warn(CodeUnknownValue, "unknown beat-unit %q, using quarter", unit)
		length = 1
	}
	dots := len(children(n, "beat-unit-dot"))
	return &score.MetronomeMark{
		Anchor:      b.anchor(el, "above"),
		BeatUnit:    unit,
		Dots:        dots,
		BeatLength:  length * score.DotFactor(dots),
		BPM:         bpm,
		Parentheses: attr(n, "parentheses") == "yes",
	}
}

func (b *builder) bracket(el, n *xmldom.Node, words *score.TextAnnotation) *score.Bracket {
	typ, ok := b.spannerType(n)
	if !ok {
		return nil
	}
	br := &score.Bracket{
		Anchor:    b.anchor(el, "above"),
		Type:      typ,
		Number:    attrOr(n, "number", "1"),
		LineType:  attrOr(n, "line-type", "dashed"),
		LineEnd:   attr(n, "line-end"),
		EndLength: b.rep.numberPtr(attr(n, "end-length"), "end-length"),
	}
	if typ == score.TypeStart {
		br.Text = words
	}
	return br
}

var harmonyKinds = func() map[string]string {
	kinds := []string{
		"major", "minor", "augmented", "diminished", "dominant",
		"major-seventh", "minor-seventh", "diminished-seventh",
		"augmented-seventh", "half-diminished", "major-minor", "major-sixth",
		"minor-sixth", "dominant-ninth", "major-ninth", "minor-ninth",
		"dominant-11th", "major-11th", "minor-11th", "dominant-13th",
		"major-13th", "minor-13th", "suspended-second", "suspended-fourth",
		"Neapolitan", "Italian", "French", "German", "pedal", "power",
		"Tristan", "other", "none",
	}
	m := make(map[string]string, len(kinds))
	for _, k := range kinds {
		m[strings.ToLower(k)] = k
	}
	return m
}()

var degreeTypes = set("add", "alter", "subtract")

// harmony reads a chord symbol. Root step and kind are required.
func (b *builder) harmony(h *xmldom.Node) *score.Harmony {
	root := child(h, "root")
	step := strings.ToUpper(childText(root, "root-step"))
	kindEl := child(h, "kind")
	if kindEl == nil || !score.ValidStep(step) {
		b.rep.warn(CodeIncompleteHarmony, "harmony without root-step or kind skipped")
		return nil
	}

	kind, ok := harmonyKinds[strings.ToLower(text(kindEl))]
	if !ok {
		b.rep.warn(CodeUnknownValue, "unknown harmony kind %q, using major", text(kindEl))
		kind = "major"
	}
	out := &score.Harmony{
		Anchor:      b.anchor(h, "above"),
		Root:        step,
		RootAlter:   b.rep.integerOr(childText(root, "root-alter"), "root-alter", 0),
		Kind:        kind,
		KindText:    attr(kindEl, "text"),
		UseSymbols:  attr(kindEl, "use-symbols") == "yes",
		PrintObject: attr(h, "print-object") != "no",
	}
	for _, d := range children(h, "degree") {
		value, ok := b.rep.integer(childText(d, "degree-value"), "degree-value")
		if !ok {
			continue
		}
		typ := childText(d, "degree-type")
		if _, known := degreeTypes[typ]; !known {
			if typ != "" {
				b.rep.warn(CodeUnknownValue, "unknown degree-type %q, using alter", typ)
			}
			typ = "alter"
		}
		out.Degrees = append(out.Degrees, score.Degree{
			Value:       value,
			Alter:       b.rep.integerOr(childText(d, "degree-alter"), "degree-alter", 0),
			Type:        typ,
			PrintObject: attr(d, "print-object") != "no",
		})
	}
	return out
}
