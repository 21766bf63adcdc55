package musicxml

import (
	"strings"

	xmldom "github.com/subchen/go-xmldom"

	"github.com/starford/partitura/internal/score"
)

// attributes applies an <attributes> element to m. A later element in the
// same measure replaces the time, key and transpose set by an earlier one;
// clefs accumulate.
func (b *builder) attributes(el *xmldom.Node, m *score.Measure) {
	if t := child(el, "time"); t != nil {
		m.Time = b.timeSignature(t)
	}
	if k := child(el, "key"); k != nil {
		if key := b.keySignature(k); key != nil {
			m.Key = key
		}
	}
	for _, c := range children(el, "clef") {
		m.Clefs = append(m.Clefs, score.Clef{
			Sign:         childTextOr(c, "sign", "G"),
			Line:         b.rep.integerOr(childText(c, "line"), "clef line", 2),
			OctaveChange: b.rep.integerOr(childText(c, "clef-octave-change"), "clef-octave-change", 0),
			Staff:        b.rep.integerOr(attr(c, "number"), "clef number", 1),
		})
	}
	if t := child(el, "transpose"); t != nil {
		if chromatic, ok := b.rep.integer(childText(t, "chromatic"), "chromatic"); ok {
			tr := &score.Transpose{
				Chromatic: chromatic,
				Octave:    b.rep.integerOr(childText(t, "octave-change"), "octave-change", 0),
			}
			if d, ok := b.rep.integer(childText(t, "diatonic"), "diatonic"); ok {
				tr.Diatonic = &d
			}
			m.Transpose = tr
		}
	}
}

func childTextOr(el *xmldom.Node, name, def string) string {
	if v := childText(el, name); v != "" {
		return v
	}
	return def
}

// timeSignature returns nil for senza-misura or an unreadable meter.
// Additive numerators such as "3+2" are summed.
func (b *builder) timeSignature(t *xmldom.Node) *score.TimeSignature {
	if has(t, "senza-misura") {
		return nil
	}
	beats := 0
	for _, part := range strings.Split(childText(t, "beats"), "+") {
		n, ok := b.rep.integer(strings.TrimSpace(part), "beats")
		if !ok {
			return nil
		}
		beats += n
	}
	beatType, ok := b.rep.integer(childText(t, "beat-type"), "beat-type")
	if !ok || beats <= 0 || beatType <= 0 {
		return nil
	}
	return &score.TimeSignature{Beats: beats, BeatType: beatType, Symbol: attr(t, "symbol")}
}

// keySignature reads either a traditional key (fifths and mode) or a
// non-traditional one given as key-step/key-alter pairs.
func (b *builder) keySignature(k *xmldom.Node) *score.KeySignature {
	if has(k, "fifths") {
		fifths, ok := b.rep.integer(childText(k, "fifths"), "fifths")
		if !ok {
			return nil
		}
		mode := childText(k, "mode")
		if mode == "" {
			mode = "major"
		}
		return &score.KeySignature{Fifths: fifths, Mode: mode}
	}

	key := &score.KeySignature{}
	last := -1
	for _, c := range k.Children {
		switch c.Name {
		case "key-step":
			key.Alterations = append(key.Alterations, score.KeyAlteration{Step: strings.ToUpper(text(c))})
			last = len(key.Alterations) - 1
		case "key-alter":
			if last >= 0 {
				key.Alterations[last].Alter, _ = b.rep.number(text(c), "key-alter")
			}
		case "key-accidental":
			if last >= 0 {
				key.Alterations[last].Accidental = text(c)
			}
		}
	}
	if len(key.Alterations) == 0 {
		return nil
	}
	return key
}

// barline applies a <barline>: the right barline sets the style and an end
// repeat, a forward repeat on the left marks the start of a repeated section.
func (b *builder) barline(el *xmldom.Node, m *score.Measure) {
	repeat := attr(child(el, "repeat"), "direction")
	if attrOr(el, "location", "right") == "left" {
		if repeat == "forward" {
			m.RepeatStart = true
		}
		return
	}
	bl := &score.Barline{Style: childText(el, "bar-style"), Repeat: repeat}
	if bl.Style == "" && bl.Repeat == "" {
		return
	}
	m.Barline = bl
}
