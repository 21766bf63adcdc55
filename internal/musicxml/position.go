package musicxml

import (
	xmldom "github.com/subchen/go-xmldom"
)

// timeline is the result of one pass over a measure's children. Every slice
// is index-aligned with the children: positions[i] is the displacement in
// quarter notes recorded for child i, valid only when recorded[i] is set, and
// divisions[i] is the divisions value in effect at child i.
type timeline struct {
	positions []float64
	recorded  []bool
	divisions []float64
	// final is the divisions value in effect after the last child, carried
	// into the next measure.
	final float64
}

// at returns the recorded displacement of child i, or 0 when none was
// recorded.
func (t *timeline) at(i int) (float64, bool) {
	if i < 0 || i >= len(t.positions) || !t.recorded[i] {
		return 0, false
	}
	return t.positions[i], true
}

func (t *timeline) record(i int, pos float64) {
	t.positions[i] = pos
	t.recorded[i] = true
}

// trackPositions walks elems in document order simulating the MusicXML
// duration cursor. divisions is the value inherited from the previous measure.
func trackPositions(elems []*xmldom.Node, divisions float64, rep *reporter) *timeline {
	tl := &timeline{
		positions: make([]float64, len(elems)),
		recorded:  make([]bool, len(elems)),
		divisions: make([]float64, len(elems)),
	}
	cursor := 0.0

	for i, el := range elems {
		if el.Name == "attributes" {
			if v, ok := rep.number(childText(el, "divisions"), "divisions"); ok {
				if v > 0 {
					divisions = v
				} else {
					rep.warn(CodeInvalidNumber, "non-positive divisions %v ignored", v)
				}
			}
		}
		tl.divisions[i] = divisions

		switch el.Name {
		case "note":
			if has(el, "chord") {
				continue
			}
			if has(el, "grace") {
				tl.record(i, cursor)
				continue
			}
			q, ok := quarters(el, divisions, rep)
			if !ok {
				continue
			}
			tl.record(i, cursor)
			cursor += q

		case "forward":
			if q, ok := quarters(el, divisions, rep); ok {
				cursor += q
			}

		case "backup":
			if q, ok := quarters(el, divisions, rep); ok {
				cursor -= q
				if cursor < 0 {
					cursor = 0
				}
			}

		case "direction", "harmony":
			pos := cursor
			if off, ok := rep.number(childText(el, "offset"), "offset"); ok {
				pos += off / divisions
			}
			if pos < 0 {
				pos = 0
			}
			tl.record(i, pos)
		}
	}
	tl.final = divisions
	return tl
}

// quarters converts an element's duration child from ticks to quarter notes.
func quarters(el *xmldom.Node, divisions float64, rep *reporter) (float64, bool) {
	raw := childText(el, "duration")
	if raw == "" {
		rep.warn(CodeMissingDuration, "<%s> without duration", el.Name)
		return 0, false
	}
	ticks, ok := rep.number(raw, "duration")
	if !ok {
		return 0, false
	}
	return ticks / divisions, true
}
